package binlog

import (
	"fmt"
	"math"
	"time"

	"github.com/relaygrove/binlog/kind"
)

const (
	COM_STMT_PREPARE = 0x16
	COM_STMT_EXECUTE = 0x17
	COM_STMT_CLOSE   = 0x19

	cursorTypeNoCursor = 0x00
)

// Stmt is a prepared statement handle returned by Remote.Prepare.
type Stmt struct {
	bl         *Remote
	id         uint32
	ParamCount uint16
	Columns    []ColumnDefinition
}

type comStmtPrepare struct {
	query string
}

func (e comStmtPrepare) writeTo(w *writer) error {
	if err := w.int1(COM_STMT_PREPARE); err != nil {
		return err
	}
	return w.string(e.query)
}

// Prepare issues COM_STMT_PREPARE and reads back the statement id, param
// count and (if any) result column definitions.
func (bl *Remote) Prepare(query string) (*Stmt, error) {
	bl.seq = 0
	if err := bl.write(comStmtPrepare{query: query}); err != nil {
		return nil, err
	}

	r := newReader(bl.conn, &bl.seq)
	b, err := r.peek()
	if err != nil {
		return nil, err
	}
	if b == errMarker {
		ep := errPacket{}
		if err := ep.decode(r, bl.hs.capabilityFlags); err != nil {
			return nil, err
		}
		return nil, kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
	}

	r.int1() // status, always 0x00
	stmt := &Stmt{bl: bl}
	stmt.id = r.int4()
	columnCount := r.int2()
	stmt.ParamCount = r.int2()
	r.skip(1) // filler
	r.int2()  // warning count
	if r.err != nil {
		return nil, r.err
	}

	if stmt.ParamCount > 0 {
		for i := uint16(0); i < stmt.ParamCount; i++ {
			pr := newReader(bl.conn, &bl.seq)
			cd := ColumnDefinition{}
			if err := cd.decode(pr, bl.hs.capabilityFlags, false); err != nil {
				return nil, err
			}
		}
		if err := readEOFIfNeeded(bl); err != nil {
			return nil, err
		}
	}

	if columnCount > 0 {
		for i := uint16(0); i < columnCount; i++ {
			cr := newReader(bl.conn, &bl.seq)
			cd := ColumnDefinition{}
			if err := cd.decode(cr, bl.hs.capabilityFlags, false); err != nil {
				return nil, err
			}
			stmt.Columns = append(stmt.Columns, cd)
		}
		if err := readEOFIfNeeded(bl); err != nil {
			return nil, err
		}
	}

	return stmt, nil
}

func readEOFIfNeeded(bl *Remote) error {
	if bl.hs.capabilityFlags&CLIENT_DEPRECATE_EOF != 0 {
		return nil
	}
	r := newReader(bl.conn, &bl.seq)
	eof := eofPacket{}
	return eof.decode(r, bl.hs.capabilityFlags)
}

// comStmtExecute is the COM_STMT_EXECUTE request: statement id, a cursor
// flag, one bound parameter per '?' placeholder in prepare order.
type comStmtExecute struct {
	stmtID uint32
	params []interface{}
}

func (e comStmtExecute) writeTo(w *writer) error {
	if err := w.int1(COM_STMT_EXECUTE); err != nil {
		return err
	}
	if err := w.int4(e.stmtID); err != nil {
		return err
	}
	if err := w.int1(cursorTypeNoCursor); err != nil {
		return err
	}
	if err := w.int4(1); err != nil { // iteration-count, always 1
		return err
	}

	n := len(e.params)
	if n == 0 {
		return nil
	}

	bitmap := make([]byte, (n+7)/8)
	for i, v := range e.params {
		if v == nil {
			bitmap[i/8] |= 1 << uint(i%8)
		}
	}
	if _, err := w.Write(bitmap); err != nil {
		return err
	}
	if err := w.int1(1); err != nil { // new-params-bound-flag
		return err
	}

	types := make([]byte, 0, 2*n)
	for _, v := range e.params {
		types = append(types, paramTypeCode(v)...)
	}
	if _, err := w.Write(types); err != nil {
		return err
	}

	for _, v := range e.params {
		if v == nil {
			continue
		}
		if err := writeParamValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func paramTypeCode(v interface{}) []byte {
	switch v.(type) {
	case nil:
		return []byte{byte(TypeNull), 0}
	case bool:
		return []byte{byte(TypeTiny), 0}
	case int64, int, int32:
		return []byte{byte(TypeLongLong), 0}
	case uint64, uint, uint32:
		return []byte{byte(TypeLongLong), 0x80}
	case float64, float32:
		return []byte{byte(TypeDouble), 0}
	case time.Time:
		return []byte{byte(TypeString), 0}
	default:
		return []byte{byte(TypeVarString), 0}
	}
}

func writeParamValue(w *writer, v interface{}) error {
	switch v := v.(type) {
	case bool:
		b := byte(0)
		if v {
			b = 1
		}
		return w.int1(b)
	case int:
		return w.int8(uint64(int64(v)))
	case int32:
		return w.int8(uint64(int64(v)))
	case int64:
		return w.int8(uint64(v))
	case uint:
		return w.int8(uint64(v))
	case uint32:
		return w.int8(uint64(v))
	case uint64:
		return w.int8(v)
	case float32:
		return w.int8(uint64(math.Float64bits(float64(v))))
	case float64:
		return w.int8(math.Float64bits(v))
	case time.Time:
		return w.stringN(v.Format("2006-01-02 15:04:05.000000"))
	case string:
		return w.stringN(v)
	case []byte:
		return w.bytesN(v)
	default:
		return fmt.Errorf("binlog: Stmt.Execute: unsupported parameter type %T", v)
	}
}

// Execute runs the prepared statement with the given parameters and returns
// the decoded rows. len(params) must equal stmt.ParamCount.
func (stmt *Stmt) Execute(params ...interface{}) ([][]interface{}, error) {
	if len(params) != int(stmt.ParamCount) {
		return nil, fmt.Errorf("binlog: Stmt.Execute: got %d params, want %d", len(params), stmt.ParamCount)
	}
	bl := stmt.bl
	bl.seq = 0
	if err := bl.write(comStmtExecute{stmtID: stmt.id, params: params}); err != nil {
		return nil, err
	}

	r := newReader(bl.conn, &bl.seq)
	b, err := r.peek()
	if err != nil {
		return nil, err
	}
	switch b {
	case okMarker:
		r.int1()
		return nil, nil
	case errMarker:
		ep := errPacket{}
		if err := ep.decode(r, bl.hs.capabilityFlags); err != nil {
			return nil, err
		}
		return nil, kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
	}

	columnCount := r.intN()
	if r.err != nil {
		return nil, r.err
	}
	cols := make([]ColumnDefinition, 0, columnCount)
	for i := uint64(0); i < columnCount; i++ {
		cr := newReader(bl.conn, &bl.seq)
		cd := ColumnDefinition{}
		if err := cd.decode(cr, bl.hs.capabilityFlags, false); err != nil {
			return nil, err
		}
		cols = append(cols, cd)
	}
	if err := readEOFIfNeeded(bl); err != nil {
		return nil, err
	}

	deprecateEOF := bl.hs.capabilityFlags&CLIENT_DEPRECATE_EOF != 0
	var rows [][]interface{}
	for {
		rr := newReader(bl.conn, &bl.seq)
		hb, err := rr.peek()
		if err != nil {
			return nil, err
		}
		if hb == eofMarker && !deprecateEOF {
			eof := eofPacket{}
			if err := eof.decode(rr, bl.hs.capabilityFlags); err != nil {
				return nil, err
			}
			return rows, nil
		}
		if hb == okMarker && deprecateEOF {
			ok := okPacket{}
			if err := ok.decode(rr, bl.hs.capabilityFlags); err != nil {
				return nil, err
			}
			return rows, nil
		}
		if hb == errMarker {
			ep := errPacket{}
			if err := ep.decode(rr, bl.hs.capabilityFlags); err != nil {
				return nil, err
			}
			return nil, kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
		}
		row, err := decodeBinaryRow(rr, cols)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
}

type comStmtClose struct {
	stmtID uint32
}

func (e comStmtClose) writeTo(w *writer) error {
	if err := w.int1(COM_STMT_CLOSE); err != nil {
		return err
	}
	return w.int4(e.stmtID)
}

// Close tells the server to discard the prepared statement. COM_STMT_CLOSE
// has no response.
func (stmt *Stmt) Close() error {
	stmt.bl.seq = 0
	return stmt.bl.write(comStmtClose{stmtID: stmt.id})
}
