package binlog

import (
	"fmt"
	"io"

	"github.com/relaygrove/binlog/kind"
)

// queryResponse holds one of the following values: okPacket, *resultSet.
type queryResponse interface{}

func (bl *Remote) queryRows(q string) ([][]interface{}, error) {
	resp, err := bl.query(q)
	if err != nil {
		return nil, err
	}
	rs, ok := resp.(*resultSet)
	if !ok {
		return nil, nil
	}
	return rs.rows()
}

func (bl *Remote) query(q string) (queryResponse, error) {
	bl.seq = 0
	w := newWriter(bl.conn, &bl.seq)
	if err := w.query(q); err != nil {
		return nil, err
	}
	r := newReader(bl.conn, &bl.seq)
	b, err := r.peek()
	if err != nil {
		return nil, err
	}
	switch b {
	case okMarker:
		ok := okPacket{}
		if err := ok.decode(r, bl.hs.capabilityFlags); err != nil {
			return nil, err
		}
		return ok, nil
	case errMarker:
		ep := errPacket{}
		if err := ep.decode(r, bl.hs.capabilityFlags); err != nil {
			return nil, err
		}
		return nil, kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
	default:
		rs := resultSet{}
		if err := rs.decode(r, bl.hs.capabilityFlags); err != nil {
			return nil, err
		}
		return &rs, nil
	}
}

func (bl *Remote) readOkErr() error {
	r := newReader(bl.conn, &bl.seq)
	b, err := r.peek()
	if err != nil {
		return err
	}
	switch b {
	case okMarker:
		ok := okPacket{}
		return ok.decode(r, bl.hs.capabilityFlags)
	case errMarker:
		ep := errPacket{}
		if err := ep.decode(r, bl.hs.capabilityFlags); err != nil {
			return err
		}
		return kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
	default:
		return r.drain()
	}
}

// okPacket ---

// https://dev.mysql.com/doc/internals/en/packet-OK_Packet.html
type okPacket struct {
	affectedRows uint64
	lastInsertID uint64
	statusFlags  uint16
	warnings     uint16
	info         string
}

func (e *okPacket) decode(r *reader, capabilities uint32) error {
	header := r.int1()
	if r.err != nil {
		return r.err
	}
	if header != okMarker {
		return fmt.Errorf("binlog: okPacket.decode: got header 0x%02x", header)
	}
	e.affectedRows = r.intN()
	e.lastInsertID = r.intN()
	if capabilities&CLIENT_PROTOCOL_41 != 0 {
		e.statusFlags = r.int2()
		e.warnings = r.int2()
	} else if capabilities&CLIENT_TRANSACTIONS != 0 {
		e.statusFlags = r.int2()
	}
	e.info = r.stringEOF()
	return r.err
}

// Null is the sentinel value stored for a NULL column in a decoded text
// protocol row.
type Null struct{}

// ColumnDefinition describes one result-set or COM_FIELD_LIST column, per
// Protocol::ColumnDefinition41. For COM_FIELD_LIST responses, DefaultValue
// carries the trailing length-encoded default value; it is empty otherwise.
type ColumnDefinition struct {
	Schema       string
	Table        string
	OrgTable     string
	Name         string
	OrgName      string
	Charset      uint16
	ColumnLength uint32
	Type         ColumnType
	Flags        uint16
	Decimals     uint8
	DefaultValue string
}

// Column definition flag bits.
// https://dev.mysql.com/doc/dev/mysql-server/latest/group__group__cs__column__definition__flags.html
const (
	ColumnFlagNotNull     = 0x0001
	ColumnFlagPrimaryKey  = 0x0002
	ColumnFlagUniqueKey   = 0x0004
	ColumnFlagMultipleKey = 0x0008
	ColumnFlagUnsigned    = 0x0020
)

// IsPrimaryKey reports whether this column participates in the table's
// primary key.
func (c ColumnDefinition) IsPrimaryKey() bool { return c.Flags&ColumnFlagPrimaryKey != 0 }

// IsUniqueKey reports whether this column is part of a unique index.
func (c ColumnDefinition) IsUniqueKey() bool { return c.Flags&ColumnFlagUniqueKey != 0 }

// IsKey reports whether this column can be used to identify a row uniquely
// (primary or unique key), the condition the DML reconstruction layer uses
// to decide whether UPDATE/DELETE WHERE clauses can be built.
func (c ColumnDefinition) IsKey() bool { return c.IsPrimaryKey() || c.IsUniqueKey() }

// IsUnsigned reports whether the column's numeric type is unsigned.
func (c ColumnDefinition) IsUnsigned() bool { return c.Flags&ColumnFlagUnsigned != 0 }

func (cd *ColumnDefinition) decode(r *reader, capabilities uint32, withDefault bool) error {
	if capabilities&CLIENT_PROTOCOL_41 == 0 {
		return fmt.Errorf("binlog: Protocol::ColumnDefinition320 not implemented")
	}
	_ = r.stringN() // catalog (always "def")
	cd.Schema = r.stringN()
	cd.Table = r.stringN()
	cd.OrgTable = r.stringN()
	cd.Name = r.stringN()
	cd.OrgName = r.stringN()
	_ = r.intN() // next_length -- length of the following fields (always 0x0c)
	cd.Charset = r.int2()
	cd.ColumnLength = r.int4()
	cd.Type = ColumnType(r.int1())
	cd.Flags = r.int2()
	cd.Decimals = r.int1()
	r.skip(2) // filler
	if withDefault && r.more() {
		cd.DefaultValue = r.stringN()
	}
	return r.err
}

type resultSet struct {
	r            *reader
	capabilities uint32
	columnDefs   []ColumnDefinition
}

func (rs *resultSet) decode(r *reader, capabilities uint32) error {
	rs.r, rs.capabilities = r, capabilities

	ncol := r.intN()
	if r.err != nil {
		return r.err
	}
	if r.more() {
		return ErrMalformedPacket
	}

	for i := uint64(0); i < ncol; i++ {
		r.rd.(*packetReader).reset()
		cd := ColumnDefinition{}
		if err := cd.decode(r, capabilities, false); err != nil {
			return err
		}
		if r.more() {
			return ErrMalformedPacket
		}
		rs.columnDefs = append(rs.columnDefs, cd)
	}

	if capabilities&CLIENT_DEPRECATE_EOF != 0 {
		return nil
	}
	r.rd.(*packetReader).reset()
	eof := eofPacket{}
	return eof.decode(r, capabilities)
}

func (rs *resultSet) nextRow() ([]interface{}, error) {
	r := rs.r
	r.rd.(*packetReader).reset()
	b, err := r.peek()
	if err != nil {
		return nil, err
	}
	deprecateEOF := rs.capabilities&CLIENT_DEPRECATE_EOF != 0
	switch {
	case b == eofMarker && !deprecateEOF:
		eof := eofPacket{}
		if err := eof.decode(r, rs.capabilities); err != nil {
			return nil, err
		}
		return nil, io.EOF
	case b == okMarker && deprecateEOF:
		ok := okPacket{}
		if err := ok.decode(r, rs.capabilities); err != nil {
			return nil, err
		}
		return nil, io.EOF
	case b == errMarker:
		ep := errPacket{}
		if err := ep.decode(r, rs.capabilities); err != nil {
			return nil, err
		}
		return nil, kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
	default:
		row := make([]interface{}, len(rs.columnDefs))
		for i := range row {
			b, err := r.peek()
			if err != nil {
				return nil, err
			}
			if b == 0xfb {
				r.skip(1)
				row[i] = Null{}
			} else {
				row[i] = r.stringN()
				if r.err != nil {
					return nil, r.err
				}
			}
		}
		return row, nil
	}
}

func (rs *resultSet) rows() ([][]interface{}, error) {
	var rows [][]interface{}
	for {
		row, err := rs.nextRow()
		if err != nil {
			if err == io.EOF {
				break
			}
			return rows, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}
