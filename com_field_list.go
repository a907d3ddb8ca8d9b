package binlog

import (
	"github.com/relaygrove/binlog/kind"
)

const (
	COM_INIT_DB    = 0x02
	COM_FIELD_LIST = 0x04
)

type comInitDB struct {
	schema string
}

func (e comInitDB) writeTo(w *writer) error {
	if err := w.int1(COM_INIT_DB); err != nil {
		return err
	}
	return w.string(e.schema)
}

type comFieldList struct {
	table    string
	wildcard string
}

func (e comFieldList) writeTo(w *writer) error {
	if err := w.int1(COM_FIELD_LIST); err != nil {
		return err
	}
	if err := w.stringNull(e.table); err != nil {
		return err
	}
	return w.string(e.wildcard)
}

// FieldList is the C12 helper-connection contract: given a database and
// table name, it returns the column list in wire order, via
// COM_INIT_DB(db) followed by COM_FIELD_LIST(tbl, "%"). It is meant to be
// called on a side connection from the one driving the binlog stream,
// since the two have no ordering guarantee between them.
func (bl *Remote) FieldList(db, table string) ([]ColumnDefinition, error) {
	bl.seq = 0
	if err := bl.write(comInitDB{schema: db}); err != nil {
		return nil, err
	}
	if err := bl.readOkErr(); err != nil {
		return nil, err
	}

	bl.seq = 0
	if err := bl.write(comFieldList{table: table, wildcard: "%"}); err != nil {
		return nil, err
	}

	var cols []ColumnDefinition
	for {
		r := newReader(bl.conn, &bl.seq)
		b, err := r.peek()
		if err != nil {
			return nil, err
		}
		switch b {
		case errMarker:
			ep := errPacket{}
			if err := ep.decode(r, bl.hs.capabilityFlags); err != nil {
				return nil, err
			}
			return nil, kind.Sql(ep.errorCode, ep.sqlState, ep.errorMessage)
		case eofMarker:
			eof := eofPacket{}
			if err := eof.decode(r, bl.hs.capabilityFlags); err != nil {
				return nil, err
			}
			return cols, nil
		default:
			cd := ColumnDefinition{}
			if err := cd.decode(r, bl.hs.capabilityFlags, true); err != nil {
				return nil, err
			}
			cols = append(cols, cd)
		}
	}
}
