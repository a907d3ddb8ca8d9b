package binlog

import (
	"bytes"
	"testing"
)

func TestComInitDB_writeTo(t *testing.T) {
	var buf bytes.Buffer
	var wseq uint8
	w := newWriter(&buf, &wseq)
	if err := w.writeClose(comInitDB{schema: "replication_test"}); err != nil {
		t.Fatal(err)
	}

	var rseq uint8
	r := newReader(&buf, &rseq)
	if got := r.int1(); got != COM_INIT_DB {
		t.Fatalf("command byte: got %#x want %#x", got, COM_INIT_DB)
	}
	if got := r.stringEOF(); got != "replication_test" {
		t.Fatalf("schema: got %q", got)
	}
	if r.err != nil {
		t.Fatal(r.err)
	}
}

func TestComFieldList_writeTo(t *testing.T) {
	var buf bytes.Buffer
	var wseq uint8
	w := newWriter(&buf, &wseq)
	if err := w.writeClose(comFieldList{table: "orders", wildcard: "%"}); err != nil {
		t.Fatal(err)
	}

	var rseq uint8
	r := newReader(&buf, &rseq)
	if got := r.int1(); got != COM_FIELD_LIST {
		t.Fatalf("command byte: got %#x want %#x", got, COM_FIELD_LIST)
	}
	if got := r.stringNull(); got != "orders" {
		t.Fatalf("table: got %q", got)
	}
	if got := r.stringEOF(); got != "%" {
		t.Fatalf("wildcard: got %q", got)
	}
	if r.err != nil {
		t.Fatal(r.err)
	}
}

// writeColumnDefinition encodes a ColumnDefinition fixture the way a server
// would, for feeding into ColumnDefinition.decode.
func writeColumnDefinition(t *testing.T, w *writer, cd ColumnDefinition, withDefault bool) {
	t.Helper()
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(w.stringN("def"))
	must(w.stringN(cd.Schema))
	must(w.stringN(cd.Table))
	must(w.stringN(cd.OrgTable))
	must(w.stringN(cd.Name))
	must(w.stringN(cd.OrgName))
	must(w.intN(0x0c))
	must(w.int2(cd.Charset))
	must(w.int4(cd.ColumnLength))
	must(w.int1(uint8(cd.Type)))
	must(w.int2(cd.Flags))
	must(w.int1(cd.Decimals))
	_, err := w.Write([]byte{0, 0})
	must(err)
	if withDefault {
		must(w.stringN(cd.DefaultValue))
	}
}

func TestColumnDefinition_decode(t *testing.T) {
	want := ColumnDefinition{
		Schema:       "shop",
		Table:        "orders",
		OrgTable:     "orders",
		Name:         "id",
		OrgName:      "id",
		Charset:      0x3f,
		ColumnLength: 11,
		Type:         TypeLong,
		Flags:        ColumnFlagNotNull | ColumnFlagPrimaryKey | ColumnFlagUnsigned,
		Decimals:     0,
		DefaultValue: "",
	}

	var buf bytes.Buffer
	var wseq uint8
	w := newWriter(&buf, &wseq)
	writeColumnDefinition(t, w, want, false)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var rseq uint8
	r := newReader(&buf, &rseq)
	var got ColumnDefinition
	if err := got.decode(r, CLIENT_PROTOCOL_41, false); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
	if !got.IsPrimaryKey() || !got.IsKey() || !got.IsUnsigned() {
		t.Fatal("flag accessors did not reflect encoded flags")
	}
}

func TestColumnDefinition_decodeWithDefault(t *testing.T) {
	want := ColumnDefinition{
		Schema:       "shop",
		Table:        "orders",
		OrgTable:     "orders",
		Name:         "status",
		OrgName:      "status",
		Charset:      0x21,
		ColumnLength: 40,
		Type:         TypeVarchar,
		Flags:        0,
		Decimals:     0,
		DefaultValue: "pending",
	}

	var buf bytes.Buffer
	var wseq uint8
	w := newWriter(&buf, &wseq)
	writeColumnDefinition(t, w, want, true)
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	var rseq uint8
	r := newReader(&buf, &rseq)
	var got ColumnDefinition
	if err := got.decode(r, CLIENT_PROTOCOL_41, true); err != nil {
		t.Fatal(err)
	}
	if got != want {
		t.Fatalf("got %+v want %+v", got, want)
	}
}
