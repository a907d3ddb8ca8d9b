package binlog

import (
	"bytes"
	"reflect"
	"testing"
)

func TestDecodeBinaryRow(t *testing.T) {
	cols := []ColumnDefinition{
		{Type: TypeLong},                 // signed int32
		{Type: TypeVarchar, Charset: 33}, // text charset -> string
		{Type: TypeDouble},               // NULL
	}

	var buf bytes.Buffer
	var wseq uint8
	w := newWriter(&buf, &wseq)
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(w.int1(0))    // leading 0x00
	must(w.int1(0x10)) // null-bitmap: bit 4 (column index 2) set
	must(w.int4(uint32(int32(-42))))
	must(w.intN(5))
	must(w.string("hello"))
	must(w.Close())

	var rseq uint8
	r := newReader(&buf, &rseq)
	row, err := decodeBinaryRow(r, cols)
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := row[0].(int32); !ok || got != -42 {
		t.Fatalf("col0: got %#v want int32(-42)", row[0])
	}
	if got, ok := row[1].(string); !ok || got != "hello" {
		t.Fatalf("col1: got %#v want %q", row[1], "hello")
	}
	if _, ok := row[2].(Null); !ok {
		t.Fatalf("col2: got %#v want Null{}", row[2])
	}
}

func TestDecodeBinaryValue(t *testing.T) {
	encode := func(t *testing.T, fn func(w *writer) error) *reader {
		t.Helper()
		var buf bytes.Buffer
		var wseq uint8
		w := newWriter(&buf, &wseq)
		if err := fn(w); err != nil {
			t.Fatal(err)
		}
		if err := w.Close(); err != nil {
			t.Fatal(err)
		}
		var rseq uint8
		return newReader(&buf, &rseq)
	}

	t.Run("unsigned tinyint", func(t *testing.T) {
		r := encode(t, func(w *writer) error { return w.int1(200) })
		v, err := decodeBinaryValue(r, ColumnDefinition{Type: TypeTiny, Flags: ColumnFlagUnsigned})
		if err != nil {
			t.Fatal(err)
		}
		if got, ok := v.(byte); !ok || got != 200 {
			t.Fatalf("got %#v want byte(200)", v)
		}
	})

	t.Run("new decimal", func(t *testing.T) {
		r := encode(t, func(w *writer) error { return w.stringN("-12.450") })
		v, err := decodeBinaryValue(r, ColumnDefinition{Type: TypeNewDecimal})
		if err != nil {
			t.Fatal(err)
		}
		if v != Decimal("-12.450") {
			t.Fatalf("got %#v want Decimal(-12.450)", v)
		}
	})

	t.Run("bit", func(t *testing.T) {
		r := encode(t, func(w *writer) error { return w.stringN(string([]byte{0, 0, 0, 0, 0, 0, 0, 11})) })
		v, err := decodeBinaryValue(r, ColumnDefinition{Type: TypeBit})
		if err != nil {
			t.Fatal(err)
		}
		if got, ok := v.(uint64); !ok || got != 11 {
			t.Fatalf("got %#v want uint64(11)", v)
		}
	})

	t.Run("blob as bytes when charset is binary", func(t *testing.T) {
		r := encode(t, func(w *writer) error { return w.bytesN([]byte("payload")) })
		v, err := decodeBinaryValue(r, ColumnDefinition{Type: TypeBlob, Charset: 63})
		if err != nil {
			t.Fatal(err)
		}
		if got, ok := v.([]byte); !ok || !reflect.DeepEqual(got, []byte("payload")) {
			t.Fatalf("got %#v want []byte(payload)", v)
		}
	})

	t.Run("zero date", func(t *testing.T) {
		r := encode(t, func(w *writer) error { return w.int1(0) })
		v, err := decodeBinaryValue(r, ColumnDefinition{Type: TypeDate})
		if err != nil {
			t.Fatal(err)
		}
		if v == nil {
			t.Fatal("want zero time.Time, got nil")
		}
	})
}
