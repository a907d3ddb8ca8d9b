package binlog

import (
	"encoding/base64"
	"testing"
	"time"
)

func newRowsEvent(eventType EventType, tm *TableMapEvent, after, before []Column) RowsEvent {
	return RowsEvent{
		eventType: eventType,
		TableMap:  tm,
		columns:   [][]Column{after, before},
	}
}

func TestReconstructRow_Insert(t *testing.T) {
	tm := &TableMapEvent{SchemaName: "shop", TableName: "orders"}
	colDefs := []ColumnDefinition{
		{Name: "id", Flags: ColumnFlagPrimaryKey},
		{Name: "status"},
	}
	cols := []Column{{Ordinal: 0}, {Ordinal: 1}}
	re := newRowsEvent(WRITE_ROWS_EVENTv2, tm, cols, nil)

	rc, err := ReconstructRow(re, colDefs, []interface{}{int32(1), "pending"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Kind != RowInsert {
		t.Fatalf("kind: got %v want insert", rc.Kind)
	}
	want := "INSERT INTO `shop`.`orders` (`id`,`status`) VALUES (?,?)"
	if rc.SQL != want {
		t.Fatalf("sql: got %q want %q", rc.SQL, want)
	}
	if len(rc.Params) != 2 || rc.Params[0] != int32(1) || rc.Params[1] != "pending" {
		t.Fatalf("params: got %#v", rc.Params)
	}
}

func TestReconstructRow_DeleteWithKey(t *testing.T) {
	tm := &TableMapEvent{SchemaName: "shop", TableName: "orders"}
	colDefs := []ColumnDefinition{
		{Name: "id", Flags: ColumnFlagPrimaryKey},
		{Name: "status"},
	}
	cols := []Column{{Ordinal: 0}, {Ordinal: 1}}
	re := newRowsEvent(DELETE_ROWS_EVENTv2, tm, cols, nil)

	rc, err := ReconstructRow(re, colDefs, []interface{}{int32(1), "pending"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if rc.Suppressed {
		t.Fatal("want not suppressed, a key column is present")
	}
	want := "DELETE FROM `shop`.`orders` WHERE `id` = ?"
	if rc.SQL != want {
		t.Fatalf("sql: got %q want %q", rc.SQL, want)
	}
	if len(rc.Params) != 1 || rc.Params[0] != int32(1) {
		t.Fatalf("params: got %#v", rc.Params)
	}
}

func TestReconstructRow_DeleteSuppressedWithoutKey(t *testing.T) {
	tm := &TableMapEvent{SchemaName: "shop", TableName: "orders"}
	colDefs := []ColumnDefinition{
		{Name: "id"},
		{Name: "status"},
	}
	cols := []Column{{Ordinal: 0}, {Ordinal: 1}}
	re := newRowsEvent(DELETE_ROWS_EVENTv2, tm, cols, nil)

	rc, err := ReconstructRow(re, colDefs, []interface{}{int32(1), "pending"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !rc.Suppressed {
		t.Fatal("want suppressed, no key column present")
	}
	if rc.SQL != "" {
		t.Fatalf("sql: got %q want empty", rc.SQL)
	}
}

func TestReconstructRow_Update(t *testing.T) {
	tm := &TableMapEvent{SchemaName: "shop", TableName: "orders"}
	colDefs := []ColumnDefinition{
		{Name: "id", Flags: ColumnFlagPrimaryKey},
		{Name: "status"},
	}
	cols := []Column{{Ordinal: 0}, {Ordinal: 1}}
	re := newRowsEvent(UPDATE_ROWS_EVENTv2, tm, cols, cols)

	rc, err := ReconstructRow(re, colDefs,
		[]interface{}{int32(1), "shipped"}, []interface{}{int32(1), "pending"})
	if err != nil {
		t.Fatal(err)
	}
	want := "UPDATE `shop`.`orders` SET `id` = ?,`status` = ? WHERE `id` = ?"
	if rc.SQL != want {
		t.Fatalf("sql: got %q want %q", rc.SQL, want)
	}
	if len(rc.Params) != 3 {
		t.Fatalf("params: got %#v", rc.Params)
	}
	if rc.Params[2] != int32(1) {
		t.Fatalf("where param: got %#v want int32(1)", rc.Params[2])
	}
}

func TestReconstructRow_NilTableMap(t *testing.T) {
	re := newRowsEvent(WRITE_ROWS_EVENTv2, nil, nil, nil)
	if _, err := ReconstructRow(re, nil, nil, nil); err == nil {
		t.Fatal("want error for dummy rows event with nil TableMap")
	}
}

func TestRenderLiteral(t *testing.T) {
	rc := &RowChange{
		SQL:          "INSERT INTO `t` (`a`,`b`,`c`) VALUES (?,?,?)",
		Params:       []interface{}{int32(5), "it's", []byte{0x01, 0x02}},
		ParamColumns: []string{"a", "b", "c"},
	}
	sql, encoded := RenderLiteral(rc)
	b64 := base64.StdEncoding.EncodeToString([]byte{0x01, 0x02})
	want := "INSERT INTO `t` (`a`,`b`,`c`) VALUES (5,'it\\'s','" + b64 + "')"
	if sql != want {
		t.Fatalf("got %q want %q", sql, want)
	}
	if len(encoded) != 1 || encoded[0] != "c" {
		t.Fatalf("encodedColumns: got %#v want [c]", encoded)
	}
}

func TestRenderLiteral_null(t *testing.T) {
	rc := &RowChange{SQL: "?", Params: []interface{}{Null{}}}
	sql, encoded := RenderLiteral(rc)
	if sql != "NULL" {
		t.Fatalf("got %q want NULL", sql)
	}
	if encoded != nil {
		t.Fatalf("encodedColumns: got %#v want nil", encoded)
	}
}

func TestFormatTimeDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{2*time.Hour + 3*time.Minute + 4*time.Second, "02:03:04"},
		{-(2*time.Hour + 3*time.Minute + 4*time.Second), "-02:03:04"},
		{1*time.Second + 123*time.Microsecond, "00:00:01.000123"},
	}
	for _, c := range cases {
		if got := formatTimeDuration(c.d); got != c.want {
			t.Errorf("formatTimeDuration(%v): got %q want %q", c.d, got, c.want)
		}
	}
}
