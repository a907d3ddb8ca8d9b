package binlog

import (
	"testing"
)

func TestQueryEvent_ParseStatusVars(t *testing.T) {
	var b []byte
	b = append(b, qFlags2Code, 0x01, 0x00, 0x00, 0x00)
	b = append(b, qSQLModeCode, 1, 0, 0, 0, 0, 0, 0, 0)
	b = append(b, qCatalogCode)
	b = append(b, byte(len("mysql")))
	b = append(b, []byte("mysql")...)
	b = append(b, 0) // trailing NUL
	b = append(b, qAutoIncrementCode, 1, 0, 2, 0)
	b = append(b, qCharsetCode, 0x21, 0x00, 0x21, 0x00, 0x21, 0x00)
	b = append(b, qTimeZoneCode, byte(len("UTC")))
	b = append(b, []byte("UTC")...)
	b = append(b, qLCTimeNamesCode, 0x00, 0x00)
	b = append(b, qCharsetDatabaseCode, 0x21, 0x00)
	b = append(b, qTableMapForUpdateCode, 1, 0, 0, 0, 0, 0, 0, 0)
	b = append(b, qMasterDataWrittenCode, 10, 0, 0, 0)
	b = append(b, qInvokerCode, byte(len("root")))
	b = append(b, []byte("root")...)
	b = append(b, byte(len("localhost")))
	b = append(b, []byte("localhost")...)
	b = append(b, qUpdatedDBNamesCode, 2)
	b = append(b, []byte("shop\x00orders\x00")...)
	b = append(b, qMicrosecondsCode, 0x01, 0x00, 0x00)

	e := &QueryEvent{StatusVars: b}
	v, rest, err := e.ParseStatusVars()
	if err != nil {
		t.Fatal(err)
	}
	if rest != nil {
		t.Fatalf("rest: got %#v want nil", rest)
	}
	if v.Flags2 != 1 {
		t.Errorf("Flags2: got %d want 1", v.Flags2)
	}
	if v.SQLMode != 1 {
		t.Errorf("SQLMode: got %d want 1", v.SQLMode)
	}
	if v.Catalog != "mysql" {
		t.Errorf("Catalog: got %q want mysql", v.Catalog)
	}
	if v.AutoIncrementIncrement != 1 || v.AutoIncrementOffset != 2 {
		t.Errorf("AutoIncrement: got incr=%d offset=%d", v.AutoIncrementIncrement, v.AutoIncrementOffset)
	}
	if v.CharsetClient != 0x21 || v.CollationConnection != 0x21 || v.CollationServer != 0x21 {
		t.Errorf("charset: got client=%d conn=%d server=%d", v.CharsetClient, v.CollationConnection, v.CollationServer)
	}
	if v.TimeZone != "UTC" {
		t.Errorf("TimeZone: got %q want UTC", v.TimeZone)
	}
	if v.LCTimeNames != 0 {
		t.Errorf("LCTimeNames: got %d want 0", v.LCTimeNames)
	}
	if v.CharsetDatabase != 0x21 {
		t.Errorf("CharsetDatabase: got %d want 0x21", v.CharsetDatabase)
	}
	if v.TableMapForUpdate != 1 {
		t.Errorf("TableMapForUpdate: got %d want 1", v.TableMapForUpdate)
	}
	if v.MasterDataWritten != 10 {
		t.Errorf("MasterDataWritten: got %d want 10", v.MasterDataWritten)
	}
	if v.InvokerUser != "root" || v.InvokerHost != "localhost" {
		t.Errorf("invoker: got user=%q host=%q", v.InvokerUser, v.InvokerHost)
	}
	if len(v.UpdatedDBs) != 2 || v.UpdatedDBs[0] != "shop" || v.UpdatedDBs[1] != "orders" {
		t.Errorf("UpdatedDBs: got %#v", v.UpdatedDBs)
	}
	if v.Microseconds != 1 {
		t.Errorf("Microseconds: got %d want 1", v.Microseconds)
	}
}

func TestQueryEvent_ParseStatusVars_unknownTagStopsParsing(t *testing.T) {
	b := []byte{qFlags2Code, 0x01, 0x00, 0x00, 0x00, 0xFF, 0xAA, 0xBB}
	e := &QueryEvent{StatusVars: b}
	v, rest, err := e.ParseStatusVars()
	if err != nil {
		t.Fatal(err)
	}
	if v.Flags2 != 1 {
		t.Fatalf("Flags2: got %d want 1", v.Flags2)
	}
	want := []byte{0xFF, 0xAA, 0xBB}
	if len(rest) != len(want) {
		t.Fatalf("rest: got %#v want %#v", rest, want)
	}
	for i := range want {
		if rest[i] != want[i] {
			t.Fatalf("rest: got %#v want %#v", rest, want)
		}
	}
}

func TestQueryEvent_ParseStatusVars_truncated(t *testing.T) {
	b := []byte{qFlags2Code, 0x01, 0x00}
	e := &QueryEvent{StatusVars: b}
	if _, _, err := e.ParseStatusVars(); err == nil {
		t.Fatal("want error for truncated status-var payload")
	}
}
