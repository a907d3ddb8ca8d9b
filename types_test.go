package binlog

import (
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// TestColumn_decodeValue inserts one value of each supported SQL type into a
// live server, reads it back off the binlog, and compares the decoded Go
// value against what the table-driven case expects. It requires a reachable
// server (-mysql flag) since there is no substitute for watching the real
// wire bytes a server emits for each type.
func TestColumn_decodeValue(t *testing.T) {
	if *mysql == "" {
		t.Skip(skipReason)
	}

	db, err := sql.Open("mysql", driverURL)
	if err != nil {
		t.Fatal(err)
	}
	if err := db.Ping(); err != nil {
		t.Fatal(err)
	}
	_ = db.Close()

	dur := func(h, m, s, micro int64) time.Duration {
		return time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(s)*time.Second + time.Duration(micro)*time.Microsecond
	}

	testCases := []struct {
		sqlType string
		val     string
		want    interface{}
	}{
		{"tinyint", "23", int8(23)},
		{"tinyint", "-23", int8(-23)},
		{"tinyint", "-128", int8(-128)}, // min
		{"tinyint", "127", int8(127)},   // max
		//
		{"tinyint unsigned", "23", uint8(23)},
		{"tinyint unsigned", "0", uint8(0)},     // min
		{"tinyint unsigned", "255", uint8(255)}, // max
		//
		{"smallint", "23", int16(23)},
		{"smallint", "-23", int16(-23)},
		//
		{"smallint unsigned", "23", uint16(23)},
		{"smallint unsigned", "65535", uint16(65535)}, // max
		//
		{"mediumint", "23", int32(23)},
		{"mediumint", "-8388608", int32(-8388608)}, // min
		//
		{"int", "23", int32(23)},
		{"int", "-2147483648", int32(-2147483648)}, // min
		{"int", "2147483647", int32(2147483647)},   // max
		//
		{"int unsigned", "4294967295", uint32(4294967295)}, // max
		//
		{"bigint", "9223372036854775807", int64(9223372036854775807)}, // max
		//
		{"bigint unsigned", "18446744073709551615", uint64(18446744073709551615)}, // max
		//
		{"float", "1.2345", float32(1.2345)},
		{"double", "1.2345", float64(1.2345)},
		//
		{"decimal(6,3)", "123.456", Decimal("123.456")},
		{"decimal(6,3)", "-12.45", Decimal("-12.450")},
		//
		{"bit(5)", "11", uint64(11)},
		{"bit(64)", "18446744073709551615", uint64(18446744073709551615)},
		//
		{"char(5)", "'abc'", "abc"},
		{"varchar(16383)", "'abc'", "abc"},
		//
		{"blob", "BINARY('hello world!!!')", []byte("hello world!!!")},
		{"text", "'hello world!!!'", "hello world!!!"},
		//
		{"year", "1901", int(1901)},
		{"year", "1", int(2001)},
		{"year", "99", int(1999)},
		//
		{"date", "'2021-02-14'", time.Date(2021, time.February, 14, 0, 0, 0, 0, time.UTC)},
		{"date", "'1000-01-01'", time.Date(1000, time.January, 1, 0, 0, 0, 0, time.UTC)},
		//
		{"datetime(6)", "'2021-02-14 20:37:12.123456'", time.Date(2021, time.February, 14, 20, 37, 12, 123456000, time.UTC)},
		//
		{"timestamp(6)", "'2021-02-14 20:37:12.123456'", time.Date(2021, time.February, 14, 20, 37, 12, 123456000, time.Local)},
		//
		{"time(6)", "'-838:59:59.000000'", -dur(838, 59, 59, 0)}, // min
		{"time(6)", "'838:59:59.000000'", dur(838, 59, 59, 0)},   // max
		{"time(3)", "'838:51:58.123'", dur(838, 51, 58, 123000)},
	}
	for _, tc := range testCases {
		t.Run(fmt.Sprintf("%s %s", tc.sqlType, tc.val), func(t *testing.T) {
			v := testInsert(t, tc.sqlType, tc.val)
			var equal bool
			switch got := v.(type) {
			case time.Time:
				want, ok := tc.want.(time.Time)
				equal = ok && got.Equal(want)
			default:
				equal = reflect.DeepEqual(got, tc.want)
			}
			if !equal {
				t.Logf(" got: %T %v %#v", v, v, v)
				t.Logf("want: %T %v %#v", tc.want, tc.want, tc.want)
				t.Fail()
			}
		})
	}
}

func testInsert(t *testing.T, sqlType, value string) interface{} {
	t.Helper()
	r, err := Dial(network, address)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	if ssl && r.IsSSLSupported() {
		if err := r.UpgradeSSL(nil); err != nil {
			t.Fatal(err)
		}
	}
	if err := r.Authenticate(user, passwd); err != nil {
		t.Fatal(err)
	}
	file, pos, err := r.MasterStatus()
	if err != nil {
		t.Fatal(err)
	}
	insertValue(t, sqlType, value)
	if err := r.Seek(0, file, pos); err != nil {
		t.Fatal(err)
	}
	for {
		e, err := r.NextEvent()
		if err != nil {
			t.Fatal(err)
		}
		if !e.Header.EventType.IsWriteRows() {
			continue
		}
		re := e.Data.(RowsEvent)
		if re.TableMap.SchemaName != db || re.TableMap.TableName != "binlog_table" {
			continue
		}
		vals, _, err := r.NextRow()
		if err != nil {
			t.Fatal(err)
		}
		return vals[0]
	}
}

func insertValue(t *testing.T, sqlType, value string) {
	t.Helper()
	conn, err := sql.Open("mysql", driverURL)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()
	if _, err := conn.Exec(`drop table if exists binlog_table`); err != nil {
		t.Fatalf("drop binlog_table failed: %v", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(`create table binlog_table(value %s)`, sqlType)); err != nil {
		t.Fatalf("create table with type %s failed: %v", sqlType, err)
	}
	res, err := conn.Exec(fmt.Sprintf(`insert into binlog_table values(%s)`, value))
	if err != nil {
		t.Fatal(err)
	}
	got, err := res.RowsAffected()
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Fatalf("rowsAffected: got %d, want %d", got, 1)
	}
}
