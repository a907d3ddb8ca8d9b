package binlog

import (
	"bytes"
	"testing"
)

func TestComRegisterSlave_writeTo(t *testing.T) {
	var buf bytes.Buffer
	var wseq uint8
	w := newWriter(&buf, &wseq)
	cmd := comRegisterSlave{
		serverID: 7,
		hostname: "replica-host",
		user:     "repl",
		password: "secret",
		port:     3306,
		masterID: 9,
	}
	if err := w.writeClose(cmd); err != nil {
		t.Fatal(err)
	}

	var rseq uint8
	r := newReader(&buf, &rseq)
	if got := r.int1(); got != COM_REGISTER_SLAVE {
		t.Fatalf("command byte: got %#x want %#x", got, COM_REGISTER_SLAVE)
	}
	if got := r.int4(); got != 7 {
		t.Fatalf("serverID: got %d want 7", got)
	}
	readString1 := func() string {
		n := r.int1()
		return r.string(int(n))
	}
	if got := readString1(); got != "replica-host" {
		t.Fatalf("hostname: got %q", got)
	}
	if got := readString1(); got != "repl" {
		t.Fatalf("user: got %q", got)
	}
	if got := readString1(); got != "secret" {
		t.Fatalf("password: got %q", got)
	}
	if got := r.int2(); got != 3306 {
		t.Fatalf("port: got %d want 3306", got)
	}
	if got := r.int4(); got != 0 {
		t.Fatalf("replication rank: got %d want 0", got)
	}
	if got := r.int4(); got != 9 {
		t.Fatalf("masterID: got %d want 9", got)
	}
	if r.err != nil {
		t.Fatal(r.err)
	}
}
