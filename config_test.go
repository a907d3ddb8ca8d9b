package binlog

import "testing"

func TestConfig_Validate(t *testing.T) {
	t.Run("missing host", func(t *testing.T) {
		c := &Config{}
		if err := c.Validate(); err == nil {
			t.Fatal("expected error for missing host")
		}
	})

	t.Run("defaults", func(t *testing.T) {
		c := &Config{Host: "127.0.0.1"}
		if err := c.Validate(); err != nil {
			t.Fatal(err)
		}
		if c.Port != 3306 {
			t.Errorf("Port: got %d want 3306", c.Port)
		}
		if c.BinlogPosition != 4 {
			t.Errorf("BinlogPosition: got %d want 4", c.BinlogPosition)
		}
		if c.ReplicaID == 0 {
			t.Error("ReplicaID: want non-zero random default")
		}
	})

	t.Run("explicit values preserved", func(t *testing.T) {
		c := &Config{Host: "db.internal", Port: 3307, BinlogPosition: 154, ReplicaID: 42}
		if err := c.Validate(); err != nil {
			t.Fatal(err)
		}
		if c.Port != 3307 {
			t.Errorf("Port: got %d want 3307", c.Port)
		}
		if c.BinlogPosition != 154 {
			t.Errorf("BinlogPosition: got %d want 154", c.BinlogPosition)
		}
		if c.ReplicaID != 42 {
			t.Errorf("ReplicaID: got %d want 42", c.ReplicaID)
		}
	})
}
