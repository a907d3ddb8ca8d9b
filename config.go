package binlog

import (
	"math/rand"

	"github.com/relaygrove/binlog/kind"
)

// Config carries the connection and replication options a caller may set;
// no other option is recognized. Zero-value fields get the defaults
// documented below by Validate.
type Config struct {
	Host     string
	Port     uint16 // default 3306
	Username string
	Password string // may be empty
	Database string // may be empty

	ReplicaID uint32 // default: random non-zero

	BinlogFilename string
	BinlogPosition uint64 // default 4

	NonBlock         bool
	ValidateChecksum bool

	// SIDSet is the set of committed transactions sent with
	// COM_BINLOG_DUMP_GTID. That command is used when the master reports
	// GTID_MODE ON, whether or not SIDSet is set; otherwise SIDSet is unused
	// and the dump starts at BinlogFilename/BinlogPosition.
	SIDSet GTIDSet
}

// Validate fills in defaults and rejects a Config with no host. It is safe
// to call more than once; repeated calls are idempotent once defaults are
// set.
func (c *Config) Validate() error {
	if c.Host == "" {
		return kind.New(kind.ConstraintError, "config: host is required")
	}
	if c.Port == 0 {
		c.Port = 3306
	}
	if c.BinlogPosition == 0 {
		c.BinlogPosition = 4
	}
	if c.ReplicaID == 0 {
		for c.ReplicaID == 0 {
			c.ReplicaID = rand.Uint32()
		}
	}
	return nil
}
