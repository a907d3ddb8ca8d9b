package binlog

import (
	"encoding/binary"
	"fmt"
)

// SID is a GTID source identifier: the 16-byte binary form of a server UUID.
type SID [16]byte

func (s SID) String() string {
	return fmt.Sprintf("%08x-%04x-%04x-%04x-%012x", s[0:4], s[4:6], s[6:8], s[8:10], s[10:16])
}

// Interval is an inclusive range of committed GTID sequence numbers
// [Start, End]. MySQL encodes intervals on the wire as [start, end) with an
// exclusive end; GTIDSet.decode/encode convert at the boundary so callers
// only ever see the inclusive form.
type Interval struct {
	Start, End uint64
}

// GTIDSet maps each source server's SID to its non-overlapping,
// strictly-increasing set of committed-transaction intervals.
type GTIDSet map[SID][]Interval

func (gs GTIDSet) decode(r *reader) error {
	nSIDs := r.int8()
	if r.err != nil {
		return r.err
	}
	for i := uint64(0); i < nSIDs; i++ {
		var sid SID
		copy(sid[:], r.bytes(16))
		nIntervals := r.int8()
		if r.err != nil {
			return r.err
		}
		intervals := make([]Interval, nIntervals)
		prevEnd := uint64(0)
		for j := range intervals {
			start := r.int8()
			end := r.int8()
			if r.err != nil {
				return r.err
			}
			if end <= start {
				return fmt.Errorf("binlog: gtid interval for %s has end <= start", sid)
			}
			if j > 0 && start < prevEnd {
				return fmt.Errorf("binlog: gtid intervals for %s are not strictly increasing", sid)
			}
			intervals[j] = Interval{Start: start, End: end - 1}
			prevEnd = end
		}
		gs[sid] = intervals
	}
	return r.err
}

// encode renders gs in the same wire shape COM_BINLOG_DUMP_GTID and
// PreviousGtidsLogEvent use: n_sids, then per SID the 16-byte SID, the
// interval count, and each interval as [start, end) with an exclusive end.
func (gs GTIDSet) encode() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(len(gs)))
	for sid, intervals := range gs {
		buf = append(buf, sid[:]...)
		n := make([]byte, 8)
		binary.LittleEndian.PutUint64(n, uint64(len(intervals)))
		buf = append(buf, n...)
		for _, iv := range intervals {
			b := make([]byte, 16)
			binary.LittleEndian.PutUint64(b[0:8], iv.Start)
			binary.LittleEndian.PutUint64(b[8:16], iv.End+1)
			buf = append(buf, b...)
		}
	}
	return buf
}

// GtidLogEvent identifies the GTID of the transaction that follows.
//
// https://dev.mysql.com/doc/internals/en/gtid-event.html
type GtidLogEvent struct {
	CommitFlag bool
	SID        SID
	GNO        uint64
}

func (e *GtidLogEvent) decode(r *reader) error {
	e.CommitFlag = r.int1() != 0
	copy(e.SID[:], r.bytes(16))
	e.GNO = r.int8()
	return r.err
}

// AnonymousGtidLogEvent has the same wire shape as GtidLogEvent; it marks a
// transaction committed without an assigned GTID (gtid_mode=OFF or
// gtid_next=ANONYMOUS).
type AnonymousGtidLogEvent struct {
	GtidLogEvent
}

func (e *AnonymousGtidLogEvent) decode(r *reader) error {
	return e.GtidLogEvent.decode(r)
}

// PreviousGtidsLogEvent records, at the start of each binlog file, the set
// of GTIDs already committed in earlier files.
//
// https://dev.mysql.com/doc/internals/en/previous-gtids-event.html
type PreviousGtidsLogEvent struct {
	Set GTIDSet
}

func (e *PreviousGtidsLogEvent) decode(r *reader) error {
	e.Set = make(GTIDSet)
	return e.Set.decode(r)
}

// XidEvent is written whenever a transaction using a transactional storage
// engine commits; XID is the engine's commit identifier for it.
//
// https://dev.mysql.com/doc/internals/en/xid-event.html
type XidEvent struct {
	XID uint64
}

func (e *XidEvent) decode(r *reader) error {
	e.XID = r.int8()
	return r.err
}

// COM_BINLOG_DUMP_GTID requests replication starting after a GTID set
// rather than a file/position pair.
const COM_BINLOG_DUMP_GTID = 0x1e

const (
	binlogDumpNonBlock = 0x0001
	binlogThroughGTID  = 0x0004
)

// comBinlogDumpGTID is the GTID-aware COM_BINLOG_DUMP_GTID request. The
// gtid-set data block is always written, even when gtidSet is empty: some
// servers reject the command when BINLOG_THROUGH_GTID is set but the data
// block is missing, so the block is sent unconditionally rather than gated
// on the flag.
type comBinlogDumpGTID struct {
	flags          uint16
	serverID       uint32
	binlogFilename string
	binlogPos      uint64
	gtidSet        GTIDSet
}

func (e comBinlogDumpGTID) writeTo(w *writer) error {
	if err := w.int1(COM_BINLOG_DUMP_GTID); err != nil {
		return err
	}
	if err := w.int2(e.flags | binlogThroughGTID); err != nil {
		return err
	}
	if err := w.int4(e.serverID); err != nil {
		return err
	}
	if err := w.int4(uint32(len(e.binlogFilename))); err != nil {
		return err
	}
	if err := w.string(e.binlogFilename); err != nil {
		return err
	}
	if err := w.int8(e.binlogPos); err != nil {
		return err
	}
	data := e.gtidSet.encode()
	if err := w.int4(uint32(len(data))); err != nil {
		return err
	}
	_, err := w.Write(data)
	return err
}
