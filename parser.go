package binlog

import "fmt"

// nextEvent decodes one binlog event (header plus body) from r. checksum is
// the length in bytes of the trailing checksum MySQL appends to each event
// (0 or 4); it is used to exclude the checksum trailer from the body's
// read limit so text/bytes decoders (stringEOF, bytesEOF) don't swallow it.
//
// A FormatDescriptionEvent opens every binlog file (on a dump stream it
// follows the initial Rotate event); it computes r.checksum itself from the
// self-referential event-type-header-length table, superseding the caller's
// guess for every event that follows.
func nextEvent(r *reader, checksum int) (Event, error) {
	h := EventHeader{}
	if err := h.decode(r); err != nil {
		return Event{}, err
	}
	bodyLen := int(h.EventSize) - 19
	if h.EventType != FORMAT_DESCRIPTION_EVENT {
		bodyLen -= checksum
	}
	if bodyLen < 0 {
		return Event{}, fmt.Errorf("binlog: %s event: bad eventSize %d", h.EventType, h.EventSize)
	}
	r.limit = bodyLen

	var data interface{}
	switch h.EventType {
	case FORMAT_DESCRIPTION_EVENT:
		fde := FormatDescriptionEvent{}
		if err := fde.decode(r, h.EventSize); err != nil {
			return Event{}, err
		}
		r.fde = fde
		data = fde
	case ROTATE_EVENT:
		e := RotateEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		r.binlogFile, r.binlogPos = e.NextBinlog, uint32(e.Position)
		data = e
	case QUERY_EVENT:
		e := QueryEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case STOP_EVENT:
		data = StopEvent{}
	case INTVAR_EVENT:
		e := IntVarEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case RAND_EVENT:
		e := RandEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case USER_VAR_EVENT:
		e := UserVarEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case XID_EVENT:
		e := XidEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case TABLE_MAP_EVENT:
		e := TableMapEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		r.tmeCache[e.tableID] = &e
		data = e
	case WRITE_ROWS_EVENTv0, WRITE_ROWS_EVENTv1, WRITE_ROWS_EVENTv2,
		UPDATE_ROWS_EVENTv0, UPDATE_ROWS_EVENTv1, UPDATE_ROWS_EVENTv2,
		DELETE_ROWS_EVENTv0, DELETE_ROWS_EVENTv1, DELETE_ROWS_EVENTv2:
		e := RowsEvent{}
		if err := e.decode(r, h.EventType); err != nil {
			return Event{}, err
		}
		r.re = e
		data = e
	case ROWS_QUERY_EVENT:
		e := RowsQueryEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case INCIDENT_EVENT:
		e := IncidentEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case HEARTBEAT_EVENT:
		data = HeartbeatEvent{}
	case IGNORABLE_EVENT:
		data = ignorableEvent{}
	case GTID_EVENT:
		e := GtidLogEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case ANONYMOUS_GTID_EVENT:
		e := AnonymousGtidLogEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case PREVIOUS_GTIDS_EVENT:
		e := PreviousGtidsLogEvent{}
		if err := e.decode(r); err != nil {
			return Event{}, err
		}
		data = e
	case START_EVENT_V3:
		data = startEventV3{}
	case LOAD_EVENT:
		data = loadEvent{}
	case SLAVE_EVENT:
		data = slaveEvent{}
	case CREATE_FILE_EVENT:
		data = createFileEvent{}
	case APPEND_BLOCK_EVENT:
		data = appendBlockEvent{}
	case EXEC_LOAD_EVENT:
		data = execLoadEvent{}
	case DELETE_FILE_EVENT:
		data = deleteFileEvent{}
	case NEW_LOAD_EVENT:
		data = newLoadEvent{}
	case BEGIN_LOAD_QUERY_EVENT:
		data = beginLoadQueryEvent{}
	case EXECUTE_LOAD_QUERY_EVENT:
		data = executeLoadQueryEvent{}
	default:
		data = UnknownEvent{}
	}
	if r.err != nil {
		return Event{}, r.err
	}
	return Event{Header: h, Data: data}, nil
}
