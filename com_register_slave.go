package binlog

// COM_REGISTER_SLAVE registers the connection as a replica with the master,
// so the master can report it in SHOW SLAVE HOSTS and target it with
// COM_BINLOG_DUMP/COM_BINLOG_DUMP_GTID.
//
// https://dev.mysql.com/doc/internals/en/com-register-slave.html
const COM_REGISTER_SLAVE = 0x15

type comRegisterSlave struct {
	serverID uint32 // replica-id this connection registers as
	hostname string
	user     string
	password string
	port     uint16
	masterID uint32 // server-id of the master being replicated from
}

func (e comRegisterSlave) writeTo(w *writer) error {
	if err := w.int1(COM_REGISTER_SLAVE); err != nil {
		return err
	}
	if err := w.int4(e.serverID); err != nil {
		return err
	}
	if err := w.string1(e.hostname); err != nil {
		return err
	}
	if err := w.string1(e.user); err != nil {
		return err
	}
	if err := w.string1(e.password); err != nil {
		return err
	}
	if err := w.int2(e.port); err != nil {
		return err
	}
	if err := w.int4(0); err != nil { // replication rank, unused by the server
		return err
	}
	return w.int4(e.masterID)
}
