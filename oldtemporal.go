package binlog

import "time"

// Pre-8.0 (non *2) temporal column decoders. MySQL replaced these with
// TIMESTAMP2/DATETIME2/TIME2 in 5.6.4+; the new formats are a MySQL 8.0-era
// concern and out of scope here, so only the original packed forms are
// implemented.

// decodeOldTimestamp decodes the 4-byte unix-seconds TIMESTAMP column value.
func decodeOldTimestamp(r *reader) time.Time {
	sec := r.int4()
	if r.err != nil {
		return time.Time{}
	}
	return time.Unix(int64(sec), 0).UTC()
}

// decodeOldDateTime decodes the 8-byte packed DATETIME column value:
// YYYYMMDDHHMMSS encoded as a single base-10 integer.
func decodeOldDateTime(r *reader) time.Time {
	v := r.int8()
	if r.err != nil {
		return time.Time{}
	}
	if v == 0 {
		return time.Time{}
	}
	d := v / 1000000
	t := v % 1000000
	year := int(d / 10000)
	month := int(d / 100 % 100)
	day := int(d % 100)
	hour := int(t / 10000)
	min := int(t / 100 % 100)
	sec := int(t % 100)
	return time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)
}

// decodeOldTime decodes the 3-byte packed TIME column value: HHMMSS encoded
// as a signed base-10 integer (HH can exceed 24, e.g. 838:59:59 max).
func decodeOldTime(r *reader) time.Duration {
	raw := r.int3()
	if r.err != nil {
		return 0
	}
	v := int32(raw)
	if raw&0x00800000 != 0 {
		v = int32(raw | 0xFF000000)
	}
	neg := v < 0
	if neg {
		v = -v
	}
	hour := v / 10000
	min := v / 100 % 100
	sec := v % 100
	d := time.Duration(hour)*time.Hour + time.Duration(min)*time.Minute + time.Duration(sec)*time.Second
	if neg {
		d = -d
	}
	return d
}

// encodeOldTime encodes a time.Duration into the same packed 3-byte HHMMSS
// form decodeOldTime consumes: it returns the magnitude as the integer
// HH*10000+MM*100+SS and the sign separately. Sub-second precision is
// dropped.
func encodeOldTime(d time.Duration) (packed uint32, negative bool) {
	negative = d < 0
	if negative {
		d = -d
	}
	hour := int64(d / time.Hour)
	d -= time.Duration(hour) * time.Hour
	min := int64(d / time.Minute)
	d -= time.Duration(min) * time.Minute
	sec := int64(d / time.Second)
	packed = uint32(hour*10000 + min*100 + sec)
	return
}
