package binlog

import (
	"math"
	"time"
)

// decodeBinaryRow decodes one Protocol::BinaryResultsetRow: leading 0x00,
// then a null-bitmap of ceil((N+2)/8) bytes where bit i+2 marks column i as
// NULL, then the non-NULL column values in wire order.
func decodeBinaryRow(r *reader, cols []ColumnDefinition) ([]interface{}, error) {
	r.skip(1) // leading 0x00

	bitmapLen := (len(cols) + 2 + 7) / 8
	bitmap := r.bytes(bitmapLen)
	if r.err != nil {
		return nil, r.err
	}

	row := make([]interface{}, len(cols))
	for i, cd := range cols {
		bit := i + 2
		if bitmap[bit/8]>>uint(bit%8)&1 == 1 {
			row[i] = Null{}
			continue
		}
		v, err := decodeBinaryValue(r, cd)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}
	return row, r.err
}

// decodeBinaryValue decodes one non-NULL column value of a binary-protocol
// row, per the wire conventions shared with binlog row events (§4.C8) but
// keyed off a live ColumnDefinition instead of a TableMapEvent's packed
// metadata.
func decodeBinaryValue(r *reader, cd ColumnDefinition) (interface{}, error) {
	unsigned := cd.IsUnsigned()
	switch cd.Type {
	case TypeTiny:
		if unsigned {
			return r.int1(), r.err
		}
		return int8(r.int1()), r.err
	case TypeShort, TypeYear:
		if unsigned {
			return r.int2(), r.err
		}
		return int16(r.int2()), r.err
	case TypeLong, TypeInt24:
		if unsigned {
			return r.int4(), r.err
		}
		return int32(r.int4()), r.err
	case TypeLongLong:
		if unsigned {
			return r.int8(), r.err
		}
		return int64(r.int8()), r.err
	case TypeFloat:
		return math.Float32frombits(r.int4()), r.err
	case TypeDouble:
		return math.Float64frombits(r.int8()), r.err
	case TypeDate:
		n := r.int1()
		if r.err != nil {
			return nil, r.err
		}
		if n == 0 {
			return time.Time{}, nil
		}
		year := r.int2()
		month := r.int1()
		day := r.int1()
		return time.Date(int(year), time.Month(month), int(day), 0, 0, 0, 0, time.UTC), r.err
	case TypeDateTime, TypeTimestamp:
		n := r.int1()
		if r.err != nil {
			return nil, r.err
		}
		if n == 0 {
			return time.Time{}, nil
		}
		year := r.int2()
		month := r.int1()
		day := r.int1()
		var hour, minute, second uint8
		var micro uint32
		if n >= 7 {
			hour = r.int1()
			minute = r.int1()
			second = r.int1()
		}
		if n == 11 {
			micro = r.int4()
		}
		if r.err != nil {
			return nil, r.err
		}
		return time.Date(int(year), time.Month(month), int(day),
			int(hour), int(minute), int(second), int(micro)*1000, time.UTC), nil
	case TypeTime:
		n := r.int1()
		if r.err != nil {
			return nil, r.err
		}
		if n == 0 {
			return time.Duration(0), nil
		}
		negative := r.int1()
		days := r.int4()
		hours := r.int1()
		minutes := r.int1()
		seconds := r.int1()
		var micro uint32
		if n == 12 {
			micro = r.int4()
		}
		if r.err != nil {
			return nil, r.err
		}
		d := time.Duration(days)*24*time.Hour +
			time.Duration(hours)*time.Hour +
			time.Duration(minutes)*time.Minute +
			time.Duration(seconds)*time.Second +
			time.Duration(micro)*time.Microsecond
		if negative != 0 {
			d = -d
		}
		return d, nil
	case TypeNewDecimal, TypeDecimal:
		return Decimal(r.stringN()), r.err
	case TypeBit:
		v := []byte(r.stringN())
		return bigEndian(v), r.err
	case TypeVarchar, TypeVarString, TypeString, TypeBlob, TypeTinyBlob,
		TypeMediumBlob, TypeLongBlob, TypeGeometry:
		v := r.bytes(int(r.intN()))
		if cd.Charset == 0 || cd.Charset == 63 {
			return v, r.err
		}
		return string(v), r.err
	}
	return nil, r.err
}
