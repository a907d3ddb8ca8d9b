package binlog

import (
	"bytes"
	"io"
	"io/ioutil"
	"testing"
)

func TestReader_LessThanMaxPacketSize(t *testing.T) {
	first, firstPayload := newPacket(10, 0)
	last, _ := newPacket(0, 1)
	var seq uint8
	r := newReader(io.MultiReader(
		bytes.NewReader(first),
		bytes.NewReader(last),
		bytes.NewReader(make([]byte, 10)),
	), &seq)
	got, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, firstPayload) {
		t.Log(" got: ", got)
		t.Log("want: ", firstPayload)
		t.Fatal("payload did not match")
	}
}

func TestReader_EqualToMaxPayloadSize(t *testing.T) {
	first, firstPayload := newPacket(maxPacketSize, 0)
	last, _ := newPacket(0, 1)
	var seq uint8
	r := newReader(io.MultiReader(
		bytes.NewReader(first),
		bytes.NewReader(last),
		bytes.NewReader(make([]byte, 10)),
	), &seq)
	got, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, firstPayload) {
		t.Fatal("payload did not match")
	}
}

func TestReader_MultipleOfMaxPayloadSize(t *testing.T) {
	first, firstPayload := newPacket(maxPacketSize, 0)
	second, secondPayload := newPacket(maxPacketSize, 1)
	last, _ := newPacket(0, 2)
	var seq uint8
	r := newReader(io.MultiReader(
		bytes.NewReader(first),
		bytes.NewReader(second),
		bytes.NewReader(last),
		bytes.NewReader(make([]byte, 10)),
	), &seq)
	got, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[:maxPacketSize], firstPayload) {
		t.Fatal("first payload did not match")
	}
	if !bytes.Equal(got[maxPacketSize:], secondPayload) {
		t.Fatal("second payload did not match")
	}
}

func TestReader_NotMultipleOfMaxPayloadSize(t *testing.T) {
	first, firstPayload := newPacket(maxPacketSize, 0)
	second, secondPayload := newPacket(maxPacketSize, 1)
	third, thirdPayload := newPacket(10, 2)
	last, _ := newPacket(0, 3)
	var seq uint8
	r := newReader(io.MultiReader(
		bytes.NewReader(first),
		bytes.NewReader(second),
		bytes.NewReader(third),
		bytes.NewReader(last),
		bytes.NewReader(make([]byte, 10)),
	), &seq)
	got, err := ioutil.ReadAll(r)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got[:maxPacketSize], firstPayload) {
		t.Fatal("first payload did not match")
	}
	if !bytes.Equal(got[maxPacketSize:2*maxPacketSize], secondPayload) {
		t.Fatal("second payload did not match")
	}
	if !bytes.Equal(got[2*maxPacketSize:], thirdPayload) {
		t.Fatal("third payload did not match")
	}
}

func TestReader_stringNull(t *testing.T) {
	data := append([]byte("hello"), 0)
	data = append(append(data, []byte("world")...), 0)
	packet := newPacketData(data)
	var seq uint8
	r := newReader(bytes.NewReader(packet), &seq)

	s := r.stringNull()
	if r.err != nil {
		t.Fatal(r.err)
	}
	if s != "hello" {
		t.Fatal("got", s, "want", "hello")
	}

	s = r.stringNull()
	if r.err != nil {
		t.Fatal(r.err)
	}
	if s != "world" {
		t.Fatal("got", s, "want", "world")
	}
}

func TestReader_intN(t *testing.T) {
	cases := []struct {
		name string
		in   []byte
		want uint64
	}{
		{"1-byte", []byte{0xfa}, 0xfa},
		{"2-byte", []byte{0xfc, 0x01, 0x02}, 0x0201},
		{"3-byte", []byte{0xfd, 0x01, 0x02, 0x03}, 0x030201},
		{"8-byte", []byte{0xfe, 1, 2, 3, 4, 5, 6, 7, 8}, 0x0807060504030201},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			packet := newPacketData(c.in)
			var seq uint8
			r := newReader(bytes.NewReader(packet), &seq)
			got := r.intN()
			if r.err != nil {
				t.Fatal(r.err)
			}
			if got != c.want {
				t.Fatalf("got %#x want %#x", got, c.want)
			}
		})
	}
}
