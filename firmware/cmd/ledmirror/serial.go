//go:build rp2040

package main

import (
	"io"
	"machine"
	"runtime"
	"time"
)

type serialIO struct {
	machine.Serialer
}

// SerialReadWriter combines io.ReadWriter with the buffered byte access of a
// machine.Serialer.
type SerialReadWriter interface {
	io.ReadWriter
	ReadByte() (byte, error)
	WriteByte(byte) error
	// Buffered returns the number of bytes currently buffered in the serial
	// device.
	Buffered() int
}

// WrapSerial wraps a machine.Serialer in an io.ReadWriter.
func WrapSerial(serial machine.Serialer) SerialReadWriter {
	return serialIO{Serialer: serial}
}

// Read reads what is buffered, up to len(b). With nothing buffered it sleeps
// briefly and returns 0, nil; io.ReadFull retries.
func (s serialIO) Read(b []byte) (int, error) {
	n := s.Buffered()
	if n == 0 {
		time.Sleep(time.Millisecond)
		return 0, nil
	}
	if n > len(b) {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		c, err := s.ReadByte()
		if err != nil {
			return i, err
		}
		b[i] = c
	}
	runtime.Gosched()
	return n, nil
}

func (s serialIO) Write(b []byte) (int, error) {
	for _, c := range b {
		if err := s.WriteByte(c); err != nil {
			return 0, err
		}
	}
	runtime.Gosched()
	return len(b), nil
}
