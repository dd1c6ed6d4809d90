// Package srec writes Motorola S-record object files.
package srec

import (
	"fmt"
	"io"
)

// RECORD_BYTES is the most data bytes in one record.
const RECORD_BYTES = 16

// Writer buffers contiguous object code into S1, S2 or S3 records.
type Writer struct {
	w      io.Writer
	addr   uint32 // Address of data[0].
	data   []byte
	widest byte // Widest data record type written.
	err    error
}

// NewWriter writes the S0 header record to w.
func NewWriter(w io.Writer, header string) *Writer {
	sw := &Writer{w: w, widest: '1'}
	sw.record('0', 2, 0, []byte(header))
	return sw
}

// checksum is the ones' complement of the byte sum.
func checksum(bytes []byte) byte {
	var sum byte
	for _, b := range bytes {
		sum += b
	}
	return ^sum
}

// record writes one record with an address of width bytes.
func (sw *Writer) record(kind byte, width int, addr uint32, data []byte) {
	if sw.err != nil {
		return
	}
	body := []byte{byte(width + len(data) + 1)}
	for n := width - 1; n >= 0; n-- {
		body = append(body, byte(addr>>(8*n)))
	}
	body = append(body, data...)

	line := make([]byte, 0, 4+2*len(body))
	line = append(line, 'S', kind)
	for _, b := range body {
		line = fmt.Appendf(line, "%02X", b)
	}
	line = fmt.Appendf(line, "%02X\n", checksum(body))
	_, sw.err = sw.w.Write(line)
}

// width returns the record type and address width for an address.
func width(addr uint32) (kind byte, bytes int) {
	switch {
	case addr <= 0xffff:
		return '1', 2
	case addr <= 0xffffff:
		return '2', 3
	}
	return '3', 4
}

// Flush writes any buffered data.
func (sw *Writer) Flush() error {
	if len(sw.data) > 0 {
		kind, bytes := width(sw.addr + uint32(len(sw.data)) - 1)
		if kind > sw.widest {
			sw.widest = kind
		}
		sw.record(kind, bytes, sw.addr, sw.data)
		sw.data = sw.data[:0]
	}
	return sw.err
}

// Write adds object code at addr. Data continuing the buffered record is
// merged into it.
func (sw *Writer) Write(addr uint32, data ...byte) error {
	for _, b := range data {
		if len(sw.data) > 0 && (sw.addr+uint32(len(sw.data)) != addr || len(sw.data) == RECORD_BYTES) {
			sw.Flush()
		}
		if len(sw.data) == 0 {
			sw.addr = addr
		}
		sw.data = append(sw.data, b)
		addr++
	}
	return sw.err
}

// Close flushes the data and writes the termination record matching the
// widest data record.
func (sw *Writer) Close(start uint32) error {
	sw.Flush()
	switch sw.widest {
	case '3':
		sw.record('7', 4, start, nil)
	case '2':
		sw.record('8', 3, start, nil)
	default:
		sw.record('9', 2, start, nil)
	}
	return sw.err
}
