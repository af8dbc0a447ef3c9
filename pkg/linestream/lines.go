// Package linestream reads inputs line by line as a lazy, restartable sequence.
//
// Lines may be arbitrarily long: nothing is truncated and no line-length limit
// applies, which matters for scan results that embed full HTTP responses.
package linestream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
)

// Line is one line of input without its terminator.
type Line struct {
	// Number is 1-based.
	Number int
	Text   []byte
}

var utf8BOM = []byte{0xef, 0xbb, 0xbf}

// Lines returns a sequence over the lines of src. Each range over the sequence
// opens src anew, so iteration can be restarted from the first line. The
// underlying reader is closed when the input is exhausted, when a read fails
// and when the consumer stops early.
//
// Both "\n" and "\r\n" terminate a line; a final line without a terminator is
// still yielded. A read failure is yielded once as a non-nil error, after
// which the sequence ends. Line.Text is only valid until the next iteration.
func Lines(src Source) iter.Seq2[Line, error] {
	return func(yield func(Line, error) bool) {
		rc, err := src.Open()
		if err != nil {
			yield(Line{}, err)
			return
		}
		defer rc.Close()

		br := bufio.NewReaderSize(rc, 64*1024)
		var (
			number int
			long   []byte
		)
		for {
			chunk, err := br.ReadSlice('\n')
			if errors.Is(err, bufio.ErrBufferFull) {
				// Line longer than the buffer: accumulate and keep reading.
				long = append(long, chunk...)
				continue
			}
			text := chunk
			if long != nil {
				long = append(long, chunk...)
				text = long
			}

			if len(text) > 0 {
				number++
				text = trimEOL(text)
				if number == 1 {
					text = bytes.TrimPrefix(text, utf8BOM)
				}
				if !yield(Line{Number: number, Text: text}, nil) {
					return
				}
			}
			long = nil

			if err != nil {
				if !errors.Is(err, io.EOF) {
					yield(Line{Number: number + 1}, fmt.Errorf("failed to read line %d: %w", number+1, err))
				}
				return
			}
		}
	}
}

func trimEOL(b []byte) []byte {
	b = bytes.TrimSuffix(b, []byte("\n"))
	return bytes.TrimSuffix(b, []byte("\r"))
}
