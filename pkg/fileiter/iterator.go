package fileiter

import (
	"bufio"
	"bytes"
	"errors"
	"io"
)

// Iterator yields lines without their trailing newline. Next returns
// (nil, nil) at the end of input and (nil, err) when reading fails.
// The returned slice is only valid until the following call.
type Iterator interface {
	Next() ([]byte, error)
}

// MaxLineSize is the longest line returned. Longer lines are consumed and
// reported as ErrLineTooLong.
const MaxLineSize = 1024 * 1024

// ErrLineTooLong is not fatal: the next call continues with the following
// line.
var ErrLineTooLong = errors.New("line too long")

type ReaderIterator struct {
	r     *bufio.Reader
	bytes uint64
}

func NewWithReader(r io.Reader) *ReaderIterator {
	return &ReaderIterator{r: bufio.NewReaderSize(r, MaxLineSize)}
}

func (s *ReaderIterator) Next() ([]byte, error) {
	line, err := s.r.ReadSlice('\n')
	s.bytes += uint64(len(line))
	switch {
	case err == nil:
		return bytes.TrimSuffix(line[:len(line)-1], []byte{'\r'}), nil
	case errors.Is(err, bufio.ErrBufferFull):
		if err := s.discardLine(); err != nil {
			return nil, err
		}
		return nil, ErrLineTooLong
	case errors.Is(err, io.EOF):
		if len(line) == 0 {
			return nil, nil
		}
		// last line without a newline
		return bytes.TrimSuffix(line, []byte{'\r'}), nil
	}
	return nil, err
}

func (s *ReaderIterator) discardLine() error {
	for {
		chunk, err := s.r.ReadSlice('\n')
		s.bytes += uint64(len(chunk))
		switch {
		case err == nil, errors.Is(err, io.EOF):
			return nil
		case !errors.Is(err, bufio.ErrBufferFull):
			return err
		}
	}
}

// BytesRead is the amount of (decompressed) input consumed so far.
func (s *ReaderIterator) BytesRead() uint64 {
	return s.bytes
}
