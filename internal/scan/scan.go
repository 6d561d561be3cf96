package scan

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

// DefaultChunkSize is the read buffer size used when none is configured.
const DefaultChunkSize = 64 * 1024

// DefaultMarker is the structured log-level field written by the monitored
// JSON log. Its presence means a warning or error entry was appended.
var DefaultMarker = []byte(`"logger":`)

// ErrEmptyMarker is returned when a scanner is built without a marker.
var ErrEmptyMarker = errors.New("marker is empty")

// Result describes a single range scan.
type Result struct {
	Found   bool
	Scanned uint64 // bytes consumed from the range
	Err     error  // seek or read failure; nil when data simply ran out
}

// Scanner reports whether a marker occurs inside a byte range, including
// occurrences split across read chunks.
type Scanner struct {
	marker    []byte
	chunkSize int
}

// New builds a scanner for marker. A chunkSize of zero or less selects
// DefaultChunkSize.
func New(marker []byte, chunkSize int) (*Scanner, error) {
	if len(marker) == 0 {
		return nil, ErrEmptyMarker
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	return &Scanner{
		marker:    bytes.Clone(marker),
		chunkSize: chunkSize,
	}, nil
}

// Default returns a scanner for DefaultMarker with DefaultChunkSize.
func Default() *Scanner {
	s, _ := New(DefaultMarker, DefaultChunkSize)
	return s
}

// Marker returns a copy of the marker.
func (s *Scanner) Marker() []byte {
	return bytes.Clone(s.marker)
}

// ScanRange reports whether the marker occurs in bytes [begin, end) of r.
func (s *Scanner) ScanRange(r io.ReadSeeker, begin, end uint64) bool {
	return s.Scan(r, begin, end).Found
}

// Scan searches bytes [begin, end) of r. An empty or inverted range returns
// immediately without touching r. A premature EOF ends the scan without an
// error; the caller sees how far it got through Scanned.
func (s *Scanner) Scan(r io.ReadSeeker, begin, end uint64) Result {
	if end <= begin {
		return Result{}
	}
	if _, err := r.Seek(int64(begin), io.SeekStart); err != nil {
		return Result{Err: fmt.Errorf("seek to %d: %w", begin, err)}
	}

	keep := len(s.marker) - 1
	buf := make([]byte, s.chunkSize)
	window := make([]byte, 0, keep+s.chunkSize)
	overlap := make([]byte, 0, keep)

	var res Result
	remaining := end - begin
	for remaining > 0 {
		toRead := uint64(len(buf))
		if remaining < toRead {
			toRead = remaining
		}
		n, err := r.Read(buf[:toRead])
		if n > 0 {
			window = append(window[:0], overlap...)
			window = append(window, buf[:n]...)
			res.Scanned += uint64(n)
			if bytes.Contains(window, s.marker) {
				res.Found = true
				return res
			}
			if len(window) > keep {
				overlap = append(overlap[:0], window[len(window)-keep:]...)
			} else {
				overlap = append(overlap[:0], window...)
			}
			remaining -= uint64(n)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return res
			}
			res.Err = fmt.Errorf("read at %d: %w", begin+res.Scanned, err)
			return res
		}
		if n == 0 {
			return res
		}
	}
	return res
}
