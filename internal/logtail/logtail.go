package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// DefaultWindow bounds how many trailing bytes Read looks at.
const DefaultWindow int64 = 256 * 1024

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines and no error.
func Read(path string, maxLines int) ([]string, error) {
	return ReadWindow(path, maxLines, DefaultWindow)
}

// ReadWindow is Read with an explicit byte window. Only the last window bytes
// are examined; a line cut by the window start is dropped.
func ReadWindow(path string, maxLines int, window int64) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat log: %w", err)
	}
	start := int64(0)
	if window > 0 && info.Size() > window {
		start = info.Size() - window
	}
	if _, err := file.Seek(start, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek log: %w", err)
	}

	reader := bufio.NewReader(file)
	if start > 0 {
		// Partial first line.
		if _, err := reader.ReadString('\n'); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil
			}
			return nil, fmt.Errorf("read log: %w", err)
		}
	}

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Segment is a run of text that either is or is not an occurrence of the
// marker.
type Segment struct {
	Text   string
	Marker bool
}

// Contains reports whether line holds the marker.
func Contains(line string, marker []byte) bool {
	if len(marker) == 0 {
		return false
	}
	return strings.Contains(line, string(marker))
}

// Split breaks line into alternating plain and marker segments so a renderer
// can style each occurrence. Empty segments are omitted.
func Split(line string, marker []byte) []Segment {
	if line == "" {
		return nil
	}
	if len(marker) == 0 {
		return []Segment{{Text: line}}
	}
	m := string(marker)
	var out []Segment
	rest := line
	for {
		i := strings.Index(rest, m)
		if i < 0 {
			if rest != "" {
				out = append(out, Segment{Text: rest})
			}
			return out
		}
		if i > 0 {
			out = append(out, Segment{Text: rest[:i]})
		}
		out = append(out, Segment{Text: m, Marker: true})
		rest = rest[i+len(m):]
	}
}
