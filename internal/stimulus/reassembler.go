// Package stimulus reassembles per-port Instrumentation payloads into
// lines of text, flushing whenever a port's buffer accumulates a newline.
// This is CLI-facing convenience, not part of the core packet decoder
// (spec §1 Non-goals, §6.3).
package stimulus

import (
	"sort"
	"strings"

	"itmtrace/internal/model"
)

// Reassembler accumulates Instrumentation payloads per stimulus port and
// yields completed lines as they're flushed.
type Reassembler struct {
	buffers map[uint8]*strings.Builder
}

// New returns an empty Reassembler.
func New() *Reassembler {
	return &Reassembler{buffers: make(map[uint8]*strings.Builder)}
}

// Push appends pkt's payload to its port's buffer and returns any complete
// lines it closed off, in the order the newlines occurred.
func (r *Reassembler) Push(pkt model.Instrumentation) []Line {
	buf, ok := r.buffers[pkt.Port]
	if !ok {
		buf = &strings.Builder{}
		r.buffers[pkt.Port] = buf
	}
	buf.Write(pkt.Payload)

	var lines []Line
	for {
		text := buf.String()
		idx := strings.IndexByte(text, '\n')
		if idx < 0 {
			break
		}
		lines = append(lines, Line{Port: pkt.Port, Text: text[:idx]})
		buf.Reset()
		buf.WriteString(text[idx+1:])
	}
	return lines
}

// Line is one newline-terminated line of reassembled stimulus text from a
// single port.
type Line struct {
	Port uint8
	Text string
}

// Flush returns the unterminated tail currently buffered for every port
// that has one, ordered by port number. Call this once at EOF to avoid
// losing a final line with no trailing newline.
func (r *Reassembler) Flush() []Line {
	ports := make([]uint8, 0, len(r.buffers))
	for p := range r.buffers {
		ports = append(ports, p)
	}
	sort.Slice(ports, func(i, j int) bool { return ports[i] < ports[j] })

	var lines []Line
	for _, p := range ports {
		buf := r.buffers[p]
		if buf.Len() == 0 {
			continue
		}
		lines = append(lines, Line{Port: p, Text: buf.String()})
		buf.Reset()
	}
	return lines
}
