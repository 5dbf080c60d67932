package stimulus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"itmtrace/internal/model"
)

func TestReassemblerFlushesOnNewline(t *testing.T) {
	r := New()

	lines := r.Push(model.Instrumentation{Port: 1, Payload: []byte("hello ")})
	assert.Empty(t, lines)

	lines = r.Push(model.Instrumentation{Port: 1, Payload: []byte("world\n")})
	require.Len(t, lines, 1)
	assert.Equal(t, Line{Port: 1, Text: "hello world"}, lines[0])
}

func TestReassemblerMultipleLinesOnePush(t *testing.T) {
	r := New()

	lines := r.Push(model.Instrumentation{Port: 2, Payload: []byte("a\nb\nc")})
	require.Len(t, lines, 2)
	assert.Equal(t, "a", lines[0].Text)
	assert.Equal(t, "b", lines[1].Text)
}

func TestReassemblerKeepsPortsSeparate(t *testing.T) {
	r := New()

	r.Push(model.Instrumentation{Port: 1, Payload: []byte("one")})
	r.Push(model.Instrumentation{Port: 2, Payload: []byte("two")})

	lines1 := r.Push(model.Instrumentation{Port: 1, Payload: []byte("\n")})
	require.Len(t, lines1, 1)
	assert.Equal(t, "one", lines1[0].Text)

	lines2 := r.Push(model.Instrumentation{Port: 2, Payload: []byte("\n")})
	require.Len(t, lines2, 1)
	assert.Equal(t, "two", lines2[0].Text)
}

func TestReassemblerFlush(t *testing.T) {
	r := New()

	r.Push(model.Instrumentation{Port: 5, Payload: []byte("trailing")})
	r.Push(model.Instrumentation{Port: 1, Payload: []byte("also unterminated")})

	lines := r.Flush()
	require.Len(t, lines, 2)
	assert.Equal(t, uint8(1), lines[0].Port)
	assert.Equal(t, uint8(5), lines[1].Port)

	assert.Empty(t, r.Flush(), "Flush should drain buffers; second call finds nothing")
}
