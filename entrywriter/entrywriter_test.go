package entrywriter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxlog/fluxlog/entrywriter"
	"github.com/fluxlog/fluxlog/internal/logger"
)

type widget struct{ Name string }

type countingWriter struct {
	enabled bool
	writes  []string
}

func (w *countingWriter) IsEnabled() bool { return w.enabled }
func (w *countingWriter) Write(e *widget) { w.writes = append(w.writes, e.Name) }

type panickingWriter struct{}

func (panickingWriter) IsEnabled() bool  { return true }
func (panickingWriter) Write(e *widget) { panic("kaboom") }

func TestMap_TryGet_SingleWriter(t *testing.T) {
	m := entrywriter.NewMap(logger.NewNoOpLog(), nil)
	w := &countingWriter{enabled: true}
	entrywriter.Register[widget](m, w)

	got, ok := entrywriter.TryGet[widget](m)
	require.True(t, ok)
	got.Write(&widget{Name: "a"})
	assert.Equal(t, []string{"a"}, w.writes)
}

func TestMap_TryGet_Missing(t *testing.T) {
	m := entrywriter.NewMap(logger.NewNoOpLog(), nil)
	_, ok := entrywriter.TryGet[widget](m)
	assert.False(t, ok)
}

func TestMap_TryGet_FanOutIsolatesPanic(t *testing.T) {
	m := entrywriter.NewMap(logger.NewNoOpLog(), nil)
	good1 := &countingWriter{enabled: true}
	good2 := &countingWriter{enabled: true}
	entrywriter.Register[widget](m, good1)
	entrywriter.Register[widget](m, panickingWriter{})
	entrywriter.Register[widget](m, good2)

	got, ok := entrywriter.TryGet[widget](m)
	require.True(t, ok)

	assert.NotPanics(t, func() { got.Write(&widget{Name: "x"}) })
	assert.Equal(t, []string{"x"}, good1.writes)
	assert.Equal(t, []string{"x"}, good2.writes)
}

func TestLogWriter_RegisterAndGet(t *testing.T) {
	lw := entrywriter.NewLogWriter("test-writer", true, logger.NewNoOpLog(), nil)
	w := &countingWriter{enabled: true}
	entrywriter.RegisterOn[widget](lw, w)

	got, ok := entrywriter.TryGetEntryWriter[widget](lw)
	require.True(t, ok)
	got.Write(&widget{Name: "hi"})
	assert.Equal(t, []string{"hi"}, w.writes)
	assert.True(t, lw.IsSynchronized())
}

func TestSynchronizing_SerializesWrites(t *testing.T) {
	w := &countingWriter{enabled: true}
	s := entrywriter.Sync[widget](w)
	assert.True(t, s.IsSynchronized())
	s.Write(&widget{Name: "a"})
	s.Write(&widget{Name: "b"})
	assert.Equal(t, []string{"a", "b"}, w.writes)
}
