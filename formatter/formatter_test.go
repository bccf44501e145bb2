package formatter_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fluxlog/fluxlog/formatter"
)

func TestPadField(t *testing.T) {
	assert.Equal(t, "hi   ", formatter.PadField("hi", 5))
	assert.Equal(t, "hel...", formatter.PadField("hello world", 6))
	assert.Equal(t, "exact", formatter.PadField("exact", 5))
}

func TestAbbreviateTypeName(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"NoDots", "NoDots"},
		{"a.BackgroundPipeline", "a.BackgroundPipeline"},
		{"github.com.fluxlog.BackgroundPipeline", "g.c.fluxlog.BackgroundPipeline"},
		{"a.b.C", "a.b.C"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, formatter.AbbreviateTypeName(c.name), c.name)
	}
}
