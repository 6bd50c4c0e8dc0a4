package sim

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialGenerator(t *testing.T) {
	g := NewSequentialGenerator("b")
	assert.Equal(t, "b1", g.Generate())
	assert.Equal(t, "b2", g.Generate())
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Less(t, a, b, "v7 ids sort by creation time")
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("x", "y")
	assert.Equal(t, "x", g.Generate())
	assert.Equal(t, "y", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}
