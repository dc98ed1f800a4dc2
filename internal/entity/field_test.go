package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlice_CountsCharacters(t *testing.T) {
	line := "AÇÃO-É"
	assert.Equal(t, "A", Slice(line, 1, 1))
	assert.Equal(t, "ÇÃO", Slice(line, 2, 4))
	assert.Equal(t, "É", Slice(line, 6, 6))
	assert.Equal(t, "AÇÃO-É", Slice(line, 1, 6))
	assert.Equal(t, "", Slice(line, 1, 7))
	assert.Equal(t, "", Slice(line, 0, 2))
	assert.Equal(t, "", Slice(line, 4, 3))
	assert.Equal(t, "", Slice("", 1, 1))
}

func TestPositionCheck_AfterAccent(t *testing.T) {
	line := "JOSÉ3P"
	assert.True(t, PositionCheck{Pos: 5, Value: "3"}.Matches(line))
	assert.True(t, PositionCheck{Pos: 6, Value: "P"}.Matches(line))
	assert.True(t, PositionCheck{Pos: 4, Value: "É3"}.Matches(line))
	assert.False(t, PositionCheck{Pos: 6, Value: "PQ"}.Matches(line))
	assert.False(t, PositionCheck{Pos: 0, Value: "J"}.Matches(line))
}
