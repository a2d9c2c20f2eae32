package textline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInsertAndContext(t *testing.T) {
	l := New()
	assert.True(t, l.IsEmpty())

	l.Insert("helo")
	l.MoveCursor(-1)
	l.Insert("l")

	assert.Equal(t, "hello", l.String())
	assert.Equal(t, "hell", l.Context())
	assert.Equal(t, 4, l.Cursor())
	assert.True(t, l.IsValid())
}

func TestDeleteLeftRight(t *testing.T) {
	l := New()
	l.Insert("straße")
	l.MoveCursor(-2)
	l.DeleteLeft(1)
	assert.Equal(t, "strße", l.String())
	assert.Equal(t, 3, l.Cursor())

	l.DeleteRight(1)
	assert.Equal(t, "stre", l.String())

	l.DeleteRight(10)
	assert.Equal(t, "str", l.String())
	assert.True(t, l.IsValid())
}

func TestCursorLeavingTextInvalidates(t *testing.T) {
	l := New()
	l.Insert("ab")
	l.MoveCursor(1)
	assert.False(t, l.IsValid())
	assert.Equal(t, 2, l.Cursor())

	l.Reset()
	assert.True(t, l.IsValid())
	l.DeleteLeft(1)
	assert.False(t, l.IsValid())
	assert.Equal(t, 0, l.Cursor())
	assert.True(t, l.IsEmpty())
}

func TestIsPrintable(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"a", true},
		{" ", true},
		{"\t", true},
		{"é", true},
		{"\n", false},
		{"", false},
		{"ab", false},
		{"\x1b", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsPrintable(tt.in), "IsPrintable(%q)", tt.in)
	}
}
