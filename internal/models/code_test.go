package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMakeCode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "travel-notes", MakeCode("  Travel Notes ", CategoryCodeSize))

	long := MakeCode(strings.Repeat("Щ", 64), PostCodeSize)
	assert.Len(t, long, PostCodeSize)
	assert.True(t, strings.HasPrefix(long, "shch"))

	cut := MakeCode("abcd efgh", 5)
	assert.Equal(t, "abcd", cut)

	assert.LessOrEqual(t, len(MakeCode(strings.Repeat("ж ", 16), TagCodeSize)), TagCodeSize)
}
