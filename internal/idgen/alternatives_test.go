package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFormats(t *testing.T) {
	tests := []struct {
		format string
		length int
	}{
		{"", 26},
		{FormatULID, 26},
		{FormatUUID, 36},
		{FormatKSUID, 27},
		{FormatNanoID, DefaultNanoIDSize},
		{"CUID2", DefaultCUID2Length},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			g, err := New(tt.format)
			require.NoError(t, err)

			seen := make(map[string]bool)
			for i := 0; i < 50; i++ {
				id, err := g.Generate()
				require.NoError(t, err)
				assert.Len(t, id, tt.length)
				ok, reason := g.Validate(id)
				require.True(t, ok, reason)
				assert.False(t, seen[id], "duplicate id %s", id)
				seen[id] = true
			}
		})
	}
}

func TestNewUnknownFormat(t *testing.T) {
	_, err := New("snowflake")
	assert.Error(t, err)
}

func TestAlternativeValidateRejects(t *testing.T) {
	ok, _ := NewKSUIDGenerator().Validate("short")
	assert.False(t, ok)

	nano, err := NewNanoIDGenerator(4, "ab")
	require.NoError(t, err)
	ok, reason := nano.Validate("abcd")
	assert.False(t, ok)
	assert.Contains(t, reason, "'c'")

	_, err = NewNanoIDGenerator(0, "ab")
	assert.Error(t, err)
	_, err = NewCUID2Generator(40)
	assert.Error(t, err)
}
