package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.Equal(t, uuid.RFC4122, parsed.Variant())
}

func TestRandomColor(t *testing.T) {
	for range 100 {
		assert.Contains(t, Palette, RandomColor())
	}
}

func TestColorFor(t *testing.T) {
	c := ColorFor("5b1c6a2e-0000-4000-8000-000000000001")
	assert.Contains(t, Palette, c)
	assert.Equal(t, c, ColorFor("5b1c6a2e-0000-4000-8000-000000000001"))
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name  string
		first string
		last  string
		guest bool
		want  string
	}{
		{"both names", "anna", "berg", false, "AB"},
		{"first only", "anna", "", false, "A"},
		{"last only", "", "berg", false, "B"},
		{"guest", "guest", "user", true, "G"},
		{"nothing", "", "", false, "??"},
		{"trims", "  zoe", " kim", false, "ZK"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Initials(tt.first, tt.last, tt.guest))
		})
	}
}
