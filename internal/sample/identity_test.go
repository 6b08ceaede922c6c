package sample

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFilename(t *testing.T) {
	t.Parallel()

	t.Run("well formed", func(t *testing.T) {
		t.Parallel()
		id, ok := ParseFilename("Pachymetry_2023_05_1234_L_001.csv")
		require.True(t, ok)
		assert.Equal(t, "Pachymetry_2023_05_1234", id.Base)
		assert.Equal(t, "L", id.Eye)
		assert.Equal(t, 1, id.Sequence)
		assert.Equal(t, "Pachymetry_2023_05_1234_L", id.Key())
	})

	t.Run("sequence digits filtered from suffix", func(t *testing.T) {
		t.Parallel()
		id, ok := ParseFilename("Pachymetry_2023_05_1234_R_012.csv")
		require.True(t, ok)
		assert.Equal(t, "R", id.Eye)
		assert.Equal(t, 12, id.Sequence)
	})

	t.Run("extra trailing fields ignored", func(t *testing.T) {
		t.Parallel()
		id, ok := ParseFilename("A_B_C_D_L_003_extra_fields.csv")
		require.True(t, ok)
		assert.Equal(t, "A_B_C_D", id.Base)
		assert.Equal(t, 3, id.Sequence)
	})

	t.Run("too few fields", func(t *testing.T) {
		t.Parallel()
		_, ok := ParseFilename("short_name.csv")
		assert.False(t, ok)
		_, ok = ParseFilename("A_B_C_D_L.csv")
		assert.False(t, ok)
	})

	t.Run("sequence without digits", func(t *testing.T) {
		t.Parallel()
		_, ok := ParseFilename("A_B_C_D_L_nodigits.csv")
		assert.False(t, ok)
	})

	t.Run("leading zeros compare as integers", func(t *testing.T) {
		t.Parallel()
		a, ok := ParseFilename("A_B_C_D_L_002.csv")
		require.True(t, ok)
		b, ok := ParseFilename("A_B_C_D_L_010.csv")
		require.True(t, ok)
		assert.Less(t, a.Sequence, b.Sequence)
	})
}
