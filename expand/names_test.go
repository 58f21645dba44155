package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchNames(t *testing.T) {
	available := []string{"DiseaseEnum", "MembraneEnum", "MembraneCodeEnum", "StaticEnum"}

	tests := []struct {
		name     string
		patterns []string
		want     []string
	}{
		{
			name:     "empty selects everything",
			patterns: nil,
			want:     available,
		},
		{
			name:     "exact name",
			patterns: []string{"StaticEnum"},
			want:     []string{"StaticEnum"},
		},
		{
			name:     "glob",
			patterns: []string{"Membrane*"},
			want:     []string{"MembraneEnum", "MembraneCodeEnum"},
		},
		{
			name:     "overlapping patterns deduplicate",
			patterns: []string{"Membrane*", "MembraneEnum"},
			want:     []string{"MembraneEnum", "MembraneCodeEnum"},
		},
		{
			name:     "order follows the document, not the patterns",
			patterns: []string{"StaticEnum", "DiseaseEnum"},
			want:     []string{"DiseaseEnum", "StaticEnum"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MatchNames(available, tt.patterns)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMatchNamesErrors(t *testing.T) {
	available := []string{"MembraneEnum"}

	t.Run("unknown exact name", func(t *testing.T) {
		_, err := MatchNames(available, []string{"NoSuchEnum"})
		require.Error(t, err)
		assert.True(t, IsUnknownReference(err))
	})

	t.Run("glob matching nothing", func(t *testing.T) {
		_, err := MatchNames(available, []string{"Disease*"})
		assert.Error(t, err)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := MatchNames(available, []string{"[unclosed"})
		assert.Error(t, err)
	})
}
