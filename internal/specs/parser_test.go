package specs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/Adithya-Monish-Kumar-K/Product-Matching-Service/pkg/errors"
)

func TestParseString(t *testing.T) {
	got, err := Parse("'Brand': 'Apple'; 'Storage Capacity':  '16 GB'; garbage 'Colour': 'Space Gray';")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"brand":            "Apple",
		"storage capacity": "16 GB",
		"colour":           "Space Gray",
	}, got)
}

func TestParseStringIgnoresUnmatched(t *testing.T) {
	got, err := Parse("no structure here 'k':'missing space';")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseNullAndEmpty(t *testing.T) {
	for _, in := range []any{nil, "", (*string)(nil)} {
		got, err := Parse(in)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestParseMaps(t *testing.T) {
	got, err := Parse(map[string]string{" Brand ": "Apple", "MODEL": "iPhone 6"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"brand": "Apple", "model": "iPhone 6"}, got)

	got, err = Parse(map[string]any{
		"Features": []any{"Bluetooth", "GPS"},
		"Year":     2016,
		"Network":  "Unlocked",
		"Empty":    nil,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"features": "Bluetooth, GPS",
		"year":     "2016",
		"network":  "Unlocked",
	}, got)
}

func TestParseInvalidKind(t *testing.T) {
	_, err := Parse(42)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInputKind)
	_, err = ParseTokens(nil, []string{"a"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInputKind)
}

func TestParseTokens(t *testing.T) {
	got, err := ParseTokens(nil, map[string]string{"Brand": "Apple Inc", "Model": "the"})
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "inc"}, got["brand"])
	assert.NotNil(t, got["model"])
	assert.Empty(t, got["model"])
}

func TestTokenizeValuesNormalisesKeys(t *testing.T) {
	got := TokenizeValues(nil, map[string]string{" Brand ": "Apple", "STORAGE": "16 GB"})
	assert.Equal(t, map[string][]string{"brand": {"apple"}, "storage": {"16", "gb"}}, got)
}
