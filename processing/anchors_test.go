package processing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateReferenceAnchors_Default(t *testing.T) {
	anchors, err := GenerateReferenceAnchors(AnchorConfig{
		BaseSize: 16,
		Ratios:   []float32{0.5, 1, 2},
		Scales:   []float32{8, 16, 32},
	})
	require.NoError(t, err)

	expected := []Box{
		{-84, -40, 99, 55},
		{-176, -88, 191, 103},
		{-360, -184, 375, 199},
		{-56, -56, 71, 71},
		{-120, -120, 135, 135},
		{-248, -248, 263, 263},
		{-36, -80, 51, 95},
		{-80, -168, 95, 183},
		{-168, -344, 183, 359},
	}
	assert.Equal(t, expected, anchors)
}

func TestGenerateReferenceAnchors_UnitScale(t *testing.T) {
	anchors, err := GenerateReferenceAnchors(AnchorConfig{
		BaseSize: 16,
		Ratios:   []float32{1},
		Scales:   []float32{1},
	})
	require.NoError(t, err)
	require.Len(t, anchors, 1)
	assert.Equal(t, NewBox(0, 0, 15, 15), anchors[0])
}

func TestGenerateReferenceAnchors_Deterministic(t *testing.T) {
	cfg := AnchorConfig{BaseSize: 8, Ratios: []float32{0.5, 2}, Scales: []float32{2, 4, 6}}
	first, err := GenerateReferenceAnchors(cfg)
	require.NoError(t, err)
	second, err := GenerateReferenceAnchors(cfg)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, first, 6)
}

func TestGenerateReferenceAnchors_Invalid(t *testing.T) {
	_, err := GenerateReferenceAnchors(AnchorConfig{BaseSize: 0, Ratios: []float32{1}, Scales: []float32{1}})
	assert.Error(t, err)

	_, err = GenerateReferenceAnchors(AnchorConfig{BaseSize: 16, Scales: []float32{1}})
	assert.Error(t, err)
}

func TestGenerateReferenceAnchors_KeepsDegenerate(t *testing.T) {
	anchors, err := GenerateReferenceAnchors(AnchorConfig{
		BaseSize: 16,
		Ratios:   []float32{1, 0.0001},
		Scales:   []float32{1},
	})
	require.NoError(t, err)
	require.Len(t, anchors, 2)
	assert.False(t, anchors[0].IsDegenerate())
	assert.True(t, anchors[1].IsDegenerate())
	assert.Equal(t, float32(0), anchors[1].Area())
}
