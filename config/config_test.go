package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalizationParams_Defaults(t *testing.T) {
	p, err := NewLocalizationParams([]byte(`labels: [person, car]`), DefaultImageFullParams)
	require.NoError(t, err)

	assert.Equal(t, 256, p.RoisPerImage)
	assert.Equal(t, 16, p.BaseSize)
	assert.InDelta(t, 0.0625, p.ScalingFactor, 1e-9)
	assert.Equal(t, []float32{0.5, 1, 2}, p.Ratios)
	assert.Equal(t, []float32{8, 16, 32}, p.Scales)
	assert.Equal(t, OutputTypeFloat, p.TypeString)
	assert.Equal(t, 64, p.MaxGTBoxes)
	assert.Equal(t, 600, p.MinSize)
	assert.Equal(t, 1000, p.MaxSize)

	// floor(1000 / 16) = 62 cells per side
	assert.Equal(t, 62, p.FeatureSize())
	assert.Equal(t, 9*62*62, p.TotalAnchors())
	assert.InDelta(t, 16.0, p.Stride(), 1e-6)

	idx, ok := p.LabelIndex("car")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)
	_, ok = p.LabelIndex("bicycle")
	assert.False(t, ok)
	assert.Equal(t, []string{"person", "car"}, p.LabelNames())
}

func TestNewLocalizationParams_Overrides(t *testing.T) {
	raw := []byte(`{"labels": ["a"], "rois_per_image": 128, "ratios": [1], "scales": [16],
  "base_size": 16, "scaling_factor": 1.0, "type_string": "half", "allowed_border": 4}`)
	p, err := NewLocalizationParams(raw, &ImageFullParams{MinSize: 32, MaxSize: 32})
	require.NoError(t, err)

	assert.Equal(t, 128, p.RoisPerImage)
	assert.Equal(t, 32, p.FeatureSize())
	assert.Equal(t, 1024, p.TotalAnchors())
	assert.Equal(t, OutputTypeHalf, p.TypeString)
	assert.Equal(t, 4, p.AllowedBorder)
}

func TestNewLocalizationParams_CollectsEveryViolation(t *testing.T) {
	raw := []byte(`
negative_overlap: 1.5
foreground_fraction: -0.1
type_string: int128
ratios: []
bogus: 1
`)
	_, err := NewLocalizationParams(raw, DefaultImageFullParams)
	require.Error(t, err)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Violations, 6)
	assert.Contains(t, err.Error(), "labels: required field is missing")
	assert.Contains(t, err.Error(), "negative_overlap")
	assert.Contains(t, err.Error(), "foreground_fraction")
	assert.Contains(t, err.Error(), "type_string")
	assert.Contains(t, err.Error(), "ratios")
	assert.Contains(t, err.Error(), "bogus: unknown field")
}

func TestNewLocalizationParams_CrossFieldRules(t *testing.T) {
	_, err := NewLocalizationParams([]byte(`
labels: [a]
negative_overlap: 0.8
positive_overlap: 0.5
`), DefaultImageFullParams)
	assert.ErrorContains(t, err, "exceeds positive_overlap")

	_, err = NewLocalizationParams([]byte(`
labels: [a]
scaling_factor: 0.001
`), &ImageFullParams{MinSize: 100, MaxSize: 100})
	assert.ErrorContains(t, err, "empty feature grid")

	_, err = NewLocalizationParams([]byte(`labels: [a, a]`), DefaultImageFullParams)
	assert.ErrorContains(t, err, "duplicate label")

	_, err = NewLocalizationParams([]byte(`labels: [a]`), nil)
	assert.ErrorContains(t, err, "image_full configuration is required")
}

func TestNewLocalizationParams_CrossFieldRulesWithOtherViolations(t *testing.T) {
	_, err := NewLocalizationParams([]byte(`
negative_overlap: 0.8
positive_overlap: 0.5
`), DefaultImageFullParams)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, []string{
		"labels: required field is missing",
		"negative_overlap: 0.8 exceeds positive_overlap 0.5",
	}, cfgErr.Violations)

	_, err = NewLocalizationParams([]byte(`
rois_per_image: 0
scaling_factor: 0.001
`), &ImageFullParams{MinSize: 100, MaxSize: 100})
	require.ErrorAs(t, err, &cfgErr)
	assert.Len(t, cfgErr.Violations, 3)
	assert.Contains(t, err.Error(), "rois_per_image")
	assert.Contains(t, err.Error(), "labels: required field is missing")
	assert.Contains(t, err.Error(), "empty feature grid")
}

func TestNewLocalizationParams_MalformedDocument(t *testing.T) {
	_, err := NewLocalizationParams([]byte(`labels: [a`), DefaultImageFullParams)
	assert.ErrorContains(t, err, "malformed document")

	_, err = NewLocalizationParams([]byte(`- a`), DefaultImageFullParams)
	assert.ErrorContains(t, err, "document must be a mapping")

	_, err = NewLocalizationParams([]byte(`rois_per_image: many`), DefaultImageFullParams)
	assert.ErrorContains(t, err, "rois_per_image")
}

func TestNewImageFullParams(t *testing.T) {
	p, err := NewImageFullParams([]byte(`{"min_size": 600, "max_size": 1000}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultImageFullParams, p)

	_, err = NewImageFullParams([]byte(`min_size: 600`))
	assert.ErrorContains(t, err, "max_size: required field is missing")

	_, err = NewImageFullParams([]byte(`{"min_size": 800, "max_size": 600}`))
	assert.ErrorContains(t, err, "exceeds max_size")
}
