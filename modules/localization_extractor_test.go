package modules

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/processing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testObject struct {
	name      string
	box       processing.Box
	difficult bool
}

func newTestParams(t *testing.T, raw string, size int) *config.LocalizationParams {
	t.Helper()
	p, err := config.NewLocalizationParams([]byte(raw), &config.ImageFullParams{MinSize: size, MaxSize: size})
	require.NoError(t, err)
	return p
}

func annotationJSON(t *testing.T, width, height int, objects ...testObject) []byte {
	t.Helper()
	objs := make([]map[string]any, 0, len(objects))
	for _, o := range objects {
		objs = append(objs, map[string]any{
			"name":      o.name,
			"difficult": o.difficult,
			"truncated": false,
			"bndbox": map[string]float32{
				"xmin": o.box.X1, "ymin": o.box.Y1, "xmax": o.box.X2, "ymax": o.box.Y2,
			},
		})
	}
	raw, err := json.Marshal(map[string]any{
		"object": objs,
		"size":   map[string]int{"width": width, "height": height, "depth": 3},
	})
	require.NoError(t, err)
	return raw
}

func TestLocalizationExtractor_Extract(t *testing.T) {
	cfg := newTestParams(t, `labels: [person, car]`, 320)
	extractor := NewLocalizationExtractor(cfg)

	decoded, err := extractor.Extract(annotationJSON(t, 500, 375,
		testObject{name: "car", box: processing.NewBox(10, 20, 110, 220)},
		testObject{name: "person", box: processing.NewBox(0, 0, 49, 99), difficult: true},
	))
	require.NoError(t, err)
	require.NotNil(t, decoded)

	assert.Equal(t, 500, decoded.Width)
	assert.Equal(t, 375, decoded.Height)
	assert.Equal(t, 3, decoded.Depth)
	assert.False(t, decoded.Truncated)
	require.Len(t, decoded.Boxes, 2)
	assert.Equal(t, processing.NewBox(10, 20, 110, 220), decoded.Boxes[0].Box)
	assert.Equal(t, 1, decoded.Boxes[0].Label)
	assert.Equal(t, 0, decoded.Boxes[1].Label)
	assert.True(t, decoded.Boxes[1].Difficult)
	assert.Nil(t, decoded.Labels)
}

func TestLocalizationExtractor_DecodeFailures(t *testing.T) {
	cfg := newTestParams(t, `labels: [person]`, 320)
	extractor := NewLocalizationExtractor(cfg)

	cases := map[string][]byte{
		"malformed":     []byte(`{"object": [`),
		"missing size":  []byte(`{"object": []}`),
		"zero size":     []byte(`{"object": [], "size": {"width": 0, "height": 10}}`),
		"unknown label": annotationJSON(t, 100, 100, testObject{name: "dog", box: processing.NewBox(0, 0, 5, 5)}),
		"inverted box":  annotationJSON(t, 100, 100, testObject{name: "person", box: processing.NewBox(50, 0, 5, 5)}),
		"missing coord": []byte(`{"object": [{"name": "person", "bndbox": {"xmin": 1}}], "size": {"width": 10, "height": 10}}`),
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			decoded, err := extractor.Extract(raw)
			assert.Nil(t, decoded)
			assert.True(t, errors.Is(err, ErrDecode), "got %v", err)
		})
	}
}

func TestLocalizationExtractor_TruncatesToMaxGTBoxes(t *testing.T) {
	cfg := newTestParams(t, `{"labels": ["person"], "max_gt_boxes": 2}`, 320)
	extractor := NewLocalizationExtractor(cfg)

	objects := make([]testObject, 5)
	for i := range objects {
		x := float32(i * 10)
		objects[i] = testObject{name: "person", box: processing.NewBox(x, x, x+5, x+5)}
	}

	decoded, err := extractor.Extract(annotationJSON(t, 100, 100, objects...))
	require.NoError(t, err)
	assert.True(t, decoded.Truncated)
	require.Len(t, decoded.Boxes, 2)
	assert.Equal(t, objects[0].box, decoded.Boxes[0].Box)
	assert.Equal(t, objects[1].box, decoded.Boxes[1].Box)
}

type nilDecoder struct{}

func (nilDecoder) Decode([]byte) (*BoundingBoxDecoded, error) {
	return nil, nil
}

func TestLocalizationExtractor_NilDecoderResult(t *testing.T) {
	cfg := newTestParams(t, `labels: [person]`, 320)
	extractor := NewLocalizationExtractorWithDecoder(cfg, nilDecoder{})

	decoded, err := extractor.Extract([]byte(`{}`))
	assert.Nil(t, decoded)
	assert.ErrorIs(t, err, ErrDecode)
}
