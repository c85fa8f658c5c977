package processing

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
)

type AnchorConfig struct {
	BaseSize int
	Ratios   []float32
	Scales   []float32
}

// GenerateReferenceAnchors enumerates aspect ratios x scales around a
// (0, 0, base-1, base-1) reference window. Ratio-major, scale-minor.
// Extreme ratios can round to a degenerate anchor; it is kept so the anchor
// count stays len(ratios)*len(scales).
func GenerateReferenceAnchors(cfg AnchorConfig) ([]Box, error) {
	if cfg.BaseSize <= 0 {
		return nil, fmt.Errorf("base size must be positive, got %d", cfg.BaseSize)
	}
	if len(cfg.Ratios) == 0 || len(cfg.Scales) == 0 {
		return nil, errors.New("ratios and scales must not be empty")
	}

	baseAnchor := NewBox(0, 0, float32(cfg.BaseSize)-1, float32(cfg.BaseSize)-1)

	anchors := make([]Box, 0, len(cfg.Ratios)*len(cfg.Scales))
	for _, ratioAnchor := range ratioEnum(baseAnchor, cfg.Ratios) {
		anchors = append(anchors, scaleEnum(ratioAnchor, cfg.Scales)...)
	}
	return anchors, nil
}

func whctrs(anchor Box) (float32, float32, float32, float32) {
	w := anchor.Width()
	h := anchor.Height()
	centerX, centerY := anchor.Center()
	return w, h, centerX, centerY
}

// ratioEnum keeps the anchor area for each height/width ratio.
func ratioEnum(anchor Box, ratios []float32) []Box {
	w, h, centerX, centerY := whctrs(anchor)
	size := w * h

	ws := make([]float32, len(ratios))
	hs := make([]float32, len(ratios))
	for i, r := range ratios {
		ws[i] = math32.Round(math32.Sqrt(size / r))
		hs[i] = math32.Round(ws[i] * r)
	}
	return mkanchors(ws, hs, centerX, centerY)
}

func scaleEnum(anchor Box, scales []float32) []Box {
	w, h, centerX, centerY := whctrs(anchor)

	ws := make([]float32, len(scales))
	hs := make([]float32, len(scales))
	for i, s := range scales {
		ws[i] = w * s
		hs[i] = h * s
	}
	return mkanchors(ws, hs, centerX, centerY)
}

func mkanchors(ws, hs []float32, centerX, centerY float32) []Box {
	anchors := make([]Box, len(ws))
	for i := range ws {
		halfW := 0.5 * (ws[i] - 1)
		halfH := 0.5 * (hs[i] - 1)
		anchors[i] = NewBox(centerX-halfW, centerY-halfH, centerX+halfW, centerY+halfH)
	}
	return anchors
}
