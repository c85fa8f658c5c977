package rcnn

import (
	"fmt"

	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/processing"
	"gorgonia.org/tensor"
)

// Anchors translates the reference anchors over every cell of a height x width
// feature grid. The result has shape (height*width*len(reference), 4) and is
// ordered grid-row-major, then by reference anchor.
func Anchors(height, width int, stride float32, reference []processing.Box) (*tensor.Dense, error) {
	a := len(reference)
	if height <= 0 || width <= 0 || a == 0 {
		return nil, fmt.Errorf("empty anchor grid: %dx%d cells with %d reference anchors", width, height, a)
	}

	data := make([]float32, height*width*a*4)
	for ih := range height {
		sh := float32(ih) * stride
		for iw := range width {
			sw := float32(iw) * stride
			for k, ref := range reference {
				off := ((ih*width+iw)*a + k) * 4
				data[off+0] = ref.X1 + sw
				data[off+1] = ref.Y1 + sh
				data[off+2] = ref.X2 + sw
				data[off+3] = ref.Y2 + sh
			}
		}
	}

	allAnchors := tensor.New(
		tensor.Of(tensor.Float32),
		tensor.WithShape(height, width, a, 4),
		tensor.WithBacking(data),
	)
	if err := allAnchors.Reshape(height*width*a, 4); err != nil {
		return nil, err
	}
	return allAnchors, nil
}

// AnchorGrid is the immutable anchor set of one configuration. It is safe for
// concurrent reads and must never be written to.
type AnchorGrid struct {
	dense          *tensor.Dense
	data           []float32
	width, height  int
	anchorsPerCell int
}

// GenerateAnchors builds the grid for the configured max_size x max_size image.
func GenerateAnchors(cfg *config.LocalizationParams) (*AnchorGrid, error) {
	return GenerateAnchorsForSize(cfg, cfg.MaxSize, cfg.MaxSize)
}

func GenerateAnchorsForSize(cfg *config.LocalizationParams, imageWidth, imageHeight int) (*AnchorGrid, error) {
	reference, err := processing.GenerateReferenceAnchors(processing.AnchorConfig{
		BaseSize: cfg.BaseSize,
		Ratios:   cfg.Ratios,
		Scales:   cfg.Scales,
	})
	if err != nil {
		return nil, err
	}

	width := config.FeatureCells(imageWidth, cfg.ScalingFactor)
	height := config.FeatureCells(imageHeight, cfg.ScalingFactor)

	dense, err := Anchors(height, width, cfg.Stride(), reference)
	if err != nil {
		return nil, err
	}
	return &AnchorGrid{
		dense:          dense,
		data:           dense.Data().([]float32),
		width:          width,
		height:         height,
		anchorsPerCell: len(reference),
	}, nil
}

func (g *AnchorGrid) Len() int {
	return len(g.data) / 4
}

// FeatureShape returns the grid width and height in cells.
func (g *AnchorGrid) FeatureShape() (int, int) {
	return g.width, g.height
}

func (g *AnchorGrid) AnchorsPerCell() int {
	return g.anchorsPerCell
}

func (g *AnchorGrid) At(i int) processing.Box {
	off := i * 4
	return processing.NewBox(g.data[off], g.data[off+1], g.data[off+2], g.data[off+3])
}

// Boxes gathers the anchors at the given canonical indices.
func (g *AnchorGrid) Boxes(indices []int) []processing.Box {
	out := make([]processing.Box, len(indices))
	for i, idx := range indices {
		out[i] = g.At(idx)
	}
	return out
}

// Tensor exposes the (N, 4) backing tensor. Callers must treat it as read-only.
func (g *AnchorGrid) Tensor() *tensor.Dense {
	return g.dense
}

// InsideImageBounds returns, in ascending order, the indices of the
// non-degenerate anchors lying entirely within a width x height image grown by
// allowedBorder pixels on every side.
func InsideImageBounds(width, height, allowedBorder int, grid *AnchorGrid) []int {
	border := float32(allowedBorder)
	w := float32(width) + border
	h := float32(height) + border

	inside := make([]int, 0)
	for i := range grid.Len() {
		a := grid.At(i)
		if a.IsDegenerate() {
			continue
		}
		if a.X1 >= -border && a.Y1 >= -border && a.X2 < w && a.Y2 < h {
			inside = append(inside, i)
		}
	}
	return inside
}
