package modules

import (
	"github.com/chewxy/math32"
	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/utils"
	"github.com/pkg/errors"
	"image"
)

type ImageTransformParams struct {
	Scale      float32
	OutputSize image.Point
	Flip       bool
	Seed       int64
}

// NewImageTransformParams scales the shorter side to MinSize unless that
// pushes the longer side past MaxSize, in which case the longer side is
// scaled to MaxSize.
func NewImageTransformParams(width, height int, cfg *config.ImageFullParams, seed int64) (*ImageTransformParams, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidParams, "image size %dx%d", width, height)
	}

	short := float32(min(width, height))
	long := float32(max(width, height))

	scale := float32(cfg.MinSize) / short
	if math32.Round(scale*long) > float32(cfg.MaxSize) {
		scale = float32(cfg.MaxSize) / long
	}

	out := image.Pt(
		min(int(math32.Round(float32(width)*scale)), cfg.MaxSize),
		min(int(math32.Round(float32(height)*scale)), cfg.MaxSize),
	)
	if out.X <= 0 || out.Y <= 0 {
		return nil, errors.Wrapf(ErrInvalidParams, "image size %dx%d scales to nothing", width, height)
	}

	return &ImageTransformParams{
		Scale:      scale,
		OutputSize: out,
		Seed:       seed,
	}, nil
}

func ImageTransformParamsFromImage(raw []byte, cfg *config.ImageFullParams, seed int64) (*ImageTransformParams, error) {
	size, err := utils.ImageSize(raw)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidParams, err.Error())
	}
	return NewImageTransformParams(size.X, size.Y, cfg, seed)
}
