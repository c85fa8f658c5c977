package modules

import (
	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/processing"
	"github.com/okieraised/go-rpn-targets/rcnn"
	"github.com/okieraised/go-rpn-targets/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"math/rand"
)

type LocalizationTransformer struct {
	cfg     *config.LocalizationParams
	anchors *rcnn.AnchorGrid
}

func NewLocalizationTransformer(cfg *config.LocalizationParams, anchors *rcnn.AnchorGrid) (*LocalizationTransformer, error) {
	if anchors == nil {
		return nil, errors.New("anchor grid is required")
	}
	if anchors.Len() != cfg.TotalAnchors() {
		return nil, errors.Errorf("anchor grid holds %d anchors, configuration expects %d", anchors.Len(), cfg.TotalAnchors())
	}
	return &LocalizationTransformer{
		cfg:     cfg,
		anchors: anchors,
	}, nil
}

func (t *LocalizationTransformer) Anchors() *rcnn.AnchorGrid {
	return t.anchors
}

// Transform fills in labels, sampled anchor indices and regression targets.
// Sampling draws from a generator seeded with params.Seed, so the same seed
// and annotation always give the same result.
func (t *LocalizationTransformer) Transform(params *ImageTransformParams, decoded *LocalizationDecoded) (*LocalizationDecoded, error) {
	if decoded == nil {
		return nil, ErrNilSample
	}
	if params == nil {
		return nil, errors.Wrap(ErrInvalidParams, "missing transform parameters")
	}
	width, height := params.OutputSize.X, params.OutputSize.Y
	if width <= 0 || height <= 0 || !(params.Scale > 0) {
		return nil, errors.Wrapf(ErrInvalidParams, "output size %v scale %v", params.OutputSize, params.Scale)
	}
	if width > t.cfg.MaxSize || height > t.cfg.MaxSize {
		return nil, errors.Wrapf(ErrInvalidParams, "output size %v exceeds max_size %d", params.OutputSize, t.cfg.MaxSize)
	}

	boxes := make([]processing.Box, len(decoded.Boxes))
	for i, b := range decoded.Boxes {
		boxes[i] = b.Box
	}
	gt := processing.ScaleBoxes(boxes, params.Scale)
	if params.Flip {
		gt = processing.FlipBoxes(gt, width)
	}
	gt = processing.ClipBoxes(gt, width, height)
	for i, b := range gt {
		if b.IsDegenerate() {
			utils.Logger().Debug("ground truth box excluded from overlaps",
				zap.Int("box", i),
				zap.Stringer("coords", b),
			)
		}
	}

	valid := rcnn.InsideImageBounds(width, height, t.cfg.AllowedBorder, t.anchors)
	overlaps := processing.BBoxOverlaps(t.anchors.Boxes(valid), gt)
	asg := rcnn.AssignLabels(t.anchors.Len(), valid, overlaps, t.cfg.PositiveOverlap, t.cfg.NegativeOverlap)

	rng := rand.New(rand.NewSource(params.Seed))
	sampled := rcnn.SampleAnchors(asg.Labels, t.cfg.RoisPerImage, t.cfg.ForegroundFraction, rng)

	decoded.Labels = asg.Labels
	decoded.AnchorIndex = sampled
	decoded.BBoxTargets = rcnn.ComputeTargets(t.anchors, gt, asg, sampled)
	decoded.GTBoxes = gt
	decoded.ImageScale = params.Scale
	decoded.OutputImageSize = params.OutputSize
	decoded.InsufficientAnchors = len(sampled) < t.cfg.RoisPerImage

	if decoded.InsufficientAnchors {
		utils.Logger().Warn("sample yields fewer anchors than rois_per_image",
			zap.Error(ErrInsufficientAnchors),
			zap.Int("sampled", len(sampled)),
			zap.Int("rois_per_image", t.cfg.RoisPerImage),
			zap.Int("valid", len(valid)),
		)
	}
	return decoded, nil
}
