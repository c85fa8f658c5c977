package modules

import (
	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/processing"
	"github.com/okieraised/go-rpn-targets/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"image"
)

// LocalizationDecoded is the per-sample state created by the extractor,
// filled in by the transformer and read by the loader. It belongs to a single
// invocation and is never shared.
type LocalizationDecoded struct {
	BoundingBoxDecoded
	// Truncated is set when the annotation held more than max_gt_boxes boxes.
	Truncated bool

	Labels              []int
	BBoxTargets         []processing.Target
	AnchorIndex         []int
	ImageScale          float32
	OutputImageSize     image.Point
	GTBoxes             []processing.Box
	InsufficientAnchors bool
}

type LocalizationExtractor struct {
	cfg         *config.LocalizationParams
	bboxDecoder BoundingBoxDecoder
}

func NewLocalizationExtractor(cfg *config.LocalizationParams) *LocalizationExtractor {
	return NewLocalizationExtractorWithDecoder(cfg, NewJSONBoundingBoxDecoder(cfg))
}

func NewLocalizationExtractorWithDecoder(cfg *config.LocalizationParams, decoder BoundingBoxDecoder) *LocalizationExtractor {
	return &LocalizationExtractor{
		cfg:         cfg,
		bboxDecoder: decoder,
	}
}

// Extract returns either a complete sample or an ErrDecode error, never a
// partially populated sample. Annotations with more than max_gt_boxes boxes
// keep the first max_gt_boxes of them.
func (e *LocalizationExtractor) Extract(data []byte) (*LocalizationDecoded, error) {
	bb, err := e.bboxDecoder.Decode(data)
	if err != nil {
		return nil, errors.Wrap(ErrDecode, err.Error())
	}
	if bb == nil {
		return nil, errors.Wrap(ErrDecode, "decoder returned no result")
	}

	decoded := &LocalizationDecoded{BoundingBoxDecoded: *bb}
	if len(decoded.Boxes) > e.cfg.MaxGTBoxes {
		utils.Logger().Warn("truncating ground truth boxes",
			zap.Int("boxes", len(decoded.Boxes)),
			zap.Int("max_gt_boxes", e.cfg.MaxGTBoxes),
		)
		decoded.Boxes = decoded.Boxes[:e.cfg.MaxGTBoxes]
		decoded.Truncated = true
	}
	return decoded, nil
}
