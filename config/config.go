package config

import (
	"fmt"
	"github.com/chewxy/math32"
	"github.com/elliotchance/orderedmap/v2"
)

const (
	OutputTypeFloat  = "float"
	OutputTypeDouble = "double"
	OutputTypeHalf   = "half"
)

func validOutputType(v string) error {
	switch v {
	case OutputTypeFloat, OutputTypeDouble, OutputTypeHalf:
		return nil
	}
	return fmt.Errorf("unsupported output type %q", v)
}

type ImageFullParams struct {
	MinSize int `json:"min_size" yaml:"min_size"`
	MaxSize int `json:"max_size" yaml:"max_size"`
}

var DefaultImageFullParams = &ImageFullParams{
	MinSize: 600,
	MaxSize: 1000,
}

func NewImageFullParams(raw []byte) (*ImageFullParams, error) {
	p := &ImageFullParams{}
	violations := parseFields(raw, []field{
		addScalar("min_size", &p.MinSize, required, positiveInt),
		addScalar("max_size", &p.MaxSize, required, positiveInt),
	})
	if p.MinSize > 0 && p.MaxSize > 0 && p.MinSize > p.MaxSize {
		violations = append(violations, fmt.Sprintf("min_size: %d exceeds max_size %d", p.MinSize, p.MaxSize))
	}
	if len(violations) > 0 {
		return nil, &ConfigError{Violations: violations}
	}
	return p, nil
}

// LocalizationParams is shared read-only by every sample processed under it.
type LocalizationParams struct {
	RoisPerImage       int       `json:"rois_per_image" yaml:"rois_per_image"`
	MinSize            int       `json:"min_size" yaml:"min_size"`
	MaxSize            int       `json:"max_size" yaml:"max_size"`
	BaseSize           int       `json:"base_size" yaml:"base_size"`
	ScalingFactor      float32   `json:"scaling_factor" yaml:"scaling_factor"`
	Ratios             []float32 `json:"ratios" yaml:"ratios"`
	Scales             []float32 `json:"scales" yaml:"scales"`
	NegativeOverlap    float32   `json:"negative_overlap" yaml:"negative_overlap"`
	PositiveOverlap    float32   `json:"positive_overlap" yaml:"positive_overlap"`
	ForegroundFraction float32   `json:"foreground_fraction" yaml:"foreground_fraction"`
	TypeString         string    `json:"type_string" yaml:"type_string"`
	MaxGTBoxes         int       `json:"max_gt_boxes" yaml:"max_gt_boxes"`
	AllowedBorder      int       `json:"allowed_border" yaml:"allowed_border"`
	Labels             []string  `json:"labels" yaml:"labels"`

	labelMap *orderedmap.OrderedMap[string, int]
}

func defaultLocalizationParams() *LocalizationParams {
	return &LocalizationParams{
		RoisPerImage:       256,
		BaseSize:           16,
		ScalingFactor:      1.0 / 16.0,
		Ratios:             []float32{0.5, 1, 2},
		Scales:             []float32{8, 16, 32},
		NegativeOverlap:    0.3,
		PositiveOverlap:    0.7,
		ForegroundFraction: 0.5,
		TypeString:         OutputTypeFloat,
		MaxGTBoxes:         64,
		AllowedBorder:      0,
	}
}

// NewLocalizationParams parses a YAML (or JSON) option document. Every
// violated field, including cross-field rules, is reported in a single *ConfigError.
func NewLocalizationParams(raw []byte, img *ImageFullParams) (*LocalizationParams, error) {
	p := defaultLocalizationParams()
	violations := parseFields(raw, []field{
		addScalar("rois_per_image", &p.RoisPerImage, optional, positiveInt),
		addScalar("base_size", &p.BaseSize, optional, positiveInt),
		addScalar("scaling_factor", &p.ScalingFactor, optional, positiveFloat),
		addScalar("ratios", &p.Ratios, optional, positiveFloats),
		addScalar("scales", &p.Scales, optional, positiveFloats),
		addScalar("negative_overlap", &p.NegativeOverlap, optional, unitInterval),
		addScalar("positive_overlap", &p.PositiveOverlap, optional, unitInterval),
		addScalar("foreground_fraction", &p.ForegroundFraction, optional, unitInterval),
		addScalar("type_string", &p.TypeString, optional, validOutputType),
		addScalar("max_gt_boxes", &p.MaxGTBoxes, optional, positiveInt),
		addScalar("allowed_border", &p.AllowedBorder, optional, nonNegativeInt),
		addScalar("labels", &p.Labels, required, uniqueNames),
	})

	violations = append(violations, p.validateOverlaps()...)
	if img == nil {
		violations = append(violations, "image: image_full configuration is required")
	} else {
		p.MinSize = img.MinSize
		p.MaxSize = img.MaxSize
		violations = append(violations, p.validateGrid()...)
	}
	if len(violations) > 0 {
		return nil, &ConfigError{Violations: violations}
	}

	p.labelMap = orderedmap.NewOrderedMap[string, int]()
	for i, name := range p.Labels {
		p.labelMap.Set(name, i)
	}
	return p, nil
}

// Fields that failed to parse keep their defaults, so the cross-field rules
// only see values that passed their own checks.
func (p *LocalizationParams) validateOverlaps() []string {
	if p.NegativeOverlap > p.PositiveOverlap {
		return []string{fmt.Sprintf("negative_overlap: %v exceeds positive_overlap %v",
			p.NegativeOverlap, p.PositiveOverlap)}
	}
	return nil
}

func (p *LocalizationParams) validateGrid() []string {
	violations := make([]string, 0)
	if p.MinSize <= 0 || p.MaxSize <= 0 || p.MinSize > p.MaxSize {
		violations = append(violations, fmt.Sprintf("image: invalid size bounds min=%d max=%d", p.MinSize, p.MaxSize))
	} else if p.FeatureSize() < 1 {
		violations = append(violations, fmt.Sprintf("scaling_factor: %v leaves an empty feature grid for max_size %d",
			p.ScalingFactor, p.MaxSize))
	}
	return violations
}

// FeatureSize is the side of the square feature grid the anchors are laid on.
func (p *LocalizationParams) FeatureSize() int {
	return FeatureCells(p.MaxSize, p.ScalingFactor)
}

// FeatureCells converts an image extent to feature grid cells.
func FeatureCells(extent int, scalingFactor float32) int {
	return int(math32.Floor(float32(extent) * scalingFactor))
}

func (p *LocalizationParams) Stride() float32 {
	return 1 / p.ScalingFactor
}

func (p *LocalizationParams) AnchorsPerCell() int {
	return len(p.Ratios) * len(p.Scales)
}

func (p *LocalizationParams) TotalAnchors() int {
	fs := p.FeatureSize()
	return p.AnchorsPerCell() * fs * fs
}

func (p *LocalizationParams) LabelIndex(name string) (int, bool) {
	if p.labelMap == nil {
		return 0, false
	}
	return p.labelMap.Get(name)
}

func (p *LocalizationParams) LabelNames() []string {
	names := make([]string, 0, len(p.Labels))
	if p.labelMap == nil {
		return names
	}
	for el := p.labelMap.Front(); el != nil; el = el.Next() {
		names = append(names, el.Key)
	}
	return names
}
