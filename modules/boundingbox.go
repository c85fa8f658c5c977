package modules

import (
	"encoding/json"
	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/processing"
	"github.com/pkg/errors"
)

type BoundingBox struct {
	processing.Box
	Label     int
	Difficult bool
	Truncated bool
}

type BoundingBoxDecoded struct {
	Boxes  []BoundingBox
	Width  int
	Height int
	Depth  int
}

type BoundingBoxDecoder interface {
	Decode(data []byte) (*BoundingBoxDecoded, error)
}

type jsonAnnotation struct {
	Objects []struct {
		BndBox struct {
			XMin *float32 `json:"xmin"`
			YMin *float32 `json:"ymin"`
			XMax *float32 `json:"xmax"`
			YMax *float32 `json:"ymax"`
		} `json:"bndbox"`
		Name      string `json:"name"`
		Difficult bool   `json:"difficult"`
		Truncated bool   `json:"truncated"`
	} `json:"object"`
	Size *struct {
		Width  int `json:"width"`
		Height int `json:"height"`
		Depth  int `json:"depth"`
	} `json:"size"`
}

// JSONBoundingBoxDecoder reads annotations shaped as
//
//	{"object": [{"bndbox": {"xmin", "ymin", "xmax", "ymax"}, "name", "difficult", "truncated"}],
//	 "size": {"width", "height", "depth"}}
//
// and resolves object names through the configured label list.
type JSONBoundingBoxDecoder struct {
	cfg *config.LocalizationParams
}

func NewJSONBoundingBoxDecoder(cfg *config.LocalizationParams) *JSONBoundingBoxDecoder {
	return &JSONBoundingBoxDecoder{cfg: cfg}
}

func (d *JSONBoundingBoxDecoder) Decode(data []byte) (*BoundingBoxDecoded, error) {
	var raw jsonAnnotation
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "malformed annotation")
	}
	if raw.Size == nil {
		return nil, errors.New("annotation has no image size")
	}
	if raw.Size.Width <= 0 || raw.Size.Height <= 0 {
		return nil, errors.Errorf("invalid image size %dx%d", raw.Size.Width, raw.Size.Height)
	}

	decoded := &BoundingBoxDecoded{
		Boxes:  make([]BoundingBox, 0, len(raw.Objects)),
		Width:  raw.Size.Width,
		Height: raw.Size.Height,
		Depth:  raw.Size.Depth,
	}
	for i, obj := range raw.Objects {
		bb := obj.BndBox
		if bb.XMin == nil || bb.YMin == nil || bb.XMax == nil || bb.YMax == nil {
			return nil, errors.Errorf("object %d: incomplete bndbox", i)
		}
		if *bb.XMax < *bb.XMin || *bb.YMax < *bb.YMin {
			return nil, errors.Errorf("object %d: inverted bndbox (%v, %v, %v, %v)", i, *bb.XMin, *bb.YMin, *bb.XMax, *bb.YMax)
		}
		label, ok := d.cfg.LabelIndex(obj.Name)
		if !ok {
			return nil, errors.Errorf("object %d: unknown label %q", i, obj.Name)
		}
		decoded.Boxes = append(decoded.Boxes, BoundingBox{
			Box:       processing.NewBox(*bb.XMin, *bb.YMin, *bb.XMax, *bb.YMax),
			Label:     label,
			Difficult: obj.Difficult,
			Truncated: obj.Truncated,
		})
	}
	return decoded, nil
}
