package modules

import (
	"github.com/okieraised/go-rpn-targets/config"
	"github.com/okieraised/go-rpn-targets/rcnn"
	"github.com/okieraised/go-rpn-targets/utils"
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

type ShapeType struct {
	Name  string
	Dtype tensor.Dtype
	Count int
}

func (s ShapeType) ByteSize() int {
	return s.Count * utils.ElementSize(s.Dtype)
}

const (
	BufferBBTargets = iota
	BufferBBTargetsMask
	BufferLabels
	BufferLabelsMask
	BufferImageShape
	BufferGTBoxes
	BufferNumGTBoxes
	BufferGTClasses
	BufferImageScale
	BufferGTDifficult
)

func OutputShapes(cfg *config.LocalizationParams) ([]ShapeType, error) {
	ft, err := utils.DtypeByName(cfg.TypeString)
	if err != nil {
		return nil, err
	}
	total := cfg.TotalAnchors()
	return []ShapeType{
		BufferBBTargets:     {Name: "bbtargets", Dtype: ft, Count: total * 4},
		BufferBBTargetsMask: {Name: "bbtargets_mask", Dtype: ft, Count: total * 4},
		BufferLabels:        {Name: "labels", Dtype: tensor.Int32, Count: total},
		BufferLabelsMask:    {Name: "labels_mask", Dtype: tensor.Int32, Count: total},
		BufferImageShape:    {Name: "im_shape", Dtype: tensor.Int32, Count: 2},
		BufferGTBoxes:       {Name: "gt_boxes", Dtype: ft, Count: cfg.MaxGTBoxes * 4},
		BufferNumGTBoxes:    {Name: "num_gt_boxes", Dtype: tensor.Int32, Count: 1},
		BufferGTClasses:     {Name: "gt_classes", Dtype: tensor.Int32, Count: cfg.MaxGTBoxes},
		BufferImageScale:    {Name: "im_scale", Dtype: ft, Count: 1},
		BufferGTDifficult:   {Name: "gt_difficult", Dtype: tensor.Int32, Count: cfg.MaxGTBoxes},
	}, nil
}

type LocalizationLoader struct {
	totalAnchors  int
	maxGTBoxes    int
	shapeTypeList []ShapeType
}

func NewLocalizationLoader(cfg *config.LocalizationParams) (*LocalizationLoader, error) {
	shapes, err := OutputShapes(cfg)
	if err != nil {
		return nil, err
	}
	return &LocalizationLoader{
		totalAnchors:  cfg.TotalAnchors(),
		maxGTBoxes:    cfg.MaxGTBoxes,
		shapeTypeList: shapes,
	}, nil
}

func (l *LocalizationLoader) ShapeTypes() []ShapeType {
	out := make([]ShapeType, len(l.shapeTypeList))
	copy(out, l.shapeTypeList)
	return out
}

func (l *LocalizationLoader) AllocateBuffers() [][]byte {
	bufs := make([][]byte, len(l.shapeTypeList))
	for i, s := range l.shapeTypeList {
		bufs[i] = make([]byte, s.ByteSize())
	}
	return bufs
}

func (l *LocalizationLoader) checkBuffers(buffers [][]byte) error {
	if len(buffers) != len(l.shapeTypeList) {
		return errors.Wrapf(ErrBufferSizeMismatch, "got %d buffers, layout declares %d", len(buffers), len(l.shapeTypeList))
	}
	for i, s := range l.shapeTypeList {
		if len(buffers[i]) != s.ByteSize() {
			return errors.Wrapf(ErrBufferSizeMismatch, "buffer %q is %d bytes, layout declares %d", s.Name, len(buffers[i]), s.ByteSize())
		}
	}
	return nil
}

type bufferWriter struct {
	buf []byte
	dt  tensor.Dtype
	err error
}

func (w *bufferWriter) put(i int, v float64) {
	if w.err != nil {
		return
	}
	w.err = utils.PutElement(w.buf, w.dt, i, v)
}

// Load copies a transformed sample into buffers. Nothing is written unless
// every buffer matches the declared layout.
func (l *LocalizationLoader) Load(buffers [][]byte, decoded *LocalizationDecoded) error {
	if decoded == nil {
		return ErrNilSample
	}
	if err := l.checkBuffers(buffers); err != nil {
		return err
	}

	writers := make([]*bufferWriter, len(buffers))
	for i, buf := range buffers {
		clear(buf)
		writers[i] = &bufferWriter{buf: buf, dt: l.shapeTypeList[i].Dtype}
	}

	for i := range l.totalAnchors {
		label := rcnn.LabelIgnore
		if i < len(decoded.Labels) {
			label = decoded.Labels[i]
		}
		writers[BufferLabels].put(i, float64(label))
		if label != rcnn.LabelIgnore {
			writers[BufferLabelsMask].put(i, 1)
		}

		if label != rcnn.LabelForeground || i >= len(decoded.BBoxTargets) {
			continue
		}
		t := decoded.BBoxTargets[i]
		for k, v := range [4]float32{t.DX, t.DY, t.DW, t.DH} {
			writers[BufferBBTargets].put(i*4+k, float64(v))
			writers[BufferBBTargetsMask].put(i*4+k, 1)
		}
	}

	writers[BufferImageShape].put(0, float64(decoded.OutputImageSize.X))
	writers[BufferImageShape].put(1, float64(decoded.OutputImageSize.Y))
	writers[BufferImageScale].put(0, float64(decoded.ImageScale))

	numGT := min(len(decoded.GTBoxes), l.maxGTBoxes)
	writers[BufferNumGTBoxes].put(0, float64(numGT))
	for j := range l.maxGTBoxes {
		if j >= numGT {
			writers[BufferGTClasses].put(j, -1)
			continue
		}
		b := decoded.GTBoxes[j]
		for k, v := range [4]float32{b.X1, b.Y1, b.X2, b.Y2} {
			writers[BufferGTBoxes].put(j*4+k, float64(v))
		}
		class, difficult := -1, false
		if j < len(decoded.Boxes) {
			class = decoded.Boxes[j].Label
			difficult = decoded.Boxes[j].Difficult
		}
		writers[BufferGTClasses].put(j, float64(class))
		if difficult {
			writers[BufferGTDifficult].put(j, 1)
		}
	}

	for i, w := range writers {
		if w.err != nil {
			return errors.Wrapf(w.err, "writing %q", l.shapeTypeList[i].Name)
		}
	}
	return nil
}
