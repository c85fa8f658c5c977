package processing

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Overlaps is the dense IoU matrix between a set of anchors (rows) and the
// ground-truth boxes (columns) of one sample.
type Overlaps struct {
	rows, cols int
	m          *mat.Dense
}

// BBoxOverlaps computes IoU for every (anchor, gt) pair. Degenerate boxes
// contribute zero overlap.
func BBoxOverlaps(anchors, gt []Box) *Overlaps {
	o := &Overlaps{rows: len(anchors), cols: len(gt)}
	if o.rows == 0 || o.cols == 0 {
		return o
	}

	data := make([]float64, o.rows*o.cols)
	for i, a := range anchors {
		if a.IsDegenerate() {
			continue
		}
		row := data[i*o.cols : (i+1)*o.cols]
		for j, g := range gt {
			row[j] = float64(IoU(a, g))
		}
	}
	o.m = mat.NewDense(o.rows, o.cols, data)
	return o
}

func (o *Overlaps) Dims() (int, int) {
	return o.rows, o.cols
}

func (o *Overlaps) At(i, j int) float32 {
	return float32(o.m.At(i, j))
}

// RowMax returns the best overlap of anchor row i and the lowest column
// index reaching it. (0, -1) when there are no columns.
func (o *Overlaps) RowMax(i int) (float32, int) {
	if o.cols == 0 {
		return 0, -1
	}
	row := o.m.RawRowView(i)
	idx := floats.MaxIdx(row)
	return float32(row[idx]), idx
}

// ColMax returns the best overlap of gt column j and the lowest anchor row
// reaching it. (0, -1) when there are no rows.
func (o *Overlaps) ColMax(j int) (float32, int) {
	if o.rows == 0 {
		return 0, -1
	}
	col := mat.Col(nil, j, o.m)
	idx := floats.MaxIdx(col)
	return float32(col[idx]), idx
}
