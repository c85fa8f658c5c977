package rcnn

import (
	"math/rand"
	"sort"

	"github.com/chewxy/math32"
	"github.com/okieraised/go-rpn-targets/processing"
)

const (
	LabelIgnore     = -1
	LabelBackground = 0
	LabelForeground = 1
)

// Assignment is the pre-sampling label state of one sample, indexed by
// canonical anchor index.
type Assignment struct {
	Labels []int
	// GTIndex is the best matching ground-truth box per anchor, -1 when the
	// anchor is not valid or the sample has no usable boxes.
	GTIndex []int
}

// AssignLabels labels the valid anchors from their overlaps (one row per
// entry of valid, in the same order). Anchors outside valid stay ignored.
//
// The anchor with the highest overlap for each ground-truth box is promoted
// to foreground even below positiveOverlap; ties resolve to the lowest
// canonical anchor index. Boxes that overlap no valid anchor promote nothing.
func AssignLabels(total int, valid []int, overlaps *processing.Overlaps, positiveOverlap, negativeOverlap float32) *Assignment {
	asg := &Assignment{
		Labels:  make([]int, total),
		GTIndex: make([]int, total),
	}
	for i := range total {
		asg.Labels[i] = LabelIgnore
		asg.GTIndex[i] = -1
	}

	_, cols := overlaps.Dims()
	if cols == 0 {
		for _, idx := range valid {
			asg.Labels[idx] = LabelBackground
		}
		return asg
	}

	maxOverlaps := make([]float32, len(valid))
	for row, idx := range valid {
		v, gt := overlaps.RowMax(row)
		maxOverlaps[row] = v
		asg.GTIndex[idx] = gt
		if v < negativeOverlap {
			asg.Labels[idx] = LabelBackground
		}
	}

	for j := range cols {
		v, row := overlaps.ColMax(j)
		if row < 0 || v <= 0 {
			continue
		}
		asg.Labels[valid[row]] = LabelForeground
	}

	for row, idx := range valid {
		if maxOverlaps[row] >= positiveOverlap {
			asg.Labels[idx] = LabelForeground
		}
	}
	return asg
}

// ForegroundBudget is the largest number of foreground anchors a sample may keep.
func ForegroundBudget(roisPerImage int, foregroundFraction float32) int {
	return int(math32.Floor(float32(roisPerImage) * foregroundFraction))
}

// SampleAnchors subsamples labels in place so that at most
// ForegroundBudget foreground anchors remain and the background fills the rest
// of roisPerImage. Dropped anchors are relabelled ignore. It returns the kept
// anchor indices in ascending order; the result is shorter than roisPerImage
// only when the background supply runs out.
func SampleAnchors(labels []int, roisPerImage int, foregroundFraction float32, rng *rand.Rand) []int {
	fg := indicesWithLabel(labels, LabelForeground)
	fg = subsample(labels, fg, ForegroundBudget(roisPerImage, foregroundFraction), rng)

	bg := indicesWithLabel(labels, LabelBackground)
	bg = subsample(labels, bg, roisPerImage-len(fg), rng)

	sampled := make([]int, 0, len(fg)+len(bg))
	sampled = append(sampled, fg...)
	sampled = append(sampled, bg...)
	sort.Ints(sampled)
	return sampled
}

func indicesWithLabel(labels []int, label int) []int {
	out := make([]int, 0)
	for i, l := range labels {
		if l == label {
			out = append(out, i)
		}
	}
	return out
}

func subsample(labels, candidates []int, keep int, rng *rand.Rand) []int {
	if keep < 0 {
		keep = 0
	}
	if len(candidates) <= keep {
		return candidates
	}
	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	for _, idx := range candidates[keep:] {
		labels[idx] = LabelIgnore
	}
	return candidates[:keep]
}
