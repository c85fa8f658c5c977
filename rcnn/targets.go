package rcnn

import (
	"github.com/okieraised/go-rpn-targets/processing"
)

// ComputeTargets encodes a regression target for every sampled foreground
// anchor against its best matching ground-truth box. All other entries keep
// the zero Target.
func ComputeTargets(grid *AnchorGrid, gt []processing.Box, asg *Assignment, sampled []int) []processing.Target {
	targets := make([]processing.Target, len(asg.Labels))
	for _, idx := range sampled {
		if asg.Labels[idx] != LabelForeground {
			continue
		}
		g := asg.GTIndex[idx]
		if g < 0 || g >= len(gt) {
			continue
		}
		targets[idx] = processing.EncodeTarget(grid.At(idx), gt[g])
	}
	return targets
}
