package processing

import (
	"github.com/chewxy/math32"
)

// Target is the regression transform from an anchor to its matched ground-truth box.
type Target struct {
	DX, DY, DW, DH float32
}

// ClipBoxes clamps every coordinate into the image, x to [0, width-1] and
// y to [0, height-1].
func ClipBoxes(boxes []Box, width, height int) []Box {
	w := float32(width - 1)
	h := float32(height - 1)

	clip := func(v, hi float32) float32 {
		return math32.Max(math32.Min(v, hi), 0)
	}

	out := make([]Box, len(boxes))
	for i, b := range boxes {
		out[i] = Box{
			X1: clip(b.X1, w),
			Y1: clip(b.Y1, h),
			X2: clip(b.X2, w),
			Y2: clip(b.Y2, h),
		}
	}
	return out
}

// EncodeTarget computes (dx, dy, dw, dh) that moves anchor onto gt.
func EncodeTarget(anchor, gt Box) Target {
	aw, ah := anchor.Width(), anchor.Height()
	ax, ay := anchor.Center()
	gw, gh := gt.Width(), gt.Height()
	gx, gy := gt.Center()

	return Target{
		DX: (gx - ax) / aw,
		DY: (gy - ay) / ah,
		DW: math32.Log(gw / aw),
		DH: math32.Log(gh / ah),
	}
}

// DecodeTarget is the inverse of EncodeTarget.
func DecodeTarget(anchor Box, t Target) Box {
	aw, ah := anchor.Width(), anchor.Height()
	ax, ay := anchor.Center()

	cx := ax + t.DX*aw
	cy := ay + t.DY*ah
	w := aw * math32.Exp(t.DW)
	h := ah * math32.Exp(t.DH)

	return Box{
		X1: cx - 0.5*(w-1),
		Y1: cy - 0.5*(h-1),
		X2: cx + 0.5*(w-1),
		Y2: cy + 0.5*(h-1),
	}
}
