package utils

import (
	"errors"
	"image"

	"gocv.io/x/gocv"
)

// ImageSize decodes the raw image and returns its width and height.
func ImageSize(bImage []byte) (image.Point, error) {
	if len(bImage) == 0 {
		return image.Point{}, errors.New("empty image data")
	}

	srcMat, err := gocv.IMDecode(bImage, gocv.IMReadUnchanged)
	if err != nil {
		return image.Point{}, err
	}
	defer srcMat.Close()

	if srcMat.Empty() {
		return image.Point{}, errors.New("unable to decode image")
	}
	return image.Pt(srcMat.Cols(), srcMat.Rows()), nil
}
