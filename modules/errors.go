package modules

import (
	"github.com/pkg/errors"
)

var (
	// ErrDecode marks a malformed annotation record. The sample is dropped.
	ErrDecode = errors.New("decode error")
	// ErrInvalidParams marks unusable per-sample transform parameters.
	ErrInvalidParams = errors.New("invalid transform parameters")
	// ErrNilSample is returned when a stage receives no sample.
	ErrNilSample = errors.New("nil sample")
	// ErrBufferSizeMismatch means the output buffers do not match the declared layout.
	ErrBufferSizeMismatch = errors.New("output buffer size mismatch")
	// ErrInsufficientAnchors is reported, never returned, when a sample
	// yields fewer than rois_per_image sampled anchors.
	ErrInsufficientAnchors = errors.New("insufficient anchors")
)
