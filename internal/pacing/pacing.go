// Package pacing implements the frame-index / keyframe bookkeeping
// shared by the video and audio encoders: the staleness gate (C4), the
// monotonic presentation-timestamp sequence, and the keyframe cadence
// scheduler.
//
// These are kept free of cgo so they can be unit-tested without a codec
// toolchain, unlike the encoders that embed them.
package pacing

import "time"

// FrameExpiry is the staleness window: a raw frame older than this
// relative to "now" is dropped before it reaches the codec.
const FrameExpiry = 30 * time.Millisecond

// StalenessGate decides whether a raw frame has decayed past the point
// where encoding it is worthwhile for a real-time stream.
type StalenessGate struct {
	Expiry time.Duration
}

// NewStalenessGate builds a gate using the canonical 30ms expiry.
func NewStalenessGate() StalenessGate {
	return StalenessGate{Expiry: FrameExpiry}
}

// IsStale reports whether ts is older than now by more than the gate's
// expiry window.
func (g StalenessGate) IsStale(ts, now time.Time) bool {
	expired := now.Add(-g.Expiry)
	return ts.Before(expired)
}

// FrameScheduler hands out the monotonically increasing pts used as the
// per-frame presentation timestamp inside a single encoder's own
// frame-index space. It advances on every submitted frame, including
// ones the staleness gate drops — pts reflects wall-clock cadence, not
// encoded output.
type FrameScheduler struct {
	next int64
}

// NextPTS returns the next pts and advances the sequence.
func (s *FrameScheduler) NextPTS() int64 {
	pts := s.next
	s.next++
	return pts
}

// KeyframeScheduler decides whether the next *successfully encoded*
// video frame is an I-frame or a P-frame. Unlike FrameScheduler it only
// advances when a frame actually reaches the codec — stale drops never
// touch it.
type KeyframeScheduler struct {
	Interval int
	encoded  int64
}

// PictureType enumerates the two frame kinds a video encoder emits.
type PictureType int

const (
	PictureTypeP PictureType = iota
	PictureTypeI
)

func (p PictureType) String() string {
	if p == PictureTypeI {
		return "I"
	}
	return "P"
}

// Next returns the picture type for the next encoded frame and advances
// the encoded-frame counter. The N-th encoded frame (1-indexed) is an
// I-frame iff (N-1) mod Interval == 0.
func (s *KeyframeScheduler) Next() PictureType {
	n := s.encoded
	s.encoded++
	if s.Interval <= 0 {
		return PictureTypeI
	}
	if n%int64(s.Interval) == 0 {
		return PictureTypeI
	}
	return PictureTypeP
}
