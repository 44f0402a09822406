package pacing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestStalenessGate: a frame older than now-30ms is stale; one inside
// the window is not.
func TestStalenessGate(t *testing.T) {
	g := NewStalenessGate()
	now := time.Now()

	assert.True(t, g.IsStale(now.Add(-50*time.Millisecond), now))
	assert.False(t, g.IsStale(now.Add(-10*time.Millisecond), now))
	assert.False(t, g.IsStale(now, now))
}

// TestFrameSchedulerMonotone: pts values observed form a strictly
// increasing contiguous sequence starting at 0, regardless of whether
// the caller goes on to drop or encode the frame.
func TestFrameSchedulerMonotone(t *testing.T) {
	var s FrameScheduler
	for i := int64(0); i < 10; i++ {
		assert.Equal(t, i, s.NextPTS())
	}
}

// TestKeyframeSchedulerCadence: with keyframe_interval=8, among 24
// *encoded* frames the I-frames fall at positions 1, 9, 17 (1-indexed).
func TestKeyframeSchedulerCadence(t *testing.T) {
	s := KeyframeScheduler{Interval: 8}

	var iPositions []int
	for i := 1; i <= 24; i++ {
		if s.Next() == PictureTypeI {
			iPositions = append(iPositions, i)
		}
	}
	assert.Equal(t, []int{1, 9, 17}, iPositions)
}

// TestKeyframeSchedulerSkipsDroppedFrames demonstrates the asymmetry: a
// dropped frame must not be passed to KeyframeScheduler.Next at all, so
// that keyframe spacing tracks encoded-frame cadence rather than
// wall-clock cadence.
func TestKeyframeSchedulerSkipsDroppedFrames(t *testing.T) {
	frameSched := &FrameScheduler{}
	keySched := &KeyframeScheduler{Interval: 4}

	type result struct {
		pts     int64
		encoded bool
		pic     PictureType
	}
	var results []result

	// Simulate 6 submitted frames where frame index 2 (0-based) is
	// stale and must be dropped before reaching the keyframe scheduler.
	stale := map[int64]bool{2: true}
	for i := 0; i < 6; i++ {
		pts := frameSched.NextPTS()
		if stale[pts] {
			results = append(results, result{pts: pts, encoded: false})
			continue
		}
		pic := keySched.Next()
		results = append(results, result{pts: pts, encoded: true, pic: pic})
	}

	assert.Equal(t, int64(6), frameSched.next)
	// Encoded frames are pts 0,1,3,4,5 -> encoded-order positions 1..5,
	// I-frames at encoded positions 1 and 5 (interval 4).
	wantPic := map[int64]PictureType{0: PictureTypeI, 1: PictureTypeP, 3: PictureTypeP, 4: PictureTypeP, 5: PictureTypeI}
	for _, r := range results {
		if !r.encoded {
			continue
		}
		assert.Equal(t, wantPic[r.pts], r.pic, "pts=%d", r.pts)
	}
}
