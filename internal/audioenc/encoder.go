// Package audioenc implements C3, the audio encoder: mono 16-bit PCM
// (downmixed from interleaved stereo) in, Opus packets out.
//
// Grounded on richinsley-bunghole/internal/audio/pulse_linux.go's use
// of github.com/hraban/opus (the teacher encodes stereo there; this
// encoder is constructed with channel count 1).
package audioenc

import (
	"fmt"
	"time"

	"github.com/hraban/opus"

	"gipan/internal/pacing"
	"gipan/internal/types"
)

// Encoder is C3.
type Encoder struct {
	enc *opus.Encoder

	fps       int
	staleness pacing.StalenessGate
	frames    pacing.FrameScheduler
	scratch   []byte
}

// New creates a mono Opus encoder. sampleRate is the rate of the raw
// stereo PCM the emulator produces (the same rate is used for the
// downmixed mono stream).
func New(sampleRate, fps int) (*Encoder, error) {
	enc, err := opus.NewEncoder(sampleRate, 1, opus.AppAudio)
	if err != nil {
		return nil, fmt.Errorf("audioenc: opus.NewEncoder: %w", err)
	}
	return &Encoder{
		enc:       enc,
		fps:       fps,
		staleness: pacing.NewStalenessGate(),
		scratch:   make([]byte, 4000),
	}, nil
}

// ErrDropped mirrors videoenc.ErrDropped.
type ErrDropped struct {
	Reason string
	Fatal  bool
}

func (e *ErrDropped) Error() string { return "dropped: " + e.Reason }

// Encode submits a raw interleaved-stereo PCM frame. Only the left
// channel is kept: sample i of the mono input equals input[2*i]. This
// is a deliberate, documented simplification — do not change it to an
// (L+R)/2 average without reconsidering it explicitly.
func (e *Encoder) Encode(frame *types.RawSoundFrame) (*types.EncodedPacket, error) {
	now := time.Now()
	e.frames.NextPTS()

	if e.staleness.IsStale(frame.Timestamp, now) {
		return nil, &ErrDropped{Reason: "stale"}
	}

	mono := downmixLeftChannel(frame.Samples)

	n, err := e.enc.Encode(mono, e.scratch)
	if err != nil {
		return nil, &ErrDropped{Reason: "codec encode failed: " + err.Error(), Fatal: true}
	}

	payload := make([]byte, n)
	copy(payload, e.scratch[:n])

	return &types.EncodedPacket{
		Payload:   payload,
		Timestamp: frame.Timestamp,
	}, nil
}

// downmixLeftChannel extracts the left channel from interleaved stereo
// samples: mono[i] = interleaved[2*i].
func downmixLeftChannel(interleaved []int16) []int16 {
	n := len(interleaved) / 2
	mono := make([]int16, n)
	for i := 0; i < n; i++ {
		mono[i] = interleaved[2*i]
	}
	return mono
}

// Close does nothing; the Opus encoder holds no resource that is
// released explicitly.
func (e *Encoder) Close() {}
