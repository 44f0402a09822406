// Package types holds the data model shared across the capture, encode,
// publish and ingest stages of the pipeline.
package types

import "time"

// Resolution is immutable after process startup.
type Resolution struct {
	Width  int
	Height int
}

// GameProperties is the process-wide, immutable configuration assembled
// from CLI flags at startup.
type GameProperties struct {
	Resolution       Resolution
	FPS              int
	KeyframeInterval int
	SystemName       string
	VideoCodec       string // "h264" or "vp9"

	ImageOutput  string // ipc:// URI, PUSH
	SoundOutput  string // ipc:// URI, PUSH
	CommandInput string // ipc:// URI, PULL

	IdleTimeToEncSleep int // seconds; <= 0 disables the idle gate
}

// RawImageFrame is a single BGRA capture handed off by the emulator
// facade. Ownership transfers into the pipeline on emission — it is
// consumed exactly once, by the video encoder or the staleness gate.
type RawImageFrame struct {
	Pixels    []byte // length W*H*4, BGRA
	Timestamp time.Time
}

// RawSoundFrame is a single interleaved-stereo PCM capture handed off by
// the emulator facade. Consumed exactly once.
type RawSoundFrame struct {
	Samples    []int16 // interleaved stereo, L0 R0 L1 R1 ...
	SampleRate int
	Channels   int // always 2 on the producing side
	Timestamp  time.Time
}

// EncodedPacket is an opaque compressed payload emitted by either
// encoder, carrying the timestamp of the raw frame it derived from.
type EncodedPacket struct {
	Payload   []byte
	Timestamp time.Time
	KeyFrame  bool
}

// InputKind distinguishes a key press from a key release.
type InputKind int

const (
	KeyDown InputKind = iota
	KeyUp
)

func (k InputKind) String() string {
	if k == KeyUp {
		return "up"
	}
	return "down"
}

// InputEvent is a single key transition destined for the emulator's
// input queue.
type InputEvent struct {
	Value uint8
	Kind  InputKind
}

// Command is the decoded form of a JSON command object received on the
// inbound command socket.
type Command struct {
	Cmd  string   `json:"cmd"`
	Args []string `json:"args"`
}
