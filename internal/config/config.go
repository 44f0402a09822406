// Package config parses the process's CLI flags into a
// types.GameProperties. Deliberately stdlib-only: argument parsing is
// an external collaborator's concern, and the teacher and the original
// Rust source both hand-roll this with a flat flag loop rather than
// reaching for a framework.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"gipan/internal/types"
)

// ErrConfig wraps any reason the supplied arguments could not be turned
// into a valid GameProperties — always fatal.
type ErrConfig struct {
	Reason string
}

func (e *ErrConfig) Error() string { return "config error: " + e.Reason }

func defaults() types.GameProperties {
	return types.GameProperties{
		Resolution:       types.Resolution{Width: 480, Height: 320},
		FPS:              30,
		KeyframeInterval: 12,
		VideoCodec:       "h264",
		ImageOutput:      "ipc://./images.ipc",
		SoundOutput:      "ipc://./sounds.ipc",
		CommandInput:     "ipc://./cmds.ipc",
	}
}

// Parse builds a GameProperties from CLI-style arguments (typically
// os.Args[1:]). An argument starting with "--" that isn't one of the
// recognized flags aborts with ErrConfig, matching
// extract_properties_from_args's panic behavior in
// original_source/src/main.rs.
func Parse(args []string) (types.GameProperties, error) {
	props := defaults()

	fs := flag.NewFlagSet("gipan", flag.ContinueOnError)
	fs.Usage = func() {}

	game := fs.String("game", "", "system/game name (required)")
	resolution := fs.String("resolution", "480x320", "capture resolution WxH")
	fps := fs.Int("fps", 30, "frames per second")
	keyint := fs.Int("keyframe-interval", 12, "keyframe interval, in frames")
	codec := fs.String("video-codec", "h264", "video codec: h264 or vp9")
	imageOut := fs.String("imageframe-output", "ipc://./images.ipc", "video packet PUSH endpoint")
	soundOut := fs.String("soundframe-output", "ipc://./sounds.ipc", "audio packet PUSH endpoint")
	cmdIn := fs.String("cmd-input", "", "command PULL endpoint (alias: --key-input)")
	keyIn := fs.String("key-input", "ipc://./cmds.ipc", "command PULL endpoint")
	idleSecs := fs.Int("idle-time-to-enc-sleep", 0, "seconds idle before suppressing encoder ingress (0 disables)")

	if err := fs.Parse(args); err != nil {
		return types.GameProperties{}, &ErrConfig{Reason: err.Error()}
	}

	for _, a := range fs.Args() {
		if strings.HasPrefix(a, "--") {
			return types.GameProperties{}, &ErrConfig{Reason: fmt.Sprintf("invalid args have been passed: %q", a)}
		}
	}

	if *game == "" {
		return types.GameProperties{}, &ErrConfig{Reason: "--game is required"}
	}
	props.SystemName = *game

	w, h, err := parseResolution(*resolution)
	if err != nil {
		return types.GameProperties{}, err
	}
	props.Resolution = types.Resolution{Width: w, Height: h}

	if *fps <= 0 {
		return types.GameProperties{}, &ErrConfig{Reason: "--fps must be positive"}
	}
	props.FPS = *fps

	if *keyint <= 0 {
		return types.GameProperties{}, &ErrConfig{Reason: "--keyframe-interval must be positive"}
	}
	props.KeyframeInterval = *keyint

	if *codec != "h264" && *codec != "vp9" {
		return types.GameProperties{}, &ErrConfig{Reason: fmt.Sprintf("--video-codec must be h264 or vp9, got %q", *codec)}
	}
	props.VideoCodec = *codec

	props.ImageOutput = *imageOut
	props.SoundOutput = *soundOut

	props.CommandInput = *keyIn
	if *cmdIn != "" {
		props.CommandInput = *cmdIn
	}

	props.IdleTimeToEncSleep = *idleSecs

	return props, nil
}

func parseResolution(arg string) (w, h int, err error) {
	parts := strings.Split(arg, "x")
	if len(parts) != 2 {
		return 0, 0, &ErrConfig{Reason: fmt.Sprintf("--resolution must be WxH, got %q", arg)}
	}
	w, err = strconv.Atoi(parts[0])
	if err != nil || w <= 0 {
		return 0, 0, &ErrConfig{Reason: fmt.Sprintf("invalid width in %q", arg)}
	}
	h, err = strconv.Atoi(parts[1])
	if err != nil || h <= 0 {
		return 0, 0, &ErrConfig{Reason: fmt.Sprintf("invalid height in %q", arg)}
	}
	return w, h, nil
}
