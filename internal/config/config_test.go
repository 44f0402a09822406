package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	props, err := Parse([]string{"--game", "pacman"})
	require.NoError(t, err)
	assert.Equal(t, "pacman", props.SystemName)
	assert.Equal(t, 480, props.Resolution.Width)
	assert.Equal(t, 320, props.Resolution.Height)
	assert.Equal(t, 30, props.FPS)
	assert.Equal(t, 12, props.KeyframeInterval)
	assert.Equal(t, "h264", props.VideoCodec)
	assert.Equal(t, 0, props.IdleTimeToEncSleep)
}

func TestParseOverrides(t *testing.T) {
	props, err := Parse([]string{
		"--game", "galaga",
		"--resolution", "640x480",
		"--fps", "60",
		"--keyframe-interval", "30",
		"--video-codec", "vp9",
		"--idle-time-to-enc-sleep", "5",
	})
	require.NoError(t, err)
	assert.Equal(t, 640, props.Resolution.Width)
	assert.Equal(t, 480, props.Resolution.Height)
	assert.Equal(t, 60, props.FPS)
	assert.Equal(t, 30, props.KeyframeInterval)
	assert.Equal(t, "vp9", props.VideoCodec)
	assert.Equal(t, 5, props.IdleTimeToEncSleep)
}

func TestParseRequiresGame(t *testing.T) {
	_, err := Parse([]string{})
	assert.Error(t, err)
}

func TestParseRejectsUnknownFlag(t *testing.T) {
	_, err := Parse([]string{"--game", "pacman", "--bogus-flag", "x"})
	assert.Error(t, err)
}

func TestParseRejectsBadResolution(t *testing.T) {
	_, err := Parse([]string{"--game", "pacman", "--resolution", "nope"})
	assert.Error(t, err)
}

func TestParseKeyInputAlias(t *testing.T) {
	props, err := Parse([]string{"--game", "pacman", "--cmd-input", "ipc://./other.ipc"})
	require.NoError(t, err)
	assert.Equal(t, "ipc://./other.ipc", props.CommandInput)
}
