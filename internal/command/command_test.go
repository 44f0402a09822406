package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gipan/internal/types"
)

// TestParseKeyArg covers property 7: "053d" -> {53, KEY_DOWN},
// "001u" -> {1, KEY_UP}.
func TestParseKeyArg(t *testing.T) {
	evt, err := ParseKeyArg("053d")
	require.NoError(t, err)
	assert.Equal(t, types.InputEvent{Value: 53, Kind: types.KeyDown}, evt)

	evt, err = ParseKeyArg("001u")
	require.NoError(t, err)
	assert.Equal(t, types.InputEvent{Value: 1, Kind: types.KeyUp}, evt)
}

func TestParseKeyArgRejectsBadInput(t *testing.T) {
	cases := []string{"", "1d", "12345", "05Xd", "053x", "999d"}
	for _, c := range cases {
		_, err := ParseKeyArg(c)
		assert.Error(t, err, "expected error for %q", c)
	}
}

func TestParseCommandKey(t *testing.T) {
	cmd, err := Parse([]byte(`{"cmd":"key","args":["053d"]}`))
	require.NoError(t, err)
	assert.Equal(t, "key", cmd.Cmd)
	require.Len(t, cmd.Args, 1)

	evt, err := ParseKeyArg(cmd.Args[0])
	require.NoError(t, err)
	assert.Equal(t, uint8(53), evt.Value)
	assert.Equal(t, types.KeyDown, evt.Kind)
}

func TestParseCommandMalformedJSON(t *testing.T) {
	_, err := Parse([]byte(`{not json`))
	assert.Error(t, err)
}

func TestParseCommandTooLarge(t *testing.T) {
	big := make([]byte, MaxMessageSize+1)
	for i := range big {
		big[i] = 'a'
	}
	_, err := Parse(big)
	assert.Error(t, err)
}

func TestParseCtrlArg(t *testing.T) {
	assert.Equal(t, CtrlPause, ParseCtrlArg("pause"))
	assert.Equal(t, CtrlResume, ParseCtrlArg("resume"))
	assert.Equal(t, CtrlUnknown, ParseCtrlArg("explode"))
}
