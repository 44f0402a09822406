// Package command decodes and dispatches the JSON objects received on
// the inbound command socket (C7's parsing half — the socket binding
// and loop live in internal/transport so this package stays
// unit-testable without a real nanomsg endpoint).
package command

import (
	"encoding/json"
	"fmt"

	"gipan/internal/types"
)

// MaxMessageSize is the largest command message the ingest worker
// accepts.
const MaxMessageSize = 1024

// ErrMalformed wraps any reason a raw message could not be turned into
// a usable Command or InputEvent — always logged and discarded by the
// caller, never fatal.
type ErrMalformed struct {
	Reason string
}

func (e *ErrMalformed) Error() string { return "malformed command: " + e.Reason }

// Parse decodes a raw inbound message into a Command.
func Parse(raw []byte) (types.Command, error) {
	if len(raw) > MaxMessageSize {
		return types.Command{}, &ErrMalformed{Reason: fmt.Sprintf("message too large: %d bytes", len(raw))}
	}
	var cmd types.Command
	if err := json.Unmarshal(raw, &cmd); err != nil {
		return types.Command{}, &ErrMalformed{Reason: err.Error()}
	}
	return cmd, nil
}

// ParseKeyArg decodes the 4-character key argument of a "key" command:
// three decimal digits of key code followed by 'd' (down) or 'u' (up).
func ParseKeyArg(arg string) (types.InputEvent, error) {
	if len(arg) != 4 {
		return types.InputEvent{}, &ErrMalformed{Reason: fmt.Sprintf("key arg must be 4 chars, got %d", len(arg))}
	}
	var value int
	for i := 0; i < 3; i++ {
		c := arg[i]
		if c < '0' || c > '9' {
			return types.InputEvent{}, &ErrMalformed{Reason: fmt.Sprintf("key arg %q is not 3 decimal digits", arg[:3])}
		}
		value = value*10 + int(c-'0')
	}
	if value > 255 {
		return types.InputEvent{}, &ErrMalformed{Reason: fmt.Sprintf("key value %d out of range", value)}
	}

	var kind types.InputKind
	switch arg[3] {
	case 'd':
		kind = types.KeyDown
	case 'u':
		kind = types.KeyUp
	default:
		return types.InputEvent{}, &ErrMalformed{Reason: fmt.Sprintf("key arg %q has invalid kind byte %q", arg, arg[3])}
	}

	return types.InputEvent{Value: uint8(value), Kind: kind}, nil
}

// CtrlAction enumerates the recognized "ctrl" command arguments.
type CtrlAction int

const (
	CtrlUnknown CtrlAction = iota
	CtrlPause
	CtrlResume
)

// ParseCtrlArg maps a "ctrl" command's args[0] to a CtrlAction.
// Unrecognized values return CtrlUnknown, which the caller logs and
// ignores rather than treating as an error.
func ParseCtrlArg(arg string) CtrlAction {
	switch arg {
	case "pause":
		return CtrlPause
	case "resume":
		return CtrlResume
	default:
		return CtrlUnknown
	}
}
