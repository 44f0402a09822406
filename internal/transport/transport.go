// Package transport carries encoded packets out to subscribers and
// commands in from controllers over nanomsg-compatible PUSH/PULL
// scalability-protocol sockets, bound on ipc:// endpoints.
//
// Grounded on original_source/src/main.rs's run_frame_handler /
// run_sound_handler (Socket::new(Protocol::Push), bind, nb_write) and
// run_input_handler (Protocol::Pull, nb_read, a small fixed buffer).
// go.nanomsg.org/mangos/v3 is the pure-Go ecosystem analog of the Rust
// nanomsg crate the original links against; no repo in the example
// pack uses nanomsg or zeromq, so this dependency is named rather than
// pack-grounded, but its PUSH/PULL semantics and ipc:// URI scheme
// match the original's exactly.
package transport

import (
	"context"
	"fmt"
	"time"

	"go.nanomsg.org/mangos/v3"
	"go.nanomsg.org/mangos/v3/protocol/pull"
	"go.nanomsg.org/mangos/v3/protocol/push"
	_ "go.nanomsg.org/mangos/v3/transport/ipc"

	"github.com/rs/zerolog"

	"gipan/internal/command"
	"gipan/internal/types"
)

// sendDeadline bounds how long Publish blocks before treating the
// socket as backpressured and dropping the packet, the closest mangos
// equivalent of nanomsg's non-blocking nb_write.
const sendDeadline = 1 * time.Millisecond

// Publisher is C6: a PUSH-socket packet sink. Safe for use by a single
// worker goroutine.
type Publisher struct {
	sock mangos.Socket
	log  zerolog.Logger
}

// NewPublisher binds a PUSH socket at endpoint (an ipc:// URI).
func NewPublisher(endpoint string, log zerolog.Logger) (*Publisher, error) {
	sock, err := push.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("transport: push.NewSocket: %w", err)
	}
	if err := sock.SetOption(mangos.OptionSendDeadline, sendDeadline); err != nil {
		sock.Close()
		return nil, fmt.Errorf("transport: set send deadline: %w", err)
	}
	if err := sock.Listen(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("transport: listen %s: %w", endpoint, err)
	}
	return &Publisher{sock: sock, log: log.With().Str("endpoint", endpoint).Logger()}, nil
}

// Publish writes a single encoded packet's payload to the socket. A
// send-deadline timeout (no subscriber currently pulling fast enough)
// is logged at debug level and otherwise ignored — publish never
// blocks the encoder loop feeding it.
func (p *Publisher) Publish(pkt *types.EncodedPacket) {
	if err := p.sock.Send(pkt.Payload); err != nil {
		if err == mangos.ErrSendTimeout {
			p.log.Debug().Msg("publish: send deadline exceeded, dropping packet")
			return
		}
		p.log.Warn().Err(err).Msg("publish: send failed")
	}
}

// Close releases the socket.
func (p *Publisher) Close() error { return p.sock.Close() }

// RunPublisher drains in until ctx is done or in is closed, publishing
// every packet it receives. It is the C6 worker loop.
func RunPublisher(ctx context.Context, in <-chan *types.EncodedPacket, pub *Publisher) {
	for {
		select {
		case <-ctx.Done():
			return
		case pkt, ok := <-in:
			if !ok {
				return
			}
			pub.Publish(pkt)
		}
	}
}

// CommandHandler receives a decoded InputEvent or CtrlAction. Each
// accepted message produces exactly one call: HandleKey for a "key"
// command, HandleCtrl for a recognized "ctrl" action (never
// CtrlUnknown).
type CommandHandler interface {
	HandleKey(types.InputEvent)
	HandleCtrl(command.CtrlAction)
}

// CommandIngest is C7: a PULL-socket command source.
type CommandIngest struct {
	sock mangos.Socket
	log  zerolog.Logger
}

// NewCommandIngest binds a PULL socket at endpoint (an ipc:// URI).
func NewCommandIngest(endpoint string, log zerolog.Logger) (*CommandIngest, error) {
	sock, err := pull.NewSocket()
	if err != nil {
		return nil, fmt.Errorf("transport: pull.NewSocket: %w", err)
	}
	if err := sock.Listen(endpoint); err != nil {
		sock.Close()
		return nil, fmt.Errorf("transport: listen %s: %w", endpoint, err)
	}
	return &CommandIngest{sock: sock, log: log.With().Str("endpoint", endpoint).Logger()}, nil
}

// Close releases the socket.
func (c *CommandIngest) Close() error { return c.sock.Close() }

// RunCommandIngest blocks on the socket's receive loop until ctx is
// done, parsing each message with internal/command and dispatching to
// handler. Malformed messages are logged and discarded, never fatal.
func RunCommandIngest(ctx context.Context, ing *CommandIngest, handler CommandHandler) {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		ing.sock.Close()
		close(done)
	}()

	for {
		raw, err := ing.sock.Recv()
		if err != nil {
			select {
			case <-done:
				return
			default:
			}
			ing.log.Debug().Err(err).Msg("command ingest: recv failed")
			continue
		}

		cmd, err := command.Parse(raw)
		if err != nil {
			ing.log.Debug().Err(err).Msg("command ingest: malformed message")
			continue
		}

		switch cmd.Cmd {
		case "key":
			if len(cmd.Args) != 1 {
				ing.log.Debug().Msg("command ingest: key command missing args[0]")
				continue
			}
			evt, err := command.ParseKeyArg(cmd.Args[0])
			if err != nil {
				ing.log.Debug().Err(err).Msg("command ingest: bad key arg")
				continue
			}
			handler.HandleKey(evt)
		case "ctrl":
			if len(cmd.Args) != 1 {
				ing.log.Debug().Msg("command ingest: ctrl command missing args[0]")
				continue
			}
			action := command.ParseCtrlArg(cmd.Args[0])
			if action == command.CtrlUnknown {
				ing.log.Debug().Str("arg", cmd.Args[0]).Msg("command ingest: unrecognized ctrl action")
				continue
			}
			handler.HandleCtrl(action)
		default:
			ing.log.Debug().Str("cmd", cmd.Cmd).Msg("command ingest: unrecognized command")
		}
	}
}
