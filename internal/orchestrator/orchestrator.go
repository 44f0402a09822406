// Package orchestrator wires the capture, encode, publish and ingest
// stages together (C10): it builds the idle gate and emulator facade,
// declares the bounded channel fabric (C5), spawns one worker goroutine
// per long-lived pipeline stage, and blocks the calling goroutine on
// the emulator's own run loop.
//
// Grounded on original_source/src/main.rs's main() (wiring order: build
// context, register callbacks, spawn handler threads, run()) and
// richinsley-bunghole/main.go's signal.Notify(SIGINT, SIGTERM) shutdown
// pattern — graceful shutdown is this runtime's own addition, absent
// from the original, closing the channel fabric in dataflow order and
// joining workers with a bounded timeout.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"gipan/internal/audioenc"
	"gipan/internal/command"
	"gipan/internal/emulator"
	"gipan/internal/idle"
	"gipan/internal/transport"
	"gipan/internal/types"
	"gipan/internal/videoenc"
)

// queueCapacity bounds every channel in the fabric (C5).
const queueCapacity = 64

// shutdownTimeout bounds how long Run waits for workers to drain after
// the context is cancelled.
const shutdownTimeout = 3 * time.Second

// Runtime owns every component C1-C9 and the channel fabric connecting
// them, and is the single entry point a command invokes to run the
// pipeline to completion.
type Runtime struct {
	props types.GameProperties
	log   zerolog.Logger

	facade    *emulator.Facade
	idleGate  *idle.Gate
	video     *videoenc.Encoder
	audio     *audioenc.Encoder
	publisher *transport.Publisher
	soundPub  *transport.Publisher
	ingest    *transport.CommandIngest

	rawImages chan *types.RawImageFrame
	rawSounds chan *types.RawSoundFrame
	imagePkts chan *types.EncodedPacket
	soundPkts chan *types.EncodedPacket

	quit chan struct{}
}

// New constructs every component and wires the channel fabric, but
// does not yet spawn workers or start emulation.
func New(props types.GameProperties, log zerolog.Logger) (*Runtime, error) {
	video, err := videoenc.New(props.Resolution.Width, props.Resolution.Height, props.FPS, props.KeyframeInterval, props.VideoCodec)
	if err != nil {
		return nil, err
	}

	audio, err := audioenc.New(48000, props.FPS)
	if err != nil {
		video.Close()
		return nil, err
	}

	imagePub, err := transport.NewPublisher(props.ImageOutput, log)
	if err != nil {
		video.Close()
		audio.Close()
		return nil, err
	}

	soundPub, err := transport.NewPublisher(props.SoundOutput, log)
	if err != nil {
		video.Close()
		audio.Close()
		imagePub.Close()
		return nil, err
	}

	ingest, err := transport.NewCommandIngest(props.CommandInput, log)
	if err != nil {
		video.Close()
		audio.Close()
		imagePub.Close()
		soundPub.Close()
		return nil, err
	}

	facade, err := emulator.Create(props.Resolution.Width, props.Resolution.Height, props.FPS)
	if err != nil {
		video.Close()
		audio.Close()
		imagePub.Close()
		soundPub.Close()
		ingest.Close()
		return nil, err
	}

	rt := &Runtime{
		props:     props,
		log:       log,
		facade:    facade,
		idleGate:  idle.New(),
		video:     video,
		audio:     audio,
		publisher: imagePub,
		soundPub:  soundPub,
		ingest:    ingest,
		rawImages: make(chan *types.RawImageFrame, queueCapacity),
		rawSounds: make(chan *types.RawSoundFrame, queueCapacity),
		imagePkts: make(chan *types.EncodedPacket, queueCapacity),
		soundPkts: make(chan *types.EncodedPacket, queueCapacity),
		quit:      make(chan struct{}),
	}

	facade.SetImageFrameCallback(rt.onImageFrame)
	facade.SetSoundFrameCallback(rt.onSoundFrame)

	return rt, nil
}

// onImageFrame is the emulator's image capture callback, invoked on the
// native emulator's own producing thread. A full rawImages channel
// blocks the send — back-pressure propagates all the way to the
// emulator thread, per the canonical queue-fabric design, rather than
// silently dropping frames under load.
func (r *Runtime) onImageFrame(f types.RawImageFrame) {
	if r.idleGate.IsIdle(r.props.IdleTimeToEncSleep, time.Now()) {
		return
	}
	frame := f
	select {
	case r.rawImages <- &frame:
	case <-r.quit:
	}
}

// onSoundFrame is the emulator's sound capture callback. Same
// blocking-backpressure contract as onImageFrame.
func (r *Runtime) onSoundFrame(f types.RawSoundFrame) {
	if r.idleGate.IsIdle(r.props.IdleTimeToEncSleep, time.Now()) {
		return
	}
	frame := f
	select {
	case r.rawSounds <- &frame:
	case <-r.quit:
	}
}

// HandleKey implements transport.CommandHandler.
func (r *Runtime) HandleKey(evt types.InputEvent) {
	r.idleGate.Touch(time.Now())
	r.facade.PutInputEvent(evt)
}

// HandleCtrl implements transport.CommandHandler.
func (r *Runtime) HandleCtrl(action command.CtrlAction) {
	r.idleGate.Touch(time.Now())
	switch action {
	case command.CtrlPause:
		r.facade.Pause()
	case command.CtrlResume:
		r.facade.Resume()
	}
}

// Run spawns every worker, starts emulation, and blocks until the
// emulator's run loop returns. Cancelling ctx stops the workers and
// releases capture callbacks blocked on a full queue; it does not end
// the native run loop. It returns the emulator's exit code.
func (r *Runtime) Run(ctx context.Context) int {
	var wg sync.WaitGroup

	// The ingest worker has no queue to drain, so it is stopped through
	// its own context once the emulator's run loop returns.
	ingestCtx, stopIngest := context.WithCancel(ctx)

	// Each encode loop is the only sender on its packet queue, so it
	// closes that queue when it returns, letting the publisher drain it.
	wg.Add(1)
	go func() {
		defer wg.Done()
		r.runVideoEncodeLoop(ctx)
		close(r.imagePkts)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		r.runAudioEncodeLoop(ctx)
		close(r.soundPkts)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		transport.RunPublisher(ctx, r.imagePkts, r.publisher)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		transport.RunPublisher(ctx, r.soundPkts, r.soundPub)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		transport.RunCommandIngest(ingestCtx, r.ingest, r)
	}()

	// If the context is cancelled (SIGINT/SIGTERM) while the capture
	// callbacks are blocked on a full queue — workers already gone —
	// this unblocks them so the native run loop can still return.
	go func() {
		<-ctx.Done()
		close(r.quit)
	}()

	exitCode := r.facade.Run(r.props.SystemName)

	close(r.rawImages)
	close(r.rawSounds)
	stopIngest()

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-time.After(shutdownTimeout):
		r.log.Warn().Msg("orchestrator: shutdown timeout exceeded, workers still draining")
	}

	return exitCode
}

// Close releases every native resource. Call after Run returns.
func (r *Runtime) Close() {
	r.video.Close()
	r.audio.Close()
	r.publisher.Close()
	r.soundPub.Close()
	r.ingest.Close()
}

func (r *Runtime) runVideoEncodeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-r.rawImages:
			if !ok {
				return
			}
			pkt, err := r.video.Encode(frame)
			if err != nil {
				if dropped, ok := err.(*videoenc.ErrDropped); ok && !dropped.Fatal {
					r.log.Debug().Str("reason", dropped.Reason).Msg("video encode: frame dropped")
					continue
				}
				r.log.Warn().Err(err).Msg("video encode: fatal codec error")
				return
			}
			if pkt == nil {
				continue
			}
			select {
			case r.imagePkts <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (r *Runtime) runAudioEncodeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case frame, ok := <-r.rawSounds:
			if !ok {
				return
			}
			pkt, err := r.audio.Encode(frame)
			if err != nil {
				if dropped, ok := err.(*audioenc.ErrDropped); ok && !dropped.Fatal {
					r.log.Debug().Str("reason", dropped.Reason).Msg("audio encode: frame dropped")
					continue
				}
				r.log.Warn().Err(err).Msg("audio encode: fatal codec error")
				return
			}
			if pkt == nil {
				continue
			}
			select {
			case r.soundPkts <- pkt:
			case <-ctx.Done():
				return
			}
		}
	}
}
