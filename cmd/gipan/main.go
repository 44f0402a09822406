// Command gipan runs the headless cloud-arcade streaming daemon: it
// links the native emulator library, encodes captured video and audio,
// publishes packets over PUSH sockets, and ingests input commands over
// a PULL socket until the emulator exits or the process is signalled.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gipan/internal/config"
	"gipan/internal/logging"
	"gipan/internal/orchestrator"
)

func main() {
	os.Exit(run())
}

func run() int {
	props, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	log := logging.Configure(logging.Config{Level: "info"})
	log.Info().
		Str("game", props.SystemName).
		Int("width", props.Resolution.Width).
		Int("height", props.Resolution.Height).
		Int("fps", props.FPS).
		Str("video_codec", props.VideoCodec).
		Msg("starting gipan")

	rt, err := orchestrator.New(props, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize runtime")
		return 1
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
		cancel()
	}()

	exitCode := rt.Run(ctx)
	log.Info().Int("exit_code", exitCode).Msg("emulation finished")
	return exitCode
}
