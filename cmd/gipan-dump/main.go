// Command gipan-dump is a developer aid: it links the same emulator
// facade as the gipan daemon but skips encode/publish entirely,
// overwriting a single frames.raw file with the latest captured BGRA
// frame on every callback. Used to verify the capture callback wiring
// without standing up the full streaming pipeline.
//
// Grounded on original_source/ctrl/src/main.rs, a second, much smaller
// Rust binary that does exactly this against the same libemu facade.
package main

import (
	"fmt"
	"os"

	"gipan/internal/config"
	"gipan/internal/emulator"
	"gipan/internal/types"
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

	f, err := os.Create("frames.raw")
	if err != nil {
		fmt.Fprintln(os.Stderr, "gipan-dump:", err)
		return 1
	}
	defer f.Close()

	facade, err := emulator.Create(props.Resolution.Width, props.Resolution.Height, props.FPS)
	if err != nil {
		fmt.Fprintln(os.Stderr, "gipan-dump:", err)
		return 1
	}

	facade.SetImageFrameCallback(func(frame types.RawImageFrame) {
		if _, err := f.WriteAt(frame.Pixels, 0); err != nil {
			fmt.Fprintln(os.Stderr, "gipan-dump: write failed:", err)
		}
	})

	return facade.Run(props.SystemName)
}
