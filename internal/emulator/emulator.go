// Package emulator is the facade (C9) over the native emulation
// library: a C-ABI surface, treated as an external collaborator, that
// this package links against via cgo.
//
// Grounded on original_source/libemu/src/lib.rs, the Rust FFI
// equivalent of this file: a singleton opaque handle, callbacks
// registered by boxing a Go closure behind a void* context and
// trampolining through a C shim, and — critically — copying the
// native buffer into owned Go memory before the callback returns,
// since the native pointer is invalid afterwards.
package emulator

/*
#include <stdint.h>
#include <stdlib.h>

// The C-ABI surface this runtime expects. The real definitions live in
// the native emulator library this package links against; this header
// mirrors that contract so cgo can call into it.
typedef struct emu_handle emu_handle;

typedef struct {
	uint8_t *buffer;
	size_t   buf_size;
} emu_frame_t;

typedef struct {
	int16_t *buffer;
	size_t   samples;
	int      channels;
	int      sample_rate;
} emu_sound_t;

typedef enum {
	EMU_INPUT_KEY_DOWN = 0,
	EMU_INPUT_KEY_UP   = 1,
} emu_input_kind_t;

typedef struct {
	uint8_t key;
	emu_input_kind_t type;
} emu_input_event_t;

extern emu_handle* emu_get_instance(void);
extern void emu_set_frame_info(emu_handle *h, int w, int h2);
extern void emu_set_image_frame_cb(emu_handle *h, void *ctx, void (*fn)(void *ctx, emu_frame_t frame));
extern void emu_set_sound_frame_cb(emu_handle *h, void *ctx, void (*fn)(void *ctx, emu_sound_t sound));
extern void emu_enqueue_input_event(emu_handle *h, emu_input_event_t evt);
extern void emu_pause(emu_handle *h);
extern void emu_resume(emu_handle *h);
extern int  emu_run(emu_handle *h, const char *system_name);

// Trampolines: cgo cannot pass Go func values as C function pointers,
// so these forward into the exported Go functions below and are the
// addresses actually registered with the native library.
extern void goImageFrameTrampoline(void *ctx, emu_frame_t frame);
extern void goSoundFrameTrampoline(void *ctx, emu_sound_t sound);

static void emu_register_image_cb(emu_handle *h, void *ctx) {
	emu_set_image_frame_cb(h, ctx, goImageFrameTrampoline);
}

static void emu_register_sound_cb(emu_handle *h, void *ctx) {
	emu_set_sound_frame_cb(h, ctx, goSoundFrameTrampoline);
}
*/
import "C"

import (
	"sync"
	"time"
	"unsafe"

	"gipan/internal/types"
)

// ImageFrameCallback receives an owned copy of a captured video frame.
type ImageFrameCallback func(types.RawImageFrame)

// SoundFrameCallback receives an owned copy of a captured audio frame.
type SoundFrameCallback func(types.RawSoundFrame)

var (
	registryMu sync.Mutex
	registry   = map[unsafe.Pointer]*Facade{}
)

// Facade is C9: it owns (a clone of) the native emulator handle.
// Cloning yields handles that refer to the same singleton, so the same
// Facade value can be shared between the ingest worker and the
// orchestrator's Run call.
type Facade struct {
	handle *C.emu_handle
	ctx    unsafe.Pointer

	imageCB SoundImageHolder
	soundCB SoundImageHolder
}

// SoundImageHolder lets us store/swap a Go callback behind a stable
// pointer key without allocating on every capture.
type SoundImageHolder struct {
	mu sync.RWMutex
	fn interface{}
}

// Create acquires the singleton native handle and configures frame
// geometry. fps is accepted for interface symmetry even though the
// current native contract only consumes width/height at this call.
func Create(width, height, fps int) (*Facade, error) {
	h := C.emu_get_instance()
	C.emu_set_frame_info(h, C.int(width), C.int(height))

	f := &Facade{handle: h, ctx: unsafe.Pointer(h)}

	registryMu.Lock()
	registry[f.ctx] = f
	registryMu.Unlock()

	C.emu_register_image_cb(h, f.ctx)
	C.emu_register_sound_cb(h, f.ctx)

	return f, nil
}

// Clone returns a handle referring to the same native singleton, safe
// to hand to another goroutine (e.g. the command ingest worker).
func (f *Facade) Clone() *Facade {
	return &Facade{handle: f.handle, ctx: f.ctx}
}

// SetImageFrameCallback registers the callback invoked on every
// captured video frame.
func (f *Facade) SetImageFrameCallback(cb ImageFrameCallback) {
	f.imageCB.mu.Lock()
	f.imageCB.fn = cb
	f.imageCB.mu.Unlock()
}

// SetSoundFrameCallback registers the callback invoked on every
// captured audio frame.
func (f *Facade) SetSoundFrameCallback(cb SoundFrameCallback) {
	f.soundCB.mu.Lock()
	f.soundCB.fn = cb
	f.soundCB.mu.Unlock()
}

// PutInputEvent enqueues a key transition into the emulator's own
// input queue — thread-safe on the native side.
func (f *Facade) PutInputEvent(evt types.InputEvent) {
	var kind C.emu_input_kind_t = C.EMU_INPUT_KEY_DOWN
	if evt.Kind == types.KeyUp {
		kind = C.EMU_INPUT_KEY_UP
	}
	C.emu_enqueue_input_event(f.handle, C.emu_input_event_t{
		key:  C.uint8_t(evt.Value),
		_type: kind,
	})
}

// Pause suspends emulation. Idempotent.
func (f *Facade) Pause() { C.emu_pause(f.handle) }

// Resume resumes emulation. Idempotent.
func (f *Facade) Resume() { C.emu_resume(f.handle) }

// Run blocks until the native side terminates emulation, returning its
// exit code. This is the orchestrator's one long-lived blocking call
// on the main thread.
func (f *Facade) Run(systemName string) int {
	cName := C.CString(systemName)
	defer C.free(unsafe.Pointer(cName))
	return int(C.emu_run(f.handle, cName))
}

//export goImageFrameTrampoline
func goImageFrameTrampoline(ctx unsafe.Pointer, frame C.emu_frame_t) {
	registryMu.Lock()
	f := registry[ctx]
	registryMu.Unlock()
	if f == nil {
		return
	}

	// Copy out of native memory now — the pointer is invalid once this
	// function returns.
	buf := C.GoBytes(unsafe.Pointer(frame.buffer), C.int(frame.buf_size))

	f.imageCB.mu.RLock()
	cb, _ := f.imageCB.fn.(ImageFrameCallback)
	f.imageCB.mu.RUnlock()
	if cb == nil {
		return
	}
	cb(types.RawImageFrame{
		Pixels:    buf,
		Timestamp: time.Now(),
	})
}

//export goSoundFrameTrampoline
func goSoundFrameTrampoline(ctx unsafe.Pointer, sound C.emu_sound_t) {
	registryMu.Lock()
	f := registry[ctx]
	registryMu.Unlock()
	if f == nil {
		return
	}

	n := int(sound.samples) * int(sound.channels)
	src := unsafe.Slice((*int16)(unsafe.Pointer(sound.buffer)), n)
	buf := make([]int16, n)
	copy(buf, src)

	f.soundCB.mu.RLock()
	cb, _ := f.soundCB.fn.(SoundFrameCallback)
	f.soundCB.mu.RUnlock()
	if cb == nil {
		return
	}
	cb(types.RawSoundFrame{
		Samples:    buf,
		SampleRate: int(sound.sample_rate),
		Channels:   int(sound.channels),
		Timestamp:  time.Now(),
	})
}
