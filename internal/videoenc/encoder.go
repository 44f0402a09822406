// Package videoenc wraps libavcodec to implement C2, the video
// encoder: BGRA raw frames in, compressed H.264 baseline or VP9 packets
// out, with the staleness gate and keyframe scheduler from
// internal/pacing applied before anything reaches the codec, and the
// BGRA-to-YUV420P planar conversion done by internal/color (C1) rather
// than by the codec library.
//
// Adapted from richinsley-bunghole/encode.go: same cgo struct/lifecycle
// shape (init/encode/destroy, a send_frame/receive_packet pair),
// generalized from "h264_nvenc or libx264 / hevc_nvenc or libx265" to
// two software-only configurations — there is no GPU-encoder
// requirement here, and a VP9 family is added where the teacher only
// had H.264/HEVC. Unlike the teacher, color conversion does not go
// through sws_scale: original_source/libenc/src/lib.rs's Vp9Encoder
// fills its frame planes with its own bgra_to_yuv420, and default
// swscale output is limited-range, which would make an all-black
// source frame encode to Y=16 instead of Y=0.
package videoenc

/*
#cgo pkg-config: libavcodec libavutil
#include <libavcodec/avcodec.h>
#include <libavutil/imgutils.h>
#include <libavutil/opt.h>
#include <stdlib.h>
#include <string.h>

typedef struct {
	AVCodecContext  *ctx;
	AVFrame         *frame;
	AVPacket        *pkt;
	int width;
	int height;
} VideoEncoderHandle;

static VideoEncoderHandle* videoenc_init(int width, int height, int fps, int keyint,
                                         const char *codec_name, char *errbuf, int errbuf_len) {
	VideoEncoderHandle *e = (VideoEncoderHandle*)calloc(1, sizeof(VideoEncoderHandle));
	if (!e) return NULL;
	e->width = width;
	e->height = height;

	const AVCodec *codec = NULL;
	int is_vp9 = (strcmp(codec_name, "vp9") == 0);

	if (is_vp9) {
		codec = avcodec_find_encoder_by_name("libvpx-vp9");
	} else {
		codec = avcodec_find_encoder_by_name("libx264");
	}
	if (!codec) {
		snprintf(errbuf, errbuf_len, "encoder %s not available", is_vp9 ? "libvpx-vp9" : "libx264");
		free(e);
		return NULL;
	}

	e->ctx = avcodec_alloc_context3(codec);
	if (!e->ctx) {
		snprintf(errbuf, errbuf_len, "avcodec_alloc_context3 failed");
		free(e);
		return NULL;
	}

	e->ctx->width = width;
	e->ctx->height = height;
	e->ctx->time_base = (AVRational){1, fps};
	e->ctx->framerate = (AVRational){fps, 1};
	e->ctx->pix_fmt = AV_PIX_FMT_YUV420P;
	e->ctx->gop_size = keyint;
	e->ctx->max_b_frames = 0;
	e->ctx->flags |= AV_CODEC_FLAG_LOW_DELAY;

	if (is_vp9) {
		av_opt_set_int(e->ctx->priv_data, "cpu-used", 4, 0);
	} else {
		av_opt_set(e->ctx->priv_data, "preset", "ultrafast", 0);
		av_opt_set(e->ctx->priv_data, "tune", "zerolatency", 0);
		av_opt_set(e->ctx->priv_data, "profile", "baseline", 0);
		av_opt_set_int(e->ctx->priv_data, "sliced_threads", 1, 0);
		av_opt_set(e->ctx->priv_data, "crf", "29", 0);
		av_opt_set(e->ctx->priv_data, "vbv-maxrate", "400", 0);
		av_opt_set(e->ctx->priv_data, "vbv-bufsize", "400", 0);
	}

	if (avcodec_open2(e->ctx, codec, NULL) < 0) {
		snprintf(errbuf, errbuf_len, "avcodec_open2 failed");
		avcodec_free_context(&e->ctx);
		free(e);
		return NULL;
	}

	e->frame = av_frame_alloc();
	e->frame->format = e->ctx->pix_fmt;
	e->frame->width = width;
	e->frame->height = height;
	av_frame_get_buffer(e->frame, 0);

	e->pkt = av_packet_alloc();

	return e;
}

// Copies a tightly-packed (stride == width) plane produced by
// internal/color.Convert into an AVFrame plane, whose own linesize may
// be larger due to libavutil's internal alignment.
static void videoenc_copy_plane(uint8_t *dst, int dst_linesize,
                                 const uint8_t *src, int width, int height) {
	for (int row = 0; row < height; row++) {
		memcpy(dst + row * dst_linesize, src + row * width, width);
	}
}

// Returns 0 on success (out_size==0 means no packet yet), -1 on error.
static int videoenc_encode(VideoEncoderHandle *e,
                            const uint8_t *y, const uint8_t *u, const uint8_t *v,
                            int64_t pts, int force_keyframe,
                            uint8_t **out_buf, int *out_size, int *is_key) {
	*out_size = 0;

	av_frame_make_writable(e->frame);

	videoenc_copy_plane(e->frame->data[0], e->frame->linesize[0], y, e->width, e->height);
	videoenc_copy_plane(e->frame->data[1], e->frame->linesize[1], u, e->width / 2, e->height / 2);
	videoenc_copy_plane(e->frame->data[2], e->frame->linesize[2], v, e->width / 2, e->height / 2);

	e->frame->pts = (int64_t)pts;
	e->frame->pict_type = force_keyframe ? AV_PICTURE_TYPE_I : AV_PICTURE_TYPE_NONE;
	if (force_keyframe) {
		e->frame->key_frame = 1;
	}

	int ret = avcodec_send_frame(e->ctx, e->frame);
	if (ret < 0) return -1;

	ret = avcodec_receive_packet(e->ctx, e->pkt);
	if (ret == AVERROR(EAGAIN) || ret == AVERROR_EOF) {
		return 0;
	}
	if (ret < 0) return -1;

	*out_buf = e->pkt->data;
	*out_size = e->pkt->size;
	*is_key = (e->pkt->flags & AV_PKT_FLAG_KEY) ? 1 : 0;
	return 0;
}

static void videoenc_unref_packet(VideoEncoderHandle *e) {
	av_packet_unref(e->pkt);
}

static void videoenc_destroy(VideoEncoderHandle *e) {
	if (!e) return;
	if (e->pkt) av_packet_free(&e->pkt);
	if (e->frame) av_frame_free(&e->frame);
	if (e->ctx) avcodec_free_context(&e->ctx);
	free(e);
}
*/
import "C"

import (
	"fmt"
	"time"
	"unsafe"

	"gipan/internal/color"
	"gipan/internal/pacing"
	"gipan/internal/types"
)

// Encoder is C2: a codec-context-backed video encoder operated in
// one-in/one-out mode, fronted by the staleness gate and keyframe
// scheduler, with BGRA-to-YUV420P conversion done by internal/color
// before the frame reaches the codec.
type Encoder struct {
	h *C.VideoEncoderHandle

	width, height int
	staleness     pacing.StalenessGate
	frames        pacing.FrameScheduler
	keyframes     pacing.KeyframeScheduler

	yBuf, uBuf, vBuf []byte
}

// ErrDropped is returned when a frame is intentionally not encoded.
// Reason is either "stale" (benign — skip publishing) or a codec error
// string (fatal — the caller should treat the encoder as dead).
type ErrDropped struct {
	Reason string
	Fatal  bool
}

func (e *ErrDropped) Error() string { return "dropped: " + e.Reason }

// New creates a video encoder for the given codec ("h264" or "vp9").
func New(width, height, fps, keyframeInterval int, codec string) (*Encoder, error) {
	cCodec := C.CString(codec)
	defer C.free(unsafe.Pointer(cCodec))

	errbuf := make([]C.char, 256)
	h := C.videoenc_init(C.int(width), C.int(height), C.int(fps), C.int(keyframeInterval),
		cCodec, &errbuf[0], C.int(len(errbuf)))
	if h == nil {
		return nil, fmt.Errorf("videoenc: init failed: %s", C.GoString(&errbuf[0]))
	}

	ySize, uSize, vSize := color.PlaneSizes(width, height)

	return &Encoder{
		h:         h,
		width:     width,
		height:    height,
		staleness: pacing.NewStalenessGate(),
		keyframes: pacing.KeyframeScheduler{Interval: keyframeInterval},
		yBuf:      make([]byte, ySize),
		uBuf:      make([]byte, uSize),
		vBuf:      make([]byte, vSize),
	}, nil
}

// Encode submits a raw BGRA frame. It returns ErrDropped{Reason:
// "stale"} (benign) if the staleness gate rejects the frame, advancing
// the pts sequence but not the keyframe counter. A successful call may
// still return (nil, nil) if the codec has not yet produced an output
// packet (one-in/one-out pipelining).
func (e *Encoder) Encode(frame *types.RawImageFrame) (*types.EncodedPacket, error) {
	now := time.Now()
	pts := e.frames.NextPTS()

	if e.staleness.IsStale(frame.Timestamp, now) {
		return nil, &ErrDropped{Reason: "stale"}
	}

	pic := e.keyframes.Next()

	color.Convert(e.width, e.height, frame.Pixels, e.yBuf, e.uBuf, e.vBuf)

	var outBuf *C.uint8_t
	var outSize C.int
	var isKey C.int

	ret := C.videoenc_encode(e.h,
		(*C.uint8_t)(unsafe.Pointer(&e.yBuf[0])),
		(*C.uint8_t)(unsafe.Pointer(&e.uBuf[0])),
		(*C.uint8_t)(unsafe.Pointer(&e.vBuf[0])),
		C.int64_t(pts), boolToCInt(pic == pacing.PictureTypeI), &outBuf, &outSize, &isKey)
	if ret != 0 {
		return nil, &ErrDropped{Reason: "codec encode failed", Fatal: true}
	}
	if outSize == 0 {
		return nil, nil
	}

	data := C.GoBytes(unsafe.Pointer(outBuf), outSize)
	C.videoenc_unref_packet(e.h)

	return &types.EncodedPacket{
		Payload:   data,
		Timestamp: frame.Timestamp,
		KeyFrame:  isKey != 0,
	}, nil
}

// Close releases the codec context.
func (e *Encoder) Close() {
	C.videoenc_destroy(e.h)
}

func boolToCInt(b bool) C.int {
	if b {
		return 1
	}
	return 0
}
