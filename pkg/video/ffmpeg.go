package video

import (
	"bytes"
	"context"
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dmidlo/gslide2media/pkg/errors"
)

// Assembler muxes a frame plan into video container bytes.
type Assembler interface {
	Assemble(ctx context.Context, plan *Plan) ([]byte, error)
}

// FFmpegAssembler muxes MP4 via the ffmpeg binary, streaming PNG frames
// over stdin. Requires ffmpeg on PATH: brew install ffmpeg (macOS),
// apt install ffmpeg (Linux).
type FFmpegAssembler struct {
	// Binary overrides the ffmpeg executable name; empty means "ffmpeg".
	Binary string
}

// NewFFmpegAssembler creates an Assembler backed by the system ffmpeg.
func NewFFmpegAssembler() *FFmpegAssembler {
	return &FFmpegAssembler{}
}

// Assemble encodes the plan as H.264 MP4. MP4 containers need seekable
// output, so ffmpeg writes to a temporary file which is read back and
// removed.
func (a *FFmpegAssembler) Assemble(ctx context.Context, plan *Plan) ([]byte, error) {
	if plan == nil || len(plan.Entries) == 0 {
		return nil, errors.New(errors.ErrCodeAssemblyFailed, "empty frame plan")
	}

	binary := a.Binary
	if binary == "" {
		binary = "ffmpeg"
	}
	if _, err := exec.LookPath(binary); err != nil {
		return nil, errors.New(errors.ErrCodeAssemblyFailed,
			"mp4 export requires ffmpeg. Install with:\n  macOS:  brew install ffmpeg\n  Linux:  apt install ffmpeg")
	}

	tmpDir, err := os.MkdirTemp("", "gslide2media-mux-")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssemblyFailed, err, "create temp dir")
	}
	defer os.RemoveAll(tmpDir)
	outPath := filepath.Join(tmpDir, "out.mp4")

	cmd := exec.CommandContext(ctx, binary,
		"-y",
		"-loglevel", "error",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-framerate", fmt.Sprintf("%g", plan.FPS),
		"-i", "-",
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-movflags", "+faststart",
		outPath,
	)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssemblyFailed, err, "open ffmpeg stdin")
	}
	var errBuf bytes.Buffer
	cmd.Stderr = &errBuf

	if err := cmd.Start(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssemblyFailed, err, "start ffmpeg")
	}

	writeErr := streamFrames(stdin, plan)
	closeErr := stdin.Close()

	if err := cmd.Wait(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssemblyFailed, err,
			"ffmpeg: %s", errBuf.String())
	}
	if writeErr != nil {
		return nil, writeErr
	}
	if closeErr != nil {
		return nil, errors.Wrap(errors.ErrCodeAssemblyFailed, closeErr, "close ffmpeg stdin")
	}

	data, err := os.ReadFile(outPath)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeAssemblyFailed, err, "read muxed output")
	}
	return data, nil
}

// streamFrames writes each slide's PNG encoding to w, repeated per the
// plan. Each slide is encoded once and the bytes reused for repeats.
func streamFrames(w interface{ Write([]byte) (int, error) }, plan *Plan) error {
	var buf bytes.Buffer
	for _, entry := range plan.Entries {
		buf.Reset()
		if err := png.Encode(&buf, entry.Image); err != nil {
			return errors.Wrap(errors.ErrCodeAssemblyFailed, err,
				"encode frame for slide %d", entry.SlideIndex)
		}
		frame := buf.Bytes()
		for i := 0; i < entry.Count; i++ {
			if _, err := w.Write(frame); err != nil {
				return errors.Wrap(errors.ErrCodeAssemblyFailed, err,
					"stream frame for slide %d", entry.SlideIndex)
			}
		}
	}
	return nil
}
