package testsupport

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"sync"

	"slate/internal/camera"
)

// FakeCamera implements camera.Camera, writing a small valid PNG frame for
// each capture and counting release calls. Frames are real PNGs because the
// report layer decodes embedded images.
type FakeCamera struct {
	mu sync.Mutex

	Configured bool
	Captures   []string
	Releases   int

	ConfigureErr error
	CaptureErr   error
}

var _ camera.Camera = (*FakeCamera)(nil)

func (c *FakeCamera) Configure(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ConfigureErr != nil {
		return c.ConfigureErr
	}
	c.Configured = true
	return nil
}

func (c *FakeCamera) Capture(ctx context.Context, destPath string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.CaptureErr != nil {
		return c.CaptureErr
	}
	if err := WritePNG(destPath); err != nil {
		return err
	}
	c.Captures = append(c.Captures, destPath)
	return nil
}

// WritePNG writes a tiny decodable PNG to path.
func WritePNG(path string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

func (c *FakeCamera) Release() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Releases++
	return nil
}
