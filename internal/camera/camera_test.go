package camera_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slate/internal/camera"
	"slate/internal/config"
	"slate/internal/logging"
	"slate/internal/services"
)

// stubGrabber writes a shell script that copies a marker byte into --output,
// mimicking a grabber binary.
func stubGrabber(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "slate-grab")
	script := "#!/bin/sh\n" + body
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func grabberConfig(path string) config.Camera {
	return config.Camera{
		Grabber:  path,
		Device:   "/dev/video9",
		Width:    640,
		Height:   480,
		Exposure: 0.05,
		Attempts: 3,
	}
}

func TestCaptureWritesFrame(t *testing.T) {
	// The stub writes its output file when given --output as final flag pair.
	stub := stubGrabber(t, `
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; fi
  shift
done
printf frame > "$out"
`)
	cam := camera.NewGrabber(grabberConfig(stub), logging.NewNop())
	if err := cam.Configure(context.Background()); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	dest := filepath.Join(t.TempDir(), "P1.png")
	if err := cam.Capture(context.Background(), dest); err != nil {
		t.Fatalf("Capture: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil || string(data) != "frame" {
		t.Fatalf("frame content %q, err %v", data, err)
	}
	if _, err := os.Stat(dest + ".stale"); !os.IsNotExist(err) {
		t.Fatal("stale discard frame should be removed")
	}
}

func TestCaptureFailureIsCaptureFault(t *testing.T) {
	stub := stubGrabber(t, "exit 3\n")
	cam := camera.NewGrabber(grabberConfig(stub), logging.NewNop())
	if err := cam.Configure(context.Background()); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	err := cam.Capture(context.Background(), filepath.Join(t.TempDir(), "P1.png"))
	if !errors.Is(err, services.ErrCapture) {
		t.Fatalf("expected ErrCapture, got %v", err)
	}
}

func TestConfigureMissingGrabber(t *testing.T) {
	cfg := grabberConfig(filepath.Join(t.TempDir(), "missing-binary"))
	cam := camera.NewGrabber(cfg, logging.NewNop())
	if err := cam.Configure(context.Background()); !errors.Is(err, services.ErrCapture) {
		t.Fatalf("expected ErrCapture for missing grabber, got %v", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	stub := stubGrabber(t, "exit 0\n")
	cam := camera.NewGrabber(grabberConfig(stub), logging.NewNop())
	if err := cam.Configure(context.Background()); err != nil {
		t.Fatalf("Configure: %v", err)
	}
	if err := cam.Release(); err != nil {
		t.Fatalf("first Release: %v", err)
	}
	if err := cam.Release(); err != nil {
		t.Fatalf("second Release: %v", err)
	}
	if err := cam.Capture(context.Background(), "unused"); !errors.Is(err, services.ErrCapture) {
		t.Fatalf("capture after release should fault, got %v", err)
	}
}
