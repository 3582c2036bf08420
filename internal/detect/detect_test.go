package detect_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"slate/internal/config"
	"slate/internal/detect"
	"slate/internal/logging"
	"slate/internal/services"
)

func stubAnalyzer(t *testing.T, document string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "slate-detect")
	script := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output" ]; then out="$2"; fi
  shift
done
cat > "$out/detections.json" <<'JSON'
` + document + `
JSON
`
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestDetectParsesDocument(t *testing.T) {
	document := `{"dishes":[{"name":"lib-a","colonies":[{"x":1.5,"y":-2.25},{"x":3,"y":4}],"annotated_image":"lib-a_annotated.png"},{"name":"lib-b","colonies":[]}]}`
	analyzer := detect.NewAnalyzer(config.Detector{Analyzer: stubAnalyzer(t, document), Annotate: true}, logging.NewNop())

	outDir := filepath.Join(t.TempDir(), "detections")
	result, err := analyzer.Detect(context.Background(), t.TempDir(), outDir)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	byName := result.ByName()
	dishA, ok := byName["lib-a"]
	if !ok || len(dishA.Colonies) != 2 {
		t.Fatalf("lib-a result %+v", dishA)
	}
	if dishA.Colonies[1].X != 3 || dishA.Colonies[1].Y != 4 {
		t.Fatalf("unexpected offsets %+v", dishA.Colonies)
	}
	if dishA.AnnotatedImage != "lib-a_annotated.png" {
		t.Fatalf("annotated image %q", dishA.AnnotatedImage)
	}
	if dishB := byName["lib-b"]; len(dishB.Colonies) != 0 {
		t.Fatalf("lib-b should be empty, got %+v", dishB)
	}
}

func TestDetectAnalyzerFailureIsDetectionFault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "slate-detect")
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 9\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	analyzer := detect.NewAnalyzer(config.Detector{Analyzer: path}, logging.NewNop())
	_, err := analyzer.Detect(context.Background(), t.TempDir(), filepath.Join(t.TempDir(), "out"))
	if !errors.Is(err, services.ErrDetection) {
		t.Fatalf("expected ErrDetection, got %v", err)
	}
}

func TestReadResultRejectsMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "detections.json")
	if err := os.WriteFile(path, []byte("{nope"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := detect.ReadResult(path); !errors.Is(err, services.ErrDetection) {
		t.Fatalf("expected ErrDetection, got %v", err)
	}
}
