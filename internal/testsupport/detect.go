package testsupport

import (
	"context"

	"slate/internal/detect"
)

// FakeDetector implements detect.Detector, returning a canned result.
type FakeDetector struct {
	Result *detect.Result
	Err    error

	Calls int
}

var _ detect.Detector = (*FakeDetector)(nil)

func (d *FakeDetector) Detect(ctx context.Context, rawDir, outDir string) (*detect.Result, error) {
	d.Calls++
	if d.Err != nil {
		return nil, d.Err
	}
	if d.Result == nil {
		return &detect.Result{}, nil
	}
	return d.Result, nil
}

// GridDetections produces count colony offsets laid out on a small grid
// inside a dish, spaced 4mm apart.
func GridDetections(count int) []detect.Detection {
	out := make([]detect.Detection, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, detect.Detection{
			X: float64(i%5)*4 - 8,
			Y: float64(i/5)*4 - 8,
		})
	}
	return out
}
