package run

import (
	"context"
	"errors"
	"math/rand/v2"
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"slate/internal/config"
	"slate/internal/detect"
	"slate/internal/drive"
	"slate/internal/logging"
	"slate/internal/notifications"
	"slate/internal/services"
	"slate/internal/testsupport"
)

type harness struct {
	cfg      *config.Config
	drive    *testsupport.FakeDrive
	camera   *testsupport.FakeCamera
	detector *testsupport.FakeDetector
	notifier *notifications.Publisher
	worker   *Worker
}

func newHarness(t *testing.T, det *testsupport.FakeDetector, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	h := &harness{
		cfg:      testsupport.NewConfig(t, opts...),
		drive:    &testsupport.FakeDrive{},
		camera:   &testsupport.FakeCamera{},
		detector: det,
		notifier: notifications.NewPublisher(4096),
	}
	h.worker = New(h.cfg, h.drive, h.camera, h.detector, h.notifier, logging.NewNop(),
		WithRand(rand.New(rand.NewPCG(7, 11))))
	return h
}

func drainEvents(p *notifications.Publisher) []notifications.Event {
	var out []notifications.Event
	for ev := range p.Events() {
		out = append(out, ev)
	}
	return out
}

func stagesOf(events []notifications.Event) []string {
	var out []string
	for _, ev := range events {
		if ev.Kind == notifications.KindStage {
			out = append(out, ev.Stage)
		}
	}
	return out
}

func lastEvent(t *testing.T, events []notifications.Event) notifications.Event {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("no events published")
	}
	return events[len(events)-1]
}

func detections(perDish map[string]int) *testsupport.FakeDetector {
	result := &detect.Result{}
	for name, count := range perDish {
		result.Dishes = append(result.Dishes, detect.DishResult{
			Name:     name,
			Colonies: testsupport.GridDetections(count),
		})
	}
	return &testsupport.FakeDetector{Result: result}
}

func TestRunCompletesAllStages(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 2, "beta": 1}))

	err := h.worker.Run(context.Background(), Request{
		DishNames: []string{"alpha", "beta"},
		DishCount: 2,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	events := drainEvents(h.notifier)

	want := []string{"CAM_INIT", "DRIVE_INIT", "DRIVE_HOME", "IMG_CAP", "IMG_PROC", "SAMP_CYC", "SAV_TAB", "TERM", "DONE"}
	got := stagesOf(events)
	if len(got) != len(want) {
		t.Fatalf("stage sequence %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("stage[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	final := lastEvent(t, events)
	if final.Kind != notifications.KindFinished || final.Aborted {
		t.Fatalf("terminal event = %+v, want clean finished", final)
	}

	stats := h.worker.Stats()
	if stats.Transfers != 3 {
		t.Fatalf("transfers = %d, want 3", stats.Transfers)
	}
	if stats.Sterilizations != stats.Transfers+1 {
		t.Fatalf("sterilizations = %d, want %d", stats.Sterilizations, stats.Transfers+1)
	}
	if h.camera.Releases != 1 {
		t.Fatalf("camera released %d times, want 1", h.camera.Releases)
	}
	if h.drive.Terminations != 1 || !h.drive.LastPolite {
		t.Fatalf("drive terminations = %d (polite=%v), want exactly one polite termination",
			h.drive.Terminations, h.drive.LastPolite)
	}
	if _, err := os.Stat(filepath.Join(h.worker.OutputDir(), ReportName)); err != nil {
		t.Fatalf("results workbook missing: %v", err)
	}
}

func TestHomingOrderZFirst(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 0}))

	if err := h.worker.Run(context.Background(), Request{DishNames: []string{"alpha"}, DishCount: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	drainEvents(h.notifier)

	want := []drive.Axis{drive.AxisZ, drive.AxisX, drive.AxisY}
	if len(h.drive.Homed) != len(want) {
		t.Fatalf("homed axes %v, want %v", h.drive.Homed, want)
	}
	for i, axis := range want {
		if h.drive.Homed[i] != axis {
			t.Fatalf("homed[%d] = %s, want %s", i, h.drive.Homed[i], axis)
		}
	}
}

func TestZeroColoniesReachesDone(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 0, "beta": 0}))

	err := h.worker.Run(context.Background(), Request{
		DishNames: []string{"alpha", "beta"},
		DishCount: 2,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	events := drainEvents(h.notifier)

	var sawMax bool
	for _, ev := range events {
		switch ev.Kind {
		case notifications.KindProgressMax:
			sawMax = true
			if ev.Value != 0 {
				t.Fatalf("progress max = %d, want 0", ev.Value)
			}
		case notifications.KindProgressValue:
			t.Fatalf("unexpected progress event %+v for empty run", ev)
		}
	}
	if !sawMax {
		t.Fatal("progress max never published")
	}
	if got := stagesOf(events); got[len(got)-1] != "DONE" {
		t.Fatalf("final stage = %s, want DONE", got[len(got)-1])
	}
	if h.worker.Stats().Sterilizations != 0 {
		t.Fatalf("sterilizations = %d, want 0 for empty run", h.worker.Stats().Sterilizations)
	}

	// Both dishes still get header-only sheets.
	f, err := excelize.OpenFile(filepath.Join(h.worker.OutputDir(), ReportName))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	sheets := f.GetSheetList()
	if len(sheets) != 2 {
		t.Fatalf("workbook has sheets %v, want 2", sheets)
	}
	for _, sheet := range sheets {
		cell, err := f.GetCellValue(sheet, "A1")
		if err != nil {
			t.Fatalf("read %s!A1: %v", sheet, err)
		}
		if cell != "Well" {
			t.Fatalf("%s!A1 = %q, want header row", sheet, cell)
		}
		if cell2, _ := f.GetCellValue(sheet, "A2"); cell2 != "" {
			t.Fatalf("%s!A2 = %q, want empty data region", sheet, cell2)
		}
	}
}

func TestSelectionCapsAtWellCapacity(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 60, "beta": 60, "gamma": 30}))

	err := h.worker.Run(context.Background(), Request{
		DishNames: []string{"alpha", "beta", "gamma"},
		DishCount: 3,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	events := drainEvents(h.notifier)

	stats := h.worker.Stats()
	if stats.TotalColonies != 150 {
		t.Fatalf("total colonies = %d, want 150", stats.TotalColonies)
	}
	if stats.Targets != 96 || stats.Transfers != 96 {
		t.Fatalf("targets = %d, transfers = %d, want 96 each", stats.Targets, stats.Transfers)
	}
	for _, ev := range events {
		if ev.Kind == notifications.KindProgressMax && ev.Value != 96 {
			t.Fatalf("progress max = %d, want 96", ev.Value)
		}
	}
	if stats.Sterilizations != 97 {
		t.Fatalf("sterilizations = %d, want 97", stats.Sterilizations)
	}
}

func TestStopMidSamplingKeepsCompletedTransfers(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 20}))
	// One imaging move, two moves for the initial bath cycle, then four moves
	// per transfer. The 21st move is the fifth colony's deposit.
	h.drive.StopAfterMoves = 21

	err := h.worker.Run(context.Background(), Request{
		DishNames: []string{"alpha"},
		DishCount: 1,
	})
	if err != nil {
		t.Fatalf("stopped run should not fault: %v", err)
	}
	events := drainEvents(h.notifier)

	stats := h.worker.Stats()
	if stats.Transfers != 5 {
		t.Fatalf("transfers = %d, want 5", stats.Transfers)
	}
	// No trailing bath cycle after the abort latches.
	if stats.Sterilizations != 5 {
		t.Fatalf("sterilizations = %d, want 5", stats.Sterilizations)
	}

	final := lastEvent(t, events)
	if final.Kind != notifications.KindFinished || !final.Aborted {
		t.Fatalf("terminal event = %+v, want aborted finished", final)
	}
	for _, stage := range stagesOf(events) {
		if stage == "DONE" {
			t.Fatal("stopped run must not reach DONE")
		}
	}
	if h.drive.Terminations != 1 || h.drive.LastPolite {
		t.Fatalf("drive terminations = %d (polite=%v), want one non-polite termination",
			h.drive.Terminations, h.drive.LastPolite)
	}

	// The completed transfers are on record.
	f, err := excelize.OpenFile(filepath.Join(h.worker.OutputDir(), ReportName))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("alpha")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("sheet has %d rows, want header plus 5 transfers", len(rows))
	}
}

func TestProgressEventsAscend(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 4}))

	if err := h.worker.Run(context.Background(), Request{DishNames: []string{"alpha"}, DishCount: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	events := drainEvents(h.notifier)

	var values []int
	for _, ev := range events {
		if ev.Kind == notifications.KindProgressValue {
			values = append(values, ev.Value)
		}
	}
	if len(values) != 4 {
		t.Fatalf("progress values %v, want 4 entries", values)
	}
	for i, v := range values {
		if v != i+1 {
			t.Fatalf("progress values %v, want ascending from 1", values)
		}
	}
}

func TestCameraFaultReleasesHardware(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 1}))
	h.camera.CaptureErr = services.Wrap(services.ErrCapture, "IMG_CAP", "capture", "grabber exited", errors.New("exit 3"))

	err := h.worker.Run(context.Background(), Request{DishNames: []string{"alpha"}, DishCount: 1})
	if err == nil {
		t.Fatal("expected capture fault")
	}
	events := drainEvents(h.notifier)

	final := lastEvent(t, events)
	if final.Kind != notifications.KindFault {
		t.Fatalf("terminal event = %+v, want fault", final)
	}
	if final.Message == "" {
		t.Fatal("fault event carries no message")
	}
	if h.camera.Releases != 1 {
		t.Fatalf("camera released %d times, want 1", h.camera.Releases)
	}
	if h.drive.Terminations != 1 || h.drive.LastPolite {
		t.Fatalf("drive terminations = %d (polite=%v), want one non-polite termination",
			h.drive.Terminations, h.drive.LastPolite)
	}
	// Recovery still persists the workbook.
	if _, err := os.Stat(filepath.Join(h.worker.OutputDir(), ReportName)); err != nil {
		t.Fatalf("results workbook missing after fault: %v", err)
	}
}

func TestInvalidRequestFaultsBeforeHardware(t *testing.T) {
	h := newHarness(t, detections(nil))

	err := h.worker.Run(context.Background(), Request{DishNames: nil, DishCount: 0})
	if err == nil {
		t.Fatal("expected validation fault")
	}
	if services.Details(err).Kind != "validation" {
		t.Fatalf("fault kind = %s, want validation", services.Details(err).Kind)
	}
	events := drainEvents(h.notifier)
	if final := lastEvent(t, events); final.Kind != notifications.KindFault {
		t.Fatalf("terminal event = %+v, want fault", final)
	}
	if h.drive.Initialized || h.drive.Terminations != 0 {
		t.Fatal("rejected request must not touch the drive")
	}
	if h.camera.Configured || h.camera.Releases != 0 {
		t.Fatal("rejected request must not touch the camera")
	}
}

func TestDishCountVariants(t *testing.T) {
	names := []string{"a", "b", "c", "d", "e", "f"}
	for count := 1; count <= 6; count++ {
		perDish := map[string]int{}
		for i := 0; i < count; i++ {
			perDish[names[i]] = 2
		}
		h := newHarness(t, detections(perDish))

		err := h.worker.Run(context.Background(), Request{DishNames: names[:count], DishCount: count})
		if err != nil {
			t.Fatalf("count %d: run failed: %v", count, err)
		}
		drainEvents(h.notifier)

		if got := h.worker.Stats().Transfers; got != count*2 {
			t.Fatalf("count %d: transfers = %d, want %d", count, got, count*2)
		}
		if got := len(h.camera.Captures); got != count {
			t.Fatalf("count %d: captures = %d, want one per active dish", count, got)
		}
	}
}

func TestPauseGateAndResume(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 1}))

	if err := h.worker.Pause(context.Background()); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if !h.drive.Aborted() {
		t.Fatal("pause must halt drive motion")
	}
	if err := h.worker.Resume(context.Background()); err != nil {
		t.Fatalf("resume: %v", err)
	}
	if h.drive.Aborted() {
		t.Fatal("resume must clear the abort flag")
	}
}

func TestStopDuringPauseUnwinds(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 8}))
	paused := make(chan struct{})
	h.drive.OnMove = func(m testsupport.Move) {
		// Pause once, right after the imaging move.
		if m.Direct {
			h.drive.OnMove = nil
			if err := h.worker.Pause(context.Background()); err != nil {
				t.Errorf("pause: %v", err)
			}
			close(paused)
		}
	}

	done := make(chan error, 1)
	go func() {
		done <- h.worker.Run(context.Background(), Request{DishNames: []string{"alpha"}, DishCount: 1})
	}()

	<-paused
	if err := h.worker.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("stopped run should not fault: %v", err)
	}
	events := drainEvents(h.notifier)

	final := lastEvent(t, events)
	if final.Kind != notifications.KindFinished || !final.Aborted {
		t.Fatalf("terminal event = %+v, want aborted finished", final)
	}
	if h.worker.Stats().Transfers != 0 {
		t.Fatalf("transfers = %d, want none after stop during imaging", h.worker.Stats().Transfers)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	h := newHarness(t, detections(map[string]int{"alpha": 1}))

	if err := h.worker.Run(context.Background(), Request{DishNames: []string{"alpha"}, DishCount: 1}); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	drainEvents(h.notifier)

	h.worker.release(context.Background(), true)
	h.worker.release(context.Background(), false)

	if h.camera.Releases != 1 {
		t.Fatalf("camera released %d times, want 1", h.camera.Releases)
	}
	if h.drive.Terminations != 1 {
		t.Fatalf("drive terminated %d times, want 1", h.drive.Terminations)
	}
}
