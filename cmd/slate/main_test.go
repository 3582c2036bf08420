package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"slate/internal/config"
	"slate/internal/notifications"
)

func TestEventRendererPlainOutput(t *testing.T) {
	var buf bytes.Buffer
	r := newEventRenderer(&buf, false)

	r.render(notifications.Event{Kind: notifications.KindStage, Stage: "CAM_INIT"})
	r.render(notifications.Event{Kind: notifications.KindStatusMessage, Message: "Configuring camera"})
	r.render(notifications.Event{Kind: notifications.KindStage, Stage: "SAMP_CYC"})
	r.render(notifications.Event{Kind: notifications.KindProgressMax, Value: 2})
	r.render(notifications.Event{Kind: notifications.KindProgressValue, Value: 1})
	r.render(notifications.Event{Kind: notifications.KindProgressValue, Value: 2})
	r.render(notifications.Event{Kind: notifications.KindFinished})

	out := buf.String()
	for _, want := range []string{
		"==> Cam Init",
		"Configuring camera",
		"==> Samp Cyc",
		"transfer 1 of 2",
		"transfer 2 of 2",
		"Run complete",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEventRendererAbortAndFault(t *testing.T) {
	var buf bytes.Buffer
	r := newEventRenderer(&buf, false)
	r.render(notifications.Event{Kind: notifications.KindFinished, Aborted: true})
	if !strings.Contains(buf.String(), "Run stopped by operator") {
		t.Fatalf("output = %q", buf.String())
	}

	buf.Reset()
	r.render(notifications.Event{Kind: notifications.KindFault, Message: "drive fault: DRIVE_HOME: homing failed"})
	if !strings.Contains(buf.String(), "Run failed: drive fault") {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestRenderTable(t *testing.T) {
	out := renderTable([]string{"Check", "Status"}, [][]string{{"Camera grabber", "OK"}}, 2)
	if !strings.Contains(out, "Camera grabber") || !strings.Contains(out, "OK") {
		t.Fatalf("table output missing cells:\n%s", out)
	}
}

func TestConfigInitWritesSamples(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "slate.toml")

	cmd := newRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}

	for _, path := range []string{target, filepath.Join(dir, "geometry.toml")} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}

	// A second init without --overwrite must refuse.
	cmd = newRootCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"config", "init", "--path", target})
	if err := cmd.Execute(); err == nil {
		t.Fatal("expected refusal without --overwrite")
	}
}

func TestConfigValidateAndShow(t *testing.T) {
	dir := t.TempDir()
	geometry := filepath.Join(dir, "geometry.toml")
	if err := os.WriteFile(geometry, []byte(config.SampleGeometry()), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "slate.toml")
	body := fmt.Sprintf("[paths]\noutput_dir = %q\ngeometry_file = %q\nlock_file = %q\n",
		filepath.Join(dir, "runs"), geometry, filepath.Join(dir, "slate.lock"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "config", "validate"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config validate: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Configuration valid") {
		t.Fatalf("output = %q", out.String())
	}

	out.Reset()
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "config", "show"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("config show: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "Drive port") {
		t.Fatalf("output = %q", out.String())
	}
}

func TestPositionsRendersGeometry(t *testing.T) {
	dir := t.TempDir()
	geometry := filepath.Join(dir, "geometry.toml")
	if err := os.WriteFile(geometry, []byte(config.SampleGeometry()), 0o644); err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "slate.toml")
	body := fmt.Sprintf("[paths]\noutput_dir = %q\ngeometry_file = %q\nlock_file = %q\n",
		filepath.Join(dir, "runs"), geometry, filepath.Join(dir, "slate.lock"))
	if err := os.WriteFile(cfgPath, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{"--config", cfgPath, "positions"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("positions: %v\n%s", err, out.String())
	}
	for _, want := range []string{"Dish slots", "Sterilizer", "A1", "H12"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("output missing %q:\n%s", want, out.String())
		}
	}
}
