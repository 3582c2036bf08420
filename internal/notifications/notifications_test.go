package notifications_test

import (
	"testing"

	"slate/internal/notifications"
)

func drain(t *testing.T, events <-chan notifications.Event) []notifications.Event {
	t.Helper()
	var collected []notifications.Event
	for event := range events {
		collected = append(collected, event)
	}
	return collected
}

func TestPublisherOrderAndClose(t *testing.T) {
	pub := notifications.NewPublisher(16)
	pub.Stage("CAM_INIT")
	pub.Status("Configuring camera")
	pub.ProgressMax(12)
	pub.Progress(1)
	pub.Finished(false)

	events := drain(t, pub.Events())
	want := []notifications.Kind{
		notifications.KindStage,
		notifications.KindStatusMessage,
		notifications.KindProgressMax,
		notifications.KindProgressValue,
		notifications.KindFinished,
	}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d", len(events), len(want))
	}
	for i, kind := range want {
		if events[i].Kind != kind {
			t.Errorf("event %d kind = %s, want %s", i, events[i].Kind, kind)
		}
	}
	if events[4].Aborted {
		t.Error("finished event should not be aborted")
	}
}

func TestFaultIsTerminal(t *testing.T) {
	pub := notifications.NewPublisher(4)
	pub.Fault("drive fault: lost contact")
	// Events published after the terminal event are dropped, not sent on a
	// closed channel.
	pub.Stage("TERM")
	pub.Finished(false)

	events := drain(t, pub.Events())
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if events[0].Kind != notifications.KindFault || events[0].Message == "" {
		t.Fatalf("unexpected terminal event %+v", events[0])
	}
}

func TestFinishedAborted(t *testing.T) {
	pub := notifications.NewPublisher(1)
	pub.Finished(true)
	events := drain(t, pub.Events())
	if len(events) != 1 || !events[0].Aborted {
		t.Fatalf("expected single aborted finish, got %+v", events)
	}
}
