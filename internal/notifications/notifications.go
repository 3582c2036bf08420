// Package notifications carries typed worker events to the controlling
// context.
//
// The worker pushes values onto a single-consumer channel; the caller drains
// it on its own schedule and never touches worker state directly. Exactly one
// terminal event (Finished or Fault) closes a run, after which the channel is
// closed.
package notifications

// Kind discriminates notification events.
type Kind string

const (
	KindStage         Kind = "stage"
	KindStatusMessage Kind = "status_message"
	KindProgressMax   Kind = "progress_max"
	KindProgressValue Kind = "progress_value"
	KindFinished      Kind = "finished"
	KindFault         Kind = "fault"
)

// Event is one notification value published by the worker.
type Event struct {
	Kind    Kind
	Stage   string
	Message string
	Value   int
	Aborted bool
}

// Publisher is the worker-side handle for emitting events.
type Publisher struct {
	events chan Event
	closed bool
}

// NewPublisher builds a publisher with the given channel buffer. A zero or
// negative buffer gets a sensible default so a slow consumer does not stall
// the worker between drains.
func NewPublisher(buffer int) *Publisher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Publisher{events: make(chan Event, buffer)}
}

// Events returns the consumer side of the notification channel.
func (p *Publisher) Events() <-chan Event {
	return p.events
}

// Stage announces entry into a pipeline stage.
func (p *Publisher) Stage(name string) {
	p.publish(Event{Kind: KindStage, Stage: name})
}

// Status publishes a human-readable task description.
func (p *Publisher) Status(message string) {
	p.publish(Event{Kind: KindStatusMessage, Message: message})
}

// ProgressMax publishes the total number of transfers planned for the run.
func (p *Publisher) ProgressMax(total int) {
	p.publish(Event{Kind: KindProgressMax, Value: total})
}

// Progress publishes the running transfer index.
func (p *Publisher) Progress(value int) {
	p.publish(Event{Kind: KindProgressValue, Value: value})
}

// Finished publishes the successful (or user-aborted) terminal event and
// closes the channel.
func (p *Publisher) Finished(aborted bool) {
	p.publish(Event{Kind: KindFinished, Aborted: aborted})
	p.close()
}

// Fault publishes the failure terminal event and closes the channel.
func (p *Publisher) Fault(message string) {
	p.publish(Event{Kind: KindFault, Message: message})
	p.close()
}

func (p *Publisher) publish(event Event) {
	if p == nil || p.closed {
		return
	}
	p.events <- event
}

func (p *Publisher) close() {
	if p == nil || p.closed {
		return
	}
	p.closed = true
	close(p.events)
}
