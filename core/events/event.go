package events

// Event represents a structured state change emitted by an engine.
type Event interface {
	EventType() string
}

// Emitter broadcasts events to downstream subscribers (e.g. gateways,
// indexers).
type Emitter interface {
	Emit(Event)
}

// NoopEmitter is a helper that satisfies the Emitter interface while discarding
// all events. It is useful when a component wants to optionally expose events.
type NoopEmitter struct{}

// Emit implements the Emitter interface.
func (NoopEmitter) Emit(Event) {}

// Capture retains every emitted event in order. Intended for tests.
type Capture struct {
	Events []Event
}

// Emit implements the Emitter interface.
func (c *Capture) Emit(evt Event) {
	if c == nil || evt == nil {
		return
	}
	c.Events = append(c.Events, evt)
}

// Types returns the event type of every captured event in emission order.
func (c *Capture) Types() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Events))
	for _, evt := range c.Events {
		out = append(out, evt.EventType())
	}
	return out
}
