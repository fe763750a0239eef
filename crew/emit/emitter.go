package emit

// Emitter receives observability events from workflow execution.
//
// Implementations must be safe for concurrent use, must not block the
// run loop, and must not panic; backend failures are handled internally.
type Emitter interface {
	Emit(event Event)
}

// NullEmitter discards all events. It is the default when a workflow is
// compiled without an emitter.
type NullEmitter struct{}

// NewNullEmitter returns an emitter that drops every event.
func NewNullEmitter() *NullEmitter {
	return &NullEmitter{}
}

// Emit discards the event.
func (n *NullEmitter) Emit(Event) {}
