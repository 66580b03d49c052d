package interfaces

// EventPublisher pushes domain events to a message broker. Publishing is
// best-effort: callers log failures but do not roll back the write that
// produced the event.
type EventPublisher interface {
	Publish(topic string, event any) error
}
