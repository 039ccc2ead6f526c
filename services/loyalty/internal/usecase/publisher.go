package usecase

// EventPublisher is the contract with the out-of-process notification
// pipeline. Implemented by pkg/queue. Publishing is best effort and happens
// after the ledger transaction commits; a lost event never rolls back a
// committed mutation.
type EventPublisher interface {
	PublishEvent(eventType string, payload interface{}) error
}
