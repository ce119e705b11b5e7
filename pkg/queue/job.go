package queue

import "context"

// Job is one unit of background work a consuming queue knows how to run.
// Messages are routed to the job whose Type matches the message type.
type Job interface {
	// Name identifies the job in logs.
	Name() string

	// Type is the message type this job consumes.
	Type() string

	// Handle processes one message payload.
	Handle(ctx context.Context, payload interface{}) error
}
