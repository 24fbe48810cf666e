package core

// InboundRef identifies one stored inbound message. Bucket is empty
// for stores that are not bucket-addressed.
type InboundRef struct {
	Bucket string
	Key    string
}

// String renders the reference for logs.
func (r InboundRef) String() string {
	if r.Bucket == "" {
		return r.Key
	}
	return r.Bucket + "/" + r.Key
}

// State is the terminal state of one forwarding attempt.
type State string

const (
	// StateSent means the rebuilt message was dispatched.
	StateSent State = "sent"
	// StateDropped means the sender was blacklisted and the message
	// was discarded on purpose.
	StateDropped State = "dropped"
	// StateFailed means a pipeline stage failed; Err carries the
	// classified error.
	StateFailed State = "failed"
)

// Outcome describes how one forwarding attempt ended.
type Outcome struct {
	State        State
	Ref          InboundRef
	InvocationID string

	// MessageID is the dispatch identifier, set when State is
	// StateSent.
	MessageID string

	// Stage names the pipeline stage that decided the outcome for
	// dropped and failed attempts.
	Stage  string
	Reason string
	Err    error
}
