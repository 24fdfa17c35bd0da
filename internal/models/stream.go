package models

// Stream statuses. A stream is created active and only ever moves to
// finished, never back.
const (
	StreamActive   = "active"
	StreamFinished = "finished"
)

// Stream is one consumer's pull context against an ISPB. At most six
// streams may be active for the same ISPB at any moment.
type Stream struct {
	// InteractionID is the stream's root token, handed out when the
	// stream starts. Claim tags on messages always carry this value.
	InteractionID string

	// Ispb is the recipient institution the stream pulls for.
	Ispb string

	// Status is StreamActive or StreamFinished.
	Status string

	// CreatedAt is the Unix timestamp when the stream was registered.
	CreatedAt int64
}

// Interaction is one checkpoint in a stream's delivery log. The chain is
// append-only: an interaction is never mutated once written, and each new
// checkpoint's MessageIDs is a superset of its predecessor's.
type Interaction struct {
	// InteractionID is the checkpoint token, unique across all streams.
	InteractionID string

	// Ispb is the recipient institution of the lineage.
	Ispb string

	// StreamID is the root token of the lineage this checkpoint extends.
	StreamID string

	// MessageIDs is the cumulative ordered set of end-to-end ids
	// delivered along the lineage up to and including this checkpoint.
	MessageIDs []string

	// CreatedAt is the Unix timestamp when the checkpoint was written.
	CreatedAt int64
}
