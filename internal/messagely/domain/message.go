package domain

import "time"

// Message is a single direct message. The (FromUsername, ToUsername) pair is
// fixed at creation; ReadAt transitions nil -> value at most once and never
// reverts.
type Message struct {
	ID           string // app-assigned ULID, monotonic at creation
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time
	ReadAt       *time.Time

	// Sender/recipient summaries, populated on reads that join the users
	// table. Zero-valued on a freshly created message.
	FromUser UserSummary
	ToUser   UserSummary
}

// Read reports whether the message has reached its terminal read state.
func (m Message) Read() bool { return m.ReadAt != nil }
