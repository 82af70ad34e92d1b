// Package policy is the access decision layer: pure predicates over a caller
// identity and a resource snapshot. Nothing in here touches the store, the
// clock, or the network, and nothing returns an error; callers translate a
// false into their own unauthorized failure. That keeps every rule a total,
// deterministic function that a table test can pin down.
//
// The caller identity must come from a signature-verified token. These
// functions cannot tell a verified username from a forged one.
package policy

import "github.com/messagely/messagely/internal/messagely/domain"

// CanViewMessage reports whether caller may read msg: only the sender and the
// recipient ever see a message.
func CanViewMessage(caller string, msg domain.Message) bool {
	if caller == "" {
		return false
	}
	return caller == msg.FromUsername || caller == msg.ToUsername
}

// CanMarkRead reports whether caller may mark msg as read. Only the intended
// recipient qualifies; a sender never marks their own message.
func CanMarkRead(caller string, msg domain.Message) bool {
	return caller != "" && caller == msg.ToUsername
}

// CanViewUserProfile reports whether caller may see target's full profile.
// Strict self-access; there is no admin override.
func CanViewUserProfile(caller, target string) bool {
	return caller != "" && caller == target
}

// CanListUsers reports whether caller may list the user directory. Any
// verified identity qualifies.
func CanListUsers(caller string) bool {
	return caller != ""
}
