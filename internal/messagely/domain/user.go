package domain

import "time"

// User is a registered account. The username doubles as the primary key and
// the identity every token claim is compared against. JoinedAt is set once at
// registration and never changes.
type User struct {
	Username     string
	PasswordHash string // argon2id PHC encoded, never leaves the service
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  *time.Time // nil until the first successful login
}

// UserSummary is the public slice of a user record embedded in listings and
// message payloads. It deliberately has no hash or timestamp fields.
type UserSummary struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Summary strips a User down to its public fields.
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}
