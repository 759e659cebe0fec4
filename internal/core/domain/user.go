package domain

import "time"

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Verified  bool      `json:"verified"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is who is acting on a request. Anonymous identities are keyed by
// the client IP address.
type Identity struct {
	ID        string
	Name      string
	Anonymous bool
}

func AnonymousIdentity(ip string) Identity {
	return Identity{ID: ip, Anonymous: true}
}
