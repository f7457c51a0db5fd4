package model

import "github.com/oklog/ulid/v2"

// Identity is the caller resolved from a verified bearer token.
// It lives only for the duration of one request.
type Identity struct {
	UserID   ulid.ULID
	Username string
}
