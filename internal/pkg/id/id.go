package id

import "github.com/oklog/ulid/v2"

// New returns a ULID string. ulid.Make is monotonic within a millisecond and
// safe for concurrent use.
func New() string {
	return ulid.Make().String()
}
