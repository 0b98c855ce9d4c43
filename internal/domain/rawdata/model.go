package rawdata

import "time"

// Payload is one raw upstream page archived at fetch time so parser changes
// can be replayed without refetching.
type Payload struct {
	Source      string
	EntityKey   string
	Body        string
	PayloadHash string
	FetchedAt   time.Time
}
