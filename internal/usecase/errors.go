package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUpstreamUnavailable   = errors.New("upstream archive unavailable")
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrNotProfilePage marks a fetched page that is reachable but is not a
	// player game-by-game page. Probe resolution skips such candidates.
	ErrNotProfilePage = errors.New("not a player profile page")
)
