package usecase

import (
	"context"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
)

// ArchiveProfile is a fetched and parsed player game-by-game page.
type ArchiveProfile struct {
	URL   string
	Title string
	Rows  []gamelog.Row
	Raw   []byte
}

// ArchiveGateway is the upstream statistics archive.
type ArchiveGateway interface {
	// PlayerIndex lists every known player profile, de-duplicated by URL.
	PlayerIndex(ctx context.Context) ([]gamelog.ProfileEntry, error)

	// FetchProfile downloads and parses one player page. seasonHint fills
	// in the season for pages that omit per-season markers. It returns
	// ErrNotProfilePage when the target is reachable but is not a player
	// page.
	FetchProfile(ctx context.Context, pageURL string, seasonHint int) (ArchiveProfile, error)

	// ResolveURL absolutizes an archive-relative path.
	ResolveURL(path string) string
}
