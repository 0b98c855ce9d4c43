package usecase

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
	"github.com/footyarchive/gamelog-api/internal/domain/identity"
	"github.com/footyarchive/gamelog-api/internal/domain/rawdata"
	"github.com/footyarchive/gamelog-api/internal/platform/cache"
	"github.com/footyarchive/gamelog-api/internal/platform/logging"
	"github.com/footyarchive/gamelog-api/internal/platform/resilience"
)

// SourceName identifies the upstream archive in responses and payload rows.
const SourceName = "afltables"

const (
	defaultIndexTTL         = 6 * time.Hour
	defaultHistoricalTTL    = 180 * 24 * time.Hour
	defaultCurrentSeasonTTL = 30 * time.Minute

	defaultProbeMaxCandidates   = 126
	defaultBroadenMaxCandidates = 35

	// maxResolveAttempts bounds how many rule-matched index entries get
	// fetched before resolution falls back to the probe sweep. A mismatch
	// usually means a same-surname neighbour, so a handful is enough.
	maxResolveAttempts = 4
)

type GameLogServiceConfig struct {
	// IndexTTL bounds how long a player index snapshot serves lookups
	// before a refresh.
	IndexTTL time.Duration

	// HistoricalTTL applies to finished seasons, CurrentSeasonTTL to the
	// season still in progress. Finished seasons are effectively
	// immutable; in-progress pages change as rounds complete.
	HistoricalTTL    time.Duration
	CurrentSeasonTTL time.Duration

	ProbeMaxCandidates   int
	BroadenMaxCandidates int

	// Now is a test seam; zero value means time.Now.
	Now func() time.Time
}

func normalizeGameLogConfig(cfg GameLogServiceConfig) GameLogServiceConfig {
	if cfg.IndexTTL <= 0 {
		cfg.IndexTTL = defaultIndexTTL
	}
	if cfg.HistoricalTTL <= 0 {
		cfg.HistoricalTTL = defaultHistoricalTTL
	}
	if cfg.CurrentSeasonTTL <= 0 {
		cfg.CurrentSeasonTTL = defaultCurrentSeasonTTL
	}
	if cfg.ProbeMaxCandidates < 1 {
		cfg.ProbeMaxCandidates = defaultProbeMaxCandidates
	}
	if cfg.BroadenMaxCandidates < 1 {
		cfg.BroadenMaxCandidates = defaultBroadenMaxCandidates
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return cfg
}

type indexSnapshot struct {
	entries   []gamelog.ProfileEntry
	expiresAt time.Time
}

// GameLogService resolves a player name to an archive page and serves that
// player's games for one season, caching at both the request and the page
// level.
type GameLogService struct {
	archive ArchiveGateway
	cache   *cache.Tiered
	raw     rawdata.Repository
	logger  *logging.Logger
	cfg     GameLogServiceConfig

	flight resilience.SingleFlight
	index  atomic.Pointer[indexSnapshot]
}

func NewGameLogService(
	archive ArchiveGateway,
	tiered *cache.Tiered,
	raw rawdata.Repository,
	cfg GameLogServiceConfig,
	logger *logging.Logger,
) *GameLogService {
	if logger == nil {
		logger = logging.Default()
	}
	return &GameLogService{
		archive: archive,
		cache:   tiered,
		raw:     raw,
		logger:  logger,
		cfg:     normalizeGameLogConfig(cfg),
	}
}

type GameLogQuery struct {
	Season     int
	PlayerName string

	// CacheKey overrides the derived request key. The HTTP layer passes a
	// legacy key when requests carry params outside the known filter set.
	CacheKey string
}

type GameLogResult struct {
	Season     int
	Source     string
	PlayerName string
	PlayerPage string
	Games      []gamelog.Row
}

func (s *GameLogService) PlayerGameLogs(ctx context.Context, q GameLogQuery) (GameLogResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.GameLogService.PlayerGameLogs")
	defer span.End()

	name := strings.TrimSpace(q.PlayerName)
	if name == "" {
		return GameLogResult{}, fmt.Errorf("%w: player name is required", ErrInvalidInput)
	}
	if q.Season < gamelog.FirstSeason || q.Season > s.cfg.Now().Year()+1 {
		return GameLogResult{}, fmt.Errorf("%w: season %d is out of range", ErrInvalidInput, q.Season)
	}

	cacheKey := q.CacheKey
	if cacheKey == "" {
		cacheKey = cache.StableKey("gamelogs", map[string]string{
			"season":      strconv.Itoa(q.Season),
			"player_name": identity.Normalize(name),
		})
	}

	ttl := s.resultTTL(q.Season)
	if cached, ok := cache.Get[GameLogResult](ctx, s.cache, cacheKey, ttl); ok {
		return cached, nil
	}

	out, err, _ := s.flight.Do("req|"+cacheKey, func() (any, error) {
		result, resolveErr := s.resolveAndFetch(ctx, q.Season, name)
		if resolveErr != nil {
			return nil, resolveErr
		}
		cache.Set(ctx, s.cache, cacheKey, result, ttl)
		return result, nil
	})
	if err != nil {
		return GameLogResult{}, err
	}

	result, ok := out.(GameLogResult)
	if !ok {
		return GameLogResult{}, fmt.Errorf("unexpected result type %T", out)
	}
	return result, nil
}

func (s *GameLogService) resolveAndFetch(ctx context.Context, season int, name string) (GameLogResult, error) {
	entries, err := s.playerIndex(ctx)
	if err != nil {
		return GameLogResult{}, err
	}

	var resolved *ArchiveProfile
	playerName := name

	candidates := identity.MatchAll(name, entries)
	if len(candidates) > maxResolveAttempts {
		candidates = candidates[:maxResolveAttempts]
	}
	for _, entry := range candidates {
		profile, fetchErr := s.fetchProfile(ctx, season, entry.URL)
		switch {
		case fetchErr == nil && identity.TitleMatchesSurname(profile.Title, name):
			resolved = &profile
			playerName = entry.Name
		case fetchErr == nil:
			// Wrong player behind this entry: move to the next candidate.
			s.logger.WarnContext(ctx, "resolved page failed identity validation",
				"player", name, "page", profile.URL, "title", profile.Title)
			continue
		case errors.Is(fetchErr, ErrNotProfilePage):
			s.logger.WarnContext(ctx, "resolved page is not a profile", "player", name, "page", entry.URL)
			continue
		default:
			return GameLogResult{}, fetchErr
		}
		break
	}

	if resolved == nil {
		profile, ok := s.probe(ctx, season, name)
		if !ok {
			return GameLogResult{}, fmt.Errorf("%w: player %q not found in archive", ErrNotFound, name)
		}
		resolved = &profile
		playerName = titlePlayerName(profile.Title, name)
	}

	games := gamelog.FilterSeason(resolved.Rows, season)
	if len(games) == 0 {
		if alt, altName, ok := s.broaden(ctx, season, name, entries, resolved.URL); ok {
			resolved = &alt
			playerName = altName
			games = gamelog.FilterSeason(alt.Rows, season)
		}
	}
	if len(games) == 0 {
		return GameLogResult{}, fmt.Errorf("%w: no games for %q in season %d", ErrNotFound, name, season)
	}

	return GameLogResult{
		Season:     season,
		Source:     SourceName,
		PlayerName: playerName,
		PlayerPage: resolved.URL,
		Games:      games,
	}, nil
}

// probe tries generated profile URLs in order and returns the first page
// that validates against the queried surname. Candidate failures are
// skipped; a rejected circuit stops the whole sweep.
func (s *GameLogService) probe(ctx context.Context, season int, name string) (ArchiveProfile, bool) {
	candidates := identity.ProbeCandidates(name)
	if len(candidates) > s.cfg.ProbeMaxCandidates {
		candidates = candidates[:s.cfg.ProbeMaxCandidates]
	}

	for _, cand := range candidates {
		if ctx.Err() != nil {
			return ArchiveProfile{}, false
		}

		profile, err := s.fetchProfile(ctx, season, cand.URL)
		if err != nil {
			if errors.Is(err, ErrDependencyUnavailable) {
				s.logger.WarnContext(ctx, "probe stopped by circuit breaker", "player", name)
				return ArchiveProfile{}, false
			}
			continue
		}
		if !identity.TitleMatchesSurname(profile.Title, name) {
			continue
		}
		return profile, true
	}

	return ArchiveProfile{}, false
}

// broaden re-ranks the whole index plus probe candidates and evaluates a
// bounded set of them, keeping the page with the most games in the
// requested season; total career games breaks ties. First-found wins an
// exact tie so the sweep stays deterministic.
func (s *GameLogService) broaden(
	ctx context.Context,
	season int,
	name string,
	entries []gamelog.ProfileEntry,
	triedURL string,
) (ArchiveProfile, string, bool) {
	ranked := identity.Rank(name, entries)
	candidates := make([]gamelog.ProfileEntry, 0, len(ranked)+16)
	for _, cand := range ranked {
		if cand.Score <= 0 {
			break
		}
		candidates = append(candidates, cand.Entry)
	}
	candidates = append(candidates, identity.ProbeCandidates(name)...)

	seen := map[string]struct{}{triedURL: {}}
	var best *ArchiveProfile
	bestName := ""
	bestSeason, bestTotal := 0, 0
	checked := 0

	for _, cand := range candidates {
		if checked >= s.cfg.BroadenMaxCandidates || ctx.Err() != nil {
			break
		}

		fullURL := s.archive.ResolveURL(cand.URL)
		if _, dup := seen[fullURL]; dup {
			continue
		}
		seen[fullURL] = struct{}{}
		checked++

		profile, err := s.fetchProfile(ctx, season, cand.URL)
		if err != nil {
			if errors.Is(err, ErrDependencyUnavailable) {
				s.logger.WarnContext(ctx, "broadened search stopped by circuit breaker", "player", name)
				break
			}
			continue
		}
		if !identity.TitleMatchesSurname(profile.Title, name) {
			continue
		}

		seasonCount := len(gamelog.FilterSeason(profile.Rows, season))
		totalCount := len(profile.Rows)
		if seasonCount > bestSeason || (seasonCount == bestSeason && seasonCount > 0 && totalCount > bestTotal) {
			p := profile
			best = &p
			bestName = titlePlayerName(profile.Title, cand.Name)
			bestSeason, bestTotal = seasonCount, totalCount
		}
	}

	if best == nil {
		return ArchiveProfile{}, "", false
	}
	return *best, bestName, true
}

// fetchProfile wraps the gateway with a page-level cache keyed by absolute
// URL, and archives the raw body of every fresh fetch.
func (s *GameLogService) fetchProfile(ctx context.Context, season int, pageURL string) (ArchiveProfile, error) {
	fullURL := s.archive.ResolveURL(pageURL)
	ttl := s.resultTTL(season)
	pageKey := "page|" + fullURL

	if cached, ok := cache.Get[cachedProfile](ctx, s.cache, pageKey, ttl); ok {
		return ArchiveProfile{URL: cached.URL, Title: cached.Title, Rows: cached.Rows}, nil
	}

	profile, err := s.archive.FetchProfile(ctx, fullURL, season)
	if err != nil {
		return ArchiveProfile{}, err
	}

	cache.Set(ctx, s.cache, pageKey, cachedProfile{
		URL:   profile.URL,
		Title: profile.Title,
		Rows:  profile.Rows,
	}, ttl)

	s.archivePayload(ctx, profile)
	return profile, nil
}

type cachedProfile struct {
	URL   string
	Title string
	Rows  []gamelog.Row
}

func (s *GameLogService) archivePayload(ctx context.Context, profile ArchiveProfile) {
	if s.raw == nil || len(profile.Raw) == 0 {
		return
	}

	sum := sha256.Sum256(profile.Raw)
	item := rawdata.Payload{
		Source:      SourceName,
		EntityKey:   profile.URL,
		Body:        string(profile.Raw),
		PayloadHash: hex.EncodeToString(sum[:]),
		FetchedAt:   s.cfg.Now().UTC(),
	}

	// An unchanged page does not need a new snapshot row.
	if existing, ok, err := s.raw.Get(ctx, item.Source, item.EntityKey); err == nil && ok && existing.PayloadHash == item.PayloadHash {
		return
	}

	if err := s.raw.Upsert(ctx, item); err != nil {
		s.logger.WarnContext(ctx, "raw page archive failed", "url", profile.URL, "error", err)
	}
}

// playerIndex serves the cached index snapshot, refreshing it through a
// single flight once the TTL lapses. A failed refresh serves the stale
// snapshot rather than failing lookups.
func (s *GameLogService) playerIndex(ctx context.Context) ([]gamelog.ProfileEntry, error) {
	if snap := s.index.Load(); snap != nil && s.cfg.Now().Before(snap.expiresAt) {
		return snap.entries, nil
	}

	out, err, _ := s.flight.Do("player-index", func() (any, error) {
		if snap := s.index.Load(); snap != nil && s.cfg.Now().Before(snap.expiresAt) {
			return snap.entries, nil
		}

		entries, refreshErr := s.archive.PlayerIndex(ctx)
		if refreshErr != nil {
			if snap := s.index.Load(); snap != nil {
				s.logger.WarnContext(ctx, "player index refresh failed, serving stale snapshot", "error", refreshErr)
				return snap.entries, nil
			}
			return nil, refreshErr
		}

		s.index.Store(&indexSnapshot{
			entries:   entries,
			expiresAt: s.cfg.Now().Add(s.cfg.IndexTTL),
		})
		return entries, nil
	})
	if err != nil {
		return nil, err
	}

	entries, ok := out.([]gamelog.ProfileEntry)
	if !ok {
		return nil, fmt.Errorf("unexpected index type %T", out)
	}
	return entries, nil
}

func (s *GameLogService) resultTTL(season int) time.Duration {
	if season >= s.cfg.Now().Year() {
		return s.cfg.CurrentSeasonTTL
	}
	return s.cfg.HistoricalTTL
}

func titlePlayerName(title, fallback string) string {
	if head, _, found := strings.Cut(title, " - "); found {
		if trimmed := strings.TrimSpace(head); trimmed != "" {
			return trimmed
		}
	}
	if trimmed := strings.TrimSpace(title); trimmed != "" {
		return trimmed
	}
	return fallback
}
