package afltables

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/footyarchive/gamelog-api/internal/domain/gamelog"
	"github.com/footyarchive/gamelog-api/internal/usecase"
	"github.com/sourcegraph/conc/pool"

	crerr "github.com/cockroachdb/errors"
)

const indexPathFormat = "/players/index_%c.html"

// PlayerIndex fetches the per-letter player listings concurrently and
// flattens them into one index. Letters whose page cleanly 404s are
// tolerated; transport failures abort the whole refresh. Entries are
// sorted by display name and de-duplicated by URL so resolution order is
// deterministic regardless of fetch completion order.
func (c *Client) PlayerIndex(ctx context.Context) ([]gamelog.ProfileEntry, error) {
	p := pool.NewWithResults[[]gamelog.ProfileEntry]().
		WithContext(ctx).
		WithMaxGoroutines(c.indexWorkers)

	for letter := 'A'; letter <= 'Z'; letter++ {
		letter := letter
		p.Go(func(ctx context.Context) ([]gamelog.ProfileEntry, error) {
			fullURL := c.ResolveURL(fmt.Sprintf(indexPathFormat, letter))
			raw, err := c.fetch(ctx, fullURL)
			if err != nil {
				if fe, ok := AsFetchError(err); ok && fe.Kind == FetchKindHTTP && fe.Status >= 400 && fe.Status < 500 && fe.Status != 429 {
					c.logger.DebugContext(ctx, "player index letter missing", "url", fullURL, "status", fe.Status)
					return nil, nil
				}
				return nil, fmt.Errorf("fetch player index %s: %w", fullURL, err)
			}
			return c.parseIndexPage(raw)
		})
	}

	pages, err := p.Wait()
	if err != nil {
		return nil, crerr.Mark(err, usecase.ErrUpstreamUnavailable)
	}

	entries := make([]gamelog.ProfileEntry, 0, 2048)
	for _, page := range pages {
		entries = append(entries, page...)
	}
	if len(entries) == 0 {
		return nil, crerr.Mark(crerr.New("player index is empty"), usecase.ErrUpstreamUnavailable)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Name != entries[j].Name {
			return entries[i].Name < entries[j].Name
		}
		return entries[i].URL < entries[j].URL
	})

	return dedupeEntries(entries), nil
}

func (c *Client) parseIndexPage(raw []byte) ([]gamelog.ProfileEntry, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse index page: %w", err)
	}

	var entries []gamelog.ProfileEntry
	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, _ := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !strings.Contains(href, "players/") || !strings.HasSuffix(href, ".html") {
			return
		}
		if strings.Contains(href, "index") {
			return
		}

		name := normalizeSpace(sel.Text())
		if name == "" {
			return
		}

		entries = append(entries, gamelog.ProfileEntry{
			Name: name,
			URL:  c.ResolveURL(href),
		})
	})

	return entries, nil
}

func dedupeEntries(entries []gamelog.ProfileEntry) []gamelog.ProfileEntry {
	seen := make(map[string]struct{}, len(entries))
	out := entries[:0]
	for _, entry := range entries {
		if _, ok := seen[entry.URL]; ok {
			continue
		}
		seen[entry.URL] = struct{}{}
		out = append(out, entry)
	}
	return out
}
