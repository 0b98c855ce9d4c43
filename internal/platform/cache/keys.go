package cache

import (
	"hash/fnv"
	"net/url"
	"sort"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Pagination never changes what the upstream page contains, so these
// params are excluded from stable keys to keep hit rates high across
// paging and ordering variations.
var paginationParams = map[string]struct{}{
	"cursor":    {},
	"page":      {},
	"page_size": {},
	"limit":     {},
	"offset":    {},
	"order":     {},
	"sort":      {},
}

// StableKey builds a canonical cache key from normalized filters: sorted
// by name with pagination params dropped. Two requests for the same data
// produce the same key regardless of param order.
func StableKey(prefix string, filters map[string]string) string {
	names := make([]string, 0, len(filters))
	for name := range filters {
		if _, skip := paginationParams[name]; skip {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString(prefix)
	for _, name := range names {
		_ = buf.WriteByte('|')
		_, _ = buf.WriteString(name)
		_ = buf.WriteByte('=')
		_, _ = buf.WriteString(filters[name])
	}

	return buf.String()
}

// LegacyKey hashes the encoded query verbatim. Used when a request carries
// params outside the known filter set, where collapsing to stable filters
// could serve the wrong payload.
func LegacyKey(prefix, rawQuery string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(rawQuery))
	return prefix + "|legacy|" + strconv.FormatUint(h.Sum64(), 16)
}

// RequestKey picks stable or legacy keying for a request: stable when every
// non-pagination param is a known filter, legacy otherwise.
func RequestKey(prefix string, values url.Values, filters map[string]string) string {
	for name := range values {
		if _, ok := filters[name]; ok {
			continue
		}
		if _, skip := paginationParams[name]; skip {
			continue
		}
		return LegacyKey(prefix, values.Encode())
	}
	return StableKey(prefix, filters)
}
