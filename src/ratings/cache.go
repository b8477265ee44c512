// backend/src/ratings/cache.go
package ratings

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/username/fundfolio/backend/src/logger"
)

// Store is the storage surface the cache refreshes from.
type Store interface {
	// MasterRatings returns ISIN -> rating text from the ratings master.
	MasterRatings() (map[string]string, error)
	// ObservedRatings returns ISIN -> rating text previously seen on
	// ingested holdings, used as fallback when the master has no entry.
	ObservedRatings() (map[string]string, error)
}

// Cache resolves ratings by ISIN. The two lookup maps are stored whole
// under a single TTL'd cache entry, so expiry is a wholesale refresh, never
// a partial invalidation. Callers receive the cache by injection; there is
// no module-level singleton.
type Cache struct {
	store Store
	ttl   time.Duration
	c     *gocache.Cache

	// refreshMu serializes rebuilds; concurrent readers of a
	// stale-but-present entry keep going with the old maps.
	refreshMu sync.Mutex
}

const lookupMapsKey = "rating_lookup_maps"

type lookupMaps struct {
	master   map[string]string
	observed map[string]string
}

// New builds a rating cache over the given store. Maps are populated lazily
// on first lookup.
func New(store Store, ttl time.Duration) *Cache {
	return &Cache{
		store: store,
		ttl:   ttl,
		c:     gocache.New(ttl, 2*ttl),
	}
}

// Lookup resolves the rating and coarse rating group for an ISIN: master
// source first, observed-holdings fallback second, blank otherwise.
func (rc *Cache) Lookup(isin string) (rating, group string, ok bool) {
	isin = strings.ToUpper(strings.TrimSpace(isin))
	if isin == "" {
		return "", GroupUnrated, false
	}
	maps, err := rc.maps()
	if err != nil {
		logger.L.Error("rating lookup unavailable", "isin", isin, "error", err)
		return "", GroupUnrated, false
	}
	if r, found := maps.master[isin]; found && r != "" {
		return r, Group(r), true
	}
	if r, found := maps.observed[isin]; found && r != "" {
		return r, Group(r), true
	}
	return "", GroupUnrated, false
}

// Refresh rebuilds both lookup maps from the store immediately, resetting
// the staleness window. The ratings-master upload path calls this after its
// upsert.
func (rc *Cache) Refresh() error {
	rc.refreshMu.Lock()
	defer rc.refreshMu.Unlock()
	return rc.rebuild()
}

func (rc *Cache) maps() (*lookupMaps, error) {
	if v, found := rc.c.Get(lookupMapsKey); found {
		return v.(*lookupMaps), nil
	}
	rc.refreshMu.Lock()
	defer rc.refreshMu.Unlock()
	// Another ingestion may have refreshed while we waited.
	if v, found := rc.c.Get(lookupMapsKey); found {
		return v.(*lookupMaps), nil
	}
	if err := rc.rebuild(); err != nil {
		return nil, err
	}
	v, _ := rc.c.Get(lookupMapsKey)
	return v.(*lookupMaps), nil
}

func (rc *Cache) rebuild() error {
	master, err := rc.store.MasterRatings()
	if err != nil {
		return fmt.Errorf("failed to load master ratings: %w", err)
	}
	observed, err := rc.store.ObservedRatings()
	if err != nil {
		return fmt.Errorf("failed to load observed holding ratings: %w", err)
	}
	rc.c.Set(lookupMapsKey, &lookupMaps{master: master, observed: observed}, rc.ttl)
	logger.L.Info("rating lookup maps refreshed",
		"masterEntries", len(master), "observedEntries", len(observed), "ttl", rc.ttl.String())
	return nil
}

// Rating group tiers, coarsest credit quality buckets. Modifiers (+/-) are
// ignored for the group.
const (
	GroupAAA     = "AAA"
	GroupAA      = "AA"
	GroupA       = "A"
	GroupBBB     = "BBB"
	GroupBB      = "BB"
	GroupB       = "B"
	GroupUnrated = "UNRATED"
)

// Alternation order matters: longer tiers must win before their prefixes.
var tierRe = regexp.MustCompile(`\b(AAA|BBB|AA|BB|A|B)\b`)

// Group coarsens a free-text rating ("CRISIL AA+", "[ICRA]A1+", "IND AAA")
// into its letter-grade tier.
func Group(rating string) string {
	upper := strings.ToUpper(rating)
	upper = strings.ReplaceAll(upper, "+", " ")
	upper = strings.ReplaceAll(upper, "-", " ")
	m := tierRe.FindString(upper)
	if m == "" {
		return GroupUnrated
	}
	return m
}
