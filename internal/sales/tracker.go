package sales

import (
	"sync"

	"github.com/realmwatch/salesbot/internal/market"
)

// CollectionTracker holds the per-collection notification state for the
// process lifetime. LastTimestamp is the high-water mark: the largest sale
// timestamp already notified. It never decreases.
type CollectionTracker struct {
	Name     string
	Contract string
	Slug     string
	Market   market.Kind

	mu            sync.Mutex
	lastTimestamp int64
	seen          *SeenSet
}

func NewCollectionTracker(name, contract, slug string, kind market.Kind) *CollectionTracker {
	return &CollectionTracker{
		Name:     name,
		Contract: contract,
		Slug:     slug,
		Market:   kind,
		seen:     NewSeenSet(),
	}
}

// ContractOrSlug is the source-facing identifier: contract address for the
// chain indexer, collection slug for the marketplace API.
func (t *CollectionTracker) ContractOrSlug() string {
	if t.Market == market.KindOpenSea && t.Slug != "" {
		return t.Slug
	}
	return t.Contract
}

func (t *CollectionTracker) LastTimestamp() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastTimestamp
}

func (t *CollectionTracker) SeenCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seen.Len()
}
