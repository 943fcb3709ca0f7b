package sales

const (
	seenSetMaxEntries = 2000
	seenSetTrimTarget = 1500
)

// SeenSet is an insertion-ordered, capacity-bounded set of transaction
// hashes used to break same-timestamp ties between poll windows. When it
// grows past seenSetMaxEntries it is trimmed back to seenSetTrimTarget by
// dropping the oldest-inserted entries first; evicting in arbitrary order
// would risk re-notifying sales whose hashes were dropped early.
type SeenSet struct {
	members map[string]struct{}
	order   []string
}

func NewSeenSet() *SeenSet {
	return &SeenSet{
		members: make(map[string]struct{}),
	}
}

func (s *SeenSet) Contains(txHash string) bool {
	_, ok := s.members[txHash]
	return ok
}

func (s *SeenSet) Len() int {
	return len(s.members)
}

func (s *SeenSet) Add(txHash string) {
	if txHash == "" || s.Contains(txHash) {
		return
	}
	s.members[txHash] = struct{}{}
	s.order = append(s.order, txHash)

	if len(s.members) > seenSetMaxEntries {
		evict := len(s.members) - seenSetTrimTarget
		for _, old := range s.order[:evict] {
			delete(s.members, old)
		}
		s.order = append(s.order[:0:0], s.order[evict:]...)
	}
}
