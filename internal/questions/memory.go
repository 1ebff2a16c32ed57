package questions

import (
	"context"
	"math/rand"
	"sort"
	"sync"
)

// MemorySource serves tossups from an in-memory slice. It backs development
// and tests; production deployments point Source at the question-bank
// service instead.
type MemorySource struct {
	mu      sync.Mutex
	tossups []*Tossup
	rng     *rand.Rand

	// per set-name read position for select-by-set mode
	cursors map[string]int
}

func NewMemorySource(tossups []*Tossup, seed int64) *MemorySource {
	return &MemorySource{
		tossups: tossups,
		rng:     rand.New(rand.NewSource(seed)),
		cursors: make(map[string]int),
	}
}

func (s *MemorySource) NextTossup(_ context.Context, q Query) (*Tossup, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if q.SelectBySetName {
		return s.nextInSet(q)
	}

	var matching []*Tossup
	for _, t := range s.tossups {
		if q.Matches(t) {
			matching = append(matching, t)
		}
	}
	if len(matching) == 0 {
		return nil, ErrNoQuestionsFound
	}
	return matching[s.rng.Intn(len(matching))], nil
}

// nextInSet walks a set in packet/question order, remembering the position
// per set name. Exhausting the set reports ErrEndOfSet and rewinds.
func (s *MemorySource) nextInSet(q Query) (*Tossup, error) {
	var set []*Tossup
	for _, t := range s.tossups {
		if q.Matches(t) {
			set = append(set, t)
		}
	}
	if len(set) == 0 {
		return nil, ErrNoQuestionsFound
	}
	sort.Slice(set, func(i, j int) bool {
		if set[i].PacketNumber != set[j].PacketNumber {
			return set[i].PacketNumber < set[j].PacketNumber
		}
		return set[i].QuestionNumber < set[j].QuestionNumber
	})

	cur := s.cursors[q.SetName]
	if cur >= len(set) {
		s.cursors[q.SetName] = 0
		return nil, ErrEndOfSet
	}
	s.cursors[q.SetName] = cur + 1
	return set[cur], nil
}

func (s *MemorySource) SetList(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var names []string
	for _, t := range s.tossups {
		if t.SetName != "" && !seen[t.SetName] {
			seen[t.SetName] = true
			names = append(names, t.SetName)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemorySource) NumPackets(_ context.Context, setName string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	packets := make(map[int]bool)
	for _, t := range s.tossups {
		if t.SetName == setName {
			packets[t.PacketNumber] = true
		}
	}
	return len(packets), nil
}
