package distiller

import (
	"sort"
	"sync"
)

// Stats accumulates counts for one run. Updates are serialized so the worker
// pool can report results concurrently.
type Stats struct {
	mu          sync.Mutex
	Scanned     int
	Copied      int
	Sampled     int
	Skipped     int
	Errors      int
	SkipReasons map[string]int
}

func newStats() *Stats {
	return &Stats{SkipReasons: make(map[string]int)}
}

func (s *Stats) addScanned() {
	s.mu.Lock()
	s.Scanned++
	s.mu.Unlock()
}

func (s *Stats) addCopied() {
	s.mu.Lock()
	s.Copied++
	s.mu.Unlock()
}

func (s *Stats) addSampled() {
	s.mu.Lock()
	s.Sampled++
	s.mu.Unlock()
}

func (s *Stats) addError() {
	s.mu.Lock()
	s.Errors++
	s.mu.Unlock()
}

func (s *Stats) addSkip(reason string) {
	if reason == "" {
		reason = "skip"
	}
	s.mu.Lock()
	s.Skipped++
	s.SkipReasons[reason]++
	s.mu.Unlock()
}

// ReasonCount is one row of the skip-reason breakdown.
type ReasonCount struct {
	Reason string
	Count  int
}

// ReasonsByFrequency returns skip reasons sorted by descending count, ties
// broken alphabetically so reports are deterministic.
func (s *Stats) ReasonsByFrequency() []ReasonCount {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]ReasonCount, 0, len(s.SkipReasons))
	for reason, count := range s.SkipReasons {
		out = append(out, ReasonCount{Reason: reason, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Reason < out[j].Reason
	})
	return out
}
