// Package selector picks exam problems from the bank.
package selector

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/verte-zerg/texam/internal/bank"
	"github.com/verte-zerg/texam/internal/model"
	"github.com/verte-zerg/texam/internal/tracker"
)

var (
	// ErrInvalidCount rejects non-positive question counts.
	ErrInvalidCount = errors.New("question count must be positive")
	// ErrNoTopics means the bank has no topics with problems.
	ErrNoTopics = errors.New("no topics with problems available")
)

// InsufficientPoolError reports a request larger than the pool.
type InsufficientPoolError struct {
	Requested int
	Available int
}

func (e *InsufficientPoolError) Error() string {
	return fmt.Sprintf("requested %d questions, but only %d available", e.Requested, e.Available)
}

// Options configures a selector.
type Options struct {
	// Mode selects the exhaustion policy. Zero value means ModeTracker.
	Mode model.SelectMode
	// Seed fixes the random source for reproducible selection. Nil seeds
	// from the current time.
	Seed *int64
}

// Selector selects problems from a bank, consulting the tracker for
// freshness. Selection never mutates the tracker; callers mark the result
// used after a successful selection.
type Selector struct {
	bank    *bank.Bank
	tracker *tracker.Tracker
	mode    model.SelectMode
	rnd     *rand.Rand
}

// New returns a selector over the given bank and tracker. The tracker may
// be nil, in which case every problem counts as unused.
func New(b *bank.Bank, t *tracker.Tracker, opts Options) *Selector {
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	mode := opts.Mode
	if mode == "" {
		mode = model.ModeTracker
	}
	return &Selector{
		bank:    b,
		tracker: t,
		mode:    mode,
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Select returns exactly count problems with pairwise-distinct identities.
// Topics are covered first, in bank order; remaining slots are filled by
// random topic. Unused problems are preferred; once a topic is exhausted the
// behavior depends on the mode.
func (s *Selector) Select(count int) ([]model.Problem, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidCount, count)
	}
	topics := s.bank.Topics()
	if len(topics) == 0 {
		return nil, ErrNoTopics
	}
	total := s.bank.Total()
	if count > total {
		return nil, &InsufficientPoolError{Requested: count, Available: total}
	}

	if s.mode == model.ModeExclusive {
		return s.selectExclusive(topics, count)
	}
	return s.selectTracked(topics, count)
}

func (s *Selector) selectTracked(topics []string, count int) ([]model.Problem, error) {
	selected := make([]model.Problem, 0, count)

	// Coverage pass: one problem per topic in bank order.
	for _, topic := range topics {
		if len(selected) >= count {
			break
		}
		candidates := s.preferUnused(s.bank.Problems(topic))
		selected = append(selected, candidates[s.rnd.Intn(len(candidates))])
	}

	// Fill pass: random topics until count is reached. Candidates are the
	// topic's not-yet-selected problems with the same unused-preference
	// rule as the coverage pass, so a used problem is only reused once the
	// topic has no unused, unselected problems left. Terminates because
	// the pool was checked to hold at least count problems.
	for len(selected) < count {
		topic := topics[s.rnd.Intn(len(topics))]
		remaining := unselected(s.bank.Problems(topic), selected)
		if len(remaining) == 0 {
			continue
		}
		candidates := s.preferUnused(remaining)
		selected = append(selected, candidates[s.rnd.Intn(len(candidates))])
	}
	return selected, nil
}

// selectExclusive picks at most one problem per topic. When fewer topics
// have an unused problem than the request needs, the whole pool is treated
// as unused for this single selection.
func (s *Selector) selectExclusive(topics []string, count int) ([]model.Problem, error) {
	if count > len(topics) {
		return nil, &InsufficientPoolError{Requested: count, Available: len(topics)}
	}

	recycle := s.topicsWithUnused(topics) < count
	selected := make([]model.Problem, 0, count)
	for _, topic := range topics {
		if len(selected) >= count {
			break
		}
		problems := s.bank.Problems(topic)
		candidates := problems
		if !recycle {
			candidates = s.preferUnused(problems)
		}
		selected = append(selected, candidates[s.rnd.Intn(len(candidates))])
	}
	return selected, nil
}

// preferUnused returns the unused subset of problems, or the full list when
// everything has been used already (accepted reuse).
func (s *Selector) preferUnused(problems []model.Problem) []model.Problem {
	if s.tracker == nil {
		return problems
	}
	if unused := s.tracker.Unused(problems); len(unused) > 0 {
		return unused
	}
	return problems
}

func (s *Selector) topicsWithUnused(topics []string) int {
	if s.tracker == nil {
		return len(topics)
	}
	n := 0
	for _, topic := range topics {
		if len(s.tracker.Unused(s.bank.Problems(topic))) > 0 {
			n++
		}
	}
	return n
}

func unselected(problems, selected []model.Problem) []model.Problem {
	remaining := make([]model.Problem, 0, len(problems))
	for _, p := range problems {
		if !containsProblem(selected, p) {
			remaining = append(remaining, p)
		}
	}
	return remaining
}

func containsProblem(list []model.Problem, p model.Problem) bool {
	for _, item := range list {
		if item.Equal(p) {
			return true
		}
	}
	return false
}
