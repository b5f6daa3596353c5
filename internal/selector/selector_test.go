package selector

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/texam/internal/bank"
	"github.com/verte-zerg/texam/internal/model"
	"github.com/verte-zerg/texam/internal/tracker"
)

func seed(v int64) *int64 { return &v }

func testBank(topics map[string][]string, order []string) *bank.Bank {
	b := bank.New()
	for _, topic := range order {
		for _, text := range topics[topic] {
			b.Add(topic, model.Problem{Topic: topic, Text: text, Source: "problems/" + topic + ".tex"})
		}
	}
	return b
}

func openTracker(t *testing.T) *tracker.Tracker {
	t.Helper()
	tr, warning := tracker.Open(filepath.Join(t.TempDir(), "tracker.json"))
	if warning != "" {
		t.Fatalf("unexpected tracker warning: %q", warning)
	}
	return tr
}

func TestSelectRejectsInvalidCount(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1"}}, []string{"a"})
	s := New(b, openTracker(t), Options{Seed: seed(1)})
	for _, count := range []int{0, -3} {
		if _, err := s.Select(count); !errors.Is(err, ErrInvalidCount) {
			t.Fatalf("expected ErrInvalidCount for %d, got %v", count, err)
		}
	}
}

func TestSelectRejectsEmptyBank(t *testing.T) {
	s := New(bank.New(), openTracker(t), Options{Seed: seed(1)})
	if _, err := s.Select(1); !errors.Is(err, ErrNoTopics) {
		t.Fatalf("expected ErrNoTopics, got %v", err)
	}
}

func TestSelectRejectsInsufficientPool(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1", "p2"}, "b": {"p3"}}, []string{"a", "b"})
	tr := openTracker(t)
	s := New(b, tr, Options{Seed: seed(1)})

	_, err := s.Select(4)
	var poolErr *InsufficientPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("expected InsufficientPoolError, got %v", err)
	}
	if poolErr.Requested != 4 || poolErr.Available != 3 {
		t.Fatalf("unexpected counts: %+v", poolErr)
	}
	// Failed selection must not touch the tracker.
	if stats := tr.Stats(); stats.TotalUsed != 0 {
		t.Fatalf("expected tracker untouched, got %d used", stats.TotalUsed)
	}
}

func TestSelectReturnsDistinctProblems(t *testing.T) {
	topics := map[string][]string{}
	order := []string{"a", "b", "c"}
	for _, topic := range order {
		for i := 0; i < 4; i++ {
			topics[topic] = append(topics[topic], fmt.Sprintf("%s problem %d", topic, i))
		}
	}
	b := testBank(topics, order)

	for s := int64(0); s < 20; s++ {
		sel := New(b, openTracker(t), Options{Seed: seed(s)})
		for count := 1; count <= 12; count++ {
			result, err := sel.Select(count)
			if err != nil {
				t.Fatalf("seed %d count %d: %v", s, count, err)
			}
			if len(result) != count {
				t.Fatalf("seed %d: expected %d problems, got %d", s, count, len(result))
			}
			seen := map[string]struct{}{}
			for _, p := range result {
				key := p.Topic + "\x00" + p.Text
				if _, dup := seen[key]; dup {
					t.Fatalf("seed %d count %d: duplicate problem %q", s, count, p.Text)
				}
				seen[key] = struct{}{}
			}
		}
	}
}

func TestSelectCoversEveryTopic(t *testing.T) {
	b := testBank(map[string][]string{
		"a": {"p1", "p2"},
		"b": {"p3"},
		"c": {"p4", "p5"},
	}, []string{"a", "b", "c"})

	for s := int64(0); s < 10; s++ {
		sel := New(b, openTracker(t), Options{Seed: seed(s)})
		result, err := sel.Select(4)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		covered := map[string]bool{}
		for _, p := range result {
			covered[p.Topic] = true
		}
		for _, topic := range []string{"a", "b", "c"} {
			if !covered[topic] {
				t.Fatalf("seed %d: topic %q not covered in %v", s, topic, result)
			}
		}
	}
}

func TestSelectTwoTopicsScenario(t *testing.T) {
	b := testBank(map[string][]string{
		"A": {"p1", "p2"},
		"B": {"p3"},
	}, []string{"A", "B"})
	sel := New(b, openTracker(t), Options{Seed: seed(7)})

	result, err := sel.Select(2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	fromA, fromB := 0, 0
	for _, p := range result {
		switch p.Topic {
		case "A":
			fromA++
		case "B":
			fromB++
		}
	}
	if fromA != 1 || fromB != 1 {
		t.Fatalf("expected one problem per topic, got A=%d B=%d", fromA, fromB)
	}
}

func TestSelectPrefersUnused(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1", "p2", "p3"}}, []string{"a"})
	tr := openTracker(t)
	problems := b.Problems("a")
	if err := tr.MarkUsedMany(problems[:2]); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	for s := int64(0); s < 10; s++ {
		sel := New(b, tr, Options{Seed: seed(s)})
		result, err := sel.Select(1)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		if result[0].Text != "p3" {
			t.Fatalf("seed %d: expected the unused problem, got %q", s, result[0].Text)
		}
	}
}

func TestSelectPrefersUnusedInFillPass(t *testing.T) {
	// One topic with two unused problems and one used: filling past the
	// coverage pick must take the remaining unused problem, never the
	// used one.
	b := testBank(map[string][]string{"a": {"p1", "p2", "p3"}}, []string{"a"})
	tr := openTracker(t)
	used := b.Problems("a")[2]
	if err := tr.MarkUsed(used); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	for s := int64(0); s < 50; s++ {
		sel := New(b, tr, Options{Seed: seed(s)})
		result, err := sel.Select(2)
		if err != nil {
			t.Fatalf("seed %d: %v", s, err)
		}
		for _, p := range result {
			if p.Equal(used) {
				t.Fatalf("seed %d: picked used problem %q while unused ones remained", s, p.Text)
			}
		}
	}
}

func TestSelectDegradesToReuseWhenExhausted(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1", "p2"}, "b": {"p3"}}, []string{"a", "b"})
	tr := openTracker(t)
	if err := tr.MarkUsedMany(b.All()); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	sel := New(b, tr, Options{Seed: seed(3)})
	result, err := sel.Select(3)
	if err != nil {
		t.Fatalf("expected reuse degradation, got %v", err)
	}
	if len(result) != 3 {
		t.Fatalf("expected 3 problems, got %d", len(result))
	}
}

func TestSelectDeterministicWithSeed(t *testing.T) {
	b := testBank(map[string][]string{
		"a": {"p1", "p2", "p3"},
		"b": {"p4", "p5"},
	}, []string{"a", "b"})

	first, err := New(b, openTracker(t), Options{Seed: seed(42)}).Select(4)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	second, err := New(b, openTracker(t), Options{Seed: seed(42)}).Select(4)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	for i := range first {
		if !first[i].Equal(second[i]) {
			t.Fatalf("expected identical selection for identical seed, diff at %d: %q vs %q",
				i, first[i].Text, second[i].Text)
		}
	}
}

func TestSelectWithNilTracker(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1", "p2"}}, []string{"a"})
	sel := New(b, nil, Options{Seed: seed(1)})
	result, err := sel.Select(2)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(result))
	}
}

func TestExclusiveRejectsCountAboveTopics(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1", "p2"}, "b": {"p3"}}, []string{"a", "b"})
	sel := New(b, openTracker(t), Options{Mode: model.ModeExclusive, Seed: seed(1)})

	_, err := sel.Select(3)
	var poolErr *InsufficientPoolError
	if !errors.As(err, &poolErr) {
		t.Fatalf("expected InsufficientPoolError, got %v", err)
	}
	if poolErr.Available != 2 {
		t.Fatalf("expected 2 available topics, got %d", poolErr.Available)
	}
}

func TestExclusiveOnePerTopic(t *testing.T) {
	b := testBank(map[string][]string{
		"a": {"p1", "p2"},
		"b": {"p3", "p4"},
		"c": {"p5"},
	}, []string{"a", "b", "c"})

	for s := int64(0); s < 10; s++ {
		sel := New(b, openTracker(t), Options{Mode: model.ModeExclusive, Seed: seed(s)})
		result, err := sel.Select(3)
		if err != nil {
			t.Fatalf("select: %v", err)
		}
		counts := map[string]int{}
		for _, p := range result {
			counts[p.Topic]++
		}
		for topic, n := range counts {
			if n != 1 {
				t.Fatalf("seed %d: topic %q contributed %d problems", s, topic, n)
			}
		}
		if len(counts) != 3 {
			t.Fatalf("seed %d: expected 3 topics, got %d", s, len(counts))
		}
	}
}

func TestExclusiveRecyclesPoolOnExhaustion(t *testing.T) {
	b := testBank(map[string][]string{"a": {"p1"}, "b": {"p2"}}, []string{"a", "b"})
	tr := openTracker(t)
	if err := tr.MarkUsedMany(b.All()); err != nil {
		t.Fatalf("mark used: %v", err)
	}

	sel := New(b, tr, Options{Mode: model.ModeExclusive, Seed: seed(1)})
	result, err := sel.Select(2)
	if err != nil {
		t.Fatalf("expected whole-pool recycle, got %v", err)
	}
	if len(result) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(result))
	}
}
