// Package bank loads and aggregates problems by topic.
package bank

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/verte-zerg/texam/internal/model"
	"github.com/verte-zerg/texam/internal/parser"
)

// FlatTopic is the shared topic name used for flat directory layouts.
const FlatTopic = "problems"

const problemExt = ".tex"

// Bank maps topics to ordered problem lists. Topic order is the order in
// which topics first appeared; problems within a topic keep insertion order.
// The bank is append-only during load and read-only afterwards.
type Bank struct {
	topics map[string][]model.Problem
	order  []string
}

// New returns an empty bank.
func New() *Bank {
	return &Bank{topics: map[string][]model.Problem{}}
}

// Add appends problems to a topic, registering the topic on first use.
func (b *Bank) Add(topic string, problems ...model.Problem) {
	if _, ok := b.topics[topic]; !ok {
		b.order = append(b.order, topic)
		b.topics[topic] = nil
	}
	b.topics[topic] = append(b.topics[topic], problems...)
}

// Topics returns topic names in first-appearance order, skipping topics
// that ended up with no problems.
func (b *Bank) Topics() []string {
	out := make([]string, 0, len(b.order))
	for _, topic := range b.order {
		if len(b.topics[topic]) > 0 {
			out = append(out, topic)
		}
	}
	return out
}

// Problems returns the problem list for a topic.
func (b *Bank) Problems(topic string) []model.Problem {
	return b.topics[topic]
}

// All returns every problem across all topics in topic order.
func (b *Bank) All() []model.Problem {
	var out []model.Problem
	for _, topic := range b.order {
		out = append(out, b.topics[topic]...)
	}
	return out
}

// Total returns the number of problems across all topics.
func (b *Bank) Total() int {
	total := 0
	for _, problems := range b.topics {
		total += len(problems)
	}
	return total
}

// UsedChecker reports whether a problem has been used before. The tracker
// satisfies this.
type UsedChecker interface {
	IsUsed(p model.Problem) bool
}

// Stats computes per-topic counts joined against the usage checker.
// Passing nil counts every problem as unused.
func (b *Bank) Stats(used UsedChecker) []model.TopicStats {
	out := make([]model.TopicStats, 0, len(b.order))
	for _, topic := range b.Topics() {
		stats := model.TopicStats{Topic: topic, Total: len(b.topics[topic])}
		if used != nil {
			for _, p := range b.topics[topic] {
				if used.IsUsed(p) {
					stats.Used++
				}
			}
		}
		stats.Unused = stats.Total - stats.Used
		out = append(out, stats)
	}
	return out
}

// LoadOptions configures directory loading.
type LoadOptions struct {
	// Flat groups all files under FlatTopic instead of one topic per file.
	Flat bool
	// Warnf receives non-fatal per-file findings. Nil discards them.
	Warnf func(format string, args ...any)
}

// LoadDir builds a bank from the .tex files of a directory. Files with other
// extensions are ignored. A missing directory is fatal; extraction problems
// in a single file are reported through Warnf and the rest of the bank still
// loads. Files with no recognizable blocks become a single problem holding
// the whole file text.
func LoadDir(dir string, opts LoadOptions) (*Bank, error) {
	warnf := opts.Warnf
	if warnf == nil {
		warnf = func(string, ...any) {}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("problems directory unavailable: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), problemExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	b := New()
	for _, name := range names {
		path := filepath.Join(dir, name)
		topic := strings.TrimSuffix(name, problemExt)
		if opts.Flat {
			topic = FlatTopic
		}

		data, err := os.ReadFile(path)
		if err != nil {
			warnf("skipping %s: %v", path, err)
			continue
		}
		result, err := parser.Extract(string(data), topic)
		if err != nil {
			warnf("skipping %s: %v", path, err)
			continue
		}
		for _, w := range result.Warnings {
			warnf("%s: %s", path, w)
		}

		problems := result.Problems
		if len(problems) == 0 {
			problems = []model.Problem{{
				Topic: topic,
				Text:  strings.TrimSpace(string(data)),
				Label: topic + "_1",
			}}
		}
		for i := range problems {
			problems[i].Source = path
		}
		b.Add(topic, problems...)
	}
	return b, nil
}
