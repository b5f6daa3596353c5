// Package model defines shared data structures.
package model

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// SelectMode chooses the exhaustion policy of the selection engine.
type SelectMode string

const (
	// ModeTracker prefers unused problems and silently reuses used ones
	// once a topic is exhausted.
	ModeTracker SelectMode = "tracker"
	// ModeExclusive caps selection at one problem per topic and recycles
	// the whole pool when too few topics have unused problems left.
	ModeExclusive SelectMode = "exclusive"
)

// ParseSelectMode validates a mode string from flags or config.
func ParseSelectMode(s string) (SelectMode, error) {
	switch SelectMode(s) {
	case ModeTracker, ModeExclusive:
		return SelectMode(s), nil
	}
	return "", fmt.Errorf("unknown selection mode %q (expected %q or %q)", s, ModeTracker, ModeExclusive)
}

// Problem is a single extracted problem with an optional solution.
// Problems are built once at load time and never mutated.
type Problem struct {
	Topic    string
	Text     string
	Solution string
	// Source is the originating file path, empty when the problem was not
	// loaded from a file.
	Source string
	// Label is the extractor-assigned identifier, e.g. "algebra_3".
	Label string
}

// Equal reports whether two problems are the same unit. Identity is
// content-derived so it survives reloads.
func (p Problem) Equal(other Problem) bool {
	return p.Topic == other.Topic && p.Text == other.Text
}

// ID returns the tracker identity of the problem. Problems with a source
// locator combine it with a short content digest so identical text from
// different files stays distinguishable; without a locator the full text
// digest is used.
func (p Problem) ID() string {
	sum := md5.Sum([]byte(p.Text))
	digest := hex.EncodeToString(sum[:])
	if p.Source != "" {
		return p.Source + ":" + digest[:8]
	}
	return digest
}

// Exam is a generated mock exam.
type Exam struct {
	Problems  []Problem
	Timestamp time.Time
	Requested int
}

// Config defines exam generation settings.
type Config struct {
	Count       int
	Mode        SelectMode
	Shuffle     bool
	Compile     bool
	FlatTopics  bool
	ProblemsDir string
	Template    string
	OutputDir   string
	Seed        *int64
}

// TrackerStats summarizes the usage store.
type TrackerStats struct {
	TotalUsed   int
	LastUpdated time.Time
	Path        string
}

// TopicStats summarizes one topic of the bank against the tracker.
type TopicStats struct {
	Topic  string
	Total  int
	Used   int
	Unused int
}

// ExamRecord is one row of the exam history store.
type ExamRecord struct {
	ID          int64
	GeneratedAt time.Time
	Questions   int
	Mode        string
	Seeded      bool
	Topics      string
	OutputPath  string
}
