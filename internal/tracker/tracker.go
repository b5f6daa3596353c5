// Package tracker persists which problems have been used across runs.
package tracker

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/verte-zerg/texam/internal/model"
)

type document struct {
	UsedProblems []string `json:"used_problems"`
	LastUpdated  string   `json:"last_updated"`
	TotalUsed    int      `json:"total_used"`
}

// Tracker is the persistent usage store. It is loaded once at construction
// and written back synchronously after every mutation. Single process,
// single writer; concurrent access is not supported.
type Tracker struct {
	path        string
	used        map[string]struct{}
	lastUpdated time.Time
	now         func() time.Time
}

// Open loads the tracker document at path. A missing file starts an empty
// store. A corrupt or unreadable file also starts empty (fail open) and is
// reported through the returned warning, not as an error.
func Open(path string) (*Tracker, string) {
	t := &Tracker{
		path: path,
		used: map[string]struct{}{},
		now:  time.Now,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return t, ""
		}
		return t, fmt.Sprintf("tracker file unreadable, starting fresh: %v", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return t, fmt.Sprintf("tracker file corrupt, starting fresh: %v", err)
	}
	for _, id := range doc.UsedProblems {
		t.used[id] = struct{}{}
	}
	if doc.LastUpdated != "" {
		if parsed, err := time.Parse(time.RFC3339, doc.LastUpdated); err == nil {
			t.lastUpdated = parsed
		}
	}
	return t, ""
}

// IsUsed reports whether a problem has been used before.
func (t *Tracker) IsUsed(p model.Problem) bool {
	_, ok := t.used[p.ID()]
	return ok
}

// MarkUsed records a problem as used. Marking an already-used problem is a
// no-op and does not rewrite the file.
func (t *Tracker) MarkUsed(p model.Problem) error {
	id := p.ID()
	if _, ok := t.used[id]; ok {
		return nil
	}
	t.used[id] = struct{}{}
	return t.save()
}

// MarkUsedMany records several problems as used with a single write. Already
// used problems are skipped; nothing is written when the set did not grow.
func (t *Tracker) MarkUsedMany(problems []model.Problem) error {
	grew := false
	for _, p := range problems {
		id := p.ID()
		if _, ok := t.used[id]; !ok {
			t.used[id] = struct{}{}
			grew = true
		}
	}
	if !grew {
		return nil
	}
	return t.save()
}

// Unused filters out problems that have already been used.
func (t *Tracker) Unused(problems []model.Problem) []model.Problem {
	unused := make([]model.Problem, 0, len(problems))
	for _, p := range problems {
		if !t.IsUsed(p) {
			unused = append(unused, p)
		}
	}
	return unused
}

// Reset clears the store and persists the empty state unconditionally.
func (t *Tracker) Reset() error {
	t.used = map[string]struct{}{}
	return t.save()
}

// Stats reports the tracker state.
func (t *Tracker) Stats() model.TrackerStats {
	return model.TrackerStats{
		TotalUsed:   len(t.used),
		LastUpdated: t.lastUpdated,
		Path:        t.path,
	}
}

// save writes the document with temp-file + rename so a failed write never
// leaves a truncated tracker behind. Persistence failures leave the
// in-memory set intact.
func (t *Tracker) save() error {
	updated := t.now()

	ids := make([]string, 0, len(t.used))
	for id := range t.used {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	doc := document{
		UsedProblems: ids,
		LastUpdated:  updated.Format(time.RFC3339),
		TotalUsed:    len(ids),
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracker: %w", err)
	}

	dir := filepath.Dir(t.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create tracker dir: %w", err)
	}
	tmpFile, err := os.CreateTemp(dir, "tracker-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp tracker: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write tracker: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close tracker: %w", err)
	}
	if err := os.Rename(tmpPath, t.path); err != nil {
		return fmt.Errorf("failed to write tracker: %w", err)
	}
	t.lastUpdated = updated
	return nil
}
