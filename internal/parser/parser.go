// Package parser extracts problem/solution units from LaTeX text.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/verte-zerg/texam/internal/model"
)

// ErrEmptyInput is returned when the raw text is empty after trimming.
var ErrEmptyInput = errors.New("no content to extract")

var (
	problemEnvRe  = regexp.MustCompile(`(?s)\\begin\{problem\}(.*?)\\end\{problem\}`)
	solutionEnvRe = regexp.MustCompile(`(?s)\\begin\{solution\}(.*?)\\end\{solution\}`)

	numberedProblemRe  = regexp.MustCompile(`\\subsection\*?\{Problem\s+(\d+)[^}]*\}`)
	numberedSolutionRe = regexp.MustCompile(`\\subsection\*?\{Solution\s+(\d+)[^}]*\}`)
	anyNumberedRe      = regexp.MustCompile(`\\subsection\*?\{(Problem|Solution)\s+\d+[^}]*\}`)
)

// Result carries extracted units plus non-fatal findings about the input.
type Result struct {
	Problems []model.Problem
	// Warnings lists data-integrity findings, e.g. a numbered solution
	// without a matching problem label.
	Warnings []string
}

// Extract parses raw LaTeX text into problem units for a topic. The two
// historical markup conventions are tried in order: problem/solution
// environments first, numbered subsections when the first yields nothing.
// Text with no recognizable blocks returns an empty result; the caller
// decides whether to treat the whole file as a single problem.
func Extract(raw, topic string) (Result, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return Result{}, ErrEmptyInput
	}
	if units := extractDelimited(trimmed, topic); len(units) > 0 {
		return Result{Problems: units}, nil
	}
	return extractNumbered(trimmed, topic), nil
}

// extractDelimited handles \begin{problem}...\end{problem} blocks, each
// paired with the next solution environment appearing after it and before
// the following problem block. Intervening content between a problem and
// its solution is ignored; a problem with no solution in its span gets an
// empty one.
func extractDelimited(text, topic string) []model.Problem {
	matches := problemEnvRe.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	units := make([]model.Problem, 0, len(matches))
	for i, m := range matches {
		body := strings.TrimSpace(text[m[2]:m[3]])
		span := text[m[1]:]
		if i+1 < len(matches) {
			span = text[m[1]:matches[i+1][0]]
		}
		solution := ""
		if sol := solutionEnvRe.FindStringSubmatchIndex(span); sol != nil {
			solution = strings.TrimSpace(span[sol[2]:sol[3]])
		}
		units = append(units, model.Problem{
			Topic:    topic,
			Text:     body,
			Solution: solution,
			Label:    fmt.Sprintf("%s_%d", topic, i+1),
		})
	}
	return units
}

// extractNumbered handles \subsection*{Problem N} / \subsection*{Solution N}
// markup. Blocks of each kind are collected into label maps (later
// occurrences of a label overwrite earlier ones), then problems are emitted
// in ascending label order paired with the same-label solution if present.
func extractNumbered(text, topic string) Result {
	problems := map[int]string{}
	solutions := map[int]string{}
	var warnings []string

	markers := anyNumberedRe.FindAllStringIndex(text, -1)
	for i, loc := range markers {
		header := text[loc[0]:loc[1]]
		end := len(text)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		body := stripLeadingComments(text[loc[1]:end])
		if m := numberedProblemRe.FindStringSubmatch(header); m != nil {
			label, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			problems[label] = body
		} else if m := numberedSolutionRe.FindStringSubmatch(header); m != nil {
			label, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			solutions[label] = body
		}
	}
	if len(problems) == 0 && len(solutions) == 0 {
		return Result{}
	}

	labels := make([]int, 0, len(problems))
	for label := range problems {
		labels = append(labels, label)
	}
	sort.Ints(labels)

	units := make([]model.Problem, 0, len(labels))
	for _, label := range labels {
		units = append(units, model.Problem{
			Topic:    topic,
			Text:     problems[label],
			Solution: solutions[label],
			Label:    fmt.Sprintf("%s_%d", topic, label),
		})
	}
	for label := range solutions {
		if _, ok := problems[label]; !ok {
			warnings = append(warnings, fmt.Sprintf("solution %d has no matching problem", label))
		}
	}
	sort.Strings(warnings)
	return Result{Problems: units, Warnings: warnings}
}

// stripLeadingComments drops leading LaTeX comment lines and trims the rest.
func stripLeadingComments(block string) string {
	lines := strings.Split(block, "\n")
	start := 0
	for start < len(lines) {
		line := strings.TrimSpace(lines[start])
		if line == "" || strings.HasPrefix(line, "%") {
			start++
			continue
		}
		break
	}
	return strings.TrimSpace(strings.Join(lines[start:], "\n"))
}
