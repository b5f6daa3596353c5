// Package exam renders selected problems into LaTeX documents.
package exam

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/verte-zerg/texam/internal/model"
)

// BodyPlaceholder marks where the problem body goes in a template.
const BodyPlaceholder = "{{BODY}}"

var subsectionRe = regexp.MustCompile(`\\subsection\*?\{[^}]+\}`)

// Assembler builds exam and solutions documents from a template. The
// template contract is a plain text document with a single body placeholder.
// Shuffling is a presentation concern of this boundary, not of selection:
// callers shuffle once and feed the same order to both documents.
type Assembler struct {
	template string
	rnd      *rand.Rand
}

// New returns an assembler for the given template text. Seed fixes the
// shuffle order; nil seeds from the current time.
func New(template string, seed *int64) (*Assembler, error) {
	if !strings.Contains(template, BodyPlaceholder) {
		return nil, fmt.Errorf("template is missing the %s placeholder", BodyPlaceholder)
	}
	s := time.Now().UnixNano()
	if seed != nil {
		s = *seed
	}
	return &Assembler{template: template, rnd: rand.New(rand.NewSource(s))}, nil
}

// Shuffle returns a shuffled copy of the problems, leaving the input intact.
func (a *Assembler) Shuffle(problems []model.Problem) []model.Problem {
	shuffled := append([]model.Problem(nil), problems...)
	a.rnd.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// BuildExam renders the exam document in the given problem order.
func (a *Assembler) BuildExam(problems []model.Problem) (string, error) {
	if len(problems) == 0 {
		return "", fmt.Errorf("cannot build an exam with no problems")
	}
	var body strings.Builder
	for i, p := range problems {
		text := strings.TrimSpace(p.Text)
		if subsectionRe.MatchString(text) {
			// The problem carries its own header; keep it as-is.
			body.WriteString(text)
			body.WriteString("\n\n")
			continue
		}
		fmt.Fprintf(&body, "\\subsection*{Problem %d}\n", i+1)
		fmt.Fprintf(&body, "\\textbf{Topic:} %s\n\n", p.Topic)
		body.WriteString(text)
		body.WriteString("\n\n")
	}
	return a.render(body.String()), nil
}

// BuildSolutions renders the solutions document for the same problem order
// as the exam.
func (a *Assembler) BuildSolutions(problems []model.Problem) (string, error) {
	if len(problems) == 0 {
		return "", fmt.Errorf("cannot build solutions with no problems")
	}
	var body strings.Builder
	for i, p := range problems {
		fmt.Fprintf(&body, "\\subsection*{Solution %d}\n", i+1)
		fmt.Fprintf(&body, "\\textbf{Topic:} %s\n\n", p.Topic)
		if solution := strings.TrimSpace(p.Solution); solution != "" {
			body.WriteString(solution)
		} else {
			body.WriteString("\\textit{No solution available.}")
		}
		body.WriteString("\n\n")
	}
	return a.render(body.String()), nil
}

func (a *Assembler) render(body string) string {
	return strings.Replace(a.template, BodyPlaceholder, strings.TrimRight(body, "\n")+"\n", 1)
}

// DefaultTemplate is used when no template file is configured.
const DefaultTemplate = `\documentclass[11pt]{article}
\usepackage[margin=2.5cm]{geometry}
\usepackage{amsmath,amssymb}
\begin{document}
\section*{Mock Exam}
{{BODY}}
\end{document}
`
