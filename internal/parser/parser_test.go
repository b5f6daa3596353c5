package parser

import (
	"errors"
	"fmt"
	"testing"
)

func TestExtractDelimitedPairs(t *testing.T) {
	raw := `\begin{problem}
Compute $1+1$.
\end{problem}
Some commentary between blocks.
\begin{solution}
$2$.
\end{solution}
\begin{problem}
Compute $2+2$.
\end{problem}
\begin{solution}
$4$.
\end{solution}`

	result, err := Extract(raw, "arithmetic")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(result.Problems))
	}
	if result.Problems[0].Text != "Compute $1+1$." {
		t.Fatalf("unexpected first problem text: %q", result.Problems[0].Text)
	}
	if result.Problems[0].Solution != "$2$." {
		t.Fatalf("unexpected first solution: %q", result.Problems[0].Solution)
	}
	if result.Problems[1].Solution != "$4$." {
		t.Fatalf("unexpected second solution: %q", result.Problems[1].Solution)
	}
	if result.Problems[0].Label != "arithmetic_1" || result.Problems[1].Label != "arithmetic_2" {
		t.Fatalf("unexpected labels: %q, %q", result.Problems[0].Label, result.Problems[1].Label)
	}
}

func TestExtractDelimitedMissingSolution(t *testing.T) {
	raw := `\begin{problem}
First.
\end{problem}
\begin{problem}
Second.
\end{problem}
\begin{solution}
Answer to the second.
\end{solution}`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(result.Problems))
	}
	if result.Problems[0].Solution != "" {
		t.Fatalf("expected empty solution for first problem, got %q", result.Problems[0].Solution)
	}
	if result.Problems[1].Solution != "Answer to the second." {
		t.Fatalf("unexpected second solution: %q", result.Problems[1].Solution)
	}
}

func TestExtractDelimitedNoSolutionAtEnd(t *testing.T) {
	raw := `\begin{problem}
Lonely problem.
\end{problem}`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(result.Problems))
	}
	if result.Problems[0].Solution != "" {
		t.Fatalf("expected empty solution, got %q", result.Problems[0].Solution)
	}
}

func TestExtractNumberedPairsByLabel(t *testing.T) {
	raw := `\subsection*{Problem 1}
What is $x$?
\subsection*{Problem 2}
What is $y$?
\subsection*{Solution 1}
$x = 3$.`

	result, err := Extract(raw, "algebra")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(result.Problems))
	}
	if result.Problems[0].Solution != "$x = 3$." {
		t.Fatalf("unexpected solution for problem 1: %q", result.Problems[0].Solution)
	}
	if result.Problems[1].Solution != "" {
		t.Fatalf("expected empty solution for problem 2, got %q", result.Problems[1].Solution)
	}
	if result.Problems[1].Label != "algebra_2" {
		t.Fatalf("unexpected label: %q", result.Problems[1].Label)
	}
}

func TestExtractNumberedOrphanSolutionWarns(t *testing.T) {
	raw := `\subsection*{Problem 1}
Q.
\subsection*{Solution 7}
Orphan.`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(result.Problems))
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", result.Warnings)
	}
}

func TestExtractNumberedLastWriteWins(t *testing.T) {
	raw := `\subsection*{Problem 1}
Old text.
\subsection*{Problem 1}
New text.`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(result.Problems))
	}
	if result.Problems[0].Text != "New text." {
		t.Fatalf("expected last occurrence to win, got %q", result.Problems[0].Text)
	}
}

func TestExtractNumberedStripsLeadingComments(t *testing.T) {
	raw := `\subsection*{Problem 3}
% authored 2024-01-02
% difficulty: hard

The actual question.`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(result.Problems))
	}
	if result.Problems[0].Text != "The actual question." {
		t.Fatalf("expected comments stripped, got %q", result.Problems[0].Text)
	}
	if result.Problems[0].Label != "t_3" {
		t.Fatalf("unexpected label: %q", result.Problems[0].Label)
	}
}

func TestExtractNumberedAscendingOrder(t *testing.T) {
	raw := `\subsection*{Problem 10}
Ten.
\subsection*{Problem 2}
Two.`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 2 {
		t.Fatalf("expected 2 problems, got %d", len(result.Problems))
	}
	if result.Problems[0].Text != "Two." || result.Problems[1].Text != "Ten." {
		t.Fatalf("expected ascending numeric label order, got %q then %q",
			result.Problems[0].Text, result.Problems[1].Text)
	}
}

func TestExtractDelimitedTakesPrecedence(t *testing.T) {
	raw := `\subsection*{Problem 1}
Numbered style.
\begin{problem}
Delimited style.
\end{problem}`

	result, err := Extract(raw, "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 1 {
		t.Fatalf("expected 1 problem, got %d", len(result.Problems))
	}
	if result.Problems[0].Text != "Delimited style." {
		t.Fatalf("expected delimited form to win, got %q", result.Problems[0].Text)
	}
}

func TestExtractEmptyInput(t *testing.T) {
	for _, raw := range []string{"", "   \n\t  "} {
		_, err := Extract(raw, "t")
		if !errors.Is(err, ErrEmptyInput) {
			t.Fatalf("expected ErrEmptyInput for %q, got %v", raw, err)
		}
	}
}

func TestExtractNoRecognizableBlocks(t *testing.T) {
	result, err := Extract("Just a plain paragraph about nothing.", "t")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 0 {
		t.Fatalf("expected no problems, got %d", len(result.Problems))
	}
}

func TestExtractManyDelimitedOrdinals(t *testing.T) {
	raw := ""
	for i := 1; i <= 5; i++ {
		raw += fmt.Sprintf("\\begin{problem}\nP%d\n\\end{problem}\n", i)
	}
	result, err := Extract(raw, "calc")
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(result.Problems) != 5 {
		t.Fatalf("expected 5 problems, got %d", len(result.Problems))
	}
	for i, p := range result.Problems {
		want := fmt.Sprintf("calc_%d", i+1)
		if p.Label != want {
			t.Fatalf("expected label %q, got %q", want, p.Label)
		}
	}
}
