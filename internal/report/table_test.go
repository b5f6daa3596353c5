package report

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Topic", "Total", "Done"}
	rows := [][]string{
		{"algebra", "12", "41.7%"},
		{"set-theory", "3", "100.0%"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Topic       Total    Done" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "algebra        12   41.7%" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "set-theory      3  100.0%" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableEmpty(t *testing.T) {
	if lines := formatTable(nil, nil, nil); lines != nil {
		t.Fatalf("expected nil for empty input, got %v", lines)
	}
}

func TestPercent(t *testing.T) {
	if got := percent(1, 3); got != "33.3%" {
		t.Fatalf("unexpected percent: %q", got)
	}
	if got := percent(0, 0); got != "0.0%" {
		t.Fatalf("unexpected percent for empty total: %q", got)
	}
}
