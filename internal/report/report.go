package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"golang.org/x/term"

	"github.com/verte-zerg/texam/internal/model"
)

const terminalWidthBackup = 80

var (
	titleStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	sectionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
)

// Data bundles everything the stats view renders.
type Data struct {
	Topics  []model.TopicStats
	Tracker model.TrackerStats
	History []model.ExamRecord
}

// Render builds the stats report as a single string.
func Render(data Data) string {
	width := terminalWidth()
	var b strings.Builder

	b.WriteString(titleStyle.Render("Problem Bank"))
	b.WriteString("\n\n")

	total, used := 0, 0
	for _, t := range data.Topics {
		total += t.Total
		used += t.Used
	}
	if total == 0 {
		b.WriteString(warnStyle.Render("No problems loaded."))
		b.WriteString("\n")
		return b.String()
	}

	fmt.Fprintf(&b, "%d problems across %d topics, %d used (%s)\n\n",
		total, len(data.Topics), used, percent(used, total))

	headers := []string{"Topic", "Total", "Used", "Unused", "Done"}
	rightAlign := map[int]bool{1: true, 2: true, 3: true, 4: true}
	rows := make([][]string, 0, len(data.Topics))
	for _, t := range data.Topics {
		rows = append(rows, []string{
			truncate(t.Topic, width/2),
			fmt.Sprintf("%d", t.Total),
			fmt.Sprintf("%d", t.Used),
			fmt.Sprintf("%d", t.Unused),
			percent(t.Used, t.Total),
		})
	}
	for _, line := range formatTable(headers, rows, rightAlign) {
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(sectionStyle.Render("Tracker"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%d problems marked used\n", data.Tracker.TotalUsed)
	if !data.Tracker.LastUpdated.IsZero() {
		fmt.Fprintf(&b, "last updated %s\n", data.Tracker.LastUpdated.Format("2006-01-02 15:04"))
	}
	b.WriteString(mutedStyle.Render(data.Tracker.Path))
	b.WriteString("\n")

	if len(data.History) > 0 {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render("Recent exams"))
		b.WriteString("\n")
		histHeaders := []string{"When", "Questions", "Mode", "Output"}
		histAlign := map[int]bool{1: true}
		histRows := make([][]string, 0, len(data.History))
		for _, rec := range data.History {
			histRows = append(histRows, []string{
				rec.GeneratedAt.Format("2006-01-02 15:04"),
				fmt.Sprintf("%d", rec.Questions),
				rec.Mode,
				truncate(rec.OutputPath, width/2),
			})
		}
		for _, line := range formatTable(histHeaders, histRows, histAlign) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func percent(part, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)/float64(total)*100)
}

func truncate(value string, max int) string {
	if max < 8 {
		max = 8
	}
	return runewidth.Truncate(value, max, "…")
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
