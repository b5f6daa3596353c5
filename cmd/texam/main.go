// Package main provides the CLI entrypoint for texam.
package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/verte-zerg/texam/internal/bank"
	"github.com/verte-zerg/texam/internal/config"
	"github.com/verte-zerg/texam/internal/exam"
	"github.com/verte-zerg/texam/internal/history"
	"github.com/verte-zerg/texam/internal/latex"
	"github.com/verte-zerg/texam/internal/model"
	"github.com/verte-zerg/texam/internal/report"
	"github.com/verte-zerg/texam/internal/selector"
	"github.com/verte-zerg/texam/internal/tracker"
	"github.com/verte-zerg/texam/internal/tui"
)

const (
	defaultCount      = 5
	defaultMode       = string(model.ModeTracker)
	defaultHistoryRow = 10
)

var (
	genCount       int
	genMode        string
	genShuffle     bool
	genCompile     bool
	genFlat        bool
	genSeed        int64
	genProblemsDir string
	genTemplate    string
	genOutputDir   string

	historyLimit int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "texam",
		Short:         "Mock exam generator for LaTeX problem banks",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runGenerateCmd,
	}

	rootCmd.Flags().IntVar(&genCount, "count", 0, "number of questions (0 prompts interactively)")
	rootCmd.Flags().StringVar(&genMode, "mode", defaultMode, "selection mode: tracker or exclusive")
	rootCmd.Flags().BoolVar(&genShuffle, "shuffle", true, "shuffle problem order in the exam")
	rootCmd.Flags().BoolVar(&genCompile, "compile", true, "compile generated documents with latexmk")
	rootCmd.Flags().BoolVar(&genFlat, "flat", false, "treat all files as one shared topic")
	rootCmd.Flags().Int64Var(&genSeed, "seed", 0, "random seed for reproducible selection")
	rootCmd.Flags().StringVar(&genProblemsDir, "problems-dir", "", "directory with .tex problem files")
	rootCmd.Flags().StringVar(&genTemplate, "template", "", "LaTeX template with a {{BODY}} placeholder")
	rootCmd.Flags().StringVar(&genOutputDir, "output-dir", "", "directory for generated exams")

	rootCmd.AddCommand(newStatsCmd())
	rootCmd.AddCommand(newTopicsCmd())
	rootCmd.AddCommand(newResetCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runGenerateCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyIntConfig(cmd, "count", &genCount, fileCfg.Generate.Count)
	applyStringConfig(cmd, "mode", &genMode, fileCfg.Generate.Mode)
	applyBoolConfig(cmd, "shuffle", &genShuffle, fileCfg.Generate.Shuffle)
	applyBoolConfig(cmd, "compile", &genCompile, fileCfg.Generate.Compile)
	applyBoolConfig(cmd, "flat", &genFlat, fileCfg.Generate.Flat)
	applyStringConfig(cmd, "problems-dir", &genProblemsDir, fileCfg.Generate.ProblemsDir)
	applyStringConfig(cmd, "template", &genTemplate, fileCfg.Generate.Template)
	applyStringConfig(cmd, "output-dir", &genOutputDir, fileCfg.Generate.OutputDir)

	mode, err := model.ParseSelectMode(genMode)
	if err != nil {
		return err
	}

	cfg := model.Config{
		Count:       genCount,
		Mode:        mode,
		Shuffle:     genShuffle,
		Compile:     genCompile,
		FlatTopics:  genFlat,
		ProblemsDir: genProblemsDir,
		Template:    genTemplate,
		OutputDir:   genOutputDir,
	}
	if cfg.ProblemsDir == "" {
		cfg.ProblemsDir = config.DefaultProblemsDir()
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = config.DefaultOutputDir()
	}
	if cmd.Flags().Changed("seed") {
		seed := genSeed
		cfg.Seed = &seed
	}

	b, err := loadBank(cfg)
	if err != nil {
		return err
	}
	if b.Total() == 0 {
		return fmt.Errorf("no problems found in %s (add .tex files first)", cfg.ProblemsDir)
	}

	t, warning := tracker.Open(config.DefaultTrackerPath())
	if warning != "" {
		logErrln(warning)
	}

	count := cfg.Count
	if count <= 0 {
		count, err = promptCount(b)
		if err != nil {
			return err
		}
		if count == 0 {
			logErrln("cancelled")
			return nil
		}
	}

	sel := selector.New(b, t, selector.Options{Mode: cfg.Mode, Seed: cfg.Seed})
	selected, err := sel.Select(count)
	if err != nil {
		return err
	}

	template, err := loadTemplate(cfg.Template)
	if err != nil {
		return err
	}
	asm, err := exam.New(template, cfg.Seed)
	if err != nil {
		return err
	}
	ordered := selected
	if cfg.Shuffle {
		ordered = asm.Shuffle(selected)
	}
	examDoc, err := asm.BuildExam(ordered)
	if err != nil {
		return err
	}
	solutionsDoc, err := asm.BuildSolutions(ordered)
	if err != nil {
		return err
	}

	now := time.Now()
	stamp := now.Format("2006-01-02_15-04-05")
	examDir := filepath.Join(cfg.OutputDir, stamp)
	if err := os.MkdirAll(examDir, 0o755); err != nil {
		return fmt.Errorf("failed to create exam directory: %w", err)
	}
	examPath := filepath.Join(examDir, "exam_"+stamp+".tex")
	solutionsPath := filepath.Join(examDir, "solutions_"+stamp+".tex")
	if err := os.WriteFile(examPath, []byte(examDoc), 0o644); err != nil {
		return fmt.Errorf("failed to write exam: %w", err)
	}
	if err := os.WriteFile(solutionsPath, []byte(solutionsDoc), 0o644); err != nil {
		return fmt.Errorf("failed to write solutions: %w", err)
	}

	if err := t.MarkUsedMany(selected); err != nil {
		logErrf("failed to persist tracker: %v\n", err)
	}
	recordHistory(selected, cfg, now, examDir)

	fmt.Printf("Generated %d questions from %d topics\n", len(selected), countTopics(selected))
	fmt.Printf("Exam:      %s\n", examPath)
	fmt.Printf("Solutions: %s\n", solutionsPath)

	if cfg.Compile {
		compiler := latex.NewCompiler(config.DefaultLogsDir())
		ctx := context.Background()
		for _, path := range []string{examPath, solutionsPath} {
			pdfPath, err := compiler.Compile(ctx, path, examDir)
			if err != nil {
				return fmt.Errorf("failed to compile %s: %w", filepath.Base(path), err)
			}
			fmt.Printf("PDF:       %s\n", pdfPath)
		}
	}
	return nil
}

func promptCount(b *bank.Bank) (int, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return 0, fmt.Errorf("--count is required when not running interactively")
	}
	prompt := tui.NewPromptModel(b.Total(), len(b.Topics()))
	program := tea.NewProgram(prompt)
	if _, err := program.Run(); err != nil {
		return 0, fmt.Errorf("failed to run prompt: %w", err)
	}
	if !prompt.Confirmed() {
		return 0, nil
	}
	return prompt.Count(), nil
}

func loadBank(cfg model.Config) (*bank.Bank, error) {
	b, err := bank.LoadDir(cfg.ProblemsDir, bank.LoadOptions{
		Flat: cfg.FlatTopics,
		Warnf: func(format string, args ...any) {
			logErrf(format+"\n", args...)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load problem bank: %w", err)
	}
	return b, nil
}

func loadTemplate(path string) (string, error) {
	if path == "" {
		path = config.DefaultTemplatePath()
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return exam.DefaultTemplate, nil
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to load template: %w", err)
	}
	return string(data), nil
}

func recordHistory(selected []model.Problem, cfg model.Config, generatedAt time.Time, outputPath string) {
	db, err := history.Open(config.DefaultHistoryDBPath())
	if err != nil {
		logErrf("failed to open history db: %v\n", err)
		return
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()

	topics := make([]string, 0, countTopics(selected))
	seen := map[string]struct{}{}
	for _, p := range selected {
		if _, ok := seen[p.Topic]; !ok {
			seen[p.Topic] = struct{}{}
			topics = append(topics, p.Topic)
		}
	}
	sort.Strings(topics)

	rec := model.ExamRecord{
		GeneratedAt: generatedAt,
		Questions:   len(selected),
		Mode:        string(cfg.Mode),
		Seeded:      cfg.Seed != nil,
		Topics:      strings.Join(topics, ","),
		OutputPath:  outputPath,
	}
	if _, err := db.InsertExam(context.Background(), rec); err != nil {
		logErrf("failed to record exam: %v\n", err)
	}
}

func countTopics(problems []model.Problem) int {
	seen := map[string]struct{}{}
	for _, p := range problems {
		seen[p.Topic] = struct{}{}
	}
	return len(seen)
}

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show bank and tracker stats",
		Args:  cobra.NoArgs,
		RunE:  runStatsCmd,
	}
	cmd.Flags().StringVar(&genProblemsDir, "problems-dir", "", "directory with .tex problem files")
	cmd.Flags().BoolVar(&genFlat, "flat", false, "treat all files as one shared topic")
	return cmd
}

func runStatsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "problems-dir", &genProblemsDir, fileCfg.Generate.ProblemsDir)
	applyBoolConfig(cmd, "flat", &genFlat, fileCfg.Generate.Flat)

	cfg := model.Config{ProblemsDir: genProblemsDir, FlatTopics: genFlat}
	if cfg.ProblemsDir == "" {
		cfg.ProblemsDir = config.DefaultProblemsDir()
	}
	b, err := loadBank(cfg)
	if err != nil {
		return err
	}

	t, warning := tracker.Open(config.DefaultTrackerPath())
	if warning != "" {
		logErrln(warning)
	}

	var records []model.ExamRecord
	if db, err := history.Open(config.DefaultHistoryDBPath()); err == nil {
		records, err = db.ListExams(context.Background(), 5)
		if err != nil {
			logErrf("failed to list history: %v\n", err)
		}
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	} else {
		logErrf("failed to open history db: %v\n", err)
	}

	fmt.Print(report.Render(report.Data{
		Topics:  b.Stats(t),
		Tracker: t.Stats(),
		History: records,
	}))
	return nil
}

func newTopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics",
		Short: "List topics with problem counts",
		Args:  cobra.NoArgs,
		RunE:  runTopicsCmd,
	}
	cmd.Flags().StringVar(&genProblemsDir, "problems-dir", "", "directory with .tex problem files")
	cmd.Flags().BoolVar(&genFlat, "flat", false, "treat all files as one shared topic")
	return cmd
}

func runTopicsCmd(cmd *cobra.Command, _ []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "problems-dir", &genProblemsDir, fileCfg.Generate.ProblemsDir)
	applyBoolConfig(cmd, "flat", &genFlat, fileCfg.Generate.Flat)

	cfg := model.Config{ProblemsDir: genProblemsDir, FlatTopics: genFlat}
	if cfg.ProblemsDir == "" {
		cfg.ProblemsDir = config.DefaultProblemsDir()
	}
	b, err := loadBank(cfg)
	if err != nil {
		return err
	}
	topics := b.Topics()
	if len(topics) == 0 {
		return fmt.Errorf("no topics found in %s", cfg.ProblemsDir)
	}
	for _, topic := range topics {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d\n", topic, len(b.Problems(topic))); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the usage tracker",
		Args:  cobra.NoArgs,
		RunE:  runResetCmd,
	}
}

func runResetCmd(_ *cobra.Command, _ []string) error {
	t, warning := tracker.Open(config.DefaultTrackerPath())
	if warning != "" {
		logErrln(warning)
	}
	stats := t.Stats()
	if err := t.Reset(); err != nil {
		return fmt.Errorf("failed to reset tracker: %w", err)
	}
	if stats.TotalUsed > 0 {
		fmt.Printf("Reset tracking: %d problems cleared\n", stats.TotalUsed)
	} else {
		fmt.Println("No tracked problems to reset")
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recently generated exams",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().IntVar(&historyLimit, "last", defaultHistoryRow, "limit to last N exams")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	db, err := history.Open(config.DefaultHistoryDBPath())
	if err != nil {
		return fmt.Errorf("failed to open history db: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			logErrf("failed to close history db: %v\n", cerr)
		}
	}()

	records, err := db.ListExams(context.Background(), historyLimit)
	if err != nil {
		return fmt.Errorf("failed to list history: %w", err)
	}
	if len(records) == 0 {
		fmt.Println("No exams generated yet")
		return nil
	}
	for _, rec := range records {
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s  %2d questions  %-9s  %s\n",
			rec.GeneratedAt.Format("2006-01-02 15:04"), rec.Questions, rec.Mode, rec.OutputPath); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyBoolConfig(cmd *cobra.Command, name string, target, value *bool) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# texam configuration
# Uncomment a value to enable it. CLI flags override config values.

[generate]
# count = %d               # Questions per exam (0 prompts interactively)
# mode = %q         # Selection mode: tracker or exclusive
# shuffle = true          # Shuffle problem order in the exam
# compile = true          # Compile generated documents with latexmk
# flat = false            # Treat all files as one shared topic
# problems-dir = ""       # Directory with .tex problem files
# template = ""           # LaTeX template with a {{BODY}} placeholder
# output-dir = ""         # Directory for generated exams
`,
		defaultCount,
		defaultMode,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
