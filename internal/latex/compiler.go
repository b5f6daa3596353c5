// Package latex wraps the external typesetting tool.
package latex

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Compiler runs a LaTeX compiler on generated documents. The exam core
// never inspects typesetting output beyond error propagation.
type Compiler struct {
	Cmd     string
	Options []string
	// LogsDir receives per-run compilation logs when set.
	LogsDir string
}

// NewCompiler returns a latexmk-based compiler.
func NewCompiler(logsDir string) *Compiler {
	return &Compiler{
		Cmd:     "latexmk",
		Options: []string{"-pdf", "-interaction=nonstopmode"},
		LogsDir: logsDir,
	}
}

// Compile compiles texPath into outputDir and returns the PDF path.
func (c *Compiler) Compile(ctx context.Context, texPath, outputDir string) (string, error) {
	if _, err := os.Stat(texPath); err != nil {
		return "", fmt.Errorf("latex file unavailable: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	absTex, err := filepath.Abs(texPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve latex path: %w", err)
	}
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}
	target := absTex
	if rel, err := filepath.Rel(absOut, absTex); err == nil && !strings.HasPrefix(rel, "..") {
		target = rel
	}

	args := append(append([]string(nil), c.Options...), target)
	cmd := exec.CommandContext(ctx, c.Cmd, args...)
	cmd.Dir = absOut
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	c.writeLog(absTex, cmd, stdout.String(), stderr.String(), runErr)
	if runErr != nil {
		if errors.Is(runErr, exec.ErrNotFound) {
			return "", fmt.Errorf("latex compiler %q not found in PATH", c.Cmd)
		}
		return "", fmt.Errorf("latex compilation failed: %w", runErr)
	}

	pdfName := strings.TrimSuffix(filepath.Base(absTex), filepath.Ext(absTex)) + ".pdf"
	pdfPath := filepath.Join(absOut, pdfName)
	if _, err := os.Stat(pdfPath); err == nil {
		return pdfPath, nil
	}
	// Some compilers drop the PDF next to the source instead.
	altPath := filepath.Join(filepath.Dir(absTex), pdfName)
	if _, err := os.Stat(altPath); err == nil {
		return altPath, nil
	}
	return "", fmt.Errorf("pdf not found after compilation (checked %s and %s)", pdfPath, altPath)
}

func (c *Compiler) writeLog(texPath string, cmd *exec.Cmd, stdout, stderr string, runErr error) {
	if c.LogsDir == "" {
		return
	}
	if err := os.MkdirAll(c.LogsDir, 0o755); err != nil {
		return
	}
	stem := strings.TrimSuffix(filepath.Base(texPath), filepath.Ext(texPath))
	name := fmt.Sprintf("%s_%s.log", stem, time.Now().Format("20060102_150405"))
	if runErr != nil {
		name = fmt.Sprintf("%s_%s_error.log", stem, time.Now().Format("20060102_150405"))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "file: %s\n", texPath)
	fmt.Fprintf(&b, "command: %s\n", strings.Join(cmd.Args, " "))
	fmt.Fprintf(&b, "dir: %s\n", cmd.Dir)
	if runErr != nil {
		fmt.Fprintf(&b, "error: %v\n", runErr)
	}
	fmt.Fprintf(&b, "\n--- stdout ---\n%s\n--- stderr ---\n%s\n", stdout, stderr)

	// Best-effort log write.
	_ = os.WriteFile(filepath.Join(c.LogsDir, name), []byte(b.String()), 0o644)
}
