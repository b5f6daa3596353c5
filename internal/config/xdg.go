// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "texam", "config.toml")
}

// DefaultProblemsDir returns the default directory for problem files.
func DefaultProblemsDir() string {
	return filepath.Join(XDGConfigHome(), "texam", "problems")
}

// DefaultTemplatePath returns the default LaTeX template path.
func DefaultTemplatePath() string {
	return filepath.Join(XDGConfigHome(), "texam", "template.tex")
}

// DefaultTrackerPath returns the default path for the usage tracker.
func DefaultTrackerPath() string {
	return filepath.Join(XDGDataHome(), "texam", "tracker.json")
}

// DefaultHistoryDBPath returns the default path for the exam history database.
func DefaultHistoryDBPath() string {
	return filepath.Join(XDGDataHome(), "texam", "texam.db")
}

// DefaultOutputDir returns the default directory for generated exams.
func DefaultOutputDir() string {
	return filepath.Join(XDGDataHome(), "texam", "exams")
}

// DefaultLogsDir returns the directory for LaTeX compilation logs.
func DefaultLogsDir() string {
	return filepath.Join(XDGDataHome(), "texam", "logs")
}
