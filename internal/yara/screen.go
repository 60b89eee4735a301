// Package yara screens local files against a directory of YARA rules before
// they are uploaded to the backend.
package yara

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnavailable = errors.New("upload screening needs a build with cgo and libyara")
	ErrNoRules     = errors.New("no screening rule directory configured")
)

// MatchError rejects a file that matched at least one rule.
type MatchError struct {
	Path  string
	Rules []string
}

func (e *MatchError) Error() string {
	return fmt.Sprintf("%s matched screening rules: %s", e.Path, strings.Join(e.Rules, ", "))
}

// Screener checks files before upload. The zero value is disabled.
type Screener struct {
	Enabled  bool
	RulesDir string
}

// Check returns nil when screening is disabled or the file is clean.
func (s Screener) Check(path string) error {
	if !s.Enabled {
		return nil
	}
	if s.RulesDir == "" {
		return ErrNoRules
	}
	rules, err := matchRules(path, s.RulesDir)
	if err != nil {
		return fmt.Errorf("screen %s: %w", path, err)
	}
	if len(rules) == 0 {
		return nil
	}
	return &MatchError{Path: path, Rules: rules}
}
