//go:build cgo && !no_yara

package yara

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gyara "github.com/hillu/go-yara/v4"
)

// Inventory and template files are small; a scan that runs this long is stuck.
const scanTimeout = 30 * time.Second

// ruleCache holds one compiled rule set per screening directory.
var ruleCache = struct {
	sync.Mutex
	byDir map[string]*gyara.Rules
}{byDir: make(map[string]*gyara.Rules)}

// matchRules returns the names of the rules from dir that fire on path.
func matchRules(path, dir string) ([]string, error) {
	rules, err := loadRules(dir)
	if err != nil {
		return nil, err
	}
	var fired gyara.MatchRules
	if err := rules.ScanFile(path, 0, scanTimeout, &fired); err != nil {
		return nil, err
	}
	names := make([]string, len(fired))
	for i, m := range fired {
		names[i] = m.Rule
	}
	return names, nil
}

// loadRules compiles every .yar and .yara file under dir. Each file gets its
// own namespace so rule names may repeat across files.
func loadRules(dir string) (*gyara.Rules, error) {
	ruleCache.Lock()
	defer ruleCache.Unlock()
	if rules, ok := ruleCache.byDir[dir]; ok {
		return rules, nil
	}

	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yar", ".yara":
			if !d.IsDir() {
				files = append(files, path)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read rule directory: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no .yar or .yara files in %s", dir)
	}

	compiler, err := gyara.NewCompiler()
	if err != nil {
		return nil, err
	}
	for _, path := range files {
		if err := addRuleFile(compiler, dir, path); err != nil {
			return nil, err
		}
	}
	rules, err := compiler.GetRules()
	if err != nil {
		return nil, fmt.Errorf("compile rules in %s: %w", dir, err)
	}
	ruleCache.byDir[dir] = rules
	return rules, nil
}

func addRuleFile(compiler *gyara.Compiler, dir, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	namespace, err := filepath.Rel(dir, path)
	if err != nil {
		namespace = filepath.Base(path)
	}
	if err := compiler.AddFile(f, namespace); err != nil {
		return fmt.Errorf("%s: %w", namespace, err)
	}
	return nil
}
