// Package discover walks a project root collecting CAPL source files
// matching a config's include/exclude glob patterns, grounded on the
// teacher's FileScanner.shouldIncludeFast/shouldExcludeFast use of
// doublestar for fast glob matching during a directory walk.
package discover

import (
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/caplint/internal/config"
)

// Files walks root and returns every regular file whose root-relative
// path matches cfg.Include and none of cfg.Exclude.
func Files(root string, cfg *config.Config) ([]string, error) {
	var out []string
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			rel = p
		}
		rel = filepath.ToSlash(rel)
		if shouldExclude(rel, cfg.Exclude) {
			return nil
		}
		if !shouldInclude(rel, cfg.Include) {
			return nil
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func shouldExclude(rel string, patterns []string) bool {
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}

func shouldInclude(rel string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	for _, pattern := range patterns {
		if matched, _ := doublestar.Match(pattern, rel); matched {
			return true
		}
	}
	return false
}
