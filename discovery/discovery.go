// Package discovery locates test programs on disk. A test program is any
// file whose name carries the configured prefix and suffix; directories are
// walked recursively with VCS metadata skipped, and results come back sorted
// so matrix runs are reproducible.
package discovery

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var skippedDirs = map[string]bool{
	".git": true,
	".svn": true,
}

// FindTestFiles walks root and returns the sorted paths of all files whose
// base name starts with prefix and ends with suffix. An empty prefix or
// suffix matches everything.
func FindTestFiles(root, prefix, suffix string) ([]string, error) {
	var result []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if skippedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		name := d.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) {
			result = append(result, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	sort.Strings(result)
	return result, nil
}

// ExpandTests resolves a mixed list of test identities: directory arguments
// expand through FindTestFiles, everything else passes through verbatim in
// place. Two identities are distinct whenever their strings differ.
func ExpandTests(args []string, prefix, suffix string) ([]string, error) {
	var tests []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			found, err := FindTestFiles(filepath.Clean(arg), prefix, suffix)
			if err != nil {
				return nil, err
			}
			tests = append(tests, found...)
			continue
		}
		tests = append(tests, arg)
	}
	return tests, nil
}
