// Package datasource holds helpers shared by file-backed Datasets
package datasource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// MatchFiles returns the files matching glob, sorted by name. A glob matching nothing is an error.
func MatchFiles(glob string) ([]string, error) {
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("glob %s produced 0 files", glob)
	}
	sort.Strings(matches)
	return matches, nil
}

// ForEachFile opens each file in turn, handing it to fn
func ForEachFile(ctx context.Context, files []string, fn func(path string, f *os.File) error) error {
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		err = fn(path, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

// CountCache remembers the Record count of a file-backed Dataset once it has been computed
type CountCache struct {
	once  sync.Once
	count int
	err   error
}

// Get returns the cached count, computing it with count the first time
func (c *CountCache) Get(count func() (int, error)) (int, error) {
	c.once.Do(func() {
		c.count, c.err = count()
	})
	return c.count, c.err
}
