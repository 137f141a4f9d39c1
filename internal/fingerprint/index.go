package fingerprint

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/backmassage/doppelrender/internal/framepath"
)

// Buckets maps a digest to every proxy path that produced it. Each path
// list is sorted.
type Buckets map[Digest][]string

// Digests returns the bucket keys in byte order.
func (b Buckets) Digests() []Digest {
	keys := make([]Digest, 0, len(b))
	for d := range b {
		keys = append(keys, d)
	}
	sort.Slice(keys, func(i, j int) bool { return bytes.Compare(keys[i][:], keys[j][:]) < 0 })
	return keys
}

// Files returns the total number of paths across all buckets.
func (b Buckets) Files() int {
	n := 0
	for _, paths := range b {
		n += len(paths)
	}
	return n
}

// Discover lists every existing regular file the template could have
// produced, sorted. The glob alone is not enough: "tiny*.png" also matches
// "tiny_final.png", so only names whose placeholder part is all digits are
// kept. A template without a placeholder is rejected: every frame would map
// to the same file.
func Discover(tmpl framepath.Template) ([]string, error) {
	if !tmpl.HasPlaceholder() {
		return nil, fmt.Errorf("proxy template %q has no frame placeholder", tmpl)
	}
	matches, err := filepath.Glob(tmpl.Glob())
	if err != nil {
		return nil, err
	}
	files := matches[:0]
	for _, m := range matches {
		if _, ok := tmpl.Frame(m); !ok {
			continue
		}
		if fi, err := os.Stat(m); err == nil && fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files, nil
}

// Index digests every path using up to workers goroutines and groups the
// paths by digest. The first decode or read failure cancels the rest and
// is returned. onDone, when non-nil, is called once per hashed file.
func Index(ctx context.Context, paths []string, workers int, onDone func()) (Buckets, error) {
	if workers < 1 {
		workers = 1
	}
	var (
		mu      sync.Mutex
		buckets = make(Buckets)
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := HashFile(p)
			if err != nil {
				return err
			}
			mu.Lock()
			buckets[d] = append(buckets[d], p)
			mu.Unlock()
			if onDone != nil {
				onDone()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, ps := range buckets {
		sort.Strings(ps)
	}
	return buckets, nil
}
