package report

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"jsolve/pkg/ast"
)

// Store is a Sink that keeps records in memory, grouped by file. It is safe for concurrent use
// so that one indexer per worker can feed the same store.
type Store struct {
	mu       sync.RWMutex
	refs     map[string][]Reference // file -> references in source order
	failures map[string][]Failure
}

func NewStore() *Store {
	return &Store{
		refs:     make(map[string][]Reference),
		failures: make(map[string][]Failure),
	}
}

// fileKey accepts both paths and file:// URIs.
func fileKey(file string) string {
	return filepath.Clean(strings.TrimPrefix(file, "file://"))
}

func (st *Store) Reference(r Reference) {
	st.mu.Lock()
	defer st.mu.Unlock()
	k := fileKey(r.File)
	st.refs[k] = append(st.refs[k], r)
}

func (st *Store) Failure(f Failure) {
	st.mu.Lock()
	defer st.mu.Unlock()
	k := fileKey(f.File)
	st.failures[k] = append(st.failures[k], f)
}

func (st *Store) References(file string) []Reference {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]Reference(nil), st.refs[fileKey(file)]...)
}

func (st *Store) Failures(file string) []Failure {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]Failure(nil), st.failures[fileKey(file)]...)
}

// Files lists every file with at least one record, sorted.
func (st *Store) Files() []string {
	st.mu.RLock()
	defer st.mu.RUnlock()
	seen := make(map[string]bool)
	for f := range st.refs {
		seen[f] = true
	}
	for f := range st.failures {
		seen[f] = true
	}
	out := make([]string, 0, len(seen))
	for f := range seen {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// UsesOf returns the references to target across all files.
func (st *Store) UsesOf(target string) []Reference {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var out []Reference
	for _, refs := range st.refs {
		for _, r := range refs {
			if r.Target == target {
				out = append(out, r)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].File != out[j].File {
			return out[i].File < out[j].File
		}
		return out[i].Range.Start.Before(out[j].Range.Start)
	})
	return out
}

// At returns the innermost reference whose range covers pos.
func (st *Store) At(file string, pos ast.Position) (Reference, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	var best Reference
	found := false
	for _, r := range st.refs[fileKey(file)] {
		if pos.Before(r.Range.Start) || r.Range.End.Before(pos) {
			continue
		}
		if !found || !r.Range.Start.Before(best.Range.Start) && !best.Range.End.Before(r.Range.End) {
			best, found = r, true
		}
	}
	return best, found
}
