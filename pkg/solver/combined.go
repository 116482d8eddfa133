package solver

import (
	"errors"
	"log"

	"jsolve/pkg/overload"
	"jsolve/pkg/types"
)

type cacheEntry struct {
	decl *types.TypeDecl
	err  error
}

// Combined asks its providers in order; the first one that knows a name wins. Results, misses
// included, are cached by name until ClearCache.
type Combined struct {
	providers []Provider
	cache     map[string]cacheEntry
	logger    *log.Logger
}

// NewCombined roots every Rooted provider at the new combined solver.
func NewCombined(providers []Provider, opts ...Option) *Combined {
	c := newConf(opts)
	s := &Combined{providers: providers, cache: make(map[string]cacheEntry), logger: c.logger}
	for _, p := range providers {
		if r, ok := p.(Rooted); ok {
			r.SetRoot(s)
		}
	}
	return s
}

func (s *Combined) Kind() Kind { return KindCombined }

func (s *Combined) Providers() []Provider { return s.providers }

func (s *Combined) Logger() *log.Logger { return s.logger }

func (s *Combined) ClearCache() {
	s.logger.Printf("combined: clearing %d cached names", len(s.cache))
	s.cache = make(map[string]cacheEntry)
}

func (s *Combined) SolveType(name string) (*types.TypeDecl, error) {
	if e, ok := s.cache[name]; ok {
		return e.decl, e.err
	}
	var firstErr error
	for _, p := range s.providers {
		d, err := p.SolveType(name)
		if err == nil {
			s.cache[name] = cacheEntry{decl: d}
			return d, nil
		}
		var unresolved *types.UnresolvedNameError
		if !errors.As(err, &unresolved) && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr == nil {
		firstErr = types.NewUnresolvedNameError(name, "combined solver")
	}
	s.cache[name] = cacheEntry{err: firstErr}
	return nil, firstErr
}

// TryType is SolveType reporting absence as false instead of an error. Other failures are returned.
func (s *Combined) TryType(name string) (*types.TypeDecl, bool, error) {
	d, err := s.SolveType(name)
	if err != nil {
		if types.IsUnresolved(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return d, true, nil
}

// SolveMethod gathers the candidates every provider knows for typeName and for each type in its
// ancestor closure, nearest first.
func (s *Combined) SolveMethod(typeName, name string, args []types.Type, staticOnly bool) ([]*types.MethodDecl, error) {
	d, err := s.SolveType(typeName)
	if err != nil {
		return nil, err
	}
	names := []string{d.QualifiedName}
	ancestors, err := (&types.Reference{Decl: d}).AllAncestors()
	if err != nil {
		return nil, err
	}
	for _, a := range ancestors {
		names = append(names, a.QualifiedName())
	}
	var out []*types.MethodDecl
	seen := map[*types.MethodDecl]bool{}
	for _, n := range names {
		for _, p := range s.providers {
			methods, err := p.SolveMethod(n, name, args, staticOnly)
			if err != nil {
				if types.IsUnresolved(err) {
					continue
				}
				return nil, err
			}
			for _, m := range methods {
				if !seen[m] {
					seen[m] = true
					out = append(out, m)
				}
			}
		}
	}
	return out, nil
}

// ResolveMethod picks the most applicable candidate of SolveMethod for args.
func (s *Combined) ResolveMethod(typeName, name string, args []types.Type, staticOnly bool) (*types.MethodDecl, error) {
	candidates, err := s.SolveMethod(typeName, name, args, staticOnly)
	if err != nil {
		return nil, err
	}
	return overload.FindMostApplicable(candidates, name, args, s)
}
