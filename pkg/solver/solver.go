// Package solver answers declaration lookups by qualified name from class files, runtime mirrors and
// an ordered combination of providers.
package solver

import (
	"io"
	"log"

	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

type Kind uint8

const (
	KindSource Kind = iota + 1
	KindCompiled
	KindReflective
	KindCombined
)

func (k Kind) String() string {
	switch k {
	case KindSource:
		return "source"
	case KindCompiled:
		return "compiled"
	case KindReflective:
		return "reflective"
	case KindCombined:
		return "combined"
	}
	return "unknown"
}

// ParseKind maps a configuration name to a provider kind.
func ParseKind(s string) (Kind, bool) {
	for k := KindSource; k <= KindCombined; k++ {
		if k.String() == s {
			return k, true
		}
	}
	return 0, false
}

type Provider interface {
	Kind() Kind
	// SolveType fails with an UnresolvedNameError when the provider does not know name.
	SolveType(name string) (*types.TypeDecl, error)
	// SolveMethod lists the methods with the given name declared directly on typeName.
	SolveMethod(typeName, name string, args []types.Type, staticOnly bool) ([]*types.MethodDecl, error)
}

// Rooted is implemented by providers whose declarations resolve the types they mention through the
// solver that owns them.
type Rooted interface {
	SetRoot(root types.Solver)
}

type Conf struct {
	logger *log.Logger
}

type Option func(*Conf)

func WithLogger(l *log.Logger) Option {
	return func(c *Conf) {
		if l != nil {
			c.logger = l
		}
	}
}

func newConf(opts []Option) *Conf {
	c := &Conf{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// methodsOf filters the methods declared on d.
func methodsOf(d *types.TypeDecl, name string, staticOnly bool) []*types.MethodDecl {
	return utils.Filter(d.MethodsNamed(name), func(m *types.MethodDecl) bool {
		return !staticOnly || m.IsStatic()
	})
}
