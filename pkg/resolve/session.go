// Package resolve answers semantic questions about source trees: what a name refers to, the static
// type of an expression, and which declaration a call binds to.
//
// A Session owns the memoization of one batch of queries. It is not safe for concurrent use; run one
// session per goroutine and share the immutable trees between them.
package resolve

import (
	"io"
	"log"

	"github.com/google/uuid"

	"jsolve/pkg/ast"
	"jsolve/pkg/solver"
	"jsolve/pkg/types"
)

// DefaultMaxDepth bounds the nesting of expression typing within one query.
const DefaultMaxDepth = 512

type Conf struct {
	logger   *log.Logger
	maxDepth int
}

type Option func(*Conf)

func WithLogger(l *log.Logger) Option {
	return func(c *Conf) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithMaxDepth(n int) Option {
	return func(c *Conf) {
		if n > 0 {
			c.maxDepth = n
		}
	}
}

func newConf(opts []Option) *Conf {
	c := &Conf{logger: log.New(io.Discard, "", 0), maxDepth: DefaultMaxDepth}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type Session struct {
	ID       uuid.UUID
	ts       *solver.Combined
	logger   *log.Logger
	maxDepth int
	depth    int

	// resolved holds expression types computed with lambdas typed; pending holds the first-pass
	// types in which lambda arguments are still placeholders.
	resolved map[ast.Key]types.Type
	pending  map[ast.Key]types.Type
	decls    map[ast.Key]types.Decl
}

// NewSession binds every SourceProvider among the providers of ts to the new session.
func NewSession(ts *solver.Combined, opts ...Option) *Session {
	c := newConf(opts)
	s := &Session{
		ID:       uuid.New(),
		ts:       ts,
		logger:   c.logger,
		maxDepth: c.maxDepth,
		resolved: make(map[ast.Key]types.Type),
		pending:  make(map[ast.Key]types.Type),
		decls:    make(map[ast.Key]types.Decl),
	}
	bound := 0
	for _, p := range ts.Providers() {
		if sp, ok := p.(*SourceProvider); ok {
			sp.bind(s)
			bound++
		}
	}
	s.logf("started over %d providers, %d from source", len(ts.Providers()), bound)
	return s
}

func (s *Session) Solver() *solver.Combined { return s.ts }

func (s *Session) logf(format string, a ...any) {
	s.logger.Printf("[%s] "+format, append([]any{s.ID.String()[:8]}, a...)...)
}

// Clear drops every memoized answer, those of the combined solver included. Trees are not
// touched.
func (s *Session) Clear() {
	s.logf("clearing %d resolved, %d pending, %d declarations", len(s.resolved), len(s.pending), len(s.decls))
	s.resolved = make(map[ast.Key]types.Type)
	s.pending = make(map[ast.Key]types.Type)
	s.decls = make(map[ast.Key]types.Decl)
	s.depth = 0
	s.ts.ClearCache()
}

// enter guards one level of recursive typing.
func (s *Session) enter(n *ast.Node) error {
	if s.depth >= s.maxDepth {
		s.logf("recursion limit %d reached at %s", s.maxDepth, n)
		return types.NewRecursionLimitError(n.String(), s.depth)
	}
	s.depth++
	return nil
}

func (s *Session) leave() { s.depth-- }

// Context returns the lexical context of n.
func (s *Session) Context(n *ast.Node) *Context {
	return &Context{s: s, node: n}
}
