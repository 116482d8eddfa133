package report

import (
	"fmt"
	"io"
	"log"

	"jsolve/pkg/ast"
	"jsolve/pkg/resolve"
	"jsolve/pkg/types"
)

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

// Indexer walks trees and reports every name, call, creation and type use it can resolve.
type Indexer struct {
	s      *resolve.Session
	sink   Sink
	logger *log.Logger
}

func NewIndexer(s *resolve.Session, sink Sink, opts ...Option) *Indexer {
	c := &Conf{logger: log.New(io.Discard, "", 0)}
	for _, opt := range opts {
		opt(c)
	}
	return &Indexer{s: s, sink: sink, logger: c.logger}
}

// Stats counts the records of one Index call.
type Stats struct {
	References int
	Failures   int
	Fatal      int
}

// Index visits the nodes of t in source order. A failing node never stops its siblings.
func (ix *Indexer) Index(t *ast.Tree) Stats {
	var st Stats
	ast.Inspect(t.Root(), func(n *ast.Node) bool {
		if !indexed(n) {
			return true
		}
		ref, fail, ok := ix.visit(t.File, n)
		switch {
		case !ok:
		case fail != nil:
			st.Failures++
			if fail.Fatal {
				st.Fatal++
			}
			ix.sink.Failure(*fail)
		default:
			st.References++
			ix.sink.Reference(ref)
		}
		return true
	})
	ix.logger.Printf("indexed %s: %d references, %d failures (%d fatal)", t.File, st.References, st.Failures, st.Fatal)
	return st
}

func indexed(n *ast.Node) bool {
	switch n.Kind {
	case ast.NameExpr, ast.FieldAccess, ast.MethodCall, ast.ObjectCreation, ast.ExplicitCtorCall:
		return true
	case ast.ClassType:
		// qualifier segments are part of the type use that contains them, `var` is not a type
		if p := n.ParentNode(); p != nil && p.Kind == ast.ClassType && p.Scope == n.ID {
			return false
		}
		return !(n.Name == "var" && n.Scope == ast.NoNode)
	}
	return false
}

// isQualifier reports whether n is the qualifier of a field access or call. A qualifier that does
// not resolve is a package name fragment; the access around it reports the failure if there is
// one.
func isQualifier(n *ast.Node) bool {
	p := n.ParentNode()
	return p != nil && (p.Kind == ast.FieldAccess || p.Kind == ast.MethodCall) && p.Scope == n.ID
}

// visit resolves one node. ok is false when the node produces no record.
func (ix *Indexer) visit(file string, n *ast.Node) (ref Reference, fail *Failure, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ix.logger.Printf("panic at %s: %v", n, r)
			fail = &Failure{File: file, Kind: KindInternal, Message: fmt.Sprint(r), Range: n.Range, Fatal: true}
			ok = true
		}
	}()
	d, err := ix.declOf(n)
	if err != nil {
		if isQualifier(n) && types.IsUnresolved(err) {
			return Reference{}, nil, false
		}
		f := newFailure(file, n, err)
		return Reference{}, &f, true
	}
	ref = Reference{File: file, Kind: kindOf(d), Name: d.DeclName(), Target: d.Describe(), Range: n.Range}
	if td, err := ix.s.TypeDeclOf(n); err == nil {
		ref.Context = td.QualifiedName
	}
	return ref, nil, true
}

func (ix *Indexer) declOf(n *ast.Node) (types.Decl, error) {
	switch n.Kind {
	case ast.NameExpr, ast.FieldAccess:
		return ix.s.SolveName(n)
	case ast.MethodCall:
		return ix.s.SolveCall(n)
	case ast.ObjectCreation:
		return ix.s.SolveCreation(n)
	case ast.ExplicitCtorCall:
		return ix.s.SolveExplicitConstructorCall(n)
	}
	t, err := ix.s.SolveTypeUse(n)
	if err != nil {
		return nil, err
	}
	switch v := t.(type) {
	case *types.Reference:
		return v.Decl, nil
	case types.TypeVariable:
		return v.Decl, nil
	}
	return nil, types.NewTypeShapeError("class or type variable", types.Describe(t))
}

func kindOf(d types.Decl) RefKind {
	switch d.(type) {
	case *types.TypeDecl:
		return RefType
	case *types.TypeParamDecl:
		return RefTypeParam
	case *types.FieldDecl:
		return RefField
	case *types.MethodDecl:
		return RefMethod
	case *types.ConstructorDecl:
		return RefConstructor
	case *types.ParamDecl:
		return RefParameter
	}
	return RefVariable
}
