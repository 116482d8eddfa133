package report

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"testing"

	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsolve/pkg/ast"
	"jsolve/pkg/reflection"
	"jsolve/pkg/resolve"
	"jsolve/pkg/solver"
	"jsolve/pkg/types"
)

func newSession(trees []*ast.Tree, opts ...resolve.Option) *resolve.Session {
	ts := solver.NewCombined([]solver.Provider{
		resolve.NewSourceProvider(trees...),
		solver.NewReflective(reflection.Core()),
	})
	return resolve.NewSession(ts, opts...)
}

func sampleTree() *ast.Tree {
	b := ast.NewBuilder("p/A.java")
	b.At(2, 3)
	field := b.FieldDecl(0, b.Prim("int"), b.Var("count", ast.NoNode))
	b.At(4, 5)
	use := b.Name("count")
	b.At(5, 5)
	missing := b.Name("nope")
	b.At(6, 5)
	call := b.Call(b.This(), "m")
	b.At(7, 5)
	create := b.New(b.ClassType("A"))
	b.At(3, 3)
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(
		b.ExprStmt(use), b.ExprStmt(missing), b.ExprStmt(call), b.ExprStmt(create)))
	b.At(1, 1)
	cls := b.Class(ast.ModPublic, "A", nil, ast.NoNode, nil, field, m)
	return b.Build(b.CompilationUnit("p", nil, cls))
}

func TestIndexReportsReferencesAndFailures(t *testing.T) {
	tree := sampleTree()
	store := NewStore()
	var buf bytes.Buffer
	ix := NewIndexer(newSession([]*ast.Tree{tree}), store, WithLogger(log.New(&buf, "", 0)))

	st := ix.Index(tree)
	assert.Equal(t, Stats{References: 4, Failures: 1}, st)
	assert.Contains(t, buf.String(), "indexed p/A.java: 4 references, 1 failures")

	refs := store.References("p/A.java")
	require.Len(t, refs, 4)
	assert.Equal(t, Reference{
		File: "p/A.java", Kind: RefField, Name: "count", Target: "p.A.count", Context: "p.A",
		Range: ast.Range{Start: ast.Position{Line: 4, Column: 5}, End: ast.Position{Line: 4, Column: 5}},
	}, refs[0])
	assert.Equal(t, RefMethod, refs[1].Kind)
	assert.Equal(t, "p.A.m()", refs[1].Target)
	assert.Equal(t, RefConstructor, refs[2].Kind)
	assert.Equal(t, "p.A.A()", refs[2].Target)
	assert.Equal(t, RefType, refs[3].Kind)
	assert.Equal(t, "p.A", refs[3].Target)

	fails := store.Failures("p/A.java")
	require.Len(t, fails, 1)
	assert.Equal(t, KindUnresolved, fails[0].Kind)
	assert.False(t, fails[0].Fatal)
	assert.Equal(t, ast.Position{Line: 5, Column: 5}, fails[0].Range.Start)
	assert.Contains(t, fails[0].Message, "nope")

	assert.Len(t, store.UsesOf("p.A.count"), 1)
	assert.Equal(t, []string{"p/A.java"}, store.Files())
}

func TestQualifierPackageFragmentsAreSkipped(t *testing.T) {
	ub := ast.NewBuilder("a/Util.java")
	util := ub.Class(ast.ModPublic, "Util", nil, ast.NoNode, nil,
		ub.FieldDecl(ast.ModPublic|ast.ModStatic, ub.Prim("int"), ub.Var("N", ast.NoNode)))
	utilTree := ub.Build(ub.CompilationUnit("a", nil, util))

	b := ast.NewBuilder("b/B.java")
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(b.ExprStmt(b.QualifiedName("a.Util.N"))))
	tree := b.Build(b.CompilationUnit("b", nil, b.Class(0, "B", nil, ast.NoNode, nil, m)))

	store := NewStore()
	st := NewIndexer(newSession([]*ast.Tree{utilTree, tree}), store).Index(tree)
	assert.Equal(t, Stats{References: 2}, st)
	refs := store.References("b/B.java")
	require.Len(t, refs, 2)
	assert.Equal(t, "a.Util.N", refs[0].Target)
	assert.Equal(t, "a.Util", refs[1].Target)
}

func TestRecursionLimitIsFatal(t *testing.T) {
	b := ast.NewBuilder("B.java")
	take := b.Method(0, nil, b.Void(), "take", ids(b.Param(b.Prim("int"), "i")), b.Block())
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(
		b.ExprStmt(b.Call(ast.NoNode, "take", b.Paren(b.Paren(b.Int(1)))))))
	tree := b.Build(b.CompilationUnit("p", nil, b.Class(0, "B", nil, ast.NoNode, nil, take, m)))

	store := NewStore()
	st := NewIndexer(newSession([]*ast.Tree{tree}, resolve.WithMaxDepth(2)), store).Index(tree)
	assert.Equal(t, Stats{Failures: 1, Fatal: 1}, st)
	fails := store.Failures("B.java")
	require.Len(t, fails, 1)
	assert.Equal(t, KindRecursion, fails[0].Kind)
	assert.True(t, fails[0].Fatal)
	assert.Equal(t, lsp.Error, ToDiagnostic(fails[0]).Severity)
}

func TestPanicsBecomeFatalFailures(t *testing.T) {
	tree := sampleTree()
	store := NewStore()
	// without a session every resolution panics
	st := NewIndexer(nil, store).Index(tree)
	assert.Zero(t, st.References)
	assert.Positive(t, st.Failures)
	assert.Equal(t, st.Failures, st.Fatal)
	for _, f := range store.Failures("p/A.java") {
		assert.Equal(t, KindInternal, f.Kind)
	}
}

func ids(ids ...ast.NodeID) []ast.NodeID { return ids }

func TestErrorKind(t *testing.T) {
	cases := []struct {
		err      error
		kind     Kind
		severity Severity
	}{
		{types.NewUnresolvedNameError("x", "p.A"), KindUnresolved, SeverityError},
		{types.NewAmbiguityError("m", []string{"a", "b"}), KindAmbiguous, SeverityError},
		{types.NewConflictingTypesError(types.IntType, types.BooleanType), KindConflicting, SeverityError},
		{types.NewTypeShapeError("Reference", "Array"), KindTypeShape, SeverityFatal},
		{types.NewUnsupportedConstructError("switch patterns"), KindUnsupported, SeverityNote},
		{types.NewIllegalStateError("unbound"), KindIllegalState, SeverityError},
		{types.NewRecursionLimitError("x", 3), KindRecursion, SeverityFatal},
		{fmt.Errorf("while typing: %w", types.NewUnresolvedNameError("y", "p.B")), KindUnresolved, SeverityError},
		{errors.New("boom"), KindInternal, SeverityFatal},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.kind, ErrorKind(tc.err), tc.err.Error())
		assert.Equal(t, tc.severity, ErrorKind(tc.err).Severity(), tc.err.Error())
	}
}

func TestProtocolConversion(t *testing.T) {
	ref := Reference{
		File: "p/A.java", Kind: RefField, Name: "count", Target: "p.A.count", Context: "p.A",
		Range: ast.Range{Start: ast.Position{Line: 4, Column: 5}, End: ast.Position{Line: 4, Column: 10}},
	}
	info := ToSymbolInformation("file:///src/p/A.java", ref)
	assert.Equal(t, lsp.SymbolInformation{
		Name: "count",
		Kind: lsp.SKField,
		Location: lsp.Location{
			URI: "file:///src/p/A.java",
			Range: lsp.Range{
				Start: lsp.Position{Line: 3, Character: 4},
				End:   lsp.Position{Line: 3, Character: 9},
			},
		},
		ContainerName: "p.A",
	}, info)

	d := ToDiagnostic(Failure{File: "p/A.java", Kind: KindUnsupported, Message: "unsupported construct: x",
		Range: ast.Range{}})
	assert.Equal(t, lsp.DiagnosticSeverity(lsp.Information), d.Severity)
	assert.Equal(t, "unsupported", d.Code)
	assert.Equal(t, Source, d.Source)
	assert.Equal(t, lsp.Position{}, d.Range.Start)

	d = ToDiagnostic(Failure{Kind: KindUnresolved, Message: "x"})
	assert.Equal(t, lsp.DiagnosticSeverity(lsp.Warning), d.Severity)
}

func TestStore(t *testing.T) {
	st := NewStore()
	pos := func(line, col int) ast.Position { return ast.Position{Line: line, Column: col} }
	outer := Reference{File: "file:///src/A.java", Target: "p.A.m()", Range: ast.Range{Start: pos(1, 1), End: pos(1, 20)}}
	inner := Reference{File: "/src/A.java", Target: "p.A.x", Range: ast.Range{Start: pos(1, 5), End: pos(1, 8)}}
	st.Reference(outer)
	st.Reference(inner)
	st.Failure(Failure{File: "/src/B.java", Kind: KindUnresolved})

	assert.Len(t, st.References("/src/A.java"), 2)
	assert.Len(t, st.References("file:///src/A.java"), 2)
	assert.Equal(t, []string{"/src/A.java", "/src/B.java"}, st.Files())

	r, ok := st.At("/src/A.java", pos(1, 6))
	require.True(t, ok)
	assert.Equal(t, "p.A.x", r.Target)
	r, ok = st.At("/src/A.java", pos(1, 15))
	require.True(t, ok)
	assert.Equal(t, "p.A.m()", r.Target)
	_, ok = st.At("/src/A.java", pos(2, 1))
	assert.False(t, ok)
}
