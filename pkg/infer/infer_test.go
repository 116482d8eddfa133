package infer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsolve/pkg/infer"
	"jsolve/pkg/reflection"
	"jsolve/pkg/solver"
	"jsolve/pkg/types"
)

type fixture struct {
	t  *testing.T
	ts *solver.Combined
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, ts: solver.NewCombined([]solver.Provider{solver.NewReflective(reflection.Core())})}
}

func (f *fixture) decl(name string) *types.TypeDecl {
	f.t.Helper()
	d, err := f.ts.SolveType(name)
	require.NoError(f.t, err)
	return d
}

func (f *fixture) ref(name string, args ...types.Type) *types.Reference {
	return types.NewReference(f.decl(name), args...)
}

func (f *fixture) method(typeName, name string) *types.MethodDecl {
	f.t.Helper()
	methods := f.decl(typeName).MethodsNamed(name)
	require.NotEmpty(f.t, methods)
	return methods[0]
}

// asListT is the type parameter of Arrays.asList.
func (f *fixture) asListT() *types.TypeParamDecl {
	return f.method("java.util.Arrays", "asList").TypeParams[0]
}

func TestReferenceThroughAncestor(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(f.ref("java.util.List", T), f.ref("java.util.ArrayList", f.ref(types.StringName)))
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, "java.util.List<java.lang.String>", got.Describe())

	sub, err := ic.Substitution([]*types.TypeParamDecl{T.Decl})
	require.NoError(t, err)
	v, ok := sub.Lookup(T.Decl)
	require.True(t, ok)
	assert.Equal(t, types.StringName, v.Describe())
}

func TestPrimitiveIsBoxed(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(T, types.IntType)
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Integer", got.Describe())
}

func TestArrays(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(types.Array{Elem: T}, types.Array{Elem: f.ref(types.StringName)})
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.String[]", got.Describe())
}

func TestWildcardBounds(t *testing.T) {
	f := newFixture(t)
	m := f.method("java.util.stream.Stream", "map")
	params, err := m.ParamTypes()
	require.NoError(t, err)

	ic := infer.NewContext(f.ts)
	actual := f.ref("java.util.function.Function", f.ref(types.StringName), f.ref("java.lang.Integer"))
	formal, err := ic.AddPair(params[0], actual)
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, "java.util.function.Function<? super java.lang.String, ? extends java.lang.Integer>", got.Describe())

	sub, err := ic.Substitution(m.TypeParams)
	require.NoError(t, err)
	r, ok := sub.Lookup(m.TypeParams[0])
	require.True(t, ok)
	assert.Equal(t, "java.lang.Integer", r.Describe())
}

func TestUnconstrainedFallsBackToTypeVariable(t *testing.T) {
	f := newFixture(t)
	p := f.asListT()
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(types.TypeVariable{Decl: p}, types.Null{})
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, types.TypeVariable{Decl: p}, got)

	formal = ic.AddSingle(f.ref("java.util.List", types.TypeVariable{Decl: p}))
	ref, err := types.AsReference(formal)
	require.NoError(t, err)
	_, isVar := ref.Args[0].(*types.InferenceVariable)
	assert.True(t, isVar)
	assert.Len(t, ic.Variables(), 1)
	v, ok := ic.Variable(p)
	require.True(t, ok)
	assert.Empty(t, v.Equivalents)
}

func TestLambdaPlaceholderAddsNothing(t *testing.T) {
	f := newFixture(t)
	m := f.method("java.util.stream.Stream", "map")
	params, err := m.ParamTypes()
	require.NoError(t, err)
	ic := infer.NewContext(f.ts)
	_, err = ic.AddPair(params[0], types.LambdaPlaceholder{Pos: 0, Arity: 1})
	require.NoError(t, err)
	sub, err := ic.Substitution(m.TypeParams)
	require.NoError(t, err)
	r, ok := sub.Lookup(m.TypeParams[0])
	require.True(t, ok)
	assert.Equal(t, types.TypeVariable{Decl: m.TypeParams[0]}, r)
}

func TestLambdaConstraintRegistersBound(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(T, types.LambdaConstraint{Bound: f.ref(types.StringName)})
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, types.StringName, got.Describe())
}

func TestConflictingTypes(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	ic := infer.NewContext(f.ts)
	_, err := ic.AddPair(f.ref("java.util.List", T), f.ref(types.StringName))
	var conflict *types.ConflictingTypesError
	require.ErrorAs(t, err, &conflict)
}

func TestSeveralEquivalentsIsIllegal(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(T, f.ref(types.StringName))
	require.NoError(t, err)
	_, err = ic.AddPair(T, f.ref("java.lang.Integer"))
	require.NoError(t, err)
	_, err = ic.Resolve(formal)
	var illegal *types.IllegalStateError
	require.ErrorAs(t, err, &illegal)
}

func TestEquivalentVariablesShareResult(t *testing.T) {
	f := newFixture(t)
	T := types.TypeVariable{Decl: f.asListT()}
	R := types.TypeVariable{Decl: f.method("java.util.stream.Stream", "map").TypeParams[0]}
	ic := infer.NewContext(f.ts)
	formal, err := ic.AddPair(T, R)
	require.NoError(t, err)
	_, err = ic.AddPair(R, f.ref("java.lang.Long"))
	require.NoError(t, err)
	got, err := ic.Resolve(formal)
	require.NoError(t, err)
	assert.Equal(t, "java.lang.Long", got.Describe())
}
