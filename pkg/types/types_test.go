package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// world is a tiny in-memory solver for hand-built declarations.
type world map[string]*TypeDecl

func (w world) SolveType(name string) (*TypeDecl, error) {
	if d, ok := w[name]; ok {
		return d, nil
	}
	return nil, NewUnresolvedNameError(name, "test world")
}

func (w world) add(kind TypeKind, name string, params ...string) *TypeDecl {
	d := NewTypeDecl(kind, OriginReflective, name, w)
	for _, p := range params {
		d.AddTypeParam(NewTypeParamDecl(p, name, w))
	}
	w[name] = d
	return d
}

// supers installs ancestors built lazily, so declarations may refer to each other in any order.
func (w world) supers(d *TypeDecl, build func() []*Reference) {
	d.SetAncestors(func() ([]*Reference, error) { return build(), nil })
}

func (w world) ref(name string, args ...Type) *Reference {
	return NewReference(w[name], args...)
}

func (w world) tv(decl, param string) TypeVariable {
	return TypeVariable{Decl: w[decl].TypeParam(param)}
}

func newWorld() world {
	w := world{}
	w.add(KindClass, ObjectName)
	w.add(KindInterface, "java.lang.CharSequence")
	w.add(KindInterface, "java.lang.Comparable", "T")
	w.add(KindClass, StringName)
	w.add(KindClass, "java.lang.Number")
	w.add(KindClass, "java.lang.Integer")
	w.add(KindClass, "java.lang.Long")
	w.add(KindInterface, "java.util.Collection", "E")
	w.add(KindInterface, "java.util.List", "E")
	w.add(KindClass, "java.util.ArrayList", "E")
	w.add(KindInterface, "java.util.function.Function", "T", "R")
	w.add(KindInterface, "java.lang.Runnable")
	w.add(KindClass, "p.Box", "T")

	obj := func() []*Reference { return []*Reference{w.ref(ObjectName)} }
	for _, n := range []string{"java.lang.CharSequence", "java.lang.Comparable", "java.lang.Number",
		"java.util.Collection", "java.util.function.Function", "java.lang.Runnable", "p.Box"} {
		w.supers(w[n], obj)
	}
	w.supers(w[StringName], func() []*Reference {
		return []*Reference{w.ref(ObjectName), w.ref("java.lang.CharSequence"), w.ref("java.lang.Comparable", w.ref(StringName))}
	})
	for _, n := range []string{"java.lang.Integer", "java.lang.Long"} {
		n := n
		w.supers(w[n], func() []*Reference {
			return []*Reference{w.ref("java.lang.Number"), w.ref("java.lang.Comparable", w.ref(n))}
		})
	}
	w.supers(w["java.util.List"], func() []*Reference {
		return []*Reference{w.ref("java.util.Collection", w.tv("java.util.List", "E"))}
	})
	w.supers(w["java.util.ArrayList"], func() []*Reference {
		return []*Reference{w.ref(ObjectName), w.ref("java.util.List", w.tv("java.util.ArrayList", "E"))}
	})

	apply := NewMethodDecl("apply", FlagAbstract)
	apply.AddParam(NewParamDecl("t", false, func() (Type, error) { return w.tv("java.util.function.Function", "T"), nil }))
	apply.SetReturnType(func() (Type, error) { return w.tv("java.util.function.Function", "R"), nil })
	w["java.util.function.Function"].AddMethod(apply)
	equals := NewMethodDecl("equals", FlagAbstract)
	equals.AddParam(NewParamDecl("o", false, func() (Type, error) { return w.ref(ObjectName), nil }))
	w["java.util.function.Function"].AddMethod(equals)

	w["java.lang.Runnable"].AddMethod(NewMethodDecl("run", FlagAbstract))
	size := NewMethodDecl("size", FlagAbstract)
	size.SetReturnType(func() (Type, error) { return IntType, nil })
	w["java.util.Collection"].AddMethod(size)
	add := NewMethodDecl("add", FlagAbstract)
	add.AddParam(NewParamDecl("e", false, func() (Type, error) { return w.tv("java.util.Collection", "E"), nil }))
	w["java.util.Collection"].AddMethod(add)

	box := w["p.Box"]
	box.AddField(NewFieldDecl("value", 0, func() (Type, error) { return w.tv("p.Box", "T"), nil }))
	return w
}

func TestDescribe(t *testing.T) {
	w := newWorld()
	assert.Equal(t, "int", IntType.Describe())
	assert.Equal(t, "void", Void{}.Describe())
	assert.Equal(t, "null", Null{}.Describe())
	assert.Equal(t, "java.lang.String[][]", ArrayOf(w.ref(StringName), 2).Describe())
	assert.Equal(t, "java.util.List<java.lang.String>", w.ref("java.util.List", w.ref(StringName)).Describe())
	assert.Equal(t, "java.util.List<? extends java.lang.Number>",
		w.ref("java.util.List", Wildcard{Kind: Extends, Bound: w.ref("java.lang.Number")}).Describe())
	assert.Equal(t, "?", Wildcard{}.Describe())
	assert.Equal(t, "T", w.tv("p.Box", "T").Describe())
	assert.Equal(t, "? super T", Wildcard{Kind: Super, Bound: w.tv("p.Box", "T")}.String())
}

func TestReflexivity(t *testing.T) {
	w := newWorld()
	all := []Type{
		IntType, BooleanType, Void{}, Null{},
		Array{Elem: IntType}, Array{Elem: w.ref(StringName)},
		w.ref(StringName), w.ref(ObjectName), w.ref("java.util.List", w.ref(StringName)), w.ref("java.util.List"),
		w.ref("java.util.List", Wildcard{Kind: Super, Bound: w.ref("java.lang.Integer")}),
		w.tv("p.Box", "T"), Wildcard{}, Wildcard{Kind: Extends, Bound: w.ref(StringName)},
		&InferenceVariable{ID: 1}, LambdaConstraint{Bound: w.ref(StringName)}, LambdaPlaceholder{Pos: 0, Arity: 1},
	}
	for _, typ := range all {
		ok, err := typ.IsAssignableBy(typ)
		require.NoError(t, err)
		assert.True(t, ok, typ.Describe())
	}
}

func TestNullAssignability(t *testing.T) {
	w := newWorld()
	assertAssignable(t, true, w.ref(StringName), Null{})
	assertAssignable(t, true, Array{Elem: IntType}, Null{})
	assertAssignable(t, true, w.tv("p.Box", "T"), Null{})
	assertAssignable(t, false, IntType, Null{})
	assertAssignable(t, false, Null{}, IntType)
	assertAssignable(t, false, Null{}, w.ref(StringName))
}

func TestPrimitivesDoNotWiden(t *testing.T) {
	w := newWorld()
	assertAssignable(t, false, LongType, IntType)
	assertAssignable(t, false, DoubleType, FloatType)
	assertAssignable(t, true, IntType, IntType)
	assertAssignable(t, true, IntType, w.ref("java.lang.Integer"))
	assertAssignable(t, false, LongType, w.ref("java.lang.Integer"))
	assertAssignable(t, true, w.ref("java.lang.Integer"), IntType)
	assertAssignable(t, true, w.ref("java.lang.Number"), IntType)
	assertAssignable(t, true, w.ref(ObjectName), IntType)
	assertAssignable(t, false, w.ref(StringName), IntType)
	assertAssignable(t, false, w.ref(ObjectName), Void{})
}

func TestReferenceAssignability(t *testing.T) {
	w := newWorld()
	str := w.ref(StringName)
	arrayListOfString := w.ref("java.util.ArrayList", str)

	assertAssignable(t, true, w.ref("java.util.List", str), arrayListOfString)
	assertAssignable(t, true, w.ref("java.util.Collection", str), arrayListOfString)
	assertAssignable(t, true, w.ref(ObjectName), arrayListOfString)
	assertAssignable(t, false, w.ref("java.util.List", w.ref("java.lang.Integer")), arrayListOfString)
	assertAssignable(t, true, w.ref("java.util.List"), arrayListOfString)
	assertAssignable(t, true, w.ref("java.util.List", str), w.ref("java.util.ArrayList"))
	assertAssignable(t, false, arrayListOfString, w.ref("java.util.List", str))
	assertAssignable(t, true, w.ref("java.util.List", Wildcard{Kind: Extends, Bound: w.ref("java.lang.CharSequence")}), arrayListOfString)
	assertAssignable(t, true, w.ref("java.util.List", Wildcard{Kind: Super, Bound: str}), w.ref("java.util.List", w.ref(ObjectName)))
	assertAssignable(t, false, w.ref("java.util.List", Wildcard{Kind: Super, Bound: str}), w.ref("java.util.List", w.ref("java.lang.Integer")))
	assertAssignable(t, true, w.ref("java.util.List", Wildcard{}), w.ref("java.util.List", w.ref("java.lang.Integer")))
	assertAssignable(t, true, w.ref("java.lang.Comparable", str), str)
	assertAssignable(t, false, w.ref("java.lang.Comparable", w.ref("java.lang.Integer")), str)
}

func TestAncestorClosure(t *testing.T) {
	w := newWorld()
	anc, err := w.ref("java.util.ArrayList", w.ref(StringName)).AllAncestors()
	require.NoError(t, err)
	var names []string
	for _, a := range anc {
		names = append(names, a.Describe())
	}
	assert.Equal(t, []string{
		"java.util.List<java.lang.String>",
		"java.util.Collection<java.lang.String>",
		ObjectName,
	}, names)

	// every ancestor of a type accepts it
	sub := w.ref("java.lang.Integer")
	all, err := sub.AllAncestors()
	require.NoError(t, err)
	for _, a := range all {
		assertAssignable(t, true, a, sub)
	}

	raw, err := w.ref("java.util.ArrayList").AllAncestors()
	require.NoError(t, err)
	assert.Equal(t, "java.util.List", raw[0].Describe())
}

func TestCyclicAncestors(t *testing.T) {
	w := newWorld()
	a := w.add(KindClass, "p.A")
	b := w.add(KindClass, "p.B")
	w.supers(a, func() []*Reference { return []*Reference{w.ref("p.B")} })
	w.supers(b, func() []*Reference { return []*Reference{w.ref("p.A")} })

	_, err := w.ref("p.A").AllAncestors()
	var cycle *RecursionLimitError
	assert.True(t, errors.As(err, &cycle))
}

func TestArrays(t *testing.T) {
	w := newWorld()
	assertAssignable(t, true, Array{Elem: w.ref(ObjectName)}, Array{Elem: w.ref(StringName)})
	assertAssignable(t, false, Array{Elem: w.ref(StringName)}, Array{Elem: w.ref(ObjectName)})
	assertAssignable(t, false, Array{Elem: LongType}, Array{Elem: IntType})
	assertAssignable(t, false, Array{Elem: IntType}, Array{Elem: w.ref("java.lang.Integer")})
	assertAssignable(t, true, w.ref(ObjectName), Array{Elem: IntType})
	assertAssignable(t, false, w.ref(StringName), Array{Elem: IntType})
}

func TestFunctionalInterfaces(t *testing.T) {
	w := newWorld()
	m, ok, err := FunctionalMethod(w.ref("java.util.function.Function", w.ref("java.lang.Integer"), w.ref(StringName)))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "apply", m.Name)

	ok, err = w.ref("java.lang.Runnable").IsFunctionalInterface()
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = w.ref("java.util.List").IsFunctionalInterface()
	require.NoError(t, err)
	assert.False(t, ok)

	assertAssignable(t, true, w.ref("java.util.function.Function"), LambdaPlaceholder{Pos: 0, Arity: 1})
	assertAssignable(t, false, w.ref("java.util.function.Function"), LambdaPlaceholder{Pos: 0, Arity: 2})
	assertAssignable(t, true, w.ref("java.lang.Runnable"), LambdaPlaceholder{Pos: 0, Arity: -1})
	assertAssignable(t, false, w.ref(StringName), LambdaPlaceholder{Pos: 0, Arity: 1})
}

func TestFieldTypeThroughReference(t *testing.T) {
	w := newWorld()
	box := w.ref("p.Box", w.ref(StringName))
	typ, err := box.FieldType(w["p.Box"].Field("value"))
	require.NoError(t, err)
	assert.Equal(t, StringName, typ.Describe())

	raw, err := w.ref("p.Box").FieldType(w["p.Box"].Field("value"))
	require.NoError(t, err)
	assert.Equal(t, ObjectName, raw.Describe())

	sizeOwner := w.ref("java.util.ArrayList", w.ref(StringName))
	addParam, err := w["java.util.Collection"].MethodsNamed("add")[0].Params[0].Type()
	require.NoError(t, err)
	viewed, err := sizeOwner.MemberType(w["java.util.Collection"], addParam)
	require.NoError(t, err)
	assert.Equal(t, StringName, viewed.Describe())
}

func TestSubstituteAndErase(t *testing.T) {
	w := newWorld()
	tv := w.tv("java.util.function.Function", "T")
	list := w.ref("java.util.List", Wildcard{Kind: Extends, Bound: tv})
	m := TypeParamMap{}
	m.Set(tv.Decl, w.ref(StringName))
	assert.Equal(t, "java.util.List<? extends java.lang.String>", m.Apply(list).Describe())
	assert.True(t, ContainsTypeVariables(list))
	assert.False(t, ContainsTypeVariables(m.Apply(list)))

	erased, err := Erase(Array{Elem: tv})
	require.NoError(t, err)
	assert.Equal(t, ObjectName+"[]", erased.Describe())

	concrete := w.ref("java.util.List", w.ref(StringName))
	assert.Same(t, concrete, m.Apply(concrete))
}

func TestEqual(t *testing.T) {
	w := newWorld()
	assert.True(t, Equal(w.ref("java.util.List", w.ref(StringName)), w.ref("java.util.List", w.ref(StringName))))
	assert.False(t, Equal(w.ref("java.util.List", w.ref(StringName)), w.ref("java.util.List")))
	assert.True(t, Equal(w.tv("p.Box", "T"), w.tv("p.Box", "T")))
	assert.False(t, Equal(w.tv("p.Box", "T"), w.tv("java.util.function.Function", "T")))
	assert.False(t, Equal(IntType, LongType))
	assert.True(t, Equal(Array{Elem: IntType}, Array{Elem: IntType}))
}

func TestNarrowing(t *testing.T) {
	w := newWorld()
	r, err := AsReference(w.ref(StringName))
	require.NoError(t, err)
	assert.Equal(t, StringName, r.QualifiedName())

	_, err = AsReference(IntType)
	var shape *TypeShapeError
	require.True(t, errors.As(err, &shape))
	assert.Equal(t, "Reference", shape.Want)
	assert.Equal(t, "Primitive", shape.Got)

	_, err = AsArray(w.ref(StringName))
	assert.True(t, errors.As(err, &shape))
	_, err = AsWildcard(Wildcard{})
	assert.NoError(t, err)
}

func TestMethodUsageApply(t *testing.T) {
	w := newWorld()
	apply := w["java.util.function.Function"].MethodsNamed("apply")[0]
	u, err := NewMethodUsage(apply)
	require.NoError(t, err)
	fn := w.ref("java.util.function.Function", w.ref("java.lang.Integer"), w.ref(StringName))
	u = u.Apply(fn.TypeParamMap())
	assert.Equal(t, "java.lang.String java.util.function.Function.apply(java.lang.Integer)", u.Describe())
}

func TestNewReferenceArity(t *testing.T) {
	w := newWorld()
	assert.Panics(t, func() { NewReference(w["java.util.List"], w.ref(StringName), w.ref(StringName)) })
	assert.True(t, w.ref("java.util.List").IsRaw())
	assert.False(t, w.ref(StringName).IsRaw())
}

func assertAssignable(t *testing.T, want bool, target, value Type) {
	t.Helper()
	ok, err := target.IsAssignableBy(value)
	require.NoError(t, err)
	assert.Equal(t, want, ok, "%s <- %s", target.Describe(), value.Describe())
}

func TestDeclCapabilities(t *testing.T) {
	w := newWorld()
	box := w["p.Box"]
	field := NewFieldDecl("value", 0, func() (Type, error) { return w.tv("p.Box", "T"), nil })
	param := NewParamDecl("x", false, func() (Type, error) { return IntType, nil })
	local := NewVarDecl("s", nil, func() (Type, error) { return w.ref(StringName), nil })
	method := NewMethodDecl("get", 0)
	ctor := NewConstructorDecl("Box", 0)

	cases := []struct {
		d                                           Decl
		isType, isField, isParam, isMethod, isValue bool
	}{
		{box, true, false, false, false, false},
		{box.TypeParam("T"), true, false, false, false, false},
		{field, false, true, false, false, true},
		{param, false, false, true, false, true},
		{local, false, false, false, false, true},
		{method, false, false, false, true, false},
		{ctor, false, false, false, true, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.isType, IsTypeDecl(tc.d), tc.d.DeclName())
		assert.Equal(t, tc.isField, IsField(tc.d), tc.d.DeclName())
		assert.Equal(t, tc.isParam, IsParameter(tc.d), tc.d.DeclName())
		assert.Equal(t, tc.isMethod, IsMethodLike(tc.d), tc.d.DeclName())
		assert.Equal(t, tc.isValue, IsValue(tc.d), tc.d.DeclName())
	}

	typ, err := ValueType(local)
	require.NoError(t, err)
	assert.Equal(t, StringName, typ.Describe())
	_, err = ValueType(method)
	var shape *TypeShapeError
	assert.True(t, errors.As(err, &shape))
}
