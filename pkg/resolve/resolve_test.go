package resolve

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jsolve/pkg/ast"
	cf "jsolve/pkg/classfile"
	"jsolve/pkg/reflection"
	"jsolve/pkg/solver"
	"jsolve/pkg/types"
)

func newSession(t *testing.T, trees []*ast.Tree, opts ...Option) *Session {
	t.Helper()
	ts := solver.NewCombined([]solver.Provider{
		NewSourceProvider(trees...),
		solver.NewReflective(reflection.Core()),
	})
	return NewSession(ts, opts...)
}

func describeType(t *testing.T, s *Session, n *ast.Node) string {
	t.Helper()
	typ, err := s.TypeOf(n)
	require.NoError(t, err, "type of %s", n)
	return typ.Describe()
}

func ids(ids ...ast.NodeID) []ast.NodeID { return ids }

// method wraps body statements in `class name { void m() { ... } }` inside package pkg.
func method(b *ast.Builder, pkg, name string, imports []ast.NodeID, stmts ...ast.NodeID) ast.NodeID {
	m := b.Method(ast.ModPublic, nil, b.Void(), "m", nil, b.Block(stmts...))
	return b.CompilationUnit(pkg, imports, b.Class(ast.ModPublic, name, nil, ast.NoNode, nil, m))
}

func TestExpressionTypes(t *testing.T) {
	b := ast.NewBuilder("A.java")
	sum := b.Binary(ast.OpPlus, b.Name("x"), b.Name("y"))
	concat := b.Binary(ast.OpPlus, b.String("a"), b.Name("x"))
	cmp := b.Binary(ast.OpLt, b.Name("x"), b.Int(3))
	shift := b.Binary(ast.OpShl, b.Name("x"), b.Long(2))
	float := b.Double("1.5f")
	double := b.Double("1.5")
	char := b.Char('c')
	not := b.Unary(ast.OpNot, b.Bool(true))
	neg := b.Unary(ast.OpMinus, b.Name("y"))
	cond := b.Cond(b.Bool(true), b.Null(), b.String("s"))
	cast := b.Cast(b.ClassType("Object"), b.String("s"))
	index := b.Index(b.Name("arr"), b.Int(0))
	length := b.FieldAccess(b.Name("arr"), "length")
	newArr := b.NewArray(b.Prim("int"), ids(b.Int(3)), 1, ast.NoNode)
	strClass := b.ClassLit(b.ClassType("String"))
	intClass := b.ClassLit(b.Prim("int"))
	inst := b.InstanceOf(b.Name("x"), b.ClassType("Object"))
	assign := b.Assign(b.Name("y"), b.Int(1))
	paren := b.Paren(b.Name("x"))
	boxed := b.Binary(ast.OpMul, b.Name("boxed"), b.Double("2.0"))
	inferred := b.Name("n")

	cu := method(b, "p", "A", nil,
		b.Local(b.Prim("int"), b.Var("x", b.Int(1))),
		b.Local(b.Prim("long"), b.Var("y", b.Long(2))),
		b.Local(b.ArrayOf(b.Prim("int")), b.Var("arr", b.NewArray(b.Prim("int"), ids(b.Int(3)), 1, ast.NoNode))),
		b.Local(b.ClassType("Integer"), b.Var("boxed", b.Int(4))),
		b.Local(b.ClassType("var"), b.Var("n", b.Int(5))),
		b.ExprStmt(sum), b.ExprStmt(concat), b.ExprStmt(cmp), b.ExprStmt(shift),
		b.ExprStmt(float), b.ExprStmt(double), b.ExprStmt(char), b.ExprStmt(not), b.ExprStmt(neg),
		b.ExprStmt(cond), b.ExprStmt(cast), b.ExprStmt(index), b.ExprStmt(length), b.ExprStmt(newArr),
		b.ExprStmt(strClass), b.ExprStmt(intClass), b.ExprStmt(inst), b.ExprStmt(assign), b.ExprStmt(paren),
		b.ExprStmt(boxed), b.ExprStmt(inferred),
	)
	tree := b.Build(cu)
	s := newSession(t, []*ast.Tree{tree})

	cases := []struct {
		node ast.NodeID
		want string
	}{
		{sum, "long"},
		{concat, "java.lang.String"},
		{cmp, "boolean"},
		{shift, "int"},
		{float, "float"},
		{double, "double"},
		{char, "char"},
		{not, "boolean"},
		{neg, "long"},
		{cond, "java.lang.String"},
		{cast, "java.lang.Object"},
		{index, "int"},
		{length, "int"},
		{newArr, "int[]"},
		{strClass, "java.lang.Class<java.lang.String>"},
		{intClass, "java.lang.Class<java.lang.Integer>"},
		{inst, "boolean"},
		{assign, "long"},
		{paren, "int"},
		{boxed, "double"},
		{inferred, "int"},
	}
	for _, tc := range cases {
		n := tree.Node(tc.node)
		assert.Equal(t, tc.want, describeType(t, s, n), "type of %s", n)
	}
}

func TestInheritedMembersAreSubstituted(t *testing.T) {
	b := ast.NewBuilder("Sub.java")
	inBase := b.Name("value")
	get := b.Method(0, nil, b.ClassType("T"), "get", nil, b.Block(b.Return(inBase)))
	base := b.Class(0, "Base", ids(b.TypeParam("T")), ast.NoNode, nil,
		b.FieldDecl(0, b.ClassType("T"), b.Var("value", ast.NoNode)), get)

	value := b.Name("value")
	call := b.Call(ast.NoNode, "get")
	length := b.Call(b.FieldAccess(b.This(), "value"), "length")
	super := b.Call(b.Super(), "get")
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(
		b.ExprStmt(value), b.ExprStmt(call), b.ExprStmt(length), b.ExprStmt(super)))
	sub := b.Class(0, "Sub", nil, b.ClassType("Base", b.ClassType("String")), nil, m)
	tree := b.Build(b.CompilationUnit("p", nil, base, sub))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "T", describeType(t, s, tree.Node(inBase)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(value)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(call)))
	assert.Equal(t, "int", describeType(t, s, tree.Node(length)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(super)))

	d, err := s.SolveName(tree.Node(value))
	require.NoError(t, err)
	f, ok := d.(*types.FieldDecl)
	require.True(t, ok)
	assert.Equal(t, "p.Base", f.Declaring.QualifiedName)

	md, err := s.SolveCall(tree.Node(call))
	require.NoError(t, err)
	assert.Equal(t, "p.Base", md.Declaring.QualifiedName)
	assert.Equal(t, "get", md.Name)

	u, err := s.SolveCallUsage(tree.Node(call))
	require.NoError(t, err)
	assert.Equal(t, "java.lang.String", u.ReturnType.Describe())
}

func TestSourceClassExtendingLibraryClass(t *testing.T) {
	b := ast.NewBuilder("MyList.java")
	get := b.Call(ast.NoNode, "get", b.Int(0))
	size := b.Call(ast.NoNode, "size")
	stream := b.Call(ast.NoNode, "stream")
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(b.ExprStmt(get), b.ExprStmt(size), b.ExprStmt(stream)))
	cls := b.Class(ast.ModPublic, "MyList", nil, b.ClassType("ArrayList", b.ClassType("String")), nil, m)
	tree := b.Build(b.CompilationUnit("p", ids(b.Import("java.util.ArrayList", 0)), cls))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(get)))
	assert.Equal(t, "int", describeType(t, s, tree.Node(size)))
	assert.Equal(t, "java.util.stream.Stream<java.lang.String>", describeType(t, s, tree.Node(stream)))

	d, err := s.TypeDeclOf(tree.Node(get))
	require.NoError(t, err)
	anc, err := types.GenericReference(d).AllAncestors()
	require.NoError(t, err)
	require.NotEmpty(t, anc)
	assert.Equal(t, "java.util.ArrayList<java.lang.String>", anc[0].Describe())
	assert.Equal(t, types.ObjectName, anc[len(anc)-1].Describe())
}

func TestSourceClassExtendingCompiledClass(t *testing.T) {
	dir := t.TempDir()
	base := &cf.Class{
		Major:  52,
		Access: cf.AccPublic | cf.AccSuper,
		Name:   "q/Base",
		Super:  "java/lang/Object",
		Methods: []cf.Member{
			{Access: cf.AccPublic, Name: "hello", Descriptor: "(I)Ljava/lang/String;"},
		},
	}
	file := filepath.Join(dir, "q", "Base.class")
	require.NoError(t, os.MkdirAll(filepath.Dir(file), 0o755))
	require.NoError(t, os.WriteFile(file, cf.Encode(base), 0o644))
	compiled, err := solver.NewCompiled(context.Background(), []string{dir})
	require.NoError(t, err)

	b := ast.NewBuilder("Sub.java")
	hello := b.Call(ast.NoNode, "hello", b.Int(1))
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(b.ExprStmt(hello)))
	cls := b.Class(ast.ModPublic, "Sub", nil, b.ClassType("Base"), nil, m)
	tree := b.Build(b.CompilationUnit("p", ids(b.Import("q.Base", 0)), cls))
	s := NewSession(solver.NewCombined([]solver.Provider{
		NewSourceProvider(tree),
		compiled,
		solver.NewReflective(reflection.Core()),
	}))

	md, err := s.SolveCall(tree.Node(hello))
	require.NoError(t, err)
	assert.Equal(t, "q.Base", md.Declaring.QualifiedName)
	assert.Equal(t, "hello(int)", md.Signature())
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(hello)))
}

func TestShadowing(t *testing.T) {
	b := ast.NewBuilder("A.java")
	inParam := b.Name("x")
	m := b.Method(0, nil, b.Void(), "m", ids(b.Param(b.Prim("long"), "x")), b.Block(b.ExprStmt(inParam)))
	field := b.Name("x")
	inner := b.Name("x")
	afterInner := b.Name("x")
	n := b.Method(0, nil, b.Void(), "n", nil, b.Block(
		b.ExprStmt(field),
		b.Block(b.Local(b.Prim("int"), b.Var("x", b.Int(1))), b.ExprStmt(inner)),
		b.ExprStmt(afterInner),
	))
	cls := b.Class(0, "A", nil, ast.NoNode, nil, b.FieldDecl(0, b.ClassType("String"), b.Var("x", ast.NoNode)), m, n)
	tree := b.Build(b.CompilationUnit("p", nil, cls))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "long", describeType(t, s, tree.Node(inParam)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(field)))
	assert.Equal(t, "int", describeType(t, s, tree.Node(inner)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(afterInner)))

	d, err := s.Context(tree.Node(inParam)).SolveSymbol("x")
	require.NoError(t, err)
	assert.True(t, types.IsParameter(d))
	d, err = s.Context(tree.Node(field)).SolveSymbol("x")
	require.NoError(t, err)
	assert.True(t, types.IsField(d))
}

func TestImports(t *testing.T) {
	ub := ast.NewBuilder("a/Util.java")
	util := ub.Class(ast.ModPublic, "Util", nil, ast.NoNode, nil,
		ub.FieldDecl(ast.ModPublic|ast.ModStatic, ub.ClassType("String"), ub.Var("NAME", ast.NoNode)),
		ub.Method(ast.ModPublic|ast.ModStatic, nil, ub.Prim("int"), "twice", ids(ub.Param(ub.Prim("int"), "i")),
			ub.Block(ub.Return(ub.Name("i")))),
	)
	utilTree := ub.Build(ub.CompilationUnit("a", nil, util))

	bb := ast.NewBuilder("b/B.java")
	name := bb.FieldAccess(bb.Name("Util"), "NAME")
	twice := bb.Call(ast.NoNode, "twice", bb.Int(2))
	list := bb.New(bb.ClassType("ArrayList", bb.ClassType("String")))
	qualified := bb.Call(bb.QualifiedName("a.Util"), "twice", bb.Int(3))
	bTree := bb.Build(method(bb, "b", "B", ids(
		bb.Import("a.Util", 0),
		bb.Import("a.Util.twice", ast.ModStatic),
		bb.Import("java.util.*", ast.ModOnDemand),
	), bb.ExprStmt(name), bb.ExprStmt(twice), bb.ExprStmt(list), bb.ExprStmt(qualified)))

	cb := ast.NewBuilder("c/C.java")
	bare := cb.Name("NAME")
	bareCall := cb.Call(ast.NoNode, "twice", cb.Int(1))
	cTree := cb.Build(method(cb, "c", "C", ids(cb.Import("a.Util.*", ast.ModStatic|ast.ModOnDemand)),
		cb.ExprStmt(bare), cb.ExprStmt(bareCall)))

	s := newSession(t, []*ast.Tree{utilTree, bTree, cTree})

	assert.Equal(t, "java.lang.String", describeType(t, s, bTree.Node(name)))
	assert.Equal(t, "int", describeType(t, s, bTree.Node(twice)))
	assert.Equal(t, "java.util.ArrayList<java.lang.String>", describeType(t, s, bTree.Node(list)))
	assert.Equal(t, "int", describeType(t, s, bTree.Node(qualified)))
	assert.Equal(t, "java.lang.String", describeType(t, s, cTree.Node(bare)))
	assert.Equal(t, "int", describeType(t, s, cTree.Node(bareCall)))

	m, err := s.SolveCall(bTree.Node(twice))
	require.NoError(t, err)
	assert.Equal(t, "a.Util", m.Declaring.QualifiedName)
}

func TestQualifiedAndMemberTypes(t *testing.T) {
	b := ast.NewBuilder("Outer.java")
	inner := b.Class(ast.ModStatic, "Inner", nil, ast.NoNode, nil)
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block())
	outer := b.Class(ast.ModPublic, "Outer", nil, ast.NoNode, nil, inner, m)
	other := b.Class(0, "Other", nil, ast.NoNode, nil)
	tree := b.Build(b.CompilationUnit("p", nil, outer, other))
	s := newSession(t, []*ast.Tree{tree})

	d, err := s.Context(tree.Node(m)).SolveType("Inner")
	require.NoError(t, err)
	assert.Equal(t, "p.Outer.Inner", d.Describe())

	d, err = s.Context(tree.Node(other)).SolveType("Outer.Inner")
	require.NoError(t, err)
	assert.Equal(t, "p.Outer.Inner", d.Describe())

	d, err = s.Context(tree.Node(other)).SolveType("java.util.Map.Entry")
	require.NoError(t, err)
	assert.Equal(t, "java.util.Map.Entry", d.Describe())

	d, err = s.Context(tree.Node(other)).SolveType("String")
	require.NoError(t, err)
	assert.Equal(t, types.StringName, d.Describe())

	_, err = s.Context(tree.Node(other)).SolveType("Missing")
	assert.True(t, types.IsUnresolved(err))

	_, err = s.Context(tree.Node(other)).SolveType("Inner")
	assert.True(t, types.IsUnresolved(err), "member types are not visible from a sibling class")
}

func TestVarargs(t *testing.T) {
	b := ast.NewBuilder("V.java")
	none := b.Call(ast.NoNode, "sum")
	three := b.Call(ast.NoNode, "sum", b.Int(1), b.Int(2), b.Int(3))
	asList := b.Call(b.Name("Arrays"), "asList", b.String("a"), b.String("b"))
	sum := b.Method(ast.ModStatic, nil, b.Prim("int"), "sum", ids(b.VarargParam(b.Prim("int"), "xs")),
		b.Block(b.Return(b.Int(0))))
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(b.ExprStmt(none), b.ExprStmt(three), b.ExprStmt(asList)))
	cls := b.Class(0, "V", nil, ast.NoNode, nil, sum, m)
	tree := b.Build(b.CompilationUnit("p", ids(b.Import("java.util.Arrays", 0)), cls))
	s := newSession(t, []*ast.Tree{tree})

	for _, id := range []ast.NodeID{none, three} {
		md, err := s.SolveCall(tree.Node(id))
		require.NoError(t, err)
		assert.Equal(t, "sum", md.Name)
		assert.True(t, md.IsVariadic())
		assert.Equal(t, "int", describeType(t, s, tree.Node(id)))
	}
	assert.Equal(t, "java.util.List<java.lang.String>", describeType(t, s, tree.Node(asList)))
}

func TestInferenceFailureFailsCall(t *testing.T) {
	b := ast.NewBuilder("V.java")
	mixed := b.Call(b.Name("Arrays"), "asList", b.String("a"), b.Int(1))
	tree := b.Build(method(b, "p", "V", ids(b.Import("java.util.Arrays", 0)), b.ExprStmt(mixed)))
	s := newSession(t, []*ast.Tree{tree})

	_, err := s.TypeOf(tree.Node(mixed))
	var illegal *types.IllegalStateError
	assert.True(t, errors.As(err, &illegal), "got %v", err)
}

func TestVariableWithMissingType(t *testing.T) {
	b := ast.NewBuilder("M.java")
	x := b.Name("x")
	call := b.Call(x, "go")
	tree := b.Build(method(b, "p", "M", nil,
		b.Local(b.ClassType("Missing"), b.Var("x", ast.NoNode)),
		b.ExprStmt(call),
	))
	s := newSession(t, []*ast.Tree{tree})

	for _, n := range []ast.NodeID{x, call} {
		_, err := s.TypeOf(tree.Node(n))
		var unresolved *types.UnresolvedNameError
		require.True(t, errors.As(err, &unresolved), "got %v", err)
		assert.Equal(t, "Missing", unresolved.Name)
	}
	_, err := s.SolveCall(tree.Node(call))
	var unresolved *types.UnresolvedNameError
	require.True(t, errors.As(err, &unresolved), "got %v", err)
	assert.Equal(t, "Missing", unresolved.Name)
}

func TestEnumMembers(t *testing.T) {
	b := ast.NewBuilder("Color.java")
	color := b.Enum(ast.ModPublic, "Color", nil, ids(b.EnumConstant("RED", nil), b.EnumConstant("GREEN", nil)))
	values := b.Call(b.Name("Color"), "values")
	valueOf := b.Call(b.Name("Color"), "valueOf", b.String("RED"))
	red := b.FieldAccess(b.Name("Color"), "RED")
	nameCall := b.Call(red, "name")
	user := b.Class(0, "U", nil, ast.NoNode, nil, b.Method(0, nil, b.Void(), "m", nil, b.Block(
		b.ExprStmt(values), b.ExprStmt(valueOf), b.ExprStmt(nameCall))))
	tree := b.Build(b.CompilationUnit("p", nil, color, user))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "p.Color[]", describeType(t, s, tree.Node(values)))
	assert.Equal(t, "p.Color", describeType(t, s, tree.Node(valueOf)))
	assert.Equal(t, "p.Color", describeType(t, s, tree.Node(red)))

	d, err := s.TypeDeclOf(tree.Node(color))
	require.NoError(t, err)
	assert.True(t, d.IsEnum())
	assert.Equal(t, []string{"RED", "GREEN"}, d.EnumConstants)
	anc, err := d.Ancestors()
	require.NoError(t, err)
	require.NotEmpty(t, anc)
	assert.Equal(t, "java.lang.Enum<p.Color>", anc[0].Describe())
}

func TestLambdaParameterFromTarget(t *testing.T) {
	b := ast.NewBuilder("L.java")
	x := b.Name("x")
	body := b.Call(x, "toString")
	lambda := b.Lambda(ids(b.LambdaParam("x")), body)
	call := b.Call(ast.NoNode, "apply", lambda)
	apply := b.Method(0, nil, b.ClassType("String"), "apply",
		ids(b.Param(b.ClassType("Function", b.ClassType("Integer"), b.ClassType("String")), "f")),
		b.Block(b.Return(b.Null())))

	sup := b.Lambda(nil, b.Block(b.Return(b.String("x"))))
	s2 := b.Name("s")
	fn := b.Lambda(ids(b.LambdaParam("s")), b.Call(s2, "length"))
	m := b.Method(0, nil, b.Void(), "m", nil, b.Block(
		b.ExprStmt(call),
		b.Local(b.ClassType("Supplier", b.ClassType("String")), b.Var("sup", sup)),
		b.Local(b.ClassType("Function", b.ClassType("String"), b.ClassType("Integer")), b.Var("fn", fn)),
	))
	cls := b.Class(0, "L", nil, ast.NoNode, nil, apply, m)
	tree := b.Build(b.CompilationUnit("p", ids(
		b.Import("java.util.function.Function", 0),
		b.Import("java.util.function.Supplier", 0),
	), cls))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(call)))
	assert.Equal(t, "java.lang.Integer", describeType(t, s, tree.Node(x)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(body)))
	assert.Equal(t, "java.util.function.Function<java.lang.Integer, java.lang.String>",
		describeType(t, s, tree.Node(lambda)))
	assert.Equal(t, "java.util.function.Supplier<java.lang.String>", describeType(t, s, tree.Node(sup)))
	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(s2)))

	d, err := s.SolveName(tree.Node(x))
	require.NoError(t, err)
	p, ok := d.(*types.ParamDecl)
	require.True(t, ok)
	assert.Equal(t, 0, p.Index)
}

func TestStreamChain(t *testing.T) {
	b := ast.NewBuilder("S.java")
	stream := b.Call(b.Name("list"), "stream")
	s := b.Name("s")
	mapped := b.Call(stream, "map", b.Lambda(ids(b.LambdaParam("s")), b.Call(s, "length")))
	toList := b.Call(b.Name("Collectors"), "toList")
	collect := b.Call(mapped, "collect", toList)
	m := b.Method(0, nil, b.Void(), "m",
		ids(b.Param(b.ClassType("List", b.ClassType("String")), "list")),
		b.Block(b.ExprStmt(collect)))
	tree := b.Build(b.CompilationUnit("p", ids(
		b.Import("java.util.List", 0),
		b.Import("java.util.stream.Collectors", 0),
	), b.Class(0, "S", nil, ast.NoNode, nil, m)))
	sess := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "java.util.List<java.lang.Integer>", describeType(t, sess, tree.Node(collect)))
	assert.Equal(t, "java.util.stream.Stream<java.lang.Integer>", describeType(t, sess, tree.Node(mapped)))
	assert.Equal(t, "java.util.stream.Stream<java.lang.String>", describeType(t, sess, tree.Node(stream)))
	assert.Equal(t, "java.lang.String", describeType(t, sess, tree.Node(s)))

	u, err := sess.SolveCallUsage(tree.Node(mapped))
	require.NoError(t, err)
	assert.Equal(t, "java.util.stream.Stream", u.Decl.Declaring.QualifiedName)
	assert.Equal(t, "java.util.stream.Stream<java.lang.Integer>", u.ReturnType.Describe())
}

func TestMethodReferenceAndExplicitTypeArguments(t *testing.T) {
	b := ast.NewBuilder("R.java")
	mapped := b.Call(b.Name("o"), "map", b.MethodRef(b.TypeExpr(b.ClassType("String")), "length"))
	empty := b.CallT(b.Name("Optional"), ids(b.ClassType("Integer")), "empty")
	of := b.Call(b.Name("Optional"), "of", b.String("x"))
	m := b.Method(0, nil, b.Void(), "m",
		ids(b.Param(b.ClassType("Optional", b.ClassType("String")), "o")),
		b.Block(b.ExprStmt(mapped), b.ExprStmt(empty), b.ExprStmt(of)))
	tree := b.Build(b.CompilationUnit("p", ids(b.Import("java.util.Optional", 0)),
		b.Class(0, "R", nil, ast.NoNode, nil, m)))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "java.util.Optional<java.lang.Integer>", describeType(t, s, tree.Node(mapped)))
	assert.Equal(t, "java.util.Optional<java.lang.Integer>", describeType(t, s, tree.Node(empty)))
	assert.Equal(t, "java.util.Optional<java.lang.String>", describeType(t, s, tree.Node(of)))
}

func TestForEachAndCatch(t *testing.T) {
	b := ast.NewBuilder("F.java")
	e := b.Name("e")
	c := b.Name("c")
	ex := b.Name("ex")
	loop := b.ForEach(
		b.VarDeclExpr(0, b.ClassType("var"), b.Var("e", ast.NoNode)),
		b.Name("list"),
		b.Block(b.ExprStmt(e)))
	arrLoop := b.ForEach(
		b.VarDeclExpr(0, b.Prim("char"), b.Var("c", ast.NoNode)),
		b.Call(b.String("abc"), "toCharArray"),
		b.Block(b.ExprStmt(c)))
	try := b.Try(nil, b.Block(), ids(b.Catch(b.Param(b.ClassType("RuntimeException"), "ex"), b.Block(b.ExprStmt(ex)))), ast.NoNode)
	m := b.Method(0, nil, b.Void(), "m",
		ids(b.Param(b.ClassType("List", b.ClassType("String")), "list")),
		b.Block(loop, arrLoop, try))
	tree := b.Build(b.CompilationUnit("p", ids(b.Import("java.util.List", 0)),
		b.Class(0, "F", nil, ast.NoNode, nil, m)))
	s := newSession(t, []*ast.Tree{tree})

	assert.Equal(t, "java.lang.String", describeType(t, s, tree.Node(e)))
	assert.Equal(t, "char", describeType(t, s, tree.Node(c)))
	assert.Equal(t, "java.lang.RuntimeException", describeType(t, s, tree.Node(ex)))
}

func TestCreationAndConstructorCalls(t *testing.T) {
	b := ast.NewBuilder("P.java")
	p := b.Class(0, "P", nil, ast.NoNode, nil,
		b.Constructor(0, "P", ids(b.Param(b.Prim("int"), "a")), b.Block()),
		b.Constructor(0, "P", ids(b.Param(b.ClassType("String"), "a")), b.Block()),
	)
	superCall := b.SuperCall(b.Int(1))
	q := b.Class(0, "Q", nil, b.ClassType("P"), nil,
		b.Constructor(0, "Q", nil, b.Block(b.ExprStmt(superCall))))
	anon := b.NewAnon(b.ClassType("Runnable"), nil,
		b.Method(ast.ModPublic, nil, b.Void(), "run", nil, b.Block()))
	sized := b.New(b.ClassType("ArrayList", b.ClassType("String")), b.Int(5))
	diamond := b.New(b.Diamond("ArrayList"))
	this := b.This()
	inAnon := b.This()
	anon2 := b.NewAnon(b.ClassType("Object"), nil,
		b.Method(ast.ModPublic, nil, b.Void(), "x", nil, b.Block(b.ExprStmt(inAnon))))
	r := b.Class(0, "R", nil, ast.NoNode, nil, b.Method(0, nil, b.Void(), "m", nil, b.Block(
		b.ExprStmt(anon), b.ExprStmt(sized), b.ExprStmt(diamond), b.ExprStmt(this), b.ExprStmt(anon2))))
	tree := b.Build(b.CompilationUnit("p", ids(b.Import("java.util.ArrayList", 0)), p, q, r))
	s := newSession(t, []*ast.Tree{tree})

	c, err := s.SolveExplicitConstructorCall(tree.Node(superCall))
	require.NoError(t, err)
	assert.Equal(t, "p.P", c.Declaring.QualifiedName)
	assert.Equal(t, "P(int)", c.Signature())

	c, err = s.SolveCreation(tree.Node(anon))
	require.NoError(t, err)
	assert.Empty(t, c.Params)
	assert.Equal(t, "java.lang.Runnable", describeType(t, s, tree.Node(anon)))

	c, err = s.SolveCreation(tree.Node(sized))
	require.NoError(t, err)
	require.Len(t, c.Params, 1)
	pt, err := c.Params[0].Type()
	require.NoError(t, err)
	assert.Equal(t, "int", pt.Describe())
	assert.Equal(t, "java.util.ArrayList<java.lang.String>", describeType(t, s, tree.Node(sized)))
	assert.Equal(t, "java.util.ArrayList", describeType(t, s, tree.Node(diamond)))

	assert.Equal(t, "p.R", describeType(t, s, tree.Node(this)))
	assert.Equal(t, "java.lang.Object", describeType(t, s, tree.Node(inAnon)))

	d, err := s.TypeDeclOf(tree.Node(inAnon))
	require.NoError(t, err)
	assert.Contains(t, d.QualifiedName, "p.R$")
}

func TestErrors(t *testing.T) {
	b := ast.NewBuilder("E.java")
	missing := b.Name("nope")
	typeAsValue := b.Name("String")
	badCall := b.Call(ast.NoNode, "nothing")
	tree := b.Build(method(b, "p", "E", nil,
		b.ExprStmt(missing), b.ExprStmt(typeAsValue), b.ExprStmt(badCall)))
	s := newSession(t, []*ast.Tree{tree})

	_, err := s.TypeOf(tree.Node(missing))
	assert.True(t, types.IsUnresolved(err))

	_, err = s.TypeOf(tree.Node(typeAsValue))
	var unsupported *types.UnsupportedConstructError
	assert.True(t, errors.As(err, &unsupported))

	_, err = s.TypeOf(tree.Node(badCall))
	assert.True(t, types.IsUnresolved(err))

	d, err := s.SolveName(tree.Node(typeAsValue))
	require.NoError(t, err)
	assert.True(t, types.IsTypeDecl(d))
}

func TestRecursionLimitAndClear(t *testing.T) {
	b := ast.NewBuilder("D.java")
	deep := b.Paren(b.Paren(b.Paren(b.Paren(b.Int(1)))))
	shallow := b.Paren(b.Int(2))
	tree := b.Build(method(b, "p", "D", nil, b.ExprStmt(deep), b.ExprStmt(shallow)))

	var buf bytes.Buffer
	s := newSession(t, []*ast.Tree{tree}, WithMaxDepth(3), WithLogger(log.New(&buf, "", 0)))

	_, err := s.TypeOf(tree.Node(deep))
	var limit *types.RecursionLimitError
	require.True(t, errors.As(err, &limit))
	assert.Contains(t, buf.String(), "recursion limit 3")

	assert.Equal(t, "int", describeType(t, s, tree.Node(shallow)))
	assert.NotEmpty(t, s.resolved)

	s.Clear()
	assert.Empty(t, s.resolved)
	assert.Empty(t, s.pending)
	assert.Empty(t, s.decls)
	assert.Zero(t, s.depth)
	assert.Equal(t, "int", describeType(t, s, tree.Node(shallow)))
}
