package resolve

import (
	"jsolve/pkg/ast"
	"jsolve/pkg/types"
)

// TypeOf returns the static type of an expression, lambdas in its arguments typed.
func (s *Session) TypeOf(n *ast.Node) (types.Type, error) {
	return s.typeOf(n, true)
}

// typeOf memoizes extract. With solveLambdas the type of a call is computed once with its lambda
// arguments as placeholders, then again once those lambdas have been typed against the first
// answer. Without it, lambdas stand for their target type and nothing depends on their bodies.
func (s *Session) typeOf(n *ast.Node, solveLambdas bool) (types.Type, error) {
	key := n.Key()
	if t, ok := s.resolved[key]; ok {
		return t, nil
	}
	if !solveLambdas {
		if t, ok := s.pending[key]; ok {
			return t, nil
		}
		t, err := s.extract(n, false)
		if err != nil {
			return nil, err
		}
		s.pending[key] = t
		return t, nil
	}

	t, err := s.extract(n, true)
	if err != nil {
		return nil, err
	}
	s.resolved[key] = t
	if n.Kind != ast.MethodCall {
		return t, nil
	}
	second := false
	for _, arg := range n.ListNodes() {
		if _, ok := s.resolved[arg.Key()]; ok {
			continue
		}
		if _, err := s.typeOf(arg, true); err != nil {
			delete(s.resolved, key)
			return nil, err
		}
		second = true
	}
	if !second {
		return t, nil
	}
	if t, err = s.extract(n, true); err != nil {
		delete(s.resolved, key)
		return nil, err
	}
	s.resolved[key] = t
	return t, nil
}

func (s *Session) extract(n *ast.Node, solveLambdas bool) (types.Type, error) {
	if err := s.enter(n); err != nil {
		return nil, err
	}
	defer s.leave()

	switch n.Kind {
	case ast.IntLit:
		return types.IntType, nil
	case ast.LongLit:
		return types.LongType, nil
	case ast.DoubleLit:
		if n.Mods.Has(ast.ModFloat) {
			return types.FloatType, nil
		}
		return types.DoubleType, nil
	case ast.CharLit:
		return types.CharType, nil
	case ast.BoolLit:
		return types.BooleanType, nil
	case ast.StringLit:
		return s.refTo(types.StringName)
	case ast.NullLit:
		return types.Null{}, nil
	case ast.NameExpr, ast.FieldAccess:
		d, err := s.denote(n, solveLambdas)
		if err != nil {
			return nil, err
		}
		switch {
		case d.value != nil:
			return d.value.Type, nil
		case d.decl != nil:
			return nil, types.NewUnsupportedConstructError("type name %s used as a value", d.decl.QualifiedName)
		}
		return nil, types.NewUnresolvedNameError(d.pkg, "expression")
	case ast.MethodCall:
		u, err := s.callUsage(n, solveLambdas)
		if err != nil {
			return nil, err
		}
		return u.ReturnType, nil
	case ast.ObjectCreation:
		return s.SolveTypeUse(n.TypeNode())
	case ast.ArrayCreation:
		elem, err := s.SolveTypeUse(n.TypeNode())
		if err != nil {
			return nil, err
		}
		return types.ArrayOf(elem, n.Dims), nil
	case ast.ArrayInit:
		return s.arrayInitType(n, solveLambdas)
	case ast.ArrayAccess:
		t, err := s.typeOf(n.ScopeNode(), solveLambdas)
		if err != nil {
			return nil, err
		}
		arr, err := types.AsArray(t)
		if err != nil {
			return nil, err
		}
		return arr.Elem, nil
	case ast.AssignExpr:
		return s.typeOf(n.ScopeNode(), solveLambdas)
	case ast.BinaryExpr:
		return s.binaryType(n, solveLambdas)
	case ast.UnaryExpr:
		if n.Op == ast.OpNot {
			return types.BooleanType, nil
		}
		return s.typeOf(n.ExprNode(), solveLambdas)
	case ast.ConditionalExpr:
		t, err := s.typeOf(n.BodyNode(), solveLambdas)
		if err != nil || !types.IsNull(t) {
			return t, err
		}
		return s.typeOf(n.ElseNode(), solveLambdas)
	case ast.CastExpr:
		return s.SolveTypeUse(n.TypeNode())
	case ast.InstanceOfExpr:
		return types.BooleanType, nil
	case ast.LambdaExpr:
		return s.lambdaType(n, solveLambdas)
	case ast.MethodRef:
		return s.methodRefType(n, solveLambdas)
	case ast.TypeExpr:
		return s.SolveTypeUse(n.TypeNode())
	case ast.ThisExpr:
		return s.thisType(n)
	case ast.SuperExpr:
		return s.superType(n)
	case ast.ClassLit:
		return s.classLiteralType(n)
	case ast.ParenExpr:
		return s.typeOf(n.ExprNode(), solveLambdas)
	case ast.VarDeclExpr:
		vs := n.ListNodes()
		if len(vs) == 0 {
			return nil, types.NewUnsupportedConstructError("declaration without variables")
		}
		return s.declaredType(vs[0])
	}
	return nil, types.NewUnsupportedConstructError("no static type for %s", n.Kind)
}

func (s *Session) refTo(qname string) (*types.Reference, error) {
	d, err := s.ts.SolveType(qname)
	if err != nil {
		return nil, err
	}
	return &types.Reference{Decl: d}, nil
}

func (s *Session) arrayInitType(n *ast.Node, solveLambdas bool) (types.Type, error) {
	p := n.ParentNode()
	switch {
	case p == nil:
	case p.Kind == ast.ArrayCreation:
		return s.typeOf(p, solveLambdas)
	case p.Kind == ast.VarDeclarator:
		return s.declaredType(p)
	case p.Kind == ast.ArrayInit:
		t, err := s.arrayInitType(p, solveLambdas)
		if err != nil {
			return nil, err
		}
		arr, err := types.AsArray(t)
		if err != nil {
			return nil, err
		}
		return arr.Elem, nil
	}
	return nil, types.NewUnsupportedConstructError("array initializer outside of a declaration")
}

// unboxed returns the primitive t stands for, unboxing references to wrapper classes.
func unboxed(t types.Type) (types.Primitive, bool) {
	switch v := t.(type) {
	case types.Primitive:
		return v, true
	case *types.Reference:
		if k, ok := types.UnboxedKind(v.QualifiedName()); ok {
			return types.Primitive{Kind: k}, true
		}
	}
	return types.Primitive{}, false
}

func isString(t types.Type) bool {
	r, ok := t.(*types.Reference)
	return ok && r.QualifiedName() == types.StringName
}

// binaryType: comparisons and logical operators give boolean, + with a String operand gives String,
// other arithmetic the wider operand, bitwise and shift operators the left operand.
func (s *Session) binaryType(n *ast.Node, solveLambdas bool) (types.Type, error) {
	if n.Op.IsRelational() || n.Op.IsLogical() {
		return types.BooleanType, nil
	}
	l, err := s.typeOf(n.Left(), solveLambdas)
	if err != nil {
		return nil, err
	}
	if n.Op.IsBitwise() || n.Op.IsShift() {
		return l, nil
	}
	r, err := s.typeOf(n.Right(), solveLambdas)
	if err != nil {
		return nil, err
	}
	if n.Op == ast.OpPlus && (isString(l) || isString(r)) {
		return s.refTo(types.StringName)
	}
	lp, lok := unboxed(l)
	rp, rok := unboxed(r)
	if !lok || !rok || !lp.IsNumeric() || !rp.IsNumeric() {
		return nil, types.NewUnsupportedConstructError("%s between %s and %s", n.Op, l.Describe(), r.Describe())
	}
	return types.Wider(lp, rp), nil
}

func (s *Session) classLiteralType(n *ast.Node) (types.Type, error) {
	t, err := s.SolveTypeUse(n.TypeNode())
	if err != nil {
		return nil, err
	}
	switch v := t.(type) {
	case types.Primitive:
		if t, err = s.refTo(types.BoxName(v.Kind)); err != nil {
			return nil, err
		}
	case types.Void:
		r, ok, err := s.ts.TryType("java.lang.Void")
		if err != nil {
			return nil, err
		}
		if !ok {
			return s.refTo(types.ClassName)
		}
		t = &types.Reference{Decl: r}
	}
	class, err := s.ts.SolveType(types.ClassName)
	if err != nil {
		return nil, err
	}
	if len(class.TypeParams) != 1 {
		return &types.Reference{Decl: class}, nil
	}
	return &types.Reference{Decl: class, Args: []types.Type{t}}, nil
}

// TypeOfThis returns the type `this` has at n: the generic reference of the enclosing type, or the
// supertype of an anonymous class.
func (s *Session) TypeOfThis(n *ast.Node) (types.Type, error) {
	tn := typeNodeOf(n)
	if tn == nil {
		return nil, types.NewUnresolvedNameError("this", n.String())
	}
	if tn.Kind == ast.ObjectCreation {
		return s.SolveTypeUse(tn.TypeNode())
	}
	return types.GenericReference(s.declOf(tn)), nil
}

func (s *Session) thisType(n *ast.Node) (types.Type, error) {
	if n.Name == "" {
		return s.TypeOfThis(n)
	}
	d, err := s.Context(n).SolveType(n.Name)
	if err != nil {
		return nil, err
	}
	td, ok := d.(*types.TypeDecl)
	if !ok {
		return nil, types.NewUnsupportedConstructError("%s.this", n.Name)
	}
	return types.GenericReference(td), nil
}

// superType is the superclass of the type around n as that type extends it, or with a qualifier
// the named supertype.
func (s *Session) superType(n *ast.Node) (types.Type, error) {
	tn := typeNodeOf(n)
	if tn == nil {
		return nil, types.NewUnresolvedNameError("super", n.String())
	}
	if n.Name != "" {
		d, err := s.Context(n).SolveType(n.Name)
		if err != nil {
			return nil, err
		}
		td, ok := d.(*types.TypeDecl)
		if !ok {
			return nil, types.NewUnsupportedConstructError("%s.super", n.Name)
		}
		if td.IsInterface() {
			a, ok, err := types.GenericReference(s.declOf(tn)).Ancestor(td.QualifiedName)
			if err != nil || ok {
				return a, err
			}
			return types.GenericReference(td), nil
		}
		tn = td.Node
		if tn == nil {
			return nil, types.NewUnsupportedConstructError("%s.super outside of source", n.Name)
		}
	}
	return s.superclassOf(s.declOf(tn))
}

func (s *Session) superclassOf(d *types.TypeDecl) (*types.Reference, error) {
	anc, err := types.GenericReference(d).DirectAncestors()
	if err != nil {
		return nil, err
	}
	for _, a := range anc {
		if !a.Decl.IsInterface() {
			return a, nil
		}
	}
	return s.objectRef()
}

// SolveTypeUse converts a type node into a type, resolving class names from the node's context.
func (s *Session) SolveTypeUse(n *ast.Node) (types.Type, error) {
	if n == nil {
		return nil, types.NewIllegalStateError("missing type node")
	}
	switch n.Kind {
	case ast.PrimitiveType:
		p, ok := types.PrimitiveByName(n.Name)
		if !ok {
			return nil, types.NewUnresolvedNameError(n.Name, "primitive types")
		}
		return p, nil
	case ast.VoidType:
		return types.Void{}, nil
	case ast.ArrayType:
		elem, err := s.SolveTypeUse(n.TypeNode())
		if err != nil {
			return nil, err
		}
		return types.Array{Elem: elem}, nil
	case ast.WildcardType:
		kind := types.Unbounded
		switch n.Op {
		case ast.OpExtends:
			kind = types.Extends
		case ast.OpSuper:
			kind = types.Super
		default:
			return types.Wildcard{}, nil
		}
		b, err := s.SolveTypeUse(n.TypeNode())
		if err != nil {
			return nil, err
		}
		return types.Wildcard{Kind: kind, Bound: b}, nil
	case ast.ClassType:
		return s.classType(n)
	}
	return nil, types.NewUnsupportedConstructError("type of %s", n.Kind)
}

func qualifiedTypeName(n *ast.Node) string {
	if q := n.ScopeNode(); q != nil {
		return qualifiedTypeName(q) + "." + n.Name
	}
	return n.Name
}

func (s *Session) classType(n *ast.Node) (types.Type, error) {
	d, err := s.Context(n).SolveType(qualifiedTypeName(n))
	if err != nil {
		return nil, err
	}
	switch decl := d.(type) {
	case *types.TypeParamDecl:
		return types.TypeVariable{Decl: decl}, nil
	case *types.TypeDecl:
		argNodes := n.TypeArgNodes()
		if len(argNodes) == 0 || len(argNodes) != len(decl.TypeParams) {
			return &types.Reference{Decl: decl}, nil
		}
		args := make([]types.Type, len(argNodes))
		for i, a := range argNodes {
			if args[i], err = s.SolveTypeUse(a); err != nil {
				return nil, err
			}
		}
		return &types.Reference{Decl: decl, Args: args}, nil
	}
	return nil, types.NewTypeShapeError("type declaration", d.Describe())
}
