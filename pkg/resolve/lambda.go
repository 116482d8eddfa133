package resolve

import (
	"jsolve/pkg/ast"
	"jsolve/pkg/infer"
	"jsolve/pkg/overload"
	"jsolve/pkg/types"
)

// functional is a functional interface type opened up for inference: typ is the interface with
// inference variables in place of its type parameters, params and ret the abstract method's
// signature in terms of the same variables.
type functional struct {
	ic     *infer.Context
	method *types.MethodDecl
	typ    types.Type
	params []types.Type
	ret    types.Type
}

func (s *Session) functionalOf(target types.Type) (*functional, error) {
	t, err := s.upper(target)
	if err != nil {
		return nil, err
	}
	if c, ok := t.(types.LambdaConstraint); ok {
		t = c.Bound
	}
	r, err := types.AsReference(t)
	if err != nil {
		return nil, err
	}
	m, ok, err := types.FunctionalMethod(r)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, types.NewTypeShapeError("functional interface", r.Describe())
	}
	generic := types.GenericReference(r.Decl)
	f := &functional{ic: infer.NewContext(s.ts), method: m}
	f.typ = f.ic.AddSingle(generic)
	if len(r.Args) > 0 {
		if _, err := f.ic.AddPair(generic, r); err != nil {
			return nil, err
		}
	}
	params, err := m.ParamTypes()
	if err != nil {
		return nil, err
	}
	for _, p := range params {
		v, err := generic.MemberType(m.Declaring, p)
		if err != nil {
			return nil, err
		}
		f.params = append(f.params, f.ic.AddSingle(v))
	}
	ret, err := m.ReturnType()
	if err != nil {
		return nil, err
	}
	if ret, err = generic.MemberType(m.Declaring, ret); err != nil {
		return nil, err
	}
	f.ret = f.ic.AddSingle(ret)
	return f, nil
}

// lambdaTarget finds the type the context of a lambda or method reference expects: the parameter
// it is passed to, the variable it initializes or is assigned to, the return type it is returned
// as, or the type it is cast to.
func (s *Session) lambdaTarget(n *ast.Node) (types.Type, error) {
	child, p := n, n.ParentNode()
	for p != nil && p.Kind == ast.ParenExpr {
		child, p = p, p.ParentNode()
	}
	if p == nil {
		return nil, types.NewUnsupportedConstructError("%s without a context", n.Kind)
	}
	switch p.Kind {
	case ast.MethodCall:
		i := ast.ChildIndex(p.List, child.ID)
		if i < 0 {
			break
		}
		u, err := s.callUsage(p, false)
		if err != nil {
			return nil, err
		}
		return paramAt(u.Decl.IsVariadic(), u.ParamTypes, i)
	case ast.ObjectCreation, ast.ExplicitCtorCall:
		i := ast.ChildIndex(p.List, child.ID)
		if i < 0 {
			break
		}
		return s.constructorParam(p, i)
	case ast.VarDeclarator:
		return s.declaredType(p)
	case ast.AssignExpr:
		if p.Expr == child.ID {
			return s.typeOf(p.ScopeNode(), true)
		}
	case ast.ReturnStmt:
		return s.returnTarget(p)
	case ast.LambdaExpr:
		if p.Expr == child.ID {
			return s.lambdaReturn(p)
		}
	case ast.CastExpr:
		return s.SolveTypeUse(p.TypeNode())
	case ast.ConditionalExpr:
		if p.Body == child.ID || p.Else == child.ID {
			return s.lambdaTarget(p)
		}
	}
	return nil, types.NewUnsupportedConstructError("%s inside %s", n.Kind, p.Kind)
}

func paramAt(variadic bool, params []types.Type, i int) (types.Type, error) {
	last := len(params) - 1
	switch {
	case variadic && i >= last:
		if arr, ok := params[last].(types.Array); ok {
			return arr.Elem, nil
		}
		return params[last], nil
	case i <= last:
		return params[i], nil
	}
	return nil, types.NewIllegalStateError("argument %d beyond %d parameters", i, len(params))
}

func (s *Session) constructorParam(p *ast.Node, i int) (types.Type, error) {
	var ctor *types.ConstructorDecl
	var via *types.Reference
	var err error
	if p.Kind == ast.ObjectCreation {
		if ctor, err = s.SolveCreation(p); err != nil {
			return nil, err
		}
		t, err := s.SolveTypeUse(p.TypeNode())
		if err != nil {
			return nil, err
		}
		if via, err = types.AsReference(t); err != nil {
			return nil, err
		}
	} else {
		if ctor, err = s.SolveExplicitConstructorCall(p); err != nil {
			return nil, err
		}
		d, err := s.TypeDeclOf(p)
		if err != nil {
			return nil, err
		}
		via = types.GenericReference(d)
	}
	params, err := ctor.ParamTypes()
	if err != nil {
		return nil, err
	}
	t, err := paramAt(ctor.IsVariadic(), params, i)
	if err != nil {
		return nil, err
	}
	return via.MemberType(ctor.Declaring, t)
}

// returnTarget is the declared return type of the method or lambda a return statement leaves.
func (s *Session) returnTarget(ret *ast.Node) (types.Type, error) {
	owner := ret.Ancestor(ast.MethodDecl, ast.LambdaExpr)
	if owner == nil {
		return nil, types.NewUnsupportedConstructError("return outside of a method")
	}
	if owner.Kind == ast.LambdaExpr {
		return s.lambdaReturn(owner)
	}
	d, err := s.TypeDeclOf(owner)
	if err != nil {
		return nil, err
	}
	for _, m := range d.Methods {
		if m.Node == owner {
			return m.ReturnType()
		}
	}
	return nil, types.NewIllegalStateError("%s is not a member of %s", owner, d.QualifiedName)
}

// lambdaReturn is what the functional method targeted by lambda returns, as far as known before
// the lambda body is typed.
func (s *Session) lambdaReturn(lambda *ast.Node) (types.Type, error) {
	t, err := s.typeOf(lambda, false)
	if err != nil {
		return nil, err
	}
	f, err := s.functionalOf(t)
	if err != nil {
		return nil, err
	}
	return f.ic.Resolve(f.ret)
}

// lambdaParamType types parameter i of a lambda: the declared type when explicit, else what the
// target's functional method takes there.
func (s *Session) lambdaParamType(lambda *ast.Node, i int) (types.Type, error) {
	p := lambda.ParamNodes()[i]
	if tn := p.TypeNode(); tn != nil && tn.Kind != ast.UnknownType {
		return s.SolveTypeUse(tn)
	}
	target, err := s.typeOf(lambda, false)
	if err != nil {
		return nil, err
	}
	f, err := s.functionalOf(target)
	if err != nil {
		return nil, err
	}
	if i >= len(f.params) {
		return nil, types.NewTypeShapeError(
			"functional method taking "+f.method.Signature(), "lambda with more parameters")
	}
	t, err := f.ic.Resolve(f.params[i])
	if err != nil {
		return nil, err
	}
	return s.lambdaBound(lambda, t)
}

// lambdaBound narrows what a lambda parameter may be typed as: wildcards give their bound, and a
// type variable not in scope at the lambda becomes a constraint on its bound.
func (s *Session) lambdaBound(lambda *ast.Node, t types.Type) (types.Type, error) {
	switch v := t.(type) {
	case types.Wildcard:
		return s.upperOrLower(v)
	case types.TypeVariable:
		d, err := s.Context(lambda).SolveType(v.Decl.Name)
		if err == nil {
			if p, ok := d.(*types.TypeParamDecl); ok && p.Key() == v.Decl.Key() {
				return v, nil
			}
		} else if !types.IsUnresolved(err) {
			return nil, err
		}
		bounds, err := v.Decl.Bounds()
		if err != nil {
			return nil, err
		}
		if len(bounds) > 0 {
			return types.LambdaConstraint{Bound: bounds[0]}, nil
		}
		obj, err := s.objectRef()
		if err != nil {
			return nil, err
		}
		return types.LambdaConstraint{Bound: obj}, nil
	}
	return t, nil
}

// upperOrLower is the bound of a bounded wildcard and Object for an unbounded one.
func (s *Session) upperOrLower(w types.Wildcard) (types.Type, error) {
	if w.Kind == types.Unbounded {
		return s.objectRef()
	}
	return w.Bound, nil
}

// lambdaType is the target type on the first pass. With solveLambdas the body is typed too and
// what it returns refines the type parameters the target left open.
func (s *Session) lambdaType(n *ast.Node, solveLambdas bool) (types.Type, error) {
	target, err := s.lambdaTarget(n)
	if err != nil || !solveLambdas {
		return target, err
	}
	f, err := s.functionalOf(target)
	if err != nil {
		return nil, err
	}
	if !types.IsVoid(f.ret) {
		body, err := s.lambdaBodyType(n)
		if err != nil {
			return nil, err
		}
		if body != nil {
			if _, err := f.ic.AddPair(f.ret, body); err != nil {
				if err := pairFailure(err); err != nil {
					return nil, err
				}
				s.logf("lambda at %s: %v", n.Range.Start, err)
			}
		}
	}
	return f.ic.Resolve(f.typ)
}

// lambdaBodyType is the type of an expression body, or of the first return in a block body that
// yields a value. It is nil when nothing is returned.
func (s *Session) lambdaBodyType(n *ast.Node) (types.Type, error) {
	if body := n.ExprNode(); body != nil {
		t, err := s.typeOf(body, true)
		if err != nil || types.IsVoid(t) {
			return nil, err
		}
		return t, nil
	}
	var rets []*ast.Node
	ast.Inspect(n.BodyNode(), func(c *ast.Node) bool {
		switch {
		case c.Kind == ast.LambdaExpr, declaresType(c), c.Kind == ast.LocalClassStmt:
			return false
		case c.Kind == ast.ReturnStmt && c.Expr != ast.NoNode:
			rets = append(rets, c.ExprNode())
		}
		return true
	})
	for _, r := range rets {
		t, err := s.typeOf(r, true)
		if err != nil {
			return nil, err
		}
		if !types.IsNull(t) && !types.IsVoid(t) {
			return t, nil
		}
	}
	return nil, nil
}

// methodRefType types a method reference like a lambda whose body calls the referenced method with
// the functional method's parameters.
func (s *Session) methodRefType(n *ast.Node, solveLambdas bool) (types.Type, error) {
	target, err := s.lambdaTarget(n)
	if err != nil || !solveLambdas {
		return target, err
	}
	f, err := s.functionalOf(target)
	if err != nil {
		return nil, err
	}
	params := make([]types.Type, len(f.params))
	for i, p := range f.params {
		t, err := f.ic.Resolve(p)
		if err != nil {
			return nil, err
		}
		if params[i], err = s.lambdaBound(n, t); err != nil {
			return nil, err
		}
	}
	ret, err := s.methodRefReturn(n, params)
	if err != nil {
		return nil, err
	}
	if !types.IsVoid(f.ret) && !types.IsVoid(ret) {
		if _, err := f.ic.AddPair(f.ret, ret); err != nil {
			if err := pairFailure(err); err != nil {
				return nil, err
			}
			s.logf("method reference at %s: %v", n.Range.Start, err)
		}
	}
	return f.ic.Resolve(f.typ)
}

// methodRefReturn is what the method a reference denotes returns when called with params. A type
// qualifier makes the first parameter the receiver unless a static method takes them all.
func (s *Session) methodRefReturn(n *ast.Node, params []types.Type) (types.Type, error) {
	scope := n.ScopeNode()
	var recv *types.Reference
	onType := false
	switch {
	case scope.Kind == ast.TypeExpr:
		t, err := s.SolveTypeUse(scope.TypeNode())
		if err != nil {
			return nil, err
		}
		if n.Name == "new" {
			return t, nil
		}
		if recv, err = s.asReceiver(t); err != nil {
			return nil, err
		}
		onType = true
	case scope.Kind == ast.NameExpr || scope.Kind == ast.FieldAccess:
		d, err := s.denote(scope, true)
		if err != nil {
			return nil, err
		}
		switch {
		case d.decl != nil:
			if n.Name == "new" {
				return types.GenericReference(d.decl), nil
			}
			recv, onType = &types.Reference{Decl: d.decl}, true
		case d.value != nil:
			if recv, err = s.asReceiver(d.value.Type); err != nil {
				return nil, err
			}
		default:
			return nil, types.NewUnresolvedNameError(d.pkg, "method reference qualifier")
		}
	default:
		t, err := s.typeOf(scope, true)
		if err != nil {
			return nil, err
		}
		if recv, err = s.asReceiver(t); err != nil {
			return nil, err
		}
	}

	methods, err := s.methodCandidates(recv.Decl, n.Name, params, false)
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, types.NewUnresolvedNameError(n.Name, recv.Describe())
	}
	// an unbound receiver is the first parameter, which may be more specific than the qualifier
	through := func(m *types.MethodDecl) (*types.MethodUsage, error) {
		if onType && !m.IsStatic() && len(params) > 0 {
			if r, err := s.asReceiver(params[0]); err == nil {
				if _, ok, err := r.Ancestor(recv.QualifiedName()); err == nil && ok {
					return usageThrough(r, m)
				}
			}
		}
		return usageThrough(recv, m)
	}
	pick := func(staticOnly bool, args []types.Type) (*types.MethodUsage, error) {
		var usages []*types.MethodUsage
		for _, m := range methods {
			if staticOnly && !m.IsStatic() || !staticOnly && onType && m.IsStatic() {
				continue
			}
			u, err := through(m)
			if err != nil {
				return nil, err
			}
			usages = append(usages, u)
		}
		if len(usages) == 0 {
			return nil, types.NewUnresolvedNameError(n.Name, recv.Describe())
		}
		return overload.ResolveUsage(usages, n.Name, args, s.ts)
	}

	var u *types.MethodUsage
	args := params
	switch {
	case len(methods) == 1:
		if u, err = through(methods[0]); err != nil {
			return nil, err
		}
		if onType && !methods[0].IsStatic() && len(args) > 0 {
			args = args[1:]
		}
	case !onType:
		u, err = pick(false, args)
	default:
		if u, err = pick(true, args); err != nil && len(args) > 0 {
			args = args[1:]
			u, err = pick(false, args)
		}
	}
	if err != nil {
		return nil, err
	}
	if u, err = s.inferUsage(u, args); err != nil {
		return nil, err
	}
	return u.ReturnType, nil
}
