package resolve

import (
	"errors"

	"jsolve/pkg/ast"
	"jsolve/pkg/infer"
	"jsolve/pkg/overload"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

func unparen(n *ast.Node) *ast.Node {
	for n != nil && n.Kind == ast.ParenExpr {
		n = n.ExprNode()
	}
	return n
}

func isFunctionalExpr(n *ast.Node) bool {
	n = unparen(n)
	return n != nil && (n.Kind == ast.LambdaExpr || n.Kind == ast.MethodRef)
}

// argTypes types the arguments of a call or creation for overload selection. Lambdas and method
// references are placeholders carrying their arity.
func (s *Session) argTypes(call *ast.Node, solveLambdas bool) ([]types.Type, error) {
	args := call.ListNodes()
	out := make([]types.Type, len(args))
	for i, a := range args {
		inner := unparen(a)
		switch inner.Kind {
		case ast.LambdaExpr:
			out[i] = types.LambdaPlaceholder{Pos: i, Arity: len(inner.Params)}
		case ast.MethodRef:
			out[i] = types.LambdaPlaceholder{Pos: i, Arity: -1}
		default:
			t, err := s.typeOf(a, solveLambdas)
			if err != nil {
				return nil, err
			}
			out[i] = t
		}
	}
	return out, nil
}

// receiverOf types the qualifier of a call. static is set when the qualifier names a type.
func (s *Session) receiverOf(call *ast.Node) (recv *types.Reference, static bool, err error) {
	scope := call.ScopeNode()
	switch scope.Kind {
	case ast.NameExpr, ast.FieldAccess:
		d, err := s.denote(scope, true)
		if err != nil {
			return nil, false, err
		}
		switch {
		case d.decl != nil:
			return &types.Reference{Decl: d.decl}, true, nil
		case d.value != nil:
			recv, err = s.asReceiver(d.value.Type)
			return recv, false, err
		}
		return nil, false, types.NewUnresolvedNameError(d.pkg, "method qualifier")
	case ast.TypeExpr:
		t, err := s.SolveTypeUse(scope.TypeNode())
		if err != nil {
			return nil, false, err
		}
		recv, err = types.AsReference(t)
		return recv, true, err
	}
	t, err := s.typeOf(scope, true)
	if err != nil {
		return nil, false, err
	}
	recv, err = s.asReceiver(t)
	return recv, false, err
}

// usageThrough views m through recv: the type parameters of m's declaring type are replaced with
// the arguments recv supplies, or erased when recv inherits it raw.
func usageThrough(recv *types.Reference, m *types.MethodDecl) (*types.MethodUsage, error) {
	u, err := types.NewMethodUsage(m)
	if err != nil || m.Declaring == nil || m.IsStatic() {
		return u, err
	}
	a, ok, err := recv.Ancestor(m.Declaring.QualifiedName)
	if err != nil || !ok {
		return u, err
	}
	if !a.IsRaw() {
		return u.Apply(a.TypeParamMap()), nil
	}
	params := make([]types.Type, len(u.ParamTypes))
	for i, p := range u.ParamTypes {
		if params[i], err = types.Erase(p); err != nil {
			return nil, err
		}
	}
	ret, err := types.Erase(u.ReturnType)
	if err != nil {
		return nil, err
	}
	return &types.MethodUsage{Decl: m, ParamTypes: params, ReturnType: ret, Subst: u.Subst}, nil
}

// selectScoped picks the method a qualified call binds to among the members of its qualifier's
// type.
func (s *Session) selectScoped(call *ast.Node, name string, args []types.Type, solveLambdas bool) (*types.MethodUsage, error) {
	recv, static, err := s.receiverOf(call)
	if err != nil {
		return nil, err
	}
	methods, err := s.methodCandidates(recv.Decl, name, args, static)
	if err != nil {
		return nil, err
	}
	var usages []*types.MethodUsage
	for _, m := range methods {
		u, err := usageThrough(recv, m)
		if err != nil {
			if types.IsUnresolved(err) {
				s.logf("skipping %s: %v", m.Describe(), err)
				continue
			}
			return nil, err
		}
		usages = append(usages, u)
	}
	if len(usages) == 0 {
		return nil, types.NewUnresolvedNameError(name, recv.Describe())
	}
	return overload.ResolveUsage(usages, name, args, s.ts)
}

// usageInScope views a method found by an unqualified call through the innermost enclosing type
// that inherits it.
func (s *Session) usageInScope(call *ast.Node, m *types.MethodDecl) (*types.MethodUsage, error) {
	if m.Declaring != nil && !m.IsStatic() {
		for tn := typeNodeOf(call); tn != nil; tn = enclosingTypeNode(tn) {
			ref := types.GenericReference(s.declOf(tn))
			if _, ok, err := ref.Ancestor(m.Declaring.QualifiedName); err != nil {
				return nil, err
			} else if ok {
				return usageThrough(ref, m)
			}
		}
	}
	return types.NewMethodUsage(m)
}

// callUsage selects the method a call binds to and infers its type parameters from the arguments.
// Without solveLambdas lambda arguments contribute nothing to the inference.
func (s *Session) callUsage(call *ast.Node, solveLambdas bool) (*types.MethodUsage, error) {
	args, err := s.argTypes(call, solveLambdas)
	if err != nil {
		return nil, err
	}
	var u *types.MethodUsage
	if call.Scope != ast.NoNode {
		if u, err = s.selectScoped(call, call.Name, args, solveLambdas); err != nil {
			return nil, err
		}
	} else {
		m, err := s.Context(call).SolveMethod(call.Name, args, false)
		if err != nil {
			return nil, err
		}
		if u, err = s.usageInScope(call, m); err != nil {
			return nil, err
		}
	}

	if explicit := call.TypeArgNodes(); len(explicit) > 0 && len(explicit) == len(u.Decl.TypeParams) {
		for i, tn := range explicit {
			t, err := s.SolveTypeUse(tn)
			if err != nil {
				return nil, err
			}
			u = u.Replace(u.Decl.TypeParams[i], t)
		}
		return u, nil
	}

	if solveLambdas {
		for i, a := range call.ListNodes() {
			if !isFunctionalExpr(a) {
				continue
			}
			if t, ok := s.resolved[a.Key()]; ok {
				args[i] = t
			}
		}
	}
	return s.inferUsage(u, args)
}

// inferUsage substitutes the method's own type parameters as far as the actual argument types
// determine them. Pairs whose shapes the unifier does not decompose teach nothing; conflicting or
// inconsistent pairings fail the call.
func (s *Session) inferUsage(u *types.MethodUsage, actuals []types.Type) (*types.MethodUsage, error) {
	params := u.Decl.TypeParams
	if len(params) == 0 || len(u.ParamTypes) == 0 {
		return u, nil
	}
	ic := infer.NewContext(s.ts)
	formals := u.ParamTypes
	last := len(formals) - 1
	for i, a := range actuals {
		var f types.Type
		switch {
		case u.Decl.IsVariadic() && i >= last:
			f = formals[last]
			passesArray := len(actuals) == len(formals) && (utils.TryCast[types.Array](a) || types.IsNull(a))
			if arr, ok := f.(types.Array); ok && !passesArray {
				f = arr.Elem
			}
		case i < len(formals):
			f = formals[i]
		default:
			continue
		}
		if _, err := ic.AddPair(f, a); err != nil {
			if err := pairFailure(err); err != nil {
				return nil, err
			}
			s.logf("inference of %s: %v", u.Decl.Name, err)
		}
	}
	m, err := ic.Substitution(params)
	if err != nil {
		s.logf("inference of %s: %v", u.Decl.Name, err)
		return nil, err
	}
	return u.Apply(m), nil
}

// pairFailure drops the error of a pair whose shapes the unifier does not decompose. Every other
// inference error fails the request.
func pairFailure(err error) error {
	var unsupported *types.UnsupportedConstructError
	if errors.As(err, &unsupported) {
		return nil
	}
	return err
}

// SolveCall returns the method a call binds to.
func (s *Session) SolveCall(call *ast.Node) (*types.MethodDecl, error) {
	u, err := s.SolveCallUsage(call)
	if err != nil {
		return nil, err
	}
	return u.Decl, nil
}

// SolveCallUsage returns the method a call binds to with the types it takes and returns at that
// call, lambda arguments included in the inference.
func (s *Session) SolveCallUsage(call *ast.Node) (*types.MethodUsage, error) {
	if call.Kind != ast.MethodCall {
		return nil, types.NewUnsupportedConstructError("%s is not a method call", call.Kind)
	}
	if _, err := s.TypeOf(call); err != nil {
		return nil, err
	}
	return s.callUsage(call, true)
}

// SolveCreation returns the constructor an object creation binds to. An anonymous class
// implementing an interface binds to its own implicit constructor.
func (s *Session) SolveCreation(n *ast.Node) (*types.ConstructorDecl, error) {
	if n.Kind != ast.ObjectCreation {
		return nil, types.NewUnsupportedConstructError("%s is not an object creation", n.Kind)
	}
	t, err := s.SolveTypeUse(n.TypeNode())
	if err != nil {
		return nil, err
	}
	r, err := types.AsReference(t)
	if err != nil {
		return nil, err
	}
	ctors := r.Decl.Constructors
	if declaresType(n) && r.Decl.IsInterface() {
		ctors = s.declOf(n).Constructors
	}
	args, err := s.argTypes(n, true)
	if err != nil {
		return nil, err
	}
	return overload.FindMostApplicableConstructor(ctors, args, s.ts)
}

// SolveExplicitConstructorCall returns the constructor this(...) or super(...) invokes.
func (s *Session) SolveExplicitConstructorCall(n *ast.Node) (*types.ConstructorDecl, error) {
	if n.Kind != ast.ExplicitCtorCall {
		return nil, types.NewUnsupportedConstructError("%s is not a constructor call", n.Kind)
	}
	d, err := s.TypeDeclOf(n)
	if err != nil {
		return nil, err
	}
	if n.Mods.Has(ast.ModSuperCall) {
		sup, err := s.superclassOf(d)
		if err != nil {
			return nil, err
		}
		d = sup.Decl
	}
	args, err := s.argTypes(n, true)
	if err != nil {
		return nil, err
	}
	return overload.FindMostApplicableConstructor(d.Constructors, args, s.ts)
}
