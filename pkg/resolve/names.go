package resolve

import (
	"errors"

	"jsolve/pkg/ast"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

// denotation is what a name in expression position stands for: exactly one of a value, a type or
// a package prefix.
type denotation struct {
	value *Value
	decl  *types.TypeDecl
	pkg   string
}

// arrayLength is the member every array type has.
var arrayLength = func() *types.FieldDecl {
	f := types.NewFieldDecl("length", types.FlagFinal, func() (types.Type, error) { return types.IntType, nil })
	f.Access = types.AccessPublic
	return f
}()

// denote classifies a name or a chain of field accesses. A simple name is a variable if one is in
// scope, else a type, else the start of a package name.
func (s *Session) denote(n *ast.Node, solveLambdas bool) (denotation, error) {
	switch n.Kind {
	case ast.NameExpr:
		ctx := s.Context(n)
		v, err := ctx.SolveSymbolAsValue(n.Name)
		if err == nil {
			return denotation{value: &v}, nil
		}
		// A variable whose declared type is missing is still a variable.
		var unresolved *types.UnresolvedNameError
		if !errors.As(err, &unresolved) || unresolved.Name != n.Name {
			return denotation{}, err
		}
		d, err := ctx.SolveType(n.Name)
		if err == nil {
			if td, ok := d.(*types.TypeDecl); ok {
				return denotation{decl: td}, nil
			}
			return denotation{}, types.NewUnsupportedConstructError("type parameter %s used as a value", n.Name)
		}
		if !types.IsUnresolved(err) {
			return denotation{}, err
		}
		return denotation{pkg: n.Name}, nil
	case ast.FieldAccess:
		return s.denoteMember(n, solveLambdas)
	}
	t, err := s.typeOf(n, solveLambdas)
	if err != nil {
		return denotation{}, err
	}
	return denotation{value: &Value{Type: t}}, nil
}

func (s *Session) denoteMember(n *ast.Node, solveLambdas bool) (denotation, error) {
	scope, err := s.denote(n.ScopeNode(), solveLambdas)
	if err != nil {
		return denotation{}, err
	}
	switch {
	case scope.value != nil:
		if _, ok := scope.value.Type.(types.Array); ok && n.Name == "length" {
			return denotation{value: &Value{Decl: arrayLength, Type: types.IntType}}, nil
		}
		r, err := s.asReceiver(scope.value.Type)
		if err != nil {
			return denotation{}, err
		}
		fields, err := types.AllFields(r)
		if err != nil {
			return denotation{}, err
		}
		f, ok := utils.Find(fields, func(f *types.FieldDecl) bool { return f.Name == n.Name })
		if !ok {
			return denotation{}, types.NewUnresolvedNameError(n.Name, r.Describe())
		}
		t, err := r.FieldType(f)
		if err != nil {
			return denotation{}, err
		}
		return denotation{value: &Value{Decl: f, Type: t}}, nil

	case scope.decl != nil:
		f, via, err := s.fieldIn(scope.decl, n.Name)
		if err != nil {
			return denotation{}, err
		}
		if fd, ok := f.(*types.FieldDecl); ok {
			t, err := via.FieldType(fd)
			if err != nil {
				return denotation{}, err
			}
			return denotation{value: &Value{Decl: fd, Type: t}}, nil
		}
		m, err := s.memberType(scope.decl, n.Name, true)
		if err != nil {
			return denotation{}, err
		}
		if m == nil {
			return denotation{}, types.NewUnresolvedNameError(n.Name, scope.decl.QualifiedName)
		}
		return denotation{decl: m}, nil
	}

	qname := scope.pkg + "." + n.Name
	d, ok, err := s.ts.TryType(qname)
	if err != nil {
		return denotation{}, err
	}
	if ok {
		return denotation{decl: d}, nil
	}
	return denotation{pkg: qname}, nil
}

// SolveName returns the declaration a name or field access expression refers to: a variable,
// parameter or field, or a type.
func (s *Session) SolveName(n *ast.Node) (types.Decl, error) {
	if n.Kind != ast.NameExpr && n.Kind != ast.FieldAccess {
		return nil, types.NewUnsupportedConstructError("%s is not a name", n.Kind)
	}
	d, err := s.denote(n, true)
	if err != nil {
		return nil, err
	}
	switch {
	case d.value != nil && d.value.Decl != nil:
		return d.value.Decl, nil
	case d.decl != nil:
		return d.decl, nil
	}
	return nil, types.NewUnresolvedNameError(d.pkg, "package name used as an expression")
}

// asReceiver is the reference whose members a value of type t offers.
func (s *Session) asReceiver(t types.Type) (*types.Reference, error) {
	switch v := t.(type) {
	case *types.Reference:
		return v, nil
	case types.TypeVariable:
		bounds, err := v.Decl.Bounds()
		if err != nil {
			return nil, err
		}
		if len(bounds) == 0 {
			return s.objectRef()
		}
		return s.asReceiver(bounds[0])
	case types.Wildcard:
		if v.Kind == types.Extends {
			return s.asReceiver(v.Bound)
		}
		return s.objectRef()
	case types.LambdaConstraint:
		return s.asReceiver(v.Bound)
	case types.Array, *types.InferenceVariable:
		return s.objectRef()
	}
	return nil, types.NewUnsupportedConstructError("member access on %s", types.Describe(t))
}

// upper is the type a value read from a slot of type t is known to have.
func (s *Session) upper(t types.Type) (types.Type, error) {
	w, ok := t.(types.Wildcard)
	if !ok {
		return t, nil
	}
	if w.Kind == types.Extends {
		return w.Bound, nil
	}
	return s.objectRef()
}
