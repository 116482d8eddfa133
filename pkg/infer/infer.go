// Package infer unifies formal and actual types through inference variables to find the types that
// generic type parameters stand for in one call.
package infer

import (
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

// Context is one inference session. Variables are created on demand, one per type parameter.
type Context struct {
	ts     types.Solver
	nextID int
	vars   []*types.InferenceVariable
	byKey  map[string]*types.InferenceVariable
}

func NewContext(ts types.Solver) *Context {
	return &Context{ts: ts, byKey: make(map[string]*types.InferenceVariable)}
}

func (c *Context) variable(p *types.TypeParamDecl) *types.InferenceVariable {
	if v, ok := c.byKey[p.Key()]; ok {
		return v
	}
	v := &types.InferenceVariable{ID: c.nextID, Param: p}
	c.nextID++
	c.vars = append(c.vars, v)
	c.byKey[p.Key()] = v
	return v
}

// Variable returns the inference variable standing for p, if p was seen.
func (c *Context) Variable(p *types.TypeParamDecl) (*types.InferenceVariable, bool) {
	v, ok := c.byKey[p.Key()]
	return v, ok
}

// Variables lists every inference variable created so far, in creation order.
func (c *Context) Variables() []*types.InferenceVariable { return c.vars }

func (c *Context) place(t types.Type) types.Type {
	return types.Substitute(t, func(p *types.TypeParamDecl) (types.Type, bool) {
		return c.variable(p), true
	})
}

// AddPair places inference variables in both types, unifies them and returns the placed formal.
func (c *Context) AddPair(formal, actual types.Type) (types.Type, error) {
	f := c.place(formal)
	a := c.place(actual)
	if err := c.register(f, a); err != nil {
		return nil, err
	}
	return f, nil
}

// AddSingle places inference variables in t without registering anything.
func (c *Context) AddSingle(t types.Type) types.Type {
	return c.place(t)
}

func (c *Context) box(p types.Primitive) (types.Type, error) {
	decl, err := c.ts.SolveType(types.BoxName(p.Kind))
	if err != nil {
		return nil, err
	}
	return &types.Reference{Decl: decl}, nil
}

func (c *Context) register(formal, actual types.Type) error {
	if _, ok := actual.(types.LambdaPlaceholder); ok {
		return nil
	}
	if types.IsNull(actual) {
		return nil
	}
	fr, fIsRef := formal.(*types.Reference)
	ar, aIsRef := actual.(*types.Reference)
	if fIsRef && aIsRef {
		return c.registerReferences(fr, ar)
	}
	if fv, ok := formal.(*types.InferenceVariable); ok {
		switch a := actual.(type) {
		case types.Primitive:
			boxed, err := c.box(a)
			if err != nil {
				return err
			}
			actual = boxed
		case types.LambdaConstraint:
			actual = a.Bound
		case types.Wildcard:
			if a.Kind == types.Unbounded {
				return nil
			}
			actual = a.Bound
		}
		fv.Register(actual)
		if av, ok := actual.(*types.InferenceVariable); ok {
			av.Register(fv)
		}
		return nil
	}
	if types.Equal(formal, actual) {
		return nil
	}
	fa, fIsArr := formal.(types.Array)
	aa, aIsArr := actual.(types.Array)
	if fIsArr && aIsArr {
		return c.register(fa.Elem, aa.Elem)
	}
	if fw, ok := formal.(types.Wildcard); ok {
		return c.registerWildcard(fw, actual)
	}
	switch a := actual.(type) {
	case *types.InferenceVariable:
		switch formal.(type) {
		case *types.Reference, *types.InferenceVariable:
			a.Register(formal)
		}
		return nil
	case types.LambdaConstraint:
		if bv, ok := a.Bound.(*types.InferenceVariable); ok {
			bv.Register(formal)
			return nil
		}
		return c.register(formal, a.Bound)
	case types.Primitive:
		if types.IsPrimitive(formal) {
			return nil
		}
		boxed, err := c.box(a)
		if err != nil {
			return err
		}
		return c.register(formal, boxed)
	case types.TypeVariable:
		return nil
	}
	if fIsRef {
		// arrays and type variables flowing into a reference formal carry no type arguments
		if fr.IsObject() || aIsArr {
			return nil
		}
	}
	return types.NewUnsupportedConstructError("inference between %s and %s", formal.Describe(), actual.Describe())
}

// registerReferences aligns actual to the formal's declaration through its ancestors, then unifies
// the type arguments.
func (c *Context) registerReferences(formal, actual *types.Reference) error {
	if formal.QualifiedName() != actual.QualifiedName() {
		anc, ok, err := actual.Ancestor(formal.QualifiedName())
		if err != nil {
			return err
		}
		if !ok {
			// the formal may be the subtype; nothing is learned from that direction
			if _, ok, err := formal.Ancestor(actual.QualifiedName()); err != nil || ok {
				return err
			}
			return types.NewConflictingTypesError(formal, actual)
		}
		actual = anc
	}
	if len(formal.Args) == 0 || actual.IsRaw() || len(formal.Args) != len(actual.Args) {
		return nil
	}
	for i, fa := range formal.Args {
		if err := c.register(fa, actual.Args[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *Context) registerWildcard(formal types.Wildcard, actual types.Type) error {
	if formal.Kind == types.Unbounded {
		return nil
	}
	if av, ok := actual.(*types.InferenceVariable); ok {
		av.Register(formal.Bound)
		if bv, ok := formal.Bound.(*types.InferenceVariable); ok {
			bv.Register(actual)
		}
		return nil
	}
	if aw, ok := actual.(types.Wildcard); ok {
		if bv, ok := formal.Bound.(*types.InferenceVariable); ok && aw.Kind == formal.Kind {
			bv.Register(aw.Bound)
		}
		return nil
	}
	switch a := actual.(type) {
	case *types.Reference, types.Array:
		return c.register(formal.Bound, actual)
	case types.LambdaConstraint:
		return c.register(formal.Bound, a.Bound)
	case types.Primitive:
		boxed, err := c.box(a)
		if err != nil {
			return err
		}
		return c.register(formal.Bound, boxed)
	}
	return nil
}

// Resolve replaces every inference variable in t by the type it was unified with.
func (c *Context) Resolve(t types.Type) (types.Type, error) {
	return c.resolve(t, map[int]bool{})
}

func (c *Context) resolve(t types.Type, visiting map[int]bool) (types.Type, error) {
	switch v := t.(type) {
	case *types.InferenceVariable:
		return c.equivalent(v, visiting)
	case *types.Reference:
		if len(v.Args) == 0 {
			return v, nil
		}
		args := make([]types.Type, len(v.Args))
		for i, a := range v.Args {
			r, err := c.resolve(a, visiting)
			if err != nil {
				return nil, err
			}
			args[i] = r
		}
		return &types.Reference{Decl: v.Decl, Args: args}, nil
	case types.Array:
		e, err := c.resolve(v.Elem, visiting)
		if err != nil {
			return nil, err
		}
		return types.Array{Elem: e}, nil
	case types.Wildcard:
		if v.Bound == nil {
			return v, nil
		}
		b, err := c.resolve(v.Bound, visiting)
		if err != nil {
			return nil, err
		}
		return types.Wildcard{Kind: v.Kind, Bound: b}, nil
	case types.LambdaConstraint:
		b, err := c.resolve(v.Bound, visiting)
		if err != nil {
			return nil, err
		}
		return types.LambdaConstraint{Bound: b}, nil
	}
	return t, nil
}

// concrete collects the equivalents of v that are neither type variables nor inference variables,
// following equivalent inference variables transitively.
func concrete(v *types.InferenceVariable, considered map[int]bool, out *[]types.Type) {
	considered[v.ID] = true
	for _, e := range v.Equivalents {
		switch ev := e.(type) {
		case types.TypeVariable:
		case *types.InferenceVariable:
			if !considered[ev.ID] {
				concrete(ev, considered, out)
			}
		default:
			if _, dup := utils.Find(*out, func(t types.Type) bool { return types.Equal(t, e) }); !dup {
				*out = append(*out, e)
			}
		}
	}
}

func hasInferenceVariables(t types.Type) bool {
	switch v := t.(type) {
	case *types.InferenceVariable:
		return true
	case *types.Reference:
		for _, a := range v.Args {
			if hasInferenceVariables(a) {
				return true
			}
		}
	case types.Wildcard:
		return v.Bound != nil && hasInferenceVariables(v.Bound)
	case types.Array:
		return hasInferenceVariables(v.Elem)
	case types.LambdaConstraint:
		return hasInferenceVariables(v.Bound)
	}
	return false
}

func (c *Context) equivalent(v *types.InferenceVariable, visiting map[int]bool) (types.Type, error) {
	if visiting[v.ID] {
		return c.fallback(v)
	}
	visiting[v.ID] = true
	defer delete(visiting, v.ID)

	var found []types.Type
	concrete(v, map[int]bool{}, &found)
	switch len(found) {
	case 0:
		return c.fallback(v)
	case 1:
		return c.resolve(found[0], visiting)
	}
	plain := utils.Filter(found, func(t types.Type) bool { return !hasInferenceVariables(t) })
	if len(plain) == 1 {
		return plain[0], nil
	}
	return nil, types.NewIllegalStateError("%s has several equivalent types: %s", v.Describe(),
		utils.MapJoin(found, types.Describe, ", "))
}

func (c *Context) fallback(v *types.InferenceVariable) (types.Type, error) {
	if v.Param != nil {
		return types.TypeVariable{Decl: v.Param}, nil
	}
	obj, err := c.ts.SolveType(types.ObjectName)
	if err != nil {
		return nil, err
	}
	return &types.Reference{Decl: obj}, nil
}

// Substitution resolves the variables standing for params. Parameters never seen are left out.
func (c *Context) Substitution(params []*types.TypeParamDecl) (types.TypeParamMap, error) {
	m := types.TypeParamMap{}
	for _, p := range params {
		v, ok := c.byKey[p.Key()]
		if !ok {
			continue
		}
		t, err := c.resolve(v, map[int]bool{})
		if err != nil {
			return nil, err
		}
		m.Set(p, t)
	}
	return m, nil
}
