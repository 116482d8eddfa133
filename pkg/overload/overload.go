// Package overload decides which of several same-named methods or constructors a call binds to.
package overload

import (
	"jsolve/pkg/infer"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

// candidate is one method or constructor with the formal types it is checked against. For method
// usages the formals already carry the receiver's substitution.
type candidate struct {
	callable *types.Callable
	formals  []types.Type
}

func (c candidate) variadic() bool { return c.callable.IsVariadic() }

func (c candidate) signature() string {
	if c.callable.Declaring == nil {
		return c.callable.Signature()
	}
	return c.callable.Declaring.QualifiedName + "." + c.callable.Signature()
}

func fromMethodLike[T types.MethodLike](m T) (candidate, error) {
	c := m.AsCallable()
	formals, err := c.ParamTypes()
	if err != nil {
		return candidate{}, err
	}
	return candidate{callable: c, formals: formals}, nil
}

// FindMostApplicable picks the method among candidates that a call to name with args binds to.
// Candidates are expected nearest declaration first.
func FindMostApplicable(candidates []*types.MethodDecl, name string, args []types.Type, ts types.Solver) (*types.MethodDecl, error) {
	return findMostApplicable(candidates, name, args, ts)
}

// FindMostApplicableConstructor is FindMostApplicable for constructors; names are not compared.
func FindMostApplicableConstructor(candidates []*types.ConstructorDecl, args []types.Type, ts types.Solver) (*types.ConstructorDecl, error) {
	if len(candidates) == 0 {
		return nil, types.NewUnresolvedNameError("<init>", "no constructor")
	}
	return findMostApplicable(candidates, candidates[0].Name, args, ts)
}

func findMostApplicable[T types.MethodLike](candidates []T, name string, args []types.Type, ts types.Solver) (T, error) {
	var zero T
	cands := make([]candidate, 0, len(candidates))
	owners := make(map[*types.Callable]T, len(candidates))
	for _, m := range candidates {
		c, err := fromMethodLike(m)
		if err != nil {
			if types.IsUnresolved(err) {
				continue
			}
			return zero, err
		}
		cands = append(cands, c)
		owners[c.callable] = m
	}
	winner, err := newResolver(ts).pick(cands, name, args)
	if err != nil {
		return zero, err
	}
	return owners[winner.callable], nil
}

// IsApplicable reports whether a call to name with args may bind to m.
func IsApplicable(m types.MethodLike, name string, args []types.Type, ts types.Solver) (bool, error) {
	c, err := fromMethodLike(m)
	if err != nil {
		if types.IsUnresolved(err) {
			return false, nil
		}
		return false, err
	}
	return newResolver(ts).applicable(c, name, args)
}

// ResolveUsage is FindMostApplicable over method usages, whose parameter types are already
// substituted.
func ResolveUsage(usages []*types.MethodUsage, name string, args []types.Type, ts types.Solver) (*types.MethodUsage, error) {
	cands := make([]candidate, 0, len(usages))
	owners := make(map[*types.Callable]*types.MethodUsage, len(usages))
	for _, u := range usages {
		c := candidate{callable: &u.Decl.Callable, formals: u.ParamTypes}
		if _, dup := owners[c.callable]; dup {
			continue
		}
		cands = append(cands, c)
		owners[c.callable] = u
	}
	winner, err := newResolver(ts).pick(cands, name, args)
	if err != nil {
		return nil, err
	}
	return owners[winner.callable], nil
}

type resolver struct {
	ts     types.Solver
	object *types.Reference
}

func newResolver(ts types.Solver) *resolver {
	return &resolver{ts: ts}
}

func (r *resolver) objectRef() (*types.Reference, error) {
	if r.object == nil {
		d, err := r.ts.SolveType(types.ObjectName)
		if err != nil {
			return nil, err
		}
		r.object = &types.Reference{Decl: d}
	}
	return r.object, nil
}

func (r *resolver) pick(cands []candidate, name string, args []types.Type) (candidate, error) {
	var applicable []candidate
	for _, c := range dedupe(cands) {
		ok, err := r.applicable(c, name, args)
		if err != nil {
			return candidate{}, err
		}
		if ok {
			applicable = append(applicable, c)
		}
	}
	if len(applicable) == 0 {
		return candidate{}, types.NewUnresolvedNameError(name,
			"no applicable candidate for ("+utils.MapJoin(args, types.Describe, ", ")+")")
	}
	applicable = dropArraysAtNulls(applicable, args)
	if len(applicable) == 1 {
		return applicable[0], nil
	}
	if fixed := utils.Filter(applicable, func(c candidate) bool { return !c.variadic() }); len(fixed) > 0 {
		applicable = fixed
	}
	if len(applicable) == 1 {
		return applicable[0], nil
	}
	for _, c := range applicable {
		ok, err := r.mostSpecific(c, applicable)
		if err != nil {
			return candidate{}, err
		}
		if ok {
			return c, nil
		}
	}
	if exact, ok := utils.Find(applicable, func(c candidate) bool { return exactMatch(c, args) }); ok {
		return exact, nil
	}
	return candidate{}, types.NewAmbiguityError(name, utils.Map(applicable, candidate.signature))
}

// dedupe keeps the first candidate of every erased signature, hiding overridden declarations.
func dedupe(cands []candidate) []candidate {
	seen := map[string]bool{}
	out := make([]candidate, 0, len(cands))
	for _, c := range cands {
		sig, err := c.callable.ErasedSignature()
		if err != nil {
			sig = c.callable.Signature()
		}
		if seen[sig] {
			continue
		}
		seen[sig] = true
		out = append(out, c)
	}
	return out
}

// dropArraysAtNulls removes candidates taking an array where a null is passed, as long as some
// candidate remains.
func dropArraysAtNulls(cands []candidate, args []types.Type) []candidate {
	kept := utils.Filter(cands, func(c candidate) bool {
		for i, a := range args {
			if !types.IsNull(a) || i >= len(c.formals) {
				continue
			}
			if _, isArr := c.formals[i].(types.Array); isArr {
				return false
			}
		}
		return true
	})
	if len(kept) == 0 {
		return cands
	}
	return kept
}

func exactMatch(c candidate, args []types.Type) bool {
	if len(c.formals) != len(args) {
		return false
	}
	for i, f := range c.formals {
		if !types.Equal(f, args[i]) {
			return false
		}
	}
	return true
}

// mostSpecific reports whether every other candidate's formals are assignable from c's.
func (r *resolver) mostSpecific(c candidate, others []candidate) (bool, error) {
	for _, o := range others {
		if o.callable == c.callable {
			continue
		}
		n := min(len(c.formals), len(o.formals))
		for i := 0; i < n; i++ {
			ok, err := assignable(o.formals[i], c.formals[i])
			if err != nil {
				return false, err
			}
			if !ok {
				return false, nil
			}
		}
	}
	return true, nil
}

// assignable is IsAssignableBy with unresolved names counting as not assignable.
func assignable(formal, actual types.Type) (bool, error) {
	ok, err := formal.IsAssignableBy(actual)
	if err != nil {
		if types.IsUnresolved(err) {
			return false, nil
		}
		return false, err
	}
	return ok, nil
}

// group folds the trailing variadic values into one array argument. The array element is the first
// non-null value, boxed when the formal element is a reference.
func (r *resolver) group(formal types.Type, args []types.Type, pos int) ([]types.Type, error) {
	out := append([]types.Type(nil), args[:pos]...)
	values := args[pos:]
	if len(values) == 0 {
		return append(out, formal), nil
	}
	var elem types.Type = types.Null{}
	for _, v := range values {
		if !types.IsNull(v) {
			elem = v
			break
		}
	}
	if p, ok := elem.(types.Primitive); ok {
		if arr, ok := formal.(types.Array); ok && !types.IsPrimitive(arr.Elem) {
			box, err := r.ts.SolveType(types.BoxName(p.Kind))
			if err != nil {
				return nil, err
			}
			elem = &types.Reference{Decl: box}
		}
	}
	return append(out, types.Array{Elem: elem}), nil
}

func (r *resolver) arguments(c candidate, args []types.Type) ([]types.Type, bool, error) {
	if !c.variadic() {
		return args, len(args) == len(c.formals), nil
	}
	pos := len(c.formals) - 1
	if len(args) < pos {
		return nil, false, nil
	}
	if len(args) == len(c.formals) {
		ok, err := r.assignableWithBounds(c, c.formals[pos], args[pos])
		if err != nil || ok {
			return args, ok, err
		}
	}
	ok, err := r.valuesFit(c, c.formals[pos], args[pos:])
	if err != nil || !ok {
		return nil, false, err
	}
	grouped, err := r.group(c.formals[pos], args, pos)
	if err != nil {
		return nil, false, err
	}
	return grouped, true, nil
}

// valuesFit checks every variadic value against the element type of the variadic formal, boxing
// primitives passed for a reference element.
func (r *resolver) valuesFit(c candidate, formal types.Type, values []types.Type) (bool, error) {
	arr, ok := formal.(types.Array)
	if !ok {
		return true, nil
	}
	for _, v := range values {
		if p, ok := v.(types.Primitive); ok && !types.IsPrimitive(arr.Elem) {
			box, err := r.ts.SolveType(types.BoxName(p.Kind))
			if err != nil {
				return false, err
			}
			v = &types.Reference{Decl: box}
		}
		ok, err := assignable(arr.Elem, v)
		if err != nil {
			return false, err
		}
		if ok {
			continue
		}
		if ok, err := r.assignableWithBounds(c, arr.Elem, v); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// applicable checks arity and every argument against its formal: directly, then with the formal's
// type parameters inferred from the call, then with them replaced by their bounds.
func (r *resolver) applicable(c candidate, name string, args []types.Type) (bool, error) {
	if c.callable.Name != name {
		return false, nil
	}
	args, ok, err := r.arguments(c, args)
	if err != nil || !ok {
		return false, err
	}
	params := typeParams(c)
	var inferred types.TypeParamMap
	for i, formal := range c.formals {
		actual := args[i]
		ok, err := assignable(formal, actual)
		if err != nil {
			return false, err
		}
		if ok {
			continue
		}
		if len(params) == 0 {
			return false, nil
		}
		if inferred == nil {
			inferred = r.infer(c.formals, args, params)
		}
		if ok, err := assignable(inferred.Apply(formal), actual); err != nil || ok {
			if err != nil {
				return false, err
			}
			continue
		}
		if ok, err := r.assignableWithBounds(c, formal, actual); err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// typeParams lists the type parameters of the callable followed by those of its declaring type.
func typeParams(c candidate) []*types.TypeParamDecl {
	params := c.callable.TypeParams
	if c.callable.Declaring != nil {
		params = append(append([]*types.TypeParamDecl(nil), params...), c.callable.Declaring.TypeParams...)
	}
	return params
}

// assignableWithBounds checks actual against formal with every type parameter in scope replaced by
// its first bound.
func (r *resolver) assignableWithBounds(c candidate, formal, actual types.Type) (bool, error) {
	params := typeParams(c)
	if len(params) == 0 {
		return assignable(formal, actual)
	}
	object, err := r.objectRef()
	if err != nil {
		return false, err
	}
	bounded, err := types.ReplaceWithBounds(formal, params, object)
	if err != nil {
		if types.IsUnresolved(err) {
			return false, nil
		}
		return false, err
	}
	return assignable(bounded, actual)
}

// infer unifies every formal with its actual and returns what could be learned. Pairs that fail to
// unify contribute nothing.
func (r *resolver) infer(formals, args []types.Type, params []*types.TypeParamDecl) types.TypeParamMap {
	ic := infer.NewContext(r.ts)
	for i, f := range formals {
		if _, err := ic.AddPair(f, args[i]); err != nil {
			continue
		}
	}
	m, err := ic.Substitution(params)
	if err != nil {
		return types.TypeParamMap{}
	}
	for _, p := range params {
		t, ok := m.Lookup(p)
		if !ok {
			continue
		}
		if !r.withinBounds(p, t, m) {
			delete(m, p.Key())
		}
	}
	return m
}

// withinBounds reports whether t satisfies every bound of p under the inferred substitution.
func (r *resolver) withinBounds(p *types.TypeParamDecl, t types.Type, m types.TypeParamMap) bool {
	bounds, err := p.Bounds()
	if err != nil {
		return false
	}
	for _, b := range bounds {
		ok, err := assignable(m.Apply(b), t)
		if err != nil || !ok {
			return false
		}
	}
	return true
}
