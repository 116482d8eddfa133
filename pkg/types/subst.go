package types

import (
	"jsolve/pkg/utils"
)

// TypeParamMap maps type parameters, by key, to the types substituted for them.
type TypeParamMap map[string]Type

func (m TypeParamMap) Lookup(p *TypeParamDecl) (Type, bool) {
	t, ok := m[p.Key()]
	return t, ok
}

func (m TypeParamMap) Set(p *TypeParamDecl, t Type) { m[p.Key()] = t }

// Apply substitutes every mapped type variable occurring in t.
func (m TypeParamMap) Apply(t Type) Type {
	if len(m) == 0 {
		return t
	}
	return Substitute(t, m.Lookup)
}

// Merge returns a copy of m overlaid with o.
func (m TypeParamMap) Merge(o TypeParamMap) TypeParamMap {
	out := make(TypeParamMap, len(m)+len(o))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range o {
		out[k] = v
	}
	return out
}

// Substitute rebuilds t replacing type variables for which fn returns a type.
func Substitute(t Type, fn func(*TypeParamDecl) (Type, bool)) Type {
	switch v := t.(type) {
	case TypeVariable:
		if r, ok := fn(v.Decl); ok {
			return r
		}
		return v
	case *Reference:
		if len(v.Args) == 0 {
			return v
		}
		args := make([]Type, len(v.Args))
		changed := false
		for i, a := range v.Args {
			args[i] = Substitute(a, fn)
			changed = changed || args[i] != a
		}
		if !changed {
			return v
		}
		return &Reference{Decl: v.Decl, Args: args}
	case Array:
		return Array{Elem: Substitute(v.Elem, fn)}
	case Wildcard:
		if v.Bound == nil {
			return v
		}
		return Wildcard{Kind: v.Kind, Bound: Substitute(v.Bound, fn)}
	case LambdaConstraint:
		return LambdaConstraint{Bound: Substitute(v.Bound, fn)}
	}
	return t
}

// ContainsTypeVariables reports whether a type variable occurs anywhere in t.
func ContainsTypeVariables(t Type) bool {
	found := false
	Substitute(t, func(*TypeParamDecl) (Type, bool) {
		found = true
		return nil, false
	})
	return found
}

// TypeParamMap maps the declaration's type parameters to this reference's arguments.
func (r *Reference) TypeParamMap() TypeParamMap {
	m := TypeParamMap{}
	if len(r.Args) != len(r.Decl.TypeParams) {
		return m
	}
	for i, p := range r.Decl.TypeParams {
		m.Set(p, r.Args[i])
	}
	return m
}

// TypeParamValue returns the argument bound to the named type parameter of the declaration.
func (r *Reference) TypeParamValue(name string) (Type, bool) {
	for i, p := range r.Decl.TypeParams {
		if p.Name == name && i < len(r.Args) {
			return r.Args[i], true
		}
	}
	return nil, false
}

func (r *Reference) Erasure() *Reference { return &Reference{Decl: r.Decl} }

// DirectAncestors returns the supertypes of r with r's type arguments substituted. The supertypes
// of a raw reference are raw.
func (r *Reference) DirectAncestors() ([]*Reference, error) {
	anc, err := r.Decl.Ancestors()
	if err != nil {
		return nil, err
	}
	if r.IsRaw() {
		return utils.Map(anc, (*Reference).Erasure), nil
	}
	m := r.TypeParamMap()
	return utils.Map(anc, func(a *Reference) *Reference {
		return m.Apply(a).(*Reference)
	}), nil
}

// AllAncestors returns the transitive supertypes of r, excluding r, with Object last.
func (r *Reference) AllAncestors() ([]*Reference, error) {
	var out []*Reference
	var object *Reference
	seen := map[string]bool{r.QualifiedName(): true}
	queue := []*Reference{r}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		direct, err := cur.DirectAncestors()
		if err != nil {
			return nil, err
		}
		for _, a := range direct {
			if a.QualifiedName() == r.QualifiedName() {
				return nil, NewRecursionLimitError("ancestors of "+r.QualifiedName(), 0)
			}
			if seen[a.QualifiedName()] {
				continue
			}
			seen[a.QualifiedName()] = true
			if a.IsObject() {
				object = a
				continue
			}
			out = append(out, a)
			queue = append(queue, a)
		}
	}
	if r.IsObject() {
		return out, nil
	}
	if object == nil {
		var err error
		if object, err = r.Decl.Object(); err != nil {
			return nil, err
		}
	}
	return append(out, object), nil
}

// Ancestor finds the member of r's ancestor closure, r included, with the given qualified name.
func (r *Reference) Ancestor(qualifiedName string) (*Reference, bool, error) {
	if r.QualifiedName() == qualifiedName {
		return r, true, nil
	}
	all, err := r.AllAncestors()
	if err != nil {
		return nil, false, err
	}
	a, ok := utils.Find(all, func(a *Reference) bool { return a.QualifiedName() == qualifiedName })
	return a, ok, nil
}

// FieldType returns the type of f as seen through r: the declaring type's parameters are replaced
// with the arguments r supplies for them.
func (r *Reference) FieldType(f *FieldDecl) (Type, error) {
	t, err := f.Type()
	if err != nil {
		return nil, err
	}
	return r.MemberType(f.Declaring, t)
}

// MemberType views t, declared in declaring, through r.
func (r *Reference) MemberType(declaring *TypeDecl, t Type) (Type, error) {
	if declaring == nil {
		return t, nil
	}
	a, ok, err := r.Ancestor(declaring.QualifiedName)
	if err != nil {
		return nil, err
	}
	if !ok {
		return t, nil
	}
	if a.IsRaw() {
		return Erase(t)
	}
	return a.TypeParamMap().Apply(t), nil
}

// Erase removes type arguments and replaces type variables with their first bound.
func Erase(t Type) (Type, error) {
	switch v := t.(type) {
	case *Reference:
		return v.Erasure(), nil
	case Array:
		e, err := Erase(v.Elem)
		if err != nil {
			return nil, err
		}
		return Array{Elem: e}, nil
	case TypeVariable:
		return boundOrObject(v.Decl, nil, true)
	case Wildcard:
		if v.Kind == Extends {
			return Erase(v.Bound)
		}
		return nil, NewUnsupportedConstructError("erasure of %s", v.Describe())
	case LambdaConstraint:
		return Erase(v.Bound)
	}
	return t, nil
}

// ReplaceWithBounds replaces the given type parameters in t by their first bound, or Object.
func ReplaceWithBounds(t Type, params []*TypeParamDecl, object *Reference) (Type, error) {
	var firstErr error
	out := Substitute(t, func(p *TypeParamDecl) (Type, bool) {
		if _, ok := utils.Find(params, func(q *TypeParamDecl) bool { return q.Key() == p.Key() }); !ok {
			return nil, false
		}
		b, err := boundOrObject(p, object, false)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return nil, false
		}
		return b, true
	})
	return out, firstErr
}

func boundOrObject(p *TypeParamDecl, object *Reference, erase bool) (Type, error) {
	bounds, err := p.Bounds()
	if err != nil {
		return nil, err
	}
	if len(bounds) > 0 {
		if erase {
			if tv, ok := bounds[0].(TypeVariable); ok && tv.Decl.Key() == p.Key() {
				return nil, NewRecursionLimitError("bound of "+p.Name, 0)
			}
			return Erase(bounds[0])
		}
		return bounds[0], nil
	}
	if object != nil {
		return object, nil
	}
	return p.Object()
}
