package types

// Primitive targets accept the same primitive or its box. There is no widening between primitives.
func (p Primitive) IsAssignableBy(other Type) (bool, error) {
	switch o := other.(type) {
	case Primitive:
		return o.Kind == p.Kind, nil
	case *Reference:
		k, ok := UnboxedKind(o.QualifiedName())
		return ok && k == p.Kind, nil
	case LambdaConstraint:
		return p.IsAssignableBy(o.Bound)
	}
	return false, nil
}

func (Void) IsAssignableBy(other Type) (bool, error) {
	return IsVoid(other), nil
}

// Null is never a target except for itself.
func (Null) IsAssignableBy(other Type) (bool, error) {
	return IsNull(other), nil
}

func (a Array) IsAssignableBy(other Type) (bool, error) {
	switch o := other.(type) {
	case Null:
		return true, nil
	case Array:
		ep, eIsPrim := a.Elem.(Primitive)
		op, oIsPrim := o.Elem.(Primitive)
		if eIsPrim || oIsPrim {
			return eIsPrim && oIsPrim && ep.Kind == op.Kind, nil
		}
		return a.Elem.IsAssignableBy(o.Elem)
	case LambdaConstraint:
		return a.IsAssignableBy(o.Bound)
	}
	return false, nil
}

func (r *Reference) IsAssignableBy(other Type) (bool, error) {
	switch other.(type) {
	case Null:
		return true, nil
	case Void:
		return false, nil
	}
	if r.IsObject() {
		return true, nil
	}
	switch o := other.(type) {
	case Primitive:
		box, err := r.Decl.Solver.SolveType(BoxName(o.Kind))
		if err != nil {
			return false, err
		}
		return r.IsAssignableBy(&Reference{Decl: box})
	case *Reference:
		anc, ok, err := o.Ancestor(r.QualifiedName())
		if err != nil || !ok {
			return false, err
		}
		return compareTypeArgs(r, anc)
	case Array:
		name := r.QualifiedName()
		return name == CloneableName || name == SerializableName, nil
	case TypeVariable:
		bounds, err := o.Decl.Bounds()
		if err != nil {
			return false, err
		}
		for _, b := range bounds {
			if ok, err := r.IsAssignableBy(b); ok || err != nil {
				return ok, err
			}
		}
		return false, nil
	case Wildcard:
		if o.Kind == Extends {
			return r.IsAssignableBy(o.Bound)
		}
		return false, nil
	case LambdaConstraint:
		return r.IsAssignableBy(o.Bound)
	case LambdaPlaceholder:
		m, ok, err := FunctionalMethod(r)
		if err != nil || !ok {
			return false, err
		}
		return o.Arity < 0 || len(m.Params) == o.Arity, nil
	}
	return false, nil
}

// compareTypeArgs checks the arguments of two references to the same declaration. Raw uses on either
// side are compatible with anything.
func compareTypeArgs(target, candidate *Reference) (bool, error) {
	if len(target.Args) == 0 || len(candidate.Args) == 0 || len(target.Args) != len(candidate.Args) {
		return true, nil
	}
	for i, ta := range target.Args {
		ca := candidate.Args[i]
		if Equal(ta, ca) {
			continue
		}
		ok, err := containsArg(ta, ca)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

// containsArg reports whether the type argument ta admits ca.
func containsArg(ta, ca Type) (bool, error) {
	if c, ok := ca.(LambdaConstraint); ok {
		ca = c.Bound
	}
	switch t := ta.(type) {
	case Wildcard:
		switch t.Kind {
		case Unbounded:
			return true, nil
		case Extends:
			if cw, ok := ca.(Wildcard); ok {
				if cw.Kind != Extends {
					return false, nil
				}
				ca = cw.Bound
			}
			return t.Bound.IsAssignableBy(ca)
		case Super:
			// an argument still carrying a free variable, e.g. the result of Collectors.toList()
			if _, free := ca.(TypeVariable); free {
				return true, nil
			}
			if cw, ok := ca.(Wildcard); ok {
				if cw.Kind != Super {
					return false, nil
				}
				ca = cw.Bound
			}
			return ca.IsAssignableBy(t.Bound)
		}
	case TypeVariable:
		return true, nil
	case *InferenceVariable:
		return true, nil
	}
	return false, nil
}

// TypeVariable targets accept the same variable, null, or a variable bounded by this one.
func (v TypeVariable) IsAssignableBy(other Type) (bool, error) {
	switch o := other.(type) {
	case Null:
		return true, nil
	case TypeVariable:
		if o.Decl.Key() == v.Decl.Key() {
			return true, nil
		}
		bounds, err := o.Decl.Bounds()
		if err != nil {
			return false, err
		}
		for _, b := range bounds {
			if Equal(b, v) {
				return true, nil
			}
		}
	case Wildcard:
		return o.Kind == Extends && Equal(o.Bound, v), nil
	case LambdaConstraint:
		return v.IsAssignableBy(o.Bound)
	}
	return false, nil
}

// Wildcards are only ever compared as type arguments; as targets they accept an equal wildcard.
func (w Wildcard) IsAssignableBy(other Type) (bool, error) {
	return Equal(w, other), nil
}

func (v *InferenceVariable) IsAssignableBy(other Type) (bool, error) {
	return Equal(v, other), nil
}

func (c LambdaConstraint) IsAssignableBy(other Type) (bool, error) {
	if Equal(c, other) {
		return true, nil
	}
	return c.Bound.IsAssignableBy(other)
}

func (p LambdaPlaceholder) IsAssignableBy(other Type) (bool, error) {
	return Equal(p, other), nil
}

// objectMethodArity lists the public Object methods an interface may redeclare without them
// counting as its abstract method.
var objectMethodArity = map[string]int{"equals": 1, "hashCode": 0, "toString": 0}

// AllMethods returns the methods declared on r's declaration followed by those of every ancestor,
// nearest first.
func AllMethods(r *Reference) ([]*MethodDecl, error) {
	out := append([]*MethodDecl(nil), r.Decl.Methods...)
	anc, err := r.AllAncestors()
	if err != nil {
		return nil, err
	}
	for _, a := range anc {
		out = append(out, a.Decl.Methods...)
	}
	return out, nil
}

// AllFields returns the fields of r's declaration followed by those of every ancestor.
func AllFields(r *Reference) ([]*FieldDecl, error) {
	out := append([]*FieldDecl(nil), r.Decl.Fields...)
	anc, err := r.AllAncestors()
	if err != nil {
		return nil, err
	}
	for _, a := range anc {
		out = append(out, a.Decl.Fields...)
	}
	return out, nil
}

// FunctionalMethod returns the single abstract method of a functional interface.
func FunctionalMethod(r *Reference) (*MethodDecl, bool, error) {
	if !r.Decl.IsInterface() {
		return nil, false, nil
	}
	methods, err := AllMethods(r)
	if err != nil {
		return nil, false, err
	}
	var found *MethodDecl
	seen := map[string]bool{}
	for _, m := range methods {
		if !m.IsAbstract() || m.IsStatic() || m.Flags.Has(FlagDefault) {
			continue
		}
		if arity, ok := objectMethodArity[m.Name]; ok && arity == len(m.Params) {
			continue
		}
		sig, err := m.ErasedSignature()
		if err != nil {
			sig = m.Signature()
		}
		if seen[sig] {
			continue
		}
		seen[sig] = true
		if found != nil {
			return nil, false, nil
		}
		found = m
	}
	return found, found != nil, nil
}

// IsFunctionalInterface reports whether r has exactly one abstract method.
func (r *Reference) IsFunctionalInterface() (bool, error) {
	_, ok, err := FunctionalMethod(r)
	return ok, err
}
