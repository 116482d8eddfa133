package types

import (
	"jsolve/pkg/utils"
)

// MethodUsage is a method declaration seen through a substitution of its type parameters.
type MethodUsage struct {
	Decl       *MethodDecl
	ParamTypes []Type
	ReturnType Type
	Subst      TypeParamMap
}

func NewMethodUsage(m *MethodDecl) (*MethodUsage, error) {
	params, err := m.ParamTypes()
	if err != nil {
		return nil, err
	}
	ret, err := m.ReturnType()
	if err != nil {
		return nil, err
	}
	return &MethodUsage{Decl: m, ParamTypes: params, ReturnType: ret, Subst: TypeParamMap{}}, nil
}

func (u *MethodUsage) Name() string { return u.Decl.Name }

func (u *MethodUsage) NumParams() int { return len(u.ParamTypes) }

// Apply returns a copy of u with m substituted into parameter and return types.
func (u *MethodUsage) Apply(m TypeParamMap) *MethodUsage {
	if len(m) == 0 {
		return u
	}
	return &MethodUsage{
		Decl:       u.Decl,
		ParamTypes: utils.Map(u.ParamTypes, m.Apply),
		ReturnType: m.Apply(u.ReturnType),
		Subst:      u.Subst.Merge(m),
	}
}

// Replace substitutes a single type parameter.
func (u *MethodUsage) Replace(p *TypeParamDecl, t Type) *MethodUsage {
	m := TypeParamMap{}
	m.Set(p, t)
	return u.Apply(m)
}

// ReplaceParamType overrides the type of the i-th parameter.
func (u *MethodUsage) ReplaceParamType(i int, t Type) *MethodUsage {
	params := append([]Type(nil), u.ParamTypes...)
	params[i] = t
	return &MethodUsage{Decl: u.Decl, ParamTypes: params, ReturnType: u.ReturnType, Subst: u.Subst}
}

func (u *MethodUsage) ReplaceReturnType(t Type) *MethodUsage {
	return &MethodUsage{Decl: u.Decl, ParamTypes: u.ParamTypes, ReturnType: t, Subst: u.Subst}
}

func (u *MethodUsage) Describe() string {
	return Describe(u.ReturnType) + " " + u.Decl.Declaring.QualifiedName + "." + u.Decl.Name +
		"(" + utils.MapJoin(u.ParamTypes, Describe, ", ") + ")"
}
