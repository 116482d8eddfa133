package solver

import (
	"fmt"

	"github.com/pkg/errors"

	"jsolve/pkg/classfile"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

// classInfo is the metadata shared by class files and runtime mirrors, with canonical names.
type classInfo struct {
	name       string
	outer      string
	access     uint16
	signature  string
	super      string
	interfaces []string
	fields     []classfile.Member
	methods    []classfile.Member
	ctors      []classfile.Member
	nested     []string
	constants  []string
}

func fromClassFile(c *classfile.Class) *classInfo {
	ci := &classInfo{
		name:       c.CanonicalName(),
		access:     c.Access,
		signature:  c.Signature,
		super:      classfile.Canonical(c.Super),
		interfaces: utils.Map(c.Interfaces, classfile.Canonical),
		fields:     c.Fields,
		nested:     utils.Map(c.NestedClasses(), classfile.Canonical),
	}
	if acc, ok := c.InnerAccess(); ok {
		ci.access |= acc & (classfile.AccStatic | classfile.AccPrivate | classfile.AccProtected)
		for _, ic := range c.Inner {
			if ic.Inner == c.Name && ic.Outer != "" {
				ci.outer = classfile.Canonical(ic.Outer)
			}
		}
	}
	for _, m := range c.Methods {
		switch m.Name {
		case "<init>":
			ci.ctors = append(ci.ctors, m)
		case "<clinit>":
		default:
			ci.methods = append(ci.methods, m)
		}
	}
	return ci
}

// declBuilder turns classInfo into declarations whose lazy parts resolve through root.
type declBuilder struct {
	origin types.Origin
	root   types.Solver
}

type typeScope struct {
	params []*types.TypeParamDecl
	parent *typeScope
}

func (s *typeScope) lookup(name string) *types.TypeParamDecl {
	for ; s != nil; s = s.parent {
		for _, p := range s.params {
			if p.Name == name {
				return p
			}
		}
	}
	return nil
}

func accessOf(flags uint16) types.Access {
	switch {
	case flags&classfile.AccPublic != 0:
		return types.AccessPublic
	case flags&classfile.AccProtected != 0:
		return types.AccessProtected
	case flags&classfile.AccPrivate != 0:
		return types.AccessPrivate
	}
	return types.AccessPackage
}

func flagsOf(flags uint16) types.Flags {
	var out types.Flags
	if flags&classfile.AccStatic != 0 {
		out |= types.FlagStatic
	}
	if flags&classfile.AccAbstract != 0 {
		out |= types.FlagAbstract
	}
	if flags&classfile.AccFinal != 0 {
		out |= types.FlagFinal
	}
	if flags&classfile.AccSynthetic != 0 {
		out |= types.FlagSynthetic
	}
	return out
}

func kindOf(flags uint16) types.TypeKind {
	switch {
	case flags&classfile.AccAnnotation != 0:
		return types.KindAnnotation
	case flags&classfile.AccInterface != 0:
		return types.KindInterface
	case flags&classfile.AccEnum != 0:
		return types.KindEnum
	}
	return types.KindClass
}

func (b *declBuilder) build(ci *classInfo) (*types.TypeDecl, error) {
	d := types.NewTypeDecl(kindOf(ci.access), b.origin, ci.name, b.root)
	d.Access = accessOf(ci.access)
	d.Flags = flagsOf(ci.access)
	d.NestedNames = ci.nested
	scope := &typeScope{}
	if ci.outer != "" {
		if outer, err := b.root.SolveType(ci.outer); err == nil {
			d.Outer = outer
			if !d.Flags.Has(types.FlagStatic) {
				scope.parent = &typeScope{params: outer.TypeParams}
			}
		}
	}

	var sig *classfile.ClassSignature
	if ci.signature != "" {
		var err error
		if sig, err = classfile.ParseClassSignature(ci.signature); err != nil {
			return nil, errors.Wrapf(err, "class %s", ci.name)
		}
		b.typeParams(sig.TypeParams, d.QualifiedName, scope, d.AddTypeParam)
	}
	scope.params = d.TypeParams

	d.SetAncestors(func() ([]*types.Reference, error) {
		var out []*types.Reference
		add := func(t types.Type) error {
			ref, err := types.AsReference(t)
			if err != nil {
				return err
			}
			out = append(out, ref)
			return nil
		}
		if sig != nil {
			if sig.Super.Name != "" {
				t, err := b.toType(sig.Super, scope)
				if err != nil {
					return nil, err
				}
				if err := add(t); err != nil {
					return nil, err
				}
			}
			for _, itf := range sig.Interfaces {
				t, err := b.toType(itf, scope)
				if err != nil {
					return nil, err
				}
				if err := add(t); err != nil {
					return nil, err
				}
			}
		} else {
			for _, name := range append([]string{ci.super}, ci.interfaces...) {
				if name == "" {
					continue
				}
				decl, err := b.root.SolveType(name)
				if err != nil {
					return nil, err
				}
				out = append(out, &types.Reference{Decl: decl})
			}
		}
		hasSuper := utils.Ternary(sig != nil, sig != nil && sig.Super.Name != "", ci.super != "")
		if !hasSuper && d.QualifiedName != types.ObjectName {
			obj, err := d.Object()
			if err != nil {
				return nil, err
			}
			out = append([]*types.Reference{obj}, out...)
		}
		return out, nil
	})

	for _, f := range ci.fields {
		if f.Is(classfile.AccSynthetic) {
			continue
		}
		if f.Is(classfile.AccEnum) {
			d.EnumConstants = append(d.EnumConstants, f.Name)
		}
		fieldSig, err := classfile.ParseFieldSignature(utils.Ternary(f.Signature != "", f.Signature, f.Descriptor))
		if err != nil {
			return nil, errors.Wrapf(err, "field %s.%s", ci.name, f.Name)
		}
		fd := types.NewFieldDecl(f.Name, flagsOf(f.Access), func() (types.Type, error) {
			return b.toType(fieldSig, scope)
		})
		fd.Access = accessOf(f.Access)
		d.AddField(fd)
	}
	for _, name := range ci.constants {
		if d.Field(name) != nil {
			continue
		}
		d.EnumConstants = append(d.EnumConstants, name)
		fd := types.NewFieldDecl(name, types.FlagStatic|types.FlagFinal, func() (types.Type, error) {
			return &types.Reference{Decl: d}, nil
		})
		d.AddField(fd)
	}

	for _, m := range ci.methods {
		if m.Is(classfile.AccSynthetic) || m.Is(classfile.AccBridge) {
			continue
		}
		md := types.NewMethodDecl(m.Name, flagsOf(m.Access))
		md.Access = accessOf(m.Access)
		if d.IsInterface() && !m.Is(classfile.AccAbstract) && !m.Is(classfile.AccStatic) {
			md.Flags |= types.FlagDefault
		}
		ms, err := b.callable(&md.Callable, d, m, scope)
		if err != nil {
			return nil, err
		}
		ret := ms.Return
		mscope := &typeScope{params: md.TypeParams, parent: scope}
		md.SetReturnType(func() (types.Type, error) { return b.toType(ret, mscope) })
		d.AddMethod(md)
	}
	for _, m := range ci.ctors {
		if m.Is(classfile.AccSynthetic) {
			continue
		}
		cd := types.NewConstructorDecl(d.Name, flagsOf(m.Access))
		cd.Access = accessOf(m.Access)
		if _, err := b.callable(&cd.Callable, d, m, scope); err != nil {
			return nil, err
		}
		d.AddConstructor(cd)
	}
	if d.IsEnum() {
		AddEnumMethods(d)
	}
	return d, nil
}

// callable fills type parameters and parameters of c from the member signature.
func (b *declBuilder) callable(c *types.Callable, d *types.TypeDecl, m classfile.Member, scope *typeScope) (*classfile.MethodSignature, error) {
	ms, err := classfile.ParseMethodSignature(utils.Ternary(m.Signature != "", m.Signature, m.Descriptor))
	if err != nil {
		return nil, errors.Wrapf(err, "method %s.%s", d.QualifiedName, m.Name)
	}
	container := types.TypeParamContainer(d.QualifiedName, c.Name, len(ms.Params))
	mscope := &typeScope{parent: scope}
	b.typeParams(ms.TypeParams, container, mscope, func(p *types.TypeParamDecl) {
		c.TypeParams = append(c.TypeParams, p)
	})
	mscope.params = c.TypeParams
	for i, pt := range ms.Params {
		pt := pt
		variadic := i == len(ms.Params)-1 && m.Is(classfile.AccVarargs)
		c.AddParam(types.NewParamDecl(fmt.Sprintf("arg%d", i), variadic, func() (types.Type, error) {
			return b.toType(pt, mscope)
		}))
	}
	return ms, nil
}

func (b *declBuilder) typeParams(params []classfile.TypeParamSig, container string, scope *typeScope, add func(*types.TypeParamDecl)) {
	for _, tp := range params {
		bounds := tp.Bounds
		p := types.NewTypeParamDecl(tp.Name, container, b.root)
		p.SetBounds(func() ([]types.Type, error) {
			var out []types.Type
			for _, bound := range bounds {
				t, err := b.toType(bound, scope)
				if err != nil {
					return nil, err
				}
				if r, ok := t.(*types.Reference); ok && r.IsObject() {
					continue
				}
				out = append(out, t)
			}
			return out, nil
		})
		add(p)
	}
}

var baseTypes = map[byte]types.Type{
	'Z': types.BooleanType, 'C': types.CharType, 'B': types.ByteType, 'S': types.ShortType,
	'I': types.IntType, 'J': types.LongType, 'F': types.FloatType, 'D': types.DoubleType, 'V': types.Void{},
}

func (b *declBuilder) toType(sig classfile.TypeSig, scope *typeScope) (types.Type, error) {
	switch v := sig.(type) {
	case classfile.BaseSig:
		if t, ok := baseTypes[v.Code]; ok {
			return t, nil
		}
		return nil, types.NewUnsupportedConstructError("descriptor %q", v.Code)
	case classfile.ArraySig:
		elem, err := b.toType(v.Elem, scope)
		if err != nil {
			return nil, err
		}
		return types.Array{Elem: elem}, nil
	case classfile.TypeVarSig:
		if p := scope.lookup(v.Name); p != nil {
			return types.TypeVariable{Decl: p}, nil
		}
		return nil, types.NewUnresolvedNameError(v.Name, "type variable")
	case classfile.ClassSig:
		decl, err := b.root.SolveType(classfile.Canonical(v.Name))
		if err != nil {
			return nil, err
		}
		if len(v.Args) != len(decl.TypeParams) {
			return &types.Reference{Decl: decl}, nil
		}
		args := make([]types.Type, 0, len(v.Args))
		for _, a := range v.Args {
			arg, err := b.typeArg(a, scope)
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &types.Reference{Decl: decl, Args: args}, nil
	}
	return nil, types.NewUnsupportedConstructError("signature %T", sig)
}

func (b *declBuilder) typeArg(a classfile.TypeArg, scope *typeScope) (types.Type, error) {
	if a.Wildcard == '*' {
		return types.Wildcard{Kind: types.Unbounded}, nil
	}
	t, err := b.toType(a.Type, scope)
	if err != nil {
		return nil, err
	}
	switch a.Wildcard {
	case '+':
		return types.Wildcard{Kind: types.Extends, Bound: t}, nil
	case '-':
		return types.Wildcard{Kind: types.Super, Bound: t}, nil
	}
	return t, nil
}

// AddEnumMethods synthesises values() and valueOf(String) unless the metadata already lists them.
func AddEnumMethods(d *types.TypeDecl) {
	if len(d.MethodsNamed("values")) == 0 {
		values := types.NewMethodDecl("values", types.FlagStatic)
		values.SetReturnType(func() (types.Type, error) {
			return types.Array{Elem: &types.Reference{Decl: d}}, nil
		})
		d.AddMethod(values)
	}
	hasValueOf := false
	for _, m := range d.MethodsNamed("valueOf") {
		if len(m.Params) == 1 {
			hasValueOf = true
		}
	}
	if !hasValueOf {
		valueOf := types.NewMethodDecl("valueOf", types.FlagStatic)
		valueOf.AddParam(types.NewParamDecl("name", false, func() (types.Type, error) {
			str, err := d.Solver.SolveType(types.StringName)
			if err != nil {
				return nil, err
			}
			return &types.Reference{Decl: str}, nil
		}))
		valueOf.SetReturnType(func() (types.Type, error) { return &types.Reference{Decl: d}, nil })
		d.AddMethod(valueOf)
	}
}
