package types

import (
	"fmt"
	"strconv"
	"strings"

	"jsolve/pkg/ast"
	"jsolve/pkg/utils"
)

// Solver maps a qualified name to a type declaration. Declarations keep the root solver that created
// them so lazily computed parts resolve against the full provider set.
type Solver interface {
	SolveType(name string) (*TypeDecl, error)
}

type Origin uint8

const (
	OriginSource Origin = iota + 1
	OriginCompiled
	OriginReflective
)

func (o Origin) String() string {
	switch o {
	case OriginSource:
		return "source"
	case OriginCompiled:
		return "compiled"
	case OriginReflective:
		return "reflective"
	}
	return "unknown"
}

type TypeKind uint8

const (
	KindClass TypeKind = iota + 1
	KindInterface
	KindEnum
	KindAnnotation
)

func (k TypeKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindInterface:
		return "interface"
	case KindEnum:
		return "enum"
	case KindAnnotation:
		return "annotation"
	}
	return "unknown"
}

type Access uint8

const (
	AccessPackage Access = iota
	AccessPublic
	AccessProtected
	AccessPrivate
)

func (a Access) String() string {
	switch a {
	case AccessPublic:
		return "public"
	case AccessProtected:
		return "protected"
	case AccessPrivate:
		return "private"
	}
	return "package"
}

type Flags uint16

const (
	FlagStatic Flags = 1 << iota
	FlagAbstract
	FlagFinal
	FlagDefault
	FlagSynthetic
)

func (f Flags) Has(o Flags) bool { return f&o != 0 }

// Decl is implemented by every declaration variant.
type Decl interface {
	DeclName() string
	Describe() string
	isDecl()
}

type lazyState uint8

const (
	lazyIdle lazyState = iota
	lazyLoading
	lazyDone
)

// Lazy computes a value once and keeps it with its error. Re-entering Get while the value is being
// computed yields a RecursionLimitError instead of recursing forever.
type Lazy[T any] struct {
	what  string
	load  func() (T, error)
	state lazyState
	val   T
	err   error
}

func Deferred[T any](what string, load func() (T, error)) *Lazy[T] {
	return &Lazy[T]{what: what, load: load}
}

func Known[T any](v T) *Lazy[T] {
	return &Lazy[T]{state: lazyDone, val: v}
}

func (l *Lazy[T]) Get() (T, error) {
	var zero T
	if l == nil {
		return zero, nil
	}
	switch l.state {
	case lazyDone:
		return l.val, l.err
	case lazyLoading:
		return zero, NewRecursionLimitError(l.what, 0)
	}
	l.state = lazyLoading
	v, err := l.load()
	l.val, l.err, l.state = v, err, lazyDone
	return v, err
}

// Loading reports whether Get is currently running.
func (l *Lazy[T]) Loading() bool { return l != nil && l.state == lazyLoading }

type TypeDecl struct {
	Kind          TypeKind
	Origin        Origin
	QualifiedName string
	Name          string
	Access        Access
	Flags         Flags
	Outer         *TypeDecl
	Node          *ast.Node
	TypeParams    []*TypeParamDecl
	Fields        []*FieldDecl
	Methods       []*MethodDecl
	Constructors  []*ConstructorDecl
	NestedNames   []string
	EnumConstants []string
	Solver        Solver
	ancestors     *Lazy[[]*Reference]
}

func NewTypeDecl(kind TypeKind, origin Origin, qualifiedName string, ts Solver) *TypeDecl {
	_, name := utils.SplitLast(qualifiedName, ".")
	return &TypeDecl{Kind: kind, Origin: origin, QualifiedName: qualifiedName, Name: name, Access: AccessPublic, Solver: ts}
}

func (d *TypeDecl) DeclName() string { return d.Name }
func (d *TypeDecl) Describe() string { return d.QualifiedName }
func (*TypeDecl) isDecl()            {}

func (d *TypeDecl) IsClass() bool     { return d.Kind == KindClass }
func (d *TypeDecl) IsInterface() bool { return d.Kind == KindInterface || d.Kind == KindAnnotation }
func (d *TypeDecl) IsEnum() bool      { return d.Kind == KindEnum }

// SetAncestors installs the loader of the direct supertypes.
func (d *TypeDecl) SetAncestors(load func() ([]*Reference, error)) {
	d.ancestors = Deferred(d.QualifiedName+" ancestors", load)
}

// Ancestors returns the direct superclass and interfaces, expressed with this declaration's own type
// variables.
func (d *TypeDecl) Ancestors() ([]*Reference, error) {
	if d.ancestors == nil {
		return nil, nil
	}
	return d.ancestors.Get()
}

// AncestorsLoading reports whether the ancestor list of d is being computed right now.
func (d *TypeDecl) AncestorsLoading() bool { return d.ancestors.Loading() }

func (d *TypeDecl) AddTypeParam(p *TypeParamDecl) { d.TypeParams = append(d.TypeParams, p) }

func (d *TypeDecl) AddField(f *FieldDecl) {
	f.Declaring = d
	d.Fields = append(d.Fields, f)
}

func (d *TypeDecl) AddMethod(m *MethodDecl) {
	m.Declaring = d
	d.Methods = append(d.Methods, m)
}

func (d *TypeDecl) AddConstructor(c *ConstructorDecl) {
	c.Declaring = d
	d.Constructors = append(d.Constructors, c)
}

func (d *TypeDecl) TypeParam(name string) *TypeParamDecl {
	p, _ := utils.Find(d.TypeParams, func(p *TypeParamDecl) bool { return p.Name == name })
	return p
}

// Field returns the field declared directly on d.
func (d *TypeDecl) Field(name string) *FieldDecl {
	f, _ := utils.Find(d.Fields, func(f *FieldDecl) bool { return f.Name == name })
	return f
}

func (d *TypeDecl) MethodsNamed(name string) []*MethodDecl {
	return utils.Filter(d.Methods, func(m *MethodDecl) bool { return m.Name == name })
}

func (d *TypeDecl) HasEnumConstant(name string) bool {
	_, ok := utils.Find(d.EnumConstants, func(c string) bool { return c == name })
	return ok
}

// Nested resolves the member types of d.
func (d *TypeDecl) Nested() ([]*TypeDecl, error) {
	var out []*TypeDecl
	for _, name := range d.NestedNames {
		n, err := d.Solver.SolveType(name)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// NestedType finds a member type of d by simple name.
func (d *TypeDecl) NestedType(simple string) (*TypeDecl, bool, error) {
	for _, name := range d.NestedNames {
		if _, s := utils.SplitLast(name, "."); s == simple {
			n, err := d.Solver.SolveType(name)
			return n, err == nil, err
		}
	}
	return nil, false, nil
}

// Object returns the root reference type.
func (d *TypeDecl) Object() (*Reference, error) {
	obj, err := d.Solver.SolveType(ObjectName)
	if err != nil {
		return nil, err
	}
	return &Reference{Decl: obj}, nil
}

type TypeParamDecl struct {
	Name string
	// Container identifies the declaring type or method.
	Container string
	Node      *ast.Node
	Solver    Solver
	bounds    *Lazy[[]Type]
}

func NewTypeParamDecl(name, container string, ts Solver) *TypeParamDecl {
	return &TypeParamDecl{Name: name, Container: container, Solver: ts}
}

func (p *TypeParamDecl) DeclName() string { return p.Name }
func (p *TypeParamDecl) Describe() string { return p.Name }
func (*TypeParamDecl) isDecl()            {}

func (p *TypeParamDecl) Key() string { return p.Container + "#" + p.Name }

func (p *TypeParamDecl) SetBounds(load func() ([]Type, error)) {
	p.bounds = Deferred(p.Key()+" bounds", load)
}

// Bounds returns the declared upper bounds; empty means Object.
func (p *TypeParamDecl) Bounds() ([]Type, error) { return p.bounds.Get() }

// Object returns the implicit bound of an unbounded parameter.
func (p *TypeParamDecl) Object() (*Reference, error) {
	if p.Solver == nil {
		return nil, NewUnresolvedNameError(ObjectName, "bound of "+p.Name)
	}
	obj, err := p.Solver.SolveType(ObjectName)
	if err != nil {
		return nil, err
	}
	return &Reference{Decl: obj}, nil
}

// Callable holds what methods and constructors have in common.
type Callable struct {
	Name       string
	Flags      Flags
	Access     Access
	Declaring  *TypeDecl
	TypeParams []*TypeParamDecl
	Params     []*ParamDecl
	Node       *ast.Node
}

// MethodLike is implemented by *MethodDecl and *ConstructorDecl.
type MethodLike interface {
	Decl
	AsCallable() *Callable
}

func (c *Callable) AsCallable() *Callable { return c }

func (c *Callable) IsStatic() bool   { return c.Flags.Has(FlagStatic) }
func (c *Callable) IsAbstract() bool { return c.Flags.Has(FlagAbstract) }

func (c *Callable) IsVariadic() bool {
	return len(c.Params) > 0 && c.Params[len(c.Params)-1].Variadic
}

func (c *Callable) AddParam(p *ParamDecl) {
	p.Index = len(c.Params)
	p.Owner = c
	c.Params = append(c.Params, p)
}

func (c *Callable) TypeParam(name string) *TypeParamDecl {
	p, _ := utils.Find(c.TypeParams, func(p *TypeParamDecl) bool { return p.Name == name })
	return p
}

// TypeParamContainer names the container used for the type parameters of a callable.
func TypeParamContainer(declaring, name string, arity int) string {
	return declaring + "." + name + "/" + strconv.Itoa(arity)
}

func (c *Callable) ParamTypes() ([]Type, error) {
	out := make([]Type, 0, len(c.Params))
	for _, p := range c.Params {
		t, err := p.Type()
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, nil
}

// Signature is the name followed by the described parameter types. Parameters whose type cannot be
// resolved print as "?".
func (c *Callable) Signature() string {
	return c.Name + "(" + utils.MapJoin(c.Params, func(p *ParamDecl) string {
		t, err := p.Type()
		if err != nil {
			return "?"
		}
		return t.Describe()
	}, ", ") + ")"
}

// ErasedSignature identifies overriding methods: name plus erased parameter types.
func (c *Callable) ErasedSignature() (string, error) {
	types, err := c.ParamTypes()
	if err != nil {
		return "", err
	}
	parts := make([]string, 0, len(types))
	for _, t := range types {
		e, err := Erase(t)
		if err != nil {
			return "", err
		}
		parts = append(parts, e.Describe())
	}
	return c.Name + "(" + strings.Join(parts, ", ") + ")", nil
}

func (c *Callable) describe() string {
	if c.Declaring == nil {
		return c.Signature()
	}
	return c.Declaring.QualifiedName + "." + c.Signature()
}

type MethodDecl struct {
	Callable
	ret *Lazy[Type]
}

func NewMethodDecl(name string, flags Flags) *MethodDecl {
	return &MethodDecl{Callable: Callable{Name: name, Flags: flags, Access: AccessPublic}}
}

func (m *MethodDecl) DeclName() string { return m.Name }
func (m *MethodDecl) Describe() string { return m.describe() }
func (*MethodDecl) isDecl()            {}

func (m *MethodDecl) SetReturnType(load func() (Type, error)) {
	m.ret = Deferred(m.Name+" return type", load)
}

func (m *MethodDecl) ReturnType() (Type, error) {
	if m.ret == nil {
		return Void{}, nil
	}
	return m.ret.Get()
}

type ConstructorDecl struct {
	Callable
}

func NewConstructorDecl(name string, flags Flags) *ConstructorDecl {
	return &ConstructorDecl{Callable: Callable{Name: name, Flags: flags, Access: AccessPublic}}
}

func (c *ConstructorDecl) DeclName() string { return c.Name }
func (c *ConstructorDecl) Describe() string { return c.describe() }
func (*ConstructorDecl) isDecl()            {}

type ParamDecl struct {
	Name     string
	Index    int
	Variadic bool
	Owner    *Callable
	Node     *ast.Node
	typ      *Lazy[Type]
}

// NewParamDecl creates a parameter; for variadic parameters load returns the array type.
func NewParamDecl(name string, variadic bool, load func() (Type, error)) *ParamDecl {
	return &ParamDecl{Name: name, Variadic: variadic, typ: Deferred(name+" parameter type", load)}
}

func (p *ParamDecl) DeclName() string { return p.Name }
func (p *ParamDecl) Describe() string { return p.Name }
func (*ParamDecl) isDecl()            {}

func (p *ParamDecl) Type() (Type, error) { return p.typ.Get() }

type FieldDecl struct {
	Name      string
	Flags     Flags
	Access    Access
	Declaring *TypeDecl
	Node      *ast.Node
	typ       *Lazy[Type]
}

func NewFieldDecl(name string, flags Flags, load func() (Type, error)) *FieldDecl {
	return &FieldDecl{Name: name, Flags: flags, Access: AccessPublic, typ: Deferred(name+" field type", load)}
}

func (f *FieldDecl) DeclName() string { return f.Name }

func (f *FieldDecl) Describe() string {
	if f.Declaring == nil {
		return f.Name
	}
	return f.Declaring.QualifiedName + "." + f.Name
}

func (*FieldDecl) isDecl() {}

func (f *FieldDecl) IsStatic() bool { return f.Flags.Has(FlagStatic) }

func (f *FieldDecl) Type() (Type, error) { return f.typ.Get() }

// VarDecl is a local variable, for-each variable or try resource declared in source.
type VarDecl struct {
	Name string
	Node *ast.Node
	typ  *Lazy[Type]
}

func NewVarDecl(name string, node *ast.Node, load func() (Type, error)) *VarDecl {
	return &VarDecl{Name: name, Node: node, typ: Deferred(name+" variable type", load)}
}

func (v *VarDecl) DeclName() string { return v.Name }
func (v *VarDecl) Describe() string { return v.Name }
func (*VarDecl) isDecl()            {}

func (v *VarDecl) Type() (Type, error) { return v.typ.Get() }

func IsTypeDecl(d Decl) bool {
	switch d.(type) {
	case *TypeDecl, *TypeParamDecl:
		return true
	}
	return false
}

func IsField(d Decl) bool { return utils.TryCast[*FieldDecl](d) }

func IsParameter(d Decl) bool { return utils.TryCast[*ParamDecl](d) }

func IsMethodLike(d Decl) bool {
	switch d.(type) {
	case *MethodDecl, *ConstructorDecl:
		return true
	}
	return false
}

// IsValue covers declarations that denote values: fields, parameters and variables.
func IsValue(d Decl) bool {
	switch d.(type) {
	case *FieldDecl, *ParamDecl, *VarDecl:
		return true
	}
	return false
}

// ValueType returns the declared type of a value declaration.
func ValueType(d Decl) (Type, error) {
	switch v := d.(type) {
	case *FieldDecl:
		return v.Type()
	case *ParamDecl:
		return v.Type()
	case *VarDecl:
		return v.Type()
	}
	return nil, NewTypeShapeError("value declaration", fmt.Sprintf("%T", d))
}
