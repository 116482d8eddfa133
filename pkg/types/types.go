package types

import (
	"fmt"
	"strings"

	"jsolve/pkg/utils"
)

const (
	ObjectName       = "java.lang.Object"
	StringName       = "java.lang.String"
	ClassName        = "java.lang.Class"
	EnumName         = "java.lang.Enum"
	CloneableName    = "java.lang.Cloneable"
	SerializableName = "java.io.Serializable"
)

// Type is a closed set of variants. Only this package implements it.
type Type interface {
	// Describe returns the canonical textual form.
	Describe() string
	String() string
	// IsAssignableBy reports whether a value of type other can be assigned to a variable of this type.
	// The error is set when an ancestor closure could not be computed.
	IsAssignableBy(other Type) (bool, error)
	isType()
}

type PrimitiveKind uint8

const (
	Boolean PrimitiveKind = iota + 1
	Char
	Byte
	Short
	Int
	Long
	Float
	Double
)

var primitiveNames = map[PrimitiveKind]string{
	Boolean: "boolean", Char: "char", Byte: "byte", Short: "short",
	Int: "int", Long: "long", Float: "float", Double: "double",
}

var boxNames = map[PrimitiveKind]string{
	Boolean: "java.lang.Boolean", Char: "java.lang.Character", Byte: "java.lang.Byte", Short: "java.lang.Short",
	Int: "java.lang.Integer", Long: "java.lang.Long", Float: "java.lang.Float", Double: "java.lang.Double",
}

func (k PrimitiveKind) String() string { return primitiveNames[k] }

// BoxName returns the qualified name of the reference type boxing k.
func BoxName(k PrimitiveKind) string { return boxNames[k] }

// UnboxedKind returns the primitive kind boxed by the given qualified name.
func UnboxedKind(qualifiedName string) (PrimitiveKind, bool) {
	for k, name := range boxNames {
		if name == qualifiedName {
			return k, true
		}
	}
	return 0, false
}

// PrimitiveByName maps a keyword such as "int" to its primitive type.
func PrimitiveByName(name string) (Primitive, bool) {
	for k, n := range primitiveNames {
		if n == name {
			return Primitive{Kind: k}, true
		}
	}
	return Primitive{}, false
}

var (
	BooleanType = Primitive{Kind: Boolean}
	CharType    = Primitive{Kind: Char}
	ByteType    = Primitive{Kind: Byte}
	ShortType   = Primitive{Kind: Short}
	IntType     = Primitive{Kind: Int}
	LongType    = Primitive{Kind: Long}
	FloatType   = Primitive{Kind: Float}
	DoubleType  = Primitive{Kind: Double}
)

type Primitive struct{ Kind PrimitiveKind }

func (p Primitive) Describe() string { return p.Kind.String() }
func (p Primitive) String() string   { return p.Describe() }
func (Primitive) isType()            {}

// IsNumeric is false for boolean only.
func (p Primitive) IsNumeric() bool { return p.Kind != Boolean }

// rank orders numeric kinds by width for binary numeric promotion.
func (p Primitive) rank() int {
	switch p.Kind {
	case Byte:
		return 1
	case Short, Char:
		return 2
	case Int:
		return 3
	case Long:
		return 4
	case Float:
		return 5
	case Double:
		return 6
	default:
		return 0
	}
}

// Wider returns the wider of two numeric primitives.
func Wider(a, b Primitive) Primitive {
	return utils.Ternary(b.rank() > a.rank(), b, a)
}

type Void struct{}

func (Void) Describe() string { return "void" }
func (v Void) String() string { return v.Describe() }
func (Void) isType()          {}

type Null struct{}

func (Null) Describe() string { return "null" }
func (n Null) String() string { return n.Describe() }
func (Null) isType()          {}

type Array struct{ Elem Type }

func (a Array) Describe() string { return a.Elem.Describe() + "[]" }
func (a Array) String() string   { return a.Describe() }
func (Array) isType()            {}

// ArrayOf wraps t in dims array levels.
func ArrayOf(t Type, dims int) Type {
	for i := 0; i < dims; i++ {
		t = Array{Elem: t}
	}
	return t
}

// Reference is a class, interface or enum type. Args is empty for a raw or non-generic use and
// otherwise matches the arity of Decl.TypeParams.
type Reference struct {
	Decl *TypeDecl
	Args []Type
}

// NewReference panics when the number of type arguments does not match the declaration.
func NewReference(decl *TypeDecl, args ...Type) *Reference {
	if len(args) != 0 && len(args) != len(decl.TypeParams) {
		panic(fmt.Sprintf("%s expects %d type arguments, got %d", decl.QualifiedName, len(decl.TypeParams), len(args)))
	}
	return &Reference{Decl: decl, Args: args}
}

// GenericReference is the reference to decl parameterized by its own type variables.
func GenericReference(decl *TypeDecl) *Reference {
	args := utils.Map(decl.TypeParams, func(p *TypeParamDecl) Type { return TypeVariable{Decl: p} })
	return &Reference{Decl: decl, Args: args}
}

func (r *Reference) QualifiedName() string { return r.Decl.QualifiedName }

func (r *Reference) Describe() string {
	if len(r.Args) == 0 {
		return r.Decl.QualifiedName
	}
	return r.Decl.QualifiedName + "<" + utils.MapJoin(r.Args, Type.Describe, ", ") + ">"
}

func (r *Reference) String() string { return r.Describe() }
func (*Reference) isType()          {}

// IsRaw reports a generic declaration used without type arguments.
func (r *Reference) IsRaw() bool { return len(r.Args) == 0 && len(r.Decl.TypeParams) > 0 }

func (r *Reference) IsObject() bool { return r.Decl.QualifiedName == ObjectName }

type TypeVariable struct{ Decl *TypeParamDecl }

func (v TypeVariable) Describe() string { return v.Decl.Name }
func (v TypeVariable) String() string   { return v.Describe() }
func (TypeVariable) isType()            {}

type WildcardKind uint8

const (
	Unbounded WildcardKind = iota
	Extends
	Super
)

type Wildcard struct {
	Kind  WildcardKind
	Bound Type
}

func (w Wildcard) Describe() string {
	switch w.Kind {
	case Extends:
		return "? extends " + w.Bound.Describe()
	case Super:
		return "? super " + w.Bound.Describe()
	default:
		return "?"
	}
}

func (w Wildcard) String() string { return w.Describe() }
func (Wildcard) isType()          {}

// InferenceVariable stands for one type parameter during an inference session. The engine in
// package infer owns its equivalence set.
type InferenceVariable struct {
	ID          int
	Param       *TypeParamDecl
	Equivalents []Type
}

func (v *InferenceVariable) Describe() string { return fmt.Sprintf("IV#%d", v.ID) }
func (v *InferenceVariable) String() string   { return v.Describe() }
func (*InferenceVariable) isType()            {}

// Register adds t to the equivalence set unless it is already there.
func (v *InferenceVariable) Register(t Type) {
	for _, e := range v.Equivalents {
		if Equal(e, t) {
			return
		}
	}
	v.Equivalents = append(v.Equivalents, t)
}

// LambdaConstraint is the type of a lambda parameter whose target type is only known as a bound.
type LambdaConstraint struct{ Bound Type }

func (c LambdaConstraint) Describe() string { return "LambdaConstraint(" + c.Bound.Describe() + ")" }
func (c LambdaConstraint) String() string   { return c.Describe() }
func (LambdaConstraint) isType()            {}

// LambdaPlaceholder is the opaque argument type used for lambdas and method references before the
// enclosing call is resolved. Arity is the number of lambda parameters, or -1 when unknown.
type LambdaPlaceholder struct {
	Pos   int
	Arity int
}

func (p LambdaPlaceholder) Describe() string { return fmt.Sprintf("LambdaPlaceholder(%d)", p.Pos) }
func (p LambdaPlaceholder) String() string   { return p.Describe() }
func (LambdaPlaceholder) isType()            {}

// Equal is structural equality: qualified name and type arguments for references, declaring
// container and name for type variables, identity for inference variables.
func Equal(a, b Type) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Primitive:
		y, ok := b.(Primitive)
		return ok && x.Kind == y.Kind
	case Void:
		_, ok := b.(Void)
		return ok
	case Null:
		_, ok := b.(Null)
		return ok
	case Array:
		y, ok := b.(Array)
		return ok && Equal(x.Elem, y.Elem)
	case *Reference:
		y, ok := b.(*Reference)
		if !ok || x.QualifiedName() != y.QualifiedName() || len(x.Args) != len(y.Args) {
			return false
		}
		for i := range x.Args {
			if !Equal(x.Args[i], y.Args[i]) {
				return false
			}
		}
		return true
	case TypeVariable:
		y, ok := b.(TypeVariable)
		return ok && x.Decl.Key() == y.Decl.Key()
	case Wildcard:
		y, ok := b.(Wildcard)
		return ok && x.Kind == y.Kind && Equal(x.Bound, y.Bound)
	case *InferenceVariable:
		y, ok := b.(*InferenceVariable)
		return ok && x.ID == y.ID
	case LambdaConstraint:
		y, ok := b.(LambdaConstraint)
		return ok && Equal(x.Bound, y.Bound)
	case LambdaPlaceholder:
		y, ok := b.(LambdaPlaceholder)
		return ok && x.Pos == y.Pos
	}
	return false
}

// Describe is Type.Describe tolerating nil.
func Describe(t Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.Describe()
}

func IsPrimitive(t Type) bool { return utils.TryCast[Primitive](t) }

func IsReference(t Type) bool { return utils.TryCast[*Reference](t) }

func IsVoid(t Type) bool { return utils.TryCast[Void](t) }

func IsNull(t Type) bool { return utils.TryCast[Null](t) }

// IsReferenceLike covers every variant that denotes objects at run time.
func IsReferenceLike(t Type) bool {
	switch t.(type) {
	case *Reference, Array, TypeVariable, Wildcard, Null, LambdaConstraint:
		return true
	}
	return false
}

func shapeName(t Type) string {
	if t == nil {
		return "nil"
	}
	name := fmt.Sprintf("%T", t)
	return strings.TrimPrefix(strings.TrimPrefix(name, "*"), "types.")
}

func narrow[T Type](t Type, want string) (T, error) {
	v, ok := t.(T)
	if !ok {
		var zero T
		return zero, NewTypeShapeError(want, shapeName(t))
	}
	return v, nil
}

func AsReference(t Type) (*Reference, error) { return narrow[*Reference](t, "Reference") }

func AsArray(t Type) (Array, error) { return narrow[Array](t, "Array") }

func AsPrimitive(t Type) (Primitive, error) { return narrow[Primitive](t, "Primitive") }

func AsTypeVariable(t Type) (TypeVariable, error) { return narrow[TypeVariable](t, "TypeVariable") }

func AsWildcard(t Type) (Wildcard, error) { return narrow[Wildcard](t, "Wildcard") }

func AsInferenceVariable(t Type) (*InferenceVariable, error) {
	return narrow[*InferenceVariable](t, "InferenceVariable")
}

func AsLambdaConstraint(t Type) (LambdaConstraint, error) {
	return narrow[LambdaConstraint](t, "LambdaConstraint")
}
