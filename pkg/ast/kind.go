package ast

type Kind uint8

const (
	Invalid Kind = iota

	// CompilationUnit: Name package, Params imports, List type declarations.
	CompilationUnit
	// Import: Name qualified name; Mods ModStatic, ModOnDemand.
	Import
	// ClassDecl: Name, Mods, TypeArgs type parameters, Type superclass, Extra implemented interfaces,
	// List members.
	ClassDecl
	// InterfaceDecl: Name, Mods, TypeArgs type parameters, Extra extended interfaces, List members.
	InterfaceDecl
	// EnumDecl: Name, Mods, Extra implemented interfaces, Params constants, List members.
	EnumDecl
	// AnnotationDecl: Name, Mods, List members.
	AnnotationDecl
	// EnumConstant: Name, List arguments, Extra body members.
	EnumConstant
	// TypeParameter: Name, Extra bounds.
	TypeParameter
	// FieldDecl: Mods, Type, List variable declarators.
	FieldDecl
	// VarDeclarator: Name, Dims extra array dimensions, Expr initializer.
	VarDeclarator
	// MethodDecl: Name, Mods, TypeArgs type parameters, Type return type, Params, Extra throws, Body.
	MethodDecl
	// ConstructorDecl: Name, Mods, TypeArgs type parameters, Params, Extra throws, Body.
	ConstructorDecl
	// Parameter: Name, Mods (ModVarargs), Type (UnknownType for implicit lambda parameters).
	Parameter
	// InitializerBlock: Mods (ModStatic), Body.
	InitializerBlock

	// ClassType: Name simple identifier, Scope qualifier ClassType, TypeArgs, Mods (ModDiamond).
	ClassType
	// PrimitiveType: Name.
	PrimitiveType
	// ArrayType: Type component.
	ArrayType
	VoidType
	// WildcardType: Type bound, Op OpExtends / OpSuper / OpNone.
	WildcardType
	// UnknownType stands for the missing type of an implicitly typed lambda parameter.
	UnknownType

	// Block: List statements.
	Block
	// ExprStmt: Expr.
	ExprStmt
	// IfStmt: Expr condition, Body then, Else.
	IfStmt
	// WhileStmt: Expr condition, Body.
	WhileStmt
	// DoStmt: Body, Expr condition.
	DoStmt
	// ForStmt: Params initializers, Expr condition, Extra updates, Body.
	ForStmt
	// ForEachStmt: Scope variable (VarDeclExpr), Expr iterable, Body.
	ForEachStmt
	// ReturnStmt: Expr.
	ReturnStmt
	// ThrowStmt: Expr.
	ThrowStmt
	// BreakStmt: Name label.
	BreakStmt
	// ContinueStmt: Name label.
	ContinueStmt
	// LabeledStmt: Name label, Body.
	LabeledStmt
	// SwitchStmt: Expr selector, List SwitchCase entries.
	SwitchStmt
	// SwitchCase: Params labels (none for default), List statements.
	SwitchCase
	// TryStmt: Params resources (VarDeclExpr), Body try block, List catch clauses, Else finally block.
	TryStmt
	// CatchClause: Scope parameter, Body.
	CatchClause
	// ExplicitCtorCall: Mods (ModSuperCall), Scope qualifier, TypeArgs, List arguments.
	ExplicitCtorCall
	// LocalClassStmt: Body class declaration.
	LocalClassStmt
	EmptyStmt

	// NameExpr: Name identifier.
	NameExpr
	// FieldAccess: Scope, Name.
	FieldAccess
	// MethodCall: Scope (optional), Name, TypeArgs, List arguments.
	MethodCall
	// ObjectCreation: Scope outer instance (optional), Type created ClassType, TypeArgs, List arguments,
	// Extra anonymous body members (Mods ModAnonymous when a body is present).
	ObjectCreation
	// ArrayCreation: Type element type, Params dimension expressions, Dims levels, Expr initializer.
	ArrayCreation
	// ArrayInit: List values.
	ArrayInit
	// ArrayAccess: Scope array, Expr index.
	ArrayAccess
	// AssignExpr: Scope target, Expr value, Op (OpAssign or the compound operator).
	AssignExpr
	// BinaryExpr: Scope left, Expr right, Op.
	BinaryExpr
	// UnaryExpr: Expr operand, Op, Mods (ModPostfix).
	UnaryExpr
	// ConditionalExpr: Expr condition, Body then value, Else else value.
	ConditionalExpr
	// CastExpr: Type, Expr.
	CastExpr
	// InstanceOfExpr: Expr, Type.
	InstanceOfExpr
	// LambdaExpr: Params, Body block or Expr expression body.
	LambdaExpr
	// MethodRef: Scope (TypeExpr or expression), Name identifier, TypeArgs.
	MethodRef
	// TypeExpr: Type.
	TypeExpr
	// ThisExpr: Name optional qualifying class name.
	ThisExpr
	// SuperExpr: Name optional qualifying class name.
	SuperExpr
	// ClassLit: Type.
	ClassLit
	// ParenExpr: Expr.
	ParenExpr
	IntLit
	LongLit
	// DoubleLit: Mods ModFloat for float literals.
	DoubleLit
	CharLit
	StringLit
	BoolLit
	NullLit
	// VarDeclExpr: Mods, Type, List variable declarators.
	VarDeclExpr
)

var kindNames = [...]string{
	Invalid:          "Invalid",
	CompilationUnit:  "CompilationUnit",
	Import:           "Import",
	ClassDecl:        "ClassDecl",
	InterfaceDecl:    "InterfaceDecl",
	EnumDecl:         "EnumDecl",
	AnnotationDecl:   "AnnotationDecl",
	EnumConstant:     "EnumConstant",
	TypeParameter:    "TypeParameter",
	FieldDecl:        "FieldDecl",
	VarDeclarator:    "VarDeclarator",
	MethodDecl:       "MethodDecl",
	ConstructorDecl:  "ConstructorDecl",
	Parameter:        "Parameter",
	InitializerBlock: "InitializerBlock",
	ClassType:        "ClassType",
	PrimitiveType:    "PrimitiveType",
	ArrayType:        "ArrayType",
	VoidType:         "VoidType",
	WildcardType:     "WildcardType",
	UnknownType:      "UnknownType",
	Block:            "Block",
	ExprStmt:         "ExprStmt",
	IfStmt:           "IfStmt",
	WhileStmt:        "WhileStmt",
	DoStmt:           "DoStmt",
	ForStmt:          "ForStmt",
	ForEachStmt:      "ForEachStmt",
	ReturnStmt:       "ReturnStmt",
	ThrowStmt:        "ThrowStmt",
	BreakStmt:        "BreakStmt",
	ContinueStmt:     "ContinueStmt",
	LabeledStmt:      "LabeledStmt",
	SwitchStmt:       "SwitchStmt",
	SwitchCase:       "SwitchCase",
	TryStmt:          "TryStmt",
	CatchClause:      "CatchClause",
	ExplicitCtorCall: "ExplicitCtorCall",
	LocalClassStmt:   "LocalClassStmt",
	EmptyStmt:        "EmptyStmt",
	NameExpr:         "NameExpr",
	FieldAccess:      "FieldAccess",
	MethodCall:       "MethodCall",
	ObjectCreation:   "ObjectCreation",
	ArrayCreation:    "ArrayCreation",
	ArrayInit:        "ArrayInit",
	ArrayAccess:      "ArrayAccess",
	AssignExpr:       "AssignExpr",
	BinaryExpr:       "BinaryExpr",
	UnaryExpr:        "UnaryExpr",
	ConditionalExpr:  "ConditionalExpr",
	CastExpr:         "CastExpr",
	InstanceOfExpr:   "InstanceOfExpr",
	LambdaExpr:       "LambdaExpr",
	MethodRef:        "MethodRef",
	TypeExpr:         "TypeExpr",
	ThisExpr:         "ThisExpr",
	SuperExpr:        "SuperExpr",
	ClassLit:         "ClassLit",
	ParenExpr:        "ParenExpr",
	IntLit:           "IntLit",
	LongLit:          "LongLit",
	DoubleLit:        "DoubleLit",
	CharLit:          "CharLit",
	StringLit:        "StringLit",
	BoolLit:          "BoolLit",
	NullLit:          "NullLit",
	VarDeclExpr:      "VarDeclExpr",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Kind(?)"
}

func (k Kind) IsTypeDecl() bool {
	return k == ClassDecl || k == InterfaceDecl || k == EnumDecl || k == AnnotationDecl
}

func (k Kind) IsTypeNode() bool { return k >= ClassType && k <= UnknownType }

func (k Kind) IsStatement() bool { return k >= Block && k <= EmptyStmt }

func (k Kind) IsExpression() bool { return k >= NameExpr && k <= VarDeclExpr }

func (k Kind) IsLiteral() bool { return k >= IntLit && k <= NullLit }

func (k Kind) IsCallable() bool { return k == MethodDecl || k == ConstructorDecl }
