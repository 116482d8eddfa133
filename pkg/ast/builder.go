package ast

import (
	"strconv"
	"strings"
)

// Builder assembles a Tree bottom-up. Children are created first; creating a parent adopts them and
// fixes their Parent links. Build freezes the arena.
type Builder struct {
	tree   *Tree
	cursor Position
}

func NewBuilder(file string) *Builder {
	return &Builder{
		tree:   &Tree{File: file, nodes: make([]Node, 1, 64)},
		cursor: Position{Line: 1, Column: 1},
	}
}

// At moves the position assigned to the nodes created next.
func (b *Builder) At(line, column int) *Builder {
	b.cursor = Position{Line: line, Column: column}
	return b
}

// Build freezes the tree with root as its root node.
func (b *Builder) Build(root NodeID) *Tree {
	t := b.tree
	t.root = root
	for i := range t.nodes {
		t.nodes[i].tree = t
	}
	b.tree = nil
	return t
}

// Node gives access to a node under construction, mostly for tests that need its id-derived data.
func (b *Builder) Node(id NodeID) *Node { return &b.tree.nodes[id] }

func (b *Builder) add(n Node, children ...NodeID) NodeID {
	id := NodeID(len(b.tree.nodes))
	n.ID = id
	n.Range = Range{Start: b.cursor, End: b.cursor}
	for _, c := range children {
		if c == NoNode {
			continue
		}
		child := &b.tree.nodes[c]
		child.Parent = id
		n.children = append(n.children, c)
		if child.Range.Start.Before(n.Range.Start) {
			n.Range.Start = child.Range.Start
		}
		if n.Range.End.Before(child.Range.End) {
			n.Range.End = child.Range.End
		}
	}
	b.tree.nodes = append(b.tree.nodes, n)
	return id
}

func cat(groups ...[]NodeID) []NodeID {
	var out []NodeID
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func one(ids ...NodeID) []NodeID { return ids }

// Declarations

func (b *Builder) CompilationUnit(pkg string, imports []NodeID, types ...NodeID) NodeID {
	return b.add(Node{Kind: CompilationUnit, Name: pkg, Params: imports, List: types}, cat(imports, types)...)
}

func (b *Builder) Import(name string, mods Modifiers) NodeID {
	return b.add(Node{Kind: Import, Name: name, Mods: mods})
}

func (b *Builder) Class(mods Modifiers, name string, typeParams []NodeID, extends NodeID, implements []NodeID, members ...NodeID) NodeID {
	return b.add(Node{Kind: ClassDecl, Name: name, Mods: mods, TypeArgs: typeParams, Type: extends, Extra: implements, List: members},
		cat(typeParams, one(extends), implements, members)...)
}

func (b *Builder) Interface(mods Modifiers, name string, typeParams []NodeID, extends []NodeID, members ...NodeID) NodeID {
	return b.add(Node{Kind: InterfaceDecl, Name: name, Mods: mods, TypeArgs: typeParams, Extra: extends, List: members},
		cat(typeParams, extends, members)...)
}

func (b *Builder) Enum(mods Modifiers, name string, implements []NodeID, constants []NodeID, members ...NodeID) NodeID {
	return b.add(Node{Kind: EnumDecl, Name: name, Mods: mods, Extra: implements, Params: constants, List: members},
		cat(implements, constants, members)...)
}

func (b *Builder) Annotation(mods Modifiers, name string, members ...NodeID) NodeID {
	return b.add(Node{Kind: AnnotationDecl, Name: name, Mods: mods, List: members}, members...)
}

func (b *Builder) EnumConstant(name string, args []NodeID, body ...NodeID) NodeID {
	return b.add(Node{Kind: EnumConstant, Name: name, List: args, Extra: body}, cat(args, body)...)
}

func (b *Builder) TypeParam(name string, bounds ...NodeID) NodeID {
	return b.add(Node{Kind: TypeParameter, Name: name, Extra: bounds}, bounds...)
}

func (b *Builder) FieldDecl(mods Modifiers, typ NodeID, declarators ...NodeID) NodeID {
	return b.add(Node{Kind: FieldDecl, Mods: mods, Type: typ, List: declarators}, cat(one(typ), declarators)...)
}

// Var is a variable declarator; init may be NoNode.
func (b *Builder) Var(name string, init NodeID) NodeID {
	return b.add(Node{Kind: VarDeclarator, Name: name, Expr: init}, init)
}

func (b *Builder) ArrayVar(name string, dims int, init NodeID) NodeID {
	return b.add(Node{Kind: VarDeclarator, Name: name, Dims: dims, Expr: init}, init)
}

func (b *Builder) Method(mods Modifiers, typeParams []NodeID, ret NodeID, name string, params []NodeID, body NodeID) NodeID {
	return b.add(Node{Kind: MethodDecl, Name: name, Mods: mods, TypeArgs: typeParams, Type: ret, Params: params, Body: body},
		cat(typeParams, one(ret), params, one(body))...)
}

func (b *Builder) Constructor(mods Modifiers, name string, params []NodeID, body NodeID) NodeID {
	return b.add(Node{Kind: ConstructorDecl, Name: name, Mods: mods, Params: params, Body: body}, cat(params, one(body))...)
}

func (b *Builder) Param(typ NodeID, name string) NodeID {
	return b.add(Node{Kind: Parameter, Name: name, Type: typ}, typ)
}

func (b *Builder) VarargParam(typ NodeID, name string) NodeID {
	return b.add(Node{Kind: Parameter, Name: name, Type: typ, Mods: ModVarargs}, typ)
}

// LambdaParam is an implicitly typed lambda parameter.
func (b *Builder) LambdaParam(name string) NodeID {
	return b.Param(b.add(Node{Kind: UnknownType}), name)
}

func (b *Builder) Initializer(static bool, body NodeID) NodeID {
	var mods Modifiers
	if static {
		mods = ModStatic
	}
	return b.add(Node{Kind: InitializerBlock, Mods: mods, Body: body}, body)
}

// Types

// ClassType builds a possibly qualified class type. Type arguments attach to the last segment.
func (b *Builder) ClassType(name string, args ...NodeID) NodeID {
	parts := strings.Split(name, ".")
	scope := NoNode
	for _, p := range parts[:len(parts)-1] {
		scope = b.add(Node{Kind: ClassType, Name: p, Scope: scope}, scope)
	}
	return b.add(Node{Kind: ClassType, Name: parts[len(parts)-1], Scope: scope, TypeArgs: args}, cat(one(scope), args)...)
}

// Diamond is the created type of `new Name<>()`.
func (b *Builder) Diamond(name string) NodeID {
	id := b.ClassType(name)
	b.tree.nodes[id].Mods |= ModDiamond
	return id
}

func (b *Builder) Prim(name string) NodeID {
	return b.add(Node{Kind: PrimitiveType, Name: name})
}

func (b *Builder) ArrayOf(elem NodeID) NodeID {
	return b.add(Node{Kind: ArrayType, Type: elem}, elem)
}

func (b *Builder) Void() NodeID { return b.add(Node{Kind: VoidType}) }

func (b *Builder) Wildcard() NodeID { return b.add(Node{Kind: WildcardType}) }

func (b *Builder) WildcardExtends(bound NodeID) NodeID {
	return b.add(Node{Kind: WildcardType, Op: OpExtends, Type: bound}, bound)
}

func (b *Builder) WildcardSuper(bound NodeID) NodeID {
	return b.add(Node{Kind: WildcardType, Op: OpSuper, Type: bound}, bound)
}

// Statements

func (b *Builder) Block(stmts ...NodeID) NodeID {
	return b.add(Node{Kind: Block, List: stmts}, stmts...)
}

func (b *Builder) ExprStmt(expr NodeID) NodeID {
	return b.add(Node{Kind: ExprStmt, Expr: expr}, expr)
}

func (b *Builder) VarDeclExpr(mods Modifiers, typ NodeID, declarators ...NodeID) NodeID {
	return b.add(Node{Kind: VarDeclExpr, Mods: mods, Type: typ, List: declarators}, cat(one(typ), declarators)...)
}

// Local is a local variable declaration statement.
func (b *Builder) Local(typ NodeID, declarators ...NodeID) NodeID {
	return b.ExprStmt(b.VarDeclExpr(0, typ, declarators...))
}

func (b *Builder) If(cond, then, els NodeID) NodeID {
	return b.add(Node{Kind: IfStmt, Expr: cond, Body: then, Else: els}, cond, then, els)
}

func (b *Builder) While(cond, body NodeID) NodeID {
	return b.add(Node{Kind: WhileStmt, Expr: cond, Body: body}, cond, body)
}

func (b *Builder) Do(body, cond NodeID) NodeID {
	return b.add(Node{Kind: DoStmt, Expr: cond, Body: body}, body, cond)
}

func (b *Builder) For(init []NodeID, cond NodeID, update []NodeID, body NodeID) NodeID {
	return b.add(Node{Kind: ForStmt, Params: init, Expr: cond, Extra: update, Body: body}, cat(init, one(cond), update, one(body))...)
}

// ForEach takes the loop variable as a VarDeclExpr.
func (b *Builder) ForEach(variable, iterable, body NodeID) NodeID {
	return b.add(Node{Kind: ForEachStmt, Scope: variable, Expr: iterable, Body: body}, variable, iterable, body)
}

func (b *Builder) Return(expr NodeID) NodeID {
	return b.add(Node{Kind: ReturnStmt, Expr: expr}, expr)
}

func (b *Builder) Throw(expr NodeID) NodeID {
	return b.add(Node{Kind: ThrowStmt, Expr: expr}, expr)
}

func (b *Builder) Break(label string) NodeID { return b.add(Node{Kind: BreakStmt, Name: label}) }

func (b *Builder) Continue(label string) NodeID {
	return b.add(Node{Kind: ContinueStmt, Name: label})
}

func (b *Builder) Labeled(label string, stmt NodeID) NodeID {
	return b.add(Node{Kind: LabeledStmt, Name: label, Body: stmt}, stmt)
}

func (b *Builder) Empty() NodeID { return b.add(Node{Kind: EmptyStmt}) }

func (b *Builder) Switch(selector NodeID, cases ...NodeID) NodeID {
	return b.add(Node{Kind: SwitchStmt, Expr: selector, List: cases}, cat(one(selector), cases)...)
}

// Case builds a switch entry; nil labels make it the default entry.
func (b *Builder) Case(labels []NodeID, stmts ...NodeID) NodeID {
	return b.add(Node{Kind: SwitchCase, Params: labels, List: stmts}, cat(labels, stmts)...)
}

func (b *Builder) Try(resources []NodeID, block NodeID, catches []NodeID, finally NodeID) NodeID {
	return b.add(Node{Kind: TryStmt, Params: resources, Body: block, List: catches, Else: finally},
		cat(resources, one(block), catches, one(finally))...)
}

func (b *Builder) Catch(param, body NodeID) NodeID {
	return b.add(Node{Kind: CatchClause, Scope: param, Body: body}, param, body)
}

func (b *Builder) ThisCall(args ...NodeID) NodeID {
	return b.add(Node{Kind: ExplicitCtorCall, List: args}, args...)
}

func (b *Builder) SuperCall(args ...NodeID) NodeID {
	return b.add(Node{Kind: ExplicitCtorCall, Mods: ModSuperCall, List: args}, args...)
}

func (b *Builder) LocalClass(decl NodeID) NodeID {
	return b.add(Node{Kind: LocalClassStmt, Body: decl}, decl)
}

// Expressions

func (b *Builder) Name(id string) NodeID { return b.add(Node{Kind: NameExpr, Name: id}) }

// QualifiedName builds a.b.c as nested field accesses over a name expression.
func (b *Builder) QualifiedName(name string) NodeID {
	parts := strings.Split(name, ".")
	expr := b.Name(parts[0])
	for _, p := range parts[1:] {
		expr = b.FieldAccess(expr, p)
	}
	return expr
}

func (b *Builder) FieldAccess(scope NodeID, name string) NodeID {
	return b.add(Node{Kind: FieldAccess, Scope: scope, Name: name}, scope)
}

// Call builds a method call; scope may be NoNode.
func (b *Builder) Call(scope NodeID, name string, args ...NodeID) NodeID {
	return b.add(Node{Kind: MethodCall, Scope: scope, Name: name, List: args}, cat(one(scope), args)...)
}

// CallT is a call with explicit type arguments: scope.<T>name(args).
func (b *Builder) CallT(scope NodeID, typeArgs []NodeID, name string, args ...NodeID) NodeID {
	return b.add(Node{Kind: MethodCall, Scope: scope, Name: name, TypeArgs: typeArgs, List: args},
		cat(one(scope), typeArgs, args)...)
}

func (b *Builder) New(typ NodeID, args ...NodeID) NodeID {
	return b.add(Node{Kind: ObjectCreation, Type: typ, List: args}, cat(one(typ), args)...)
}

// NewAnon creates an anonymous class instance with the given body members.
func (b *Builder) NewAnon(typ NodeID, args []NodeID, members ...NodeID) NodeID {
	return b.add(Node{Kind: ObjectCreation, Type: typ, List: args, Extra: members, Mods: ModAnonymous},
		cat(one(typ), args, members)...)
}

func (b *Builder) NewArray(elem NodeID, dims []NodeID, levels int, init NodeID) NodeID {
	if levels < len(dims) {
		levels = len(dims)
	}
	return b.add(Node{Kind: ArrayCreation, Type: elem, Params: dims, Dims: levels, Expr: init}, cat(one(elem), dims, one(init))...)
}

func (b *Builder) ArrayInit(values ...NodeID) NodeID {
	return b.add(Node{Kind: ArrayInit, List: values}, values...)
}

func (b *Builder) Index(array, index NodeID) NodeID {
	return b.add(Node{Kind: ArrayAccess, Scope: array, Expr: index}, array, index)
}

func (b *Builder) Assign(target, value NodeID) NodeID {
	return b.AssignOp(OpAssign, target, value)
}

func (b *Builder) AssignOp(op Op, target, value NodeID) NodeID {
	return b.add(Node{Kind: AssignExpr, Op: op, Scope: target, Expr: value}, target, value)
}

func (b *Builder) Binary(op Op, left, right NodeID) NodeID {
	return b.add(Node{Kind: BinaryExpr, Op: op, Scope: left, Expr: right}, left, right)
}

func (b *Builder) Unary(op Op, operand NodeID) NodeID {
	return b.add(Node{Kind: UnaryExpr, Op: op, Expr: operand}, operand)
}

func (b *Builder) Postfix(op Op, operand NodeID) NodeID {
	return b.add(Node{Kind: UnaryExpr, Op: op, Expr: operand, Mods: ModPostfix}, operand)
}

func (b *Builder) Cond(cond, then, els NodeID) NodeID {
	return b.add(Node{Kind: ConditionalExpr, Expr: cond, Body: then, Else: els}, cond, then, els)
}

func (b *Builder) Cast(typ, expr NodeID) NodeID {
	return b.add(Node{Kind: CastExpr, Type: typ, Expr: expr}, typ, expr)
}

func (b *Builder) InstanceOf(expr, typ NodeID) NodeID {
	return b.add(Node{Kind: InstanceOfExpr, Expr: expr, Type: typ}, expr, typ)
}

// Lambda builds a lambda; body is either a Block or an expression.
func (b *Builder) Lambda(params []NodeID, body NodeID) NodeID {
	n := Node{Kind: LambdaExpr, Params: params}
	if b.tree.nodes[body].Kind == Block {
		n.Body = body
	} else {
		n.Expr = body
	}
	return b.add(n, cat(params, one(body))...)
}

func (b *Builder) MethodRef(scope NodeID, name string) NodeID {
	return b.add(Node{Kind: MethodRef, Scope: scope, Name: name}, scope)
}

func (b *Builder) TypeExpr(typ NodeID) NodeID {
	return b.add(Node{Kind: TypeExpr, Type: typ}, typ)
}

func (b *Builder) This() NodeID { return b.add(Node{Kind: ThisExpr}) }

func (b *Builder) QualifiedThis(class string) NodeID {
	return b.add(Node{Kind: ThisExpr, Name: class})
}

func (b *Builder) Super() NodeID { return b.add(Node{Kind: SuperExpr}) }

func (b *Builder) ClassLit(typ NodeID) NodeID {
	return b.add(Node{Kind: ClassLit, Type: typ}, typ)
}

func (b *Builder) Paren(expr NodeID) NodeID {
	return b.add(Node{Kind: ParenExpr, Expr: expr}, expr)
}

func (b *Builder) Int(v int) NodeID {
	return b.add(Node{Kind: IntLit, Name: strconv.Itoa(v)})
}

func (b *Builder) Long(v int64) NodeID {
	return b.add(Node{Kind: LongLit, Name: strconv.FormatInt(v, 10) + "L"})
}

func (b *Builder) Double(text string) NodeID {
	var mods Modifiers
	if strings.HasSuffix(text, "f") || strings.HasSuffix(text, "F") {
		mods = ModFloat
	}
	return b.add(Node{Kind: DoubleLit, Name: text, Mods: mods})
}

func (b *Builder) Char(c rune) NodeID {
	return b.add(Node{Kind: CharLit, Name: string(c)})
}

func (b *Builder) String(s string) NodeID {
	return b.add(Node{Kind: StringLit, Name: s})
}

func (b *Builder) Bool(v bool) NodeID {
	return b.add(Node{Kind: BoolLit, Name: strconv.FormatBool(v)})
}

func (b *Builder) Null() NodeID { return b.add(Node{Kind: NullLit}) }
