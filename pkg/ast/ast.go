// Package ast holds the immutable syntax tree consumed by the resolver.
//
// Nodes live in an arena owned by a Tree and are addressed by NodeID, their index in that arena.
// The index is stable for the lifetime of the tree and is what the resolver memoizes on.
package ast

import (
	"fmt"
)

type NodeID int32

// NoNode is the zero id, used for absent optional slots.
const NoNode NodeID = 0

type Position struct {
	Line   int
	Column int
}

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Line, p.Column) }

func (p Position) Before(o Position) bool {
	return p.Line < o.Line || (p.Line == o.Line && p.Column < o.Column)
}

type Range struct {
	Start Position
	End   Position
}

func (r Range) String() string { return r.Start.String() + "-" + r.End.String() }

// Key identifies a node across trees. It is comparable and used as a memoization key.
type Key struct {
	tree *Tree
	id   NodeID
}

func (k Key) ID() NodeID { return k.id }

type Modifiers uint32

const (
	ModPublic Modifiers = 1 << iota
	ModProtected
	ModPrivate
	ModStatic
	ModFinal
	ModAbstract
	ModDefault
	ModVarargs
	ModOnDemand  // import a.b.*
	ModDiamond   // new Foo<>()
	ModSuperCall // super(...) as opposed to this(...)
	ModPostfix   // x++ as opposed to ++x
	ModAnonymous // object creation carrying a class body
	ModFloat     // float literal, 1.0f
)

func (m Modifiers) Has(o Modifiers) bool { return m&o != 0 }

type Op uint8

const (
	OpNone Op = iota
	OpPlus
	OpMinus
	OpMul
	OpDiv
	OpRem
	OpShl
	OpShr
	OpUShr
	OpAnd
	OpOr
	OpXor
	OpLAnd
	OpLOr
	OpEq
	OpNe
	OpLt
	OpGt
	OpLe
	OpGe
	OpNot
	OpCompl
	OpInc
	OpDec
	OpAssign
	OpExtends
	OpSuper
)

var opStrings = map[Op]string{
	OpPlus: "+", OpMinus: "-", OpMul: "*", OpDiv: "/", OpRem: "%",
	OpShl: "<<", OpShr: ">>", OpUShr: ">>>", OpAnd: "&", OpOr: "|", OpXor: "^",
	OpLAnd: "&&", OpLOr: "||", OpEq: "==", OpNe: "!=", OpLt: "<", OpGt: ">", OpLe: "<=", OpGe: ">=",
	OpNot: "!", OpCompl: "~", OpInc: "++", OpDec: "--", OpAssign: "=", OpExtends: "extends", OpSuper: "super",
}

func (o Op) String() string { return opStrings[o] }

func (o Op) IsArithmetic() bool { return o >= OpPlus && o <= OpRem }

func (o Op) IsShift() bool { return o >= OpShl && o <= OpUShr }

func (o Op) IsBitwise() bool { return o >= OpAnd && o <= OpXor }

func (o Op) IsLogical() bool { return o == OpLAnd || o == OpLOr }

func (o Op) IsRelational() bool { return o >= OpEq && o <= OpGe }

// Node is one syntax element. The meaning of the slot fields depends on Kind and is documented on
// each Kind constant. Slots that a kind does not use are NoNode / nil.
type Node struct {
	ID     NodeID
	Kind   Kind
	Parent NodeID
	Range  Range
	Name   string // identifier, qualified name or literal text
	Op     Op
	Mods   Modifiers
	Dims   int

	Scope    NodeID
	Type     NodeID
	Expr     NodeID
	Body     NodeID
	Else     NodeID
	List     []NodeID
	Params   []NodeID
	TypeArgs []NodeID
	Extra    []NodeID

	children []NodeID
	tree     *Tree
}

func (n *Node) Tree() *Tree { return n.tree }

func (n *Node) Key() Key { return Key{tree: n.tree, id: n.ID} }

func (n *Node) Get(id NodeID) *Node { return n.tree.Node(id) }

func (n *Node) ParentNode() *Node { return n.tree.Node(n.Parent) }

func (n *Node) ScopeNode() *Node { return n.tree.Node(n.Scope) }

func (n *Node) TypeNode() *Node { return n.tree.Node(n.Type) }

func (n *Node) ExprNode() *Node { return n.tree.Node(n.Expr) }

func (n *Node) BodyNode() *Node { return n.tree.Node(n.Body) }

func (n *Node) ElseNode() *Node { return n.tree.Node(n.Else) }

func (n *Node) ListNodes() []*Node { return n.tree.Nodes(n.List) }

func (n *Node) ParamNodes() []*Node { return n.tree.Nodes(n.Params) }

func (n *Node) TypeArgNodes() []*Node { return n.tree.Nodes(n.TypeArgs) }

func (n *Node) ExtraNodes() []*Node { return n.tree.Nodes(n.Extra) }

// Children returns the direct children in source order.
func (n *Node) Children() []*Node { return n.tree.Nodes(n.children) }

// Left and Right name the operands of binary and assignment expressions.
func (n *Node) Left() *Node { return n.ScopeNode() }

func (n *Node) Right() *Node { return n.ExprNode() }

// Ancestor returns the nearest enclosing node (excluding n) whose kind is one of kinds.
func (n *Node) Ancestor(kinds ...Kind) *Node {
	for p := n.ParentNode(); p != nil; p = p.ParentNode() {
		for _, k := range kinds {
			if p.Kind == k {
				return p
			}
		}
	}
	return nil
}

// IsWithin reports whether n is other or one of its descendants.
func (n *Node) IsWithin(other *Node) bool {
	if other == nil || n.tree != other.tree {
		return false
	}
	for p := n; p != nil; p = p.ParentNode() {
		if p.ID == other.ID {
			return true
		}
	}
	return false
}

// ChildIndex returns the position of child in ids, or -1.
func ChildIndex(ids []NodeID, child NodeID) int {
	for i, id := range ids {
		if id == child {
			return i
		}
	}
	return -1
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Name != "" {
		return fmt.Sprintf("%s(%s)@%s", n.Kind, n.Name, n.Range.Start)
	}
	return fmt.Sprintf("%s@%s", n.Kind, n.Range.Start)
}

type Tree struct {
	File  string
	nodes []Node
	root  NodeID
}

// Node returns the node for id, or nil for NoNode and out of range ids.
func (t *Tree) Node(id NodeID) *Node {
	if t == nil || id <= NoNode || int(id) >= len(t.nodes) {
		return nil
	}
	return &t.nodes[id]
}

func (t *Tree) Nodes(ids []NodeID) []*Node {
	out := make([]*Node, 0, len(ids))
	for _, id := range ids {
		if n := t.Node(id); n != nil {
			out = append(out, n)
		}
	}
	return out
}

func (t *Tree) Root() *Node { return t.Node(t.root) }

// Len is the number of nodes in the tree.
func (t *Tree) Len() int { return len(t.nodes) - 1 }

// Inspect walks the tree rooted at n in source order. Children are skipped when f returns false.
func Inspect(n *Node, f func(*Node) bool) {
	if n == nil || !f(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, f)
	}
}

// Find returns the first node in source order matching pred.
func Find(n *Node, pred func(*Node) bool) *Node {
	var found *Node
	Inspect(n, func(c *Node) bool {
		if found != nil {
			return false
		}
		if pred(c) {
			found = c
			return false
		}
		return true
	})
	return found
}
