package resolve

import (
	"strings"

	"jsolve/pkg/ast"
	"jsolve/pkg/overload"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

// Context is the lexical view from one node. from is the child through which a lookup reached
// node; it is nil where the lookup started and limits what node contributes to declarations that
// precede it.
type Context struct {
	s    *Session
	node *ast.Node
	from *ast.Node
}

// Value is a declaration denoting a value together with its type as seen from the lookup site.
type Value struct {
	Decl types.Decl
	Type types.Type
}

func (c *Context) Node() *ast.Node { return c.node }

// Parent returns the enclosing context, or nil above the compilation unit. Qualifiers of field
// accesses and method calls and the created type of an object creation skip their parent node.
func (c *Context) Parent() *Context {
	n, p := c.node, c.node.ParentNode()
	if p == nil {
		return nil
	}
	switch {
	case (p.Kind == ast.FieldAccess || p.Kind == ast.MethodCall) && p.Scope == n.ID,
		p.Kind == ast.ObjectCreation && p.Type == n.ID:
		n, p = p, p.ParentNode()
		if p == nil {
			return nil
		}
	}
	return &Context{s: c.s, node: p, from: n}
}

func (c *Context) describe() string {
	if tn := typeNodeOf(c.node); tn != nil {
		return c.s.declOf(tn).QualifiedName
	}
	return c.node.String()
}

// fromIn reports whether the lookup arrived through one of ids.
func (c *Context) fromIn(ids ...ast.NodeID) bool {
	return c.from != nil && ast.ChildIndex(ids, c.from.ID) >= 0
}

// inHeader reports whether the lookup arrived through the type parameters or supertypes of a type
// declaration, where members are not yet in scope.
func (c *Context) inHeader() bool {
	n := c.node
	if !n.Kind.IsTypeDecl() || c.from == nil {
		return false
	}
	return c.from.ID == n.Type || c.fromIn(n.TypeArgs...) || c.fromIn(n.Extra...)
}

// SolveSymbol finds the value declaration name refers to from this context.
func (c *Context) SolveSymbol(name string) (types.Decl, error) {
	v, err := c.solveSymbol(name, false)
	if err != nil {
		return nil, err
	}
	return v.Decl, nil
}

// SolveSymbolAsValue is SolveSymbol with the declaration's type. Fields are seen through the
// enclosing type that inherits them, lambda parameters get their inferred type.
func (c *Context) SolveSymbolAsValue(name string) (Value, error) {
	return c.solveSymbol(name, true)
}

func (c *Context) solveSymbol(name string, typed bool) (Value, error) {
	for cur := c; cur != nil; cur = cur.Parent() {
		d, via, err := cur.symbol(name)
		if err != nil {
			return Value{}, err
		}
		if d == nil {
			continue
		}
		if !typed {
			return Value{Decl: d}, nil
		}
		var t types.Type
		if f, ok := d.(*types.FieldDecl); ok && via != nil {
			t, err = via.FieldType(f)
		} else {
			t, err = types.ValueType(d)
		}
		if err != nil {
			return Value{}, err
		}
		return Value{Decl: d, Type: t}, nil
	}
	return Value{}, types.NewUnresolvedNameError(name, c.describe())
}

// symbol returns what this node alone declares under name. via is the reference a field was found
// through.
func (c *Context) symbol(name string) (types.Decl, *types.Reference, error) {
	n := c.node
	s := c.s
	switch n.Kind {
	case ast.Block:
		return s.localIn(n.ListNodes(), c.from, name), nil, nil
	case ast.SwitchCase:
		return s.localIn(n.ListNodes(), c.from, name), nil, nil
	case ast.SwitchStmt:
		if c.from == nil || !c.fromIn(n.List...) {
			return nil, nil, nil
		}
		cases := n.ListNodes()
		for i := ast.ChildIndex(n.List, c.from.ID) - 1; i >= 0; i-- {
			if d := s.localIn(cases[i].ListNodes(), nil, name); d != nil {
				return d, nil, nil
			}
		}
	case ast.VarDeclExpr:
		if c.fromIn(n.List...) {
			return s.declaratorIn(n, c.from, name), nil, nil
		}
	case ast.ForStmt:
		init := n.ParamNodes()
		if c.fromIn(n.Params...) {
			init = init[:ast.ChildIndex(n.Params, c.from.ID)]
		}
		return s.localIn(init, nil, name), nil, nil
	case ast.ForEachStmt:
		if c.from != nil && c.from.ID == n.Body {
			return s.declaratorIn(n.ScopeNode(), nil, name), nil, nil
		}
	case ast.TryStmt:
		res := n.ParamNodes()
		switch {
		case c.fromIn(n.Params...):
			res = res[:ast.ChildIndex(n.Params, c.from.ID)]
		case c.from == nil || c.from.ID != n.Body:
			return nil, nil, nil
		}
		return s.localIn(res, nil, name), nil, nil
	case ast.CatchClause:
		if p := n.ScopeNode(); p != nil && p.Name == name && c.from != nil && c.from.ID == n.Body {
			return s.paramDecl(p)
		}
	case ast.LambdaExpr, ast.MethodDecl, ast.ConstructorDecl:
		if c.from == nil {
			return nil, nil, nil
		}
		if p, ok := utils.Find(n.ParamNodes(), func(p *ast.Node) bool { return p.Name == name }); ok {
			return s.paramDecl(p)
		}
	case ast.ClassDecl, ast.InterfaceDecl, ast.EnumDecl, ast.AnnotationDecl, ast.ObjectCreation, ast.EnumConstant:
		if !declaresType(n) || c.inHeader() || (c.from != nil && !inBody(n, c.from)) {
			return nil, nil, nil
		}
		return s.fieldIn(s.declOf(n), name)
	case ast.CompilationUnit:
		return s.staticImportField(n, name)
	}
	return nil, nil, nil
}

// localIn looks for a variable declared by one of stmts before stop, nearest first.
func (s *Session) localIn(stmts []*ast.Node, stop *ast.Node, name string) types.Decl {
	if stop != nil {
		if i := utils.IndexOf(stmts, stop); i >= 0 {
			stmts = stmts[:i]
		}
	}
	for i := len(stmts) - 1; i >= 0; i-- {
		st := stmts[i]
		if st.Kind == ast.ExprStmt {
			st = st.ExprNode()
		}
		if st != nil && st.Kind == ast.VarDeclExpr {
			if d := s.declaratorIn(st, nil, name); d != nil {
				return d
			}
		}
	}
	return nil
}

// declaratorIn returns the declarator of decl named name, considering only those before stop.
func (s *Session) declaratorIn(decl *ast.Node, stop *ast.Node, name string) types.Decl {
	if decl == nil {
		return nil
	}
	for _, v := range decl.ListNodes() {
		if stop != nil && v.ID == stop.ID {
			break
		}
		if v.Name == name {
			return s.varDecl(v)
		}
	}
	return nil
}

func (s *Session) varDecl(v *ast.Node) types.Decl {
	if d, ok := s.decls[v.Key()]; ok {
		return d
	}
	d := types.NewVarDecl(v.Name, v, func() (types.Type, error) { return s.declaredType(v) })
	s.decls[v.Key()] = d
	return d
}

// declaredType types a variable declarator from its declaration. A local declared with var takes
// the type of its initializer, a for-each variable declared with var the element type.
func (s *Session) declaredType(v *ast.Node) (types.Type, error) {
	decl := v.ParentNode()
	typeNode := decl.TypeNode()
	if typeNode != nil && typeNode.Kind == ast.ClassType && typeNode.Name == "var" && typeNode.Scope == ast.NoNode {
		if init := v.ExprNode(); init != nil {
			return s.typeOf(init, true)
		}
		if loop := decl.ParentNode(); loop != nil && loop.Kind == ast.ForEachStmt {
			return s.elementType(loop.ExprNode())
		}
	}
	t, err := s.SolveTypeUse(typeNode)
	if err != nil {
		return nil, err
	}
	return types.ArrayOf(t, v.Dims), nil
}

// elementType is the type a for-each loop over expr yields.
func (s *Session) elementType(expr *ast.Node) (types.Type, error) {
	t, err := s.typeOf(expr, true)
	if err != nil {
		return nil, err
	}
	if arr, ok := t.(types.Array); ok {
		return arr.Elem, nil
	}
	r, err := s.asReceiver(t)
	if err != nil {
		return nil, err
	}
	it, ok, err := r.Ancestor("java.lang.Iterable")
	if err != nil {
		return nil, err
	}
	if !ok || it.IsRaw() || len(it.Args) != 1 {
		return s.objectRef()
	}
	return s.upper(it.Args[0])
}

// paramDecl returns the declaration of a method, lambda or catch parameter.
func (s *Session) paramDecl(p *ast.Node) (types.Decl, *types.Reference, error) {
	owner := p.ParentNode()
	if owner.Kind.IsCallable() {
		c, err := s.callableOf(owner)
		if err != nil {
			return nil, nil, err
		}
		return c.Params[ast.ChildIndex(owner.Params, p.ID)], nil, nil
	}
	if d, ok := s.decls[p.Key()]; ok {
		return d, nil, nil
	}
	var d *types.ParamDecl
	switch owner.Kind {
	case ast.LambdaExpr:
		i := ast.ChildIndex(owner.Params, p.ID)
		d = types.NewParamDecl(p.Name, false, func() (types.Type, error) { return s.lambdaParamType(owner, i) })
		d.Index = i
	default:
		d = types.NewParamDecl(p.Name, false, func() (types.Type, error) { return s.SolveTypeUse(p.TypeNode()) })
	}
	d.Node = p
	s.decls[p.Key()] = d
	return d, nil, nil
}

// fieldIn finds a field of d or of its ancestors, nearest first.
func (s *Session) fieldIn(d *types.TypeDecl, name string) (types.Decl, *types.Reference, error) {
	ref := types.GenericReference(d)
	fields, err := types.AllFields(ref)
	if err != nil {
		return nil, nil, err
	}
	if f, ok := utils.Find(fields, func(f *types.FieldDecl) bool { return f.Name == name }); ok {
		return f, ref, nil
	}
	return nil, nil, nil
}

// SolveType finds the type declaration or type parameter name refers to. Qualified names resolve
// their first segment lexically when possible, else as a package prefix.
func (c *Context) SolveType(name string) (types.Decl, error) {
	first, rest, qualified := strings.Cut(name, ".")
	if !qualified {
		return c.solveSimpleType(name)
	}
	d, err := c.solveSimpleType(first)
	switch {
	case err == nil:
		if td, ok := d.(*types.TypeDecl); ok {
			return c.s.memberPath(td, rest, name)
		}
	case !types.IsUnresolved(err):
		return nil, err
	}
	parts := strings.Split(name, ".")
	for i := 2; i <= len(parts); i++ {
		td, ok, err := c.s.ts.TryType(strings.Join(parts[:i], "."))
		if err != nil {
			return nil, err
		}
		if ok {
			if i == len(parts) {
				return td, nil
			}
			return c.s.memberPath(td, strings.Join(parts[i:], "."), name)
		}
	}
	return nil, types.NewUnresolvedNameError(name, c.describe())
}

func (s *Session) memberPath(d *types.TypeDecl, path, full string) (*types.TypeDecl, error) {
	for _, seg := range strings.Split(path, ".") {
		next, err := s.memberType(d, seg, true)
		if err != nil {
			return nil, err
		}
		if next == nil {
			return nil, types.NewUnresolvedNameError(full, d.QualifiedName)
		}
		d = next
	}
	return d, nil
}

// memberType finds a member type of d by simple name, inherited ones included when asked.
func (s *Session) memberType(d *types.TypeDecl, name string, inherited bool) (*types.TypeDecl, error) {
	if n := d.Node; n != nil && d.Origin == types.OriginSource {
		if m, ok := utils.Find(bodyMembers(n), func(m *ast.Node) bool { return m.Kind.IsTypeDecl() && m.Name == name }); ok {
			return s.declOf(m), nil
		}
	} else {
		nested, ok, err := d.NestedType(name)
		if err != nil && !types.IsUnresolved(err) {
			return nil, err
		}
		if ok {
			return nested, nil
		}
	}
	if !inherited {
		return nil, nil
	}
	anc, err := types.GenericReference(d).AllAncestors()
	if err != nil {
		return nil, err
	}
	for _, a := range anc {
		if m, err := s.memberType(a.Decl, name, false); err != nil || m != nil {
			return m, err
		}
	}
	return nil, nil
}

func (c *Context) solveSimpleType(name string) (types.Decl, error) {
	for cur := c; cur != nil; cur = cur.Parent() {
		d, err := cur.typeNamed(name)
		if err != nil {
			return nil, err
		}
		if d != nil {
			return d, nil
		}
	}
	return nil, types.NewUnresolvedNameError(name, c.describe())
}

// typeNamed returns what this node alone declares as a type under name.
func (c *Context) typeNamed(name string) (types.Decl, error) {
	n := c.node
	s := c.s
	switch n.Kind {
	case ast.ClassDecl, ast.InterfaceDecl, ast.EnumDecl, ast.AnnotationDecl, ast.ObjectCreation, ast.EnumConstant:
		if !declaresType(n) || (n.Kind == ast.ObjectCreation || n.Kind == ast.EnumConstant) && c.from != nil && !inBody(n, c.from) {
			return nil, nil
		}
		d := s.declOf(n)
		if n.Kind.IsTypeDecl() && d.Name == name {
			return d, nil
		}
		if p := d.TypeParam(name); p != nil {
			return p, nil
		}
		m, err := s.memberType(d, name, !c.inHeader() && !d.AncestorsLoading())
		if err != nil || m != nil {
			return m, err
		}
	case ast.MethodDecl, ast.ConstructorDecl:
		cl, err := s.callableOf(n)
		if err != nil {
			return nil, err
		}
		if p := cl.TypeParam(name); p != nil {
			return p, nil
		}
	case ast.Block, ast.SwitchCase:
		stmts := n.ListNodes()
		if c.from != nil {
			if i := utils.IndexOf(stmts, c.from); i >= 0 {
				stmts = stmts[:i]
			}
		}
		for i := len(stmts) - 1; i >= 0; i-- {
			if st := stmts[i]; st.Kind == ast.LocalClassStmt && st.BodyNode().Name == name {
				return s.declOf(st.BodyNode()), nil
			}
		}
	case ast.LocalClassStmt:
		if body := n.BodyNode(); body.Name == name {
			return s.declOf(body), nil
		}
	case ast.CompilationUnit:
		return s.compilationUnitType(n, name)
	}
	return nil, nil
}

// SolveMethod picks the method an unqualified call to name with args binds to, searching every
// enclosing type and the static imports. From a call with a qualifier the qualifier's type is
// searched instead.
func (c *Context) SolveMethod(name string, args []types.Type, staticOnly bool) (*types.MethodDecl, error) {
	if c.from == nil && c.node.Kind == ast.MethodCall && c.node.Scope != ast.NoNode {
		u, err := c.s.selectScoped(c.node, name, args, true)
		if err != nil {
			return nil, err
		}
		return u.Decl, nil
	}
	var candidates []*types.MethodDecl
	for cur := c; cur != nil; cur = cur.Parent() {
		n := cur.node
		switch {
		case declaresType(n):
			if n.Kind != ast.ObjectCreation && n.Kind != ast.EnumConstant || cur.from == nil || inBody(n, cur.from) {
				ms, err := c.s.methodCandidates(c.s.declOf(n), name, args, staticOnly)
				if err != nil {
					return nil, err
				}
				candidates = append(candidates, ms...)
			}
		case n.Kind == ast.CompilationUnit:
			ms, err := c.s.staticImportMethods(n, name, args)
			if err != nil {
				return nil, err
			}
			candidates = append(candidates, ms...)
		}
	}
	if len(candidates) == 0 {
		return nil, types.NewUnresolvedNameError(name, c.describe())
	}
	return overload.FindMostApplicable(candidates, name, args, c.s.ts)
}

// SolveGenericType finds what a type parameter name stands for at this context: the argument the
// receiver of a call supplies for it.
func (c *Context) SolveGenericType(name string) (types.Type, bool, error) {
	for cur := c; cur != nil; cur = cur.Parent() {
		n := cur.node
		if n.Kind != ast.MethodCall || n.Scope == ast.NoNode || (cur.from != nil && cur.from.ID == n.Scope) {
			continue
		}
		t, err := c.s.typeOf(n.ScopeNode(), true)
		if err != nil {
			return nil, false, err
		}
		r, ok := t.(*types.Reference)
		if !ok {
			return nil, false, nil
		}
		v, ok := r.TypeParamValue(name)
		return v, ok, nil
	}
	return nil, false, nil
}

// methodCandidates lists the methods named name on d and its ancestors, nearest first. Types the
// combined solver serves are asked through it so that every provider contributes.
func (s *Session) methodCandidates(d *types.TypeDecl, name string, args []types.Type, staticOnly bool) ([]*types.MethodDecl, error) {
	if known, ok, err := s.ts.TryType(d.QualifiedName); err != nil {
		return nil, err
	} else if ok && known == d {
		return s.ts.SolveMethod(d.QualifiedName, name, args, staticOnly)
	}
	keep := func(m *types.MethodDecl) bool { return !staticOnly || m.IsStatic() }
	out := utils.Filter(d.MethodsNamed(name), keep)
	anc, err := types.GenericReference(d).AllAncestors()
	if err != nil {
		return nil, err
	}
	for _, a := range anc {
		out = append(out, utils.Filter(a.Decl.MethodsNamed(name), keep)...)
	}
	return out, nil
}
