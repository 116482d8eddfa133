package resolve

import (
	"sort"
	"strconv"

	"jsolve/pkg/ast"
	"jsolve/pkg/solver"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

// SourceProvider serves the type declarations of parsed compilation units. Declarations are built
// by the session the provider is bound to, so that they share its memoization.
type SourceProvider struct {
	trees   []*ast.Tree
	types   map[string]*ast.Node
	session *Session
}

// NewSourceProvider indexes the top-level and member types of trees by qualified name.
func NewSourceProvider(trees ...*ast.Tree) *SourceProvider {
	p := &SourceProvider{types: make(map[string]*ast.Node)}
	for _, t := range trees {
		p.add(t)
	}
	return p
}

func (p *SourceProvider) add(t *ast.Tree) {
	cu := t.Root()
	if cu == nil || cu.Kind != ast.CompilationUnit {
		return
	}
	p.trees = append(p.trees, t)
	for _, n := range cu.ListNodes() {
		p.indexType(n, qualify(cu.Name, n.Name))
	}
}

func (p *SourceProvider) indexType(n *ast.Node, qname string) {
	p.types[qname] = n
	for _, m := range n.ListNodes() {
		if m.Kind.IsTypeDecl() {
			p.indexType(m, qname+"."+m.Name)
		}
	}
}

func (p *SourceProvider) bind(s *Session) { p.session = s }

func (p *SourceProvider) Kind() solver.Kind { return solver.KindSource }

func (p *SourceProvider) Trees() []*ast.Tree { return p.trees }

// Names lists the indexed qualified names, sorted.
func (p *SourceProvider) Names() []string {
	out := make([]string, 0, len(p.types))
	for name := range p.types {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (p *SourceProvider) SolveType(name string) (*types.TypeDecl, error) {
	n, ok := p.types[name]
	if !ok {
		return nil, types.NewUnresolvedNameError(name, "source")
	}
	if p.session == nil {
		return nil, types.NewIllegalStateError("source provider for %s is not bound to a session", name)
	}
	return p.session.declOf(n), nil
}

func (p *SourceProvider) SolveMethod(typeName, name string, _ []types.Type, staticOnly bool) ([]*types.MethodDecl, error) {
	d, err := p.SolveType(typeName)
	if err != nil {
		return nil, err
	}
	return utils.Filter(d.MethodsNamed(name), func(m *types.MethodDecl) bool {
		return !staticOnly || m.IsStatic()
	}), nil
}

func qualify(pkg, name string) string {
	if pkg == "" {
		return name
	}
	return pkg + "." + name
}

// declaresType reports whether n introduces a class body of its own.
func declaresType(n *ast.Node) bool {
	switch n.Kind {
	case ast.ObjectCreation:
		return n.Mods.Has(ast.ModAnonymous)
	case ast.EnumConstant:
		return len(n.Extra) > 0
	}
	return n.Kind.IsTypeDecl()
}

// inBody reports whether child, a direct child of p, lies in the class body p declares.
func inBody(p, child *ast.Node) bool {
	switch p.Kind {
	case ast.ObjectCreation, ast.EnumConstant:
		return declaresType(p) && ast.ChildIndex(p.Extra, child.ID) >= 0
	}
	return p.Kind.IsTypeDecl()
}

// enclosingTypeNode returns the innermost type declaration or class body around n, excluding n.
func enclosingTypeNode(n *ast.Node) *ast.Node {
	for child, p := n, n.ParentNode(); p != nil; child, p = p, p.ParentNode() {
		if inBody(p, child) {
			return p
		}
	}
	return nil
}

// typeNodeOf is n itself when it declares a type, else the type around it.
func typeNodeOf(n *ast.Node) *ast.Node {
	if declaresType(n) {
		return n
	}
	return enclosingTypeNode(n)
}

func bodyMembers(n *ast.Node) []*ast.Node {
	switch n.Kind {
	case ast.ObjectCreation, ast.EnumConstant:
		return n.ExtraNodes()
	}
	return n.ListNodes()
}

// qualifiedNameOf names source types: member types nest under their outer type, local classes
// under the type of their enclosing code, and class bodies get the enclosing name plus "$" and a
// suffix unique within the file.
func qualifiedNameOf(n *ast.Node) string {
	p := n.ParentNode()
	if p != nil && p.Kind == ast.CompilationUnit {
		return qualify(p.Name, n.Name)
	}
	outer := enclosingTypeNode(n)
	if outer == nil {
		return n.Name
	}
	prefix := qualifiedNameOf(outer)
	switch n.Kind {
	case ast.ObjectCreation:
		return prefix + "$" + strconv.Itoa(int(n.ID))
	case ast.EnumConstant:
		return prefix + "$" + n.Name
	}
	return prefix + "." + n.Name
}

func accessOf(m ast.Modifiers) types.Access {
	switch {
	case m.Has(ast.ModPublic):
		return types.AccessPublic
	case m.Has(ast.ModProtected):
		return types.AccessProtected
	case m.Has(ast.ModPrivate):
		return types.AccessPrivate
	}
	return types.AccessPackage
}

func flagsOf(m ast.Modifiers) types.Flags {
	var f types.Flags
	if m.Has(ast.ModStatic) {
		f |= types.FlagStatic
	}
	if m.Has(ast.ModAbstract) {
		f |= types.FlagAbstract
	}
	if m.Has(ast.ModFinal) {
		f |= types.FlagFinal
	}
	if m.Has(ast.ModDefault) {
		f |= types.FlagDefault
	}
	return f
}

func kindOf(n *ast.Node) types.TypeKind {
	switch n.Kind {
	case ast.InterfaceDecl:
		return types.KindInterface
	case ast.EnumDecl:
		return types.KindEnum
	case ast.AnnotationDecl:
		return types.KindAnnotation
	}
	return types.KindClass
}

// declOf returns the declaration of a type node, building it on first use. Member types are
// recorded by name; fields, methods and ancestors are typed lazily.
func (s *Session) declOf(n *ast.Node) *types.TypeDecl {
	if d, ok := s.decls[n.Key()].(*types.TypeDecl); ok {
		return d
	}
	d := types.NewTypeDecl(kindOf(n), types.OriginSource, qualifiedNameOf(n), s.ts)
	d.Node = n
	d.Access = accessOf(n.Mods)
	d.Flags = flagsOf(n.Mods)
	if d.IsInterface() {
		d.Flags |= types.FlagAbstract
	}
	s.decls[n.Key()] = d
	if outer := enclosingTypeNode(n); outer != nil {
		d.Outer = s.declOf(outer)
	}
	if n.Kind == ast.ClassDecl || n.Kind == ast.InterfaceDecl {
		for _, tp := range n.TypeArgNodes() {
			d.AddTypeParam(s.typeParamDecl(tp, d.QualifiedName))
		}
	}
	d.SetAncestors(func() ([]*types.Reference, error) { return s.ancestorsOf(n, d) })

	for _, m := range bodyMembers(n) {
		switch {
		case m.Kind == ast.FieldDecl:
			s.addFields(d, m)
		case m.Kind == ast.MethodDecl:
			d.AddMethod(s.methodDecl(d, m))
		case m.Kind == ast.ConstructorDecl:
			d.AddConstructor(s.constructorDecl(d, m))
		case m.Kind.IsTypeDecl():
			d.NestedNames = append(d.NestedNames, d.QualifiedName+"."+m.Name)
		}
	}
	if d.IsEnum() {
		for _, c := range n.ParamNodes() {
			d.EnumConstants = append(d.EnumConstants, c.Name)
			f := types.NewFieldDecl(c.Name, types.FlagStatic|types.FlagFinal, func() (types.Type, error) {
				return &types.Reference{Decl: d}, nil
			})
			f.Node = c
			d.AddField(f)
		}
		solver.AddEnumMethods(d)
	}
	if len(d.Constructors) == 0 && !d.IsInterface() {
		c := types.NewConstructorDecl(d.Name, 0)
		c.Access = d.Access
		d.AddConstructor(c)
	}
	s.logf("built %s %s", d.Kind, d.QualifiedName)
	return d
}

func (s *Session) typeParamDecl(n *ast.Node, container string) *types.TypeParamDecl {
	p := types.NewTypeParamDecl(n.Name, container, s.ts)
	p.Node = n
	p.SetBounds(func() ([]types.Type, error) {
		var out []types.Type
		for _, b := range n.ExtraNodes() {
			t, err := s.SolveTypeUse(b)
			if err != nil {
				return nil, err
			}
			out = append(out, t)
		}
		return out, nil
	})
	return p
}

func (s *Session) addFields(d *types.TypeDecl, n *ast.Node) {
	flags := flagsOf(n.Mods)
	access := accessOf(n.Mods)
	if d.IsInterface() {
		flags |= types.FlagStatic | types.FlagFinal
		access = types.AccessPublic
	}
	typeNode := n.TypeNode()
	for _, v := range n.ListNodes() {
		f := types.NewFieldDecl(v.Name, flags, func() (types.Type, error) {
			t, err := s.SolveTypeUse(typeNode)
			if err != nil {
				return nil, err
			}
			return types.ArrayOf(t, v.Dims), nil
		})
		f.Access = access
		f.Node = v
		d.AddField(f)
	}
}

func (s *Session) callableParts(c *types.Callable, d *types.TypeDecl, n *ast.Node) {
	c.Node = n
	container := types.TypeParamContainer(d.QualifiedName, n.Name, len(n.Params))
	for _, tp := range n.TypeArgNodes() {
		c.TypeParams = append(c.TypeParams, s.typeParamDecl(tp, container))
	}
	for _, p := range n.ParamNodes() {
		variadic := p.Mods.Has(ast.ModVarargs)
		pd := types.NewParamDecl(p.Name, variadic, func() (types.Type, error) {
			t, err := s.SolveTypeUse(p.TypeNode())
			if err != nil {
				return nil, err
			}
			return utils.Ternary[types.Type](variadic, types.Array{Elem: t}, t), nil
		})
		pd.Node = p
		c.AddParam(pd)
	}
}

func (s *Session) methodDecl(d *types.TypeDecl, n *ast.Node) *types.MethodDecl {
	flags := flagsOf(n.Mods)
	access := accessOf(n.Mods)
	if d.IsInterface() {
		access = types.AccessPublic
		if !n.Mods.Has(ast.ModStatic) && !n.Mods.Has(ast.ModDefault) && n.Body == ast.NoNode {
			flags |= types.FlagAbstract
		}
	}
	m := types.NewMethodDecl(n.Name, flags)
	m.Access = access
	m.Declaring = d
	s.callableParts(&m.Callable, d, n)
	ret := n.TypeNode()
	m.SetReturnType(func() (types.Type, error) {
		if ret == nil {
			return types.Void{}, nil
		}
		return s.SolveTypeUse(ret)
	})
	return m
}

func (s *Session) constructorDecl(d *types.TypeDecl, n *ast.Node) *types.ConstructorDecl {
	c := types.NewConstructorDecl(n.Name, flagsOf(n.Mods))
	c.Access = accessOf(n.Mods)
	c.Declaring = d
	s.callableParts(&c.Callable, d, n)
	return c
}

func (s *Session) objectRef() (*types.Reference, error) {
	d, err := s.ts.SolveType(types.ObjectName)
	if err != nil {
		return nil, err
	}
	return &types.Reference{Decl: d}, nil
}

// ancestorsOf lists the direct supertypes of a source type. Classes without an extends clause
// extend Object, enums extend Enum of themselves, and interfaces list Object first like their
// compiled counterparts.
func (s *Session) ancestorsOf(n *ast.Node, d *types.TypeDecl) ([]*types.Reference, error) {
	var out []*types.Reference
	add := func(typeNodes ...*ast.Node) error {
		for _, tn := range typeNodes {
			t, err := s.SolveTypeUse(tn)
			if err != nil {
				return err
			}
			r, err := types.AsReference(t)
			if err != nil {
				return err
			}
			out = append(out, r)
		}
		return nil
	}
	addObject := func() error {
		if d.QualifiedName == types.ObjectName {
			return nil
		}
		obj, err := s.objectRef()
		if err != nil {
			return err
		}
		out = append(out, obj)
		return nil
	}

	var err error
	switch n.Kind {
	case ast.ClassDecl:
		if n.Type != ast.NoNode {
			err = add(n.TypeNode())
		} else {
			err = addObject()
		}
	case ast.InterfaceDecl, ast.AnnotationDecl:
		err = addObject()
	case ast.EnumDecl:
		var enum *types.TypeDecl
		if enum, err = s.ts.SolveType(types.EnumName); err == nil {
			out = append(out, &types.Reference{Decl: enum, Args: []types.Type{&types.Reference{Decl: d}}})
		}
	case ast.ObjectCreation:
		var created types.Type
		if created, err = s.SolveTypeUse(n.TypeNode()); err != nil {
			return nil, err
		}
		r, err := types.AsReference(created)
		if err != nil {
			return nil, err
		}
		if r.Decl.IsInterface() {
			if err := addObject(); err != nil {
				return nil, err
			}
		}
		return append(out, r), nil
	case ast.EnumConstant:
		return []*types.Reference{{Decl: s.declOf(n.ParentNode())}}, nil
	}
	if err != nil {
		return nil, err
	}
	if err := add(n.ExtraNodes()...); err != nil {
		return nil, err
	}
	return out, nil
}

// callableOf returns the method or constructor declared by n.
func (s *Session) callableOf(n *ast.Node) (*types.Callable, error) {
	owner := enclosingTypeNode(n)
	if owner == nil {
		return nil, types.NewIllegalStateError("%s is outside of any type", n)
	}
	d := s.declOf(owner)
	if m, ok := utils.Find(d.Methods, func(m *types.MethodDecl) bool { return m.Node == n }); ok {
		return &m.Callable, nil
	}
	if c, ok := utils.Find(d.Constructors, func(c *types.ConstructorDecl) bool { return c.Node == n }); ok {
		return &c.Callable, nil
	}
	return nil, types.NewIllegalStateError("%s is not a member of %s", n, d.QualifiedName)
}

// TypeDeclOf returns the declaration of the type n declares, or else of the type enclosing n.
func (s *Session) TypeDeclOf(n *ast.Node) (*types.TypeDecl, error) {
	tn := typeNodeOf(n)
	if tn == nil {
		return nil, types.NewUnresolvedNameError(n.String(), "no enclosing type")
	}
	return s.declOf(tn), nil
}
