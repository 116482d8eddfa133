package resolve

import (
	"strings"

	"jsolve/pkg/ast"
	"jsolve/pkg/types"
	"jsolve/pkg/utils"
)

type importDecl struct {
	name     string // without the trailing ".*"
	static   bool
	onDemand bool
}

func importsOf(cu *ast.Node) []importDecl {
	return utils.Map(cu.ParamNodes(), func(n *ast.Node) importDecl {
		onDemand := n.Mods.Has(ast.ModOnDemand) || strings.HasSuffix(n.Name, ".*")
		return importDecl{
			name:     strings.TrimSuffix(n.Name, ".*"),
			static:   n.Mods.Has(ast.ModStatic),
			onDemand: onDemand,
		}
	})
}

// compilationUnitType resolves a simple type name at file level: the file's own types, single-type
// imports, the file's package, on-demand imports, then java.lang.
func (s *Session) compilationUnitType(cu *ast.Node, name string) (types.Decl, error) {
	if n, ok := utils.Find(cu.ListNodes(), func(n *ast.Node) bool { return n.Name == name }); ok {
		return s.declOf(n), nil
	}
	imports := importsOf(cu)
	try := func(qname string) (types.Decl, bool, error) {
		d, ok, err := s.ts.TryType(qname)
		if err != nil || !ok {
			return nil, false, err
		}
		return d, true, nil
	}
	for _, imp := range imports {
		if imp.onDemand {
			continue
		}
		if _, last := utils.SplitLast(imp.name, "."); last != name {
			continue
		}
		// single static imports may name a member type too
		if d, ok, err := try(imp.name); err != nil || ok {
			return d, err
		}
	}
	if d, ok, err := try(qualify(cu.Name, name)); err != nil || ok {
		return d, err
	}
	for _, imp := range imports {
		if !imp.onDemand {
			continue
		}
		if d, ok, err := try(imp.name + "." + name); err != nil || ok {
			return d, err
		}
	}
	if d, ok, err := try("java.lang." + name); err != nil || ok {
		return d, err
	}
	return nil, nil
}

// staticImportTypes lists the types whose static members name may come from.
func (s *Session) staticImportTypes(cu *ast.Node, name string) ([]*types.TypeDecl, error) {
	var out []*types.TypeDecl
	for _, imp := range importsOf(cu) {
		if !imp.static {
			continue
		}
		typeName := imp.name
		if !imp.onDemand {
			var member string
			if typeName, member = utils.SplitLast(imp.name, "."); member != name {
				continue
			}
		}
		d, ok, err := s.ts.TryType(typeName)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *Session) staticImportField(cu *ast.Node, name string) (types.Decl, *types.Reference, error) {
	owners, err := s.staticImportTypes(cu, name)
	if err != nil {
		return nil, nil, err
	}
	for _, d := range owners {
		f, via, err := s.fieldIn(d, name)
		if err != nil {
			return nil, nil, err
		}
		if fd, ok := f.(*types.FieldDecl); ok && fd.IsStatic() {
			return fd, via, nil
		}
	}
	return nil, nil, nil
}

func (s *Session) staticImportMethods(cu *ast.Node, name string, args []types.Type) ([]*types.MethodDecl, error) {
	owners, err := s.staticImportTypes(cu, name)
	if err != nil {
		return nil, err
	}
	var out []*types.MethodDecl
	for _, d := range owners {
		ms, err := s.methodCandidates(d, name, args, true)
		if err != nil {
			return nil, err
		}
		out = append(out, ms...)
	}
	return out, nil
}
