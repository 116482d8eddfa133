package solver

import (
	"log"

	"jsolve/pkg/reflection"
	"jsolve/pkg/types"
)

// Reflective answers from a registry of runtime class mirrors.
type Reflective struct {
	registry *reflection.Registry
	builder  *declBuilder
	decls    map[string]*types.TypeDecl
	logger   *log.Logger
}

func NewReflective(registry *reflection.Registry, opts ...Option) *Reflective {
	c := newConf(opts)
	r := &Reflective{registry: registry, decls: make(map[string]*types.TypeDecl), logger: c.logger}
	r.builder = &declBuilder{origin: types.OriginReflective, root: r}
	return r
}

func (r *Reflective) Kind() Kind { return KindReflective }

func (r *Reflective) SetRoot(root types.Solver) { r.builder.root = root }

func (r *Reflective) Registry() *reflection.Registry { return r.registry }

func (r *Reflective) SolveType(name string) (*types.TypeDecl, error) {
	if d, ok := r.decls[name]; ok {
		return d, nil
	}
	c, ok := r.registry.Lookup(name)
	if !ok {
		return nil, types.NewUnresolvedNameError(name, "reflective provider")
	}
	d, err := r.builder.build(&classInfo{
		name:      c.Name,
		outer:     c.Outer,
		access:    c.Access,
		signature: c.Signature,
		fields:    c.Fields,
		methods:   c.Methods,
		ctors:     c.Constructors,
		nested:    c.Nested,
		constants: c.EnumConstants,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Printf("reflective: loaded %s", name)
	r.decls[name] = d
	return d, nil
}

func (r *Reflective) SolveMethod(typeName, name string, _ []types.Type, staticOnly bool) ([]*types.MethodDecl, error) {
	d, err := r.SolveType(typeName)
	if err != nil {
		return nil, err
	}
	return methodsOf(d, name, staticOnly), nil
}
