// Package reflection holds mirrors of runtime classes available to the host. Members are described
// with the JVM signature grammar so they decode the same way as class files.
package reflection

import (
	"sort"
	"sync"

	"jsolve/pkg/classfile"
)

// Class mirrors one runtime class. Access uses class file access flag bits.
type Class struct {
	Name          string // canonical, java.util.Map.Entry
	Outer         string
	Access        uint16
	Signature     string // class signature: type parameters, superclass, interfaces
	Fields        []classfile.Member
	Methods       []classfile.Member
	Constructors  []classfile.Member
	Nested        []string
	EnumConstants []string
}

func (c *Class) Is(flag uint16) bool { return c.Access&flag != 0 }

// Registry is safe for concurrent lookups.
type Registry struct {
	sync.RWMutex
	classes map[string]*Class
}

func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]*Class)}
}

func (r *Registry) Register(c *Class) {
	r.Lock()
	defer r.Unlock()
	r.classes[c.Name] = c
	for _, other := range r.classes {
		if other.Outer == c.Name && !contains(c.Nested, other.Name) {
			c.Nested = append(c.Nested, other.Name)
		}
	}
	if c.Outer != "" {
		if outer, ok := r.classes[c.Outer]; ok && !contains(outer.Nested, c.Name) {
			outer.Nested = append(outer.Nested, c.Name)
		}
	}
}

func (r *Registry) Lookup(name string) (*Class, bool) {
	r.RLock()
	defer r.RUnlock()
	c, ok := r.classes[name]
	return c, ok
}

// Names returns the registered class names in lexical order.
func (r *Registry) Names() []string {
	r.RLock()
	defer r.RUnlock()
	out := make([]string, 0, len(r.classes))
	for name := range r.classes {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (r *Registry) Len() int {
	r.RLock()
	defer r.RUnlock()
	return len(r.classes)
}

type Option func(*Class)

// Define registers a class built from its access flags, class signature and member options.
func (r *Registry) Define(access uint16, name, signature string, opts ...Option) *Class {
	c := &Class{Name: name, Access: access, Signature: signature}
	for _, opt := range opts {
		opt(c)
	}
	r.Register(c)
	return c
}

func Method(access uint16, name, signature string) Option {
	return func(c *Class) {
		c.Methods = append(c.Methods, classfile.Member{Access: access, Name: name, Signature: signature})
	}
}

// Abstract declares a public abstract method.
func Abstract(name, signature string) Option {
	return Method(classfile.AccPublic|classfile.AccAbstract, name, signature)
}

// Public declares a public instance method with a body.
func Public(name, signature string) Option { return Method(classfile.AccPublic, name, signature) }

func Static(name, signature string) Option {
	return Method(classfile.AccPublic|classfile.AccStatic, name, signature)
}

func Field(access uint16, name, signature string) Option {
	return func(c *Class) {
		c.Fields = append(c.Fields, classfile.Member{Access: access, Name: name, Signature: signature})
	}
}

func Constructor(access uint16, signature string) Option {
	return func(c *Class) {
		c.Constructors = append(c.Constructors, classfile.Member{Access: access, Name: "<init>", Signature: signature})
	}
}

// Outer marks the class as a member of outer.
func Outer(outer string) Option {
	return func(c *Class) { c.Outer = outer }
}

func Constants(names ...string) Option {
	return func(c *Class) { c.EnumConstants = append(c.EnumConstants, names...) }
}

func contains(s []string, v string) bool {
	for _, e := range s {
		if e == v {
			return true
		}
	}
	return false
}
