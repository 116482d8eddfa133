// Package classfile decodes the parts of JVM class files needed for symbol resolution: names, access
// flags, member descriptors, generic signatures and inner class records.
package classfile

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

const magic = 0xCAFEBABE

const (
	AccPublic     uint16 = 0x0001
	AccPrivate    uint16 = 0x0002
	AccProtected  uint16 = 0x0004
	AccStatic     uint16 = 0x0008
	AccFinal      uint16 = 0x0010
	AccSuper      uint16 = 0x0020
	AccBridge     uint16 = 0x0040
	AccVarargs    uint16 = 0x0080
	AccNative     uint16 = 0x0100
	AccInterface  uint16 = 0x0200
	AccAbstract   uint16 = 0x0400
	AccSynthetic  uint16 = 0x1000
	AccAnnotation uint16 = 0x2000
	AccEnum       uint16 = 0x4000
)

const (
	tagUtf8               = 1
	tagInteger            = 3
	tagFloat              = 4
	tagLong               = 5
	tagDouble             = 6
	tagClass              = 7
	tagString             = 8
	tagFieldref           = 9
	tagMethodref          = 10
	tagInterfaceMethodref = 11
	tagNameAndType        = 12
	tagMethodHandle       = 15
	tagMethodType         = 16
	tagDynamic            = 17
	tagInvokeDynamic      = 18
	tagModule             = 19
	tagPackage            = 20
)

type Class struct {
	Major      uint16
	Minor      uint16
	Access     uint16
	Name       string // internal form, java/util/Map$Entry
	Super      string // empty for java/lang/Object
	Interfaces []string
	Signature  string
	Fields     []Member
	Methods    []Member
	Inner      []InnerClass
}

type Member struct {
	Access     uint16
	Name       string
	Descriptor string
	Signature  string
}

func (m Member) Is(flag uint16) bool { return m.Access&flag != 0 }

type InnerClass struct {
	Inner  string
	Outer  string
	Name   string
	Access uint16
}

func (c *Class) Is(flag uint16) bool { return c.Access&flag != 0 }

// CanonicalName is the dotted name of the class with nested names separated by dots.
func (c *Class) CanonicalName() string { return Canonical(c.Name) }

// Canonical turns an internal binary name into a dotted canonical name.
func Canonical(internal string) string {
	return strings.NewReplacer("/", ".", "$", ".").Replace(internal)
}

// NestedClasses lists the internal names of the member classes declared directly in c.
func (c *Class) NestedClasses() []string {
	var out []string
	for _, ic := range c.Inner {
		if ic.Outer == c.Name && ic.Name != "" {
			out = append(out, ic.Inner)
		}
	}
	return out
}

// InnerAccess returns the access flags recorded for c in its own InnerClasses table.
func (c *Class) InnerAccess() (uint16, bool) {
	for _, ic := range c.Inner {
		if ic.Inner == c.Name {
			return ic.Access, true
		}
	}
	return 0, false
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) u1() (uint8, error) {
	if r.pos+1 > len(r.data) {
		return 0, errors.Errorf("unexpected end of class file at offset %d", r.pos)
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u2() (uint16, error) {
	if r.pos+2 > len(r.data) {
		return 0, errors.Errorf("unexpected end of class file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u4() (uint32, error) {
	if r.pos+4 > len(r.data) {
		return 0, errors.Errorf("unexpected end of class file at offset %d", r.pos)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, errors.Errorf("unexpected end of class file at offset %d", r.pos)
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

type cpEntry struct {
	tag  uint8
	ref1 uint16
	str  string
}

type constantPool []cpEntry

func (cp constantPool) utf8(idx uint16) (string, error) {
	if int(idx) >= len(cp) || cp[idx].tag != tagUtf8 {
		return "", errors.Errorf("constant pool entry %d is not a utf8 string", idx)
	}
	return cp[idx].str, nil
}

func (cp constantPool) className(idx uint16) (string, error) {
	if idx == 0 {
		return "", nil
	}
	if int(idx) >= len(cp) || cp[idx].tag != tagClass {
		return "", errors.Errorf("constant pool entry %d is not a class", idx)
	}
	return cp.utf8(cp[idx].ref1)
}

// Parse decodes a class file.
func Parse(data []byte) (*Class, error) {
	r := &reader{data: data}
	m, err := r.u4()
	if err != nil {
		return nil, err
	}
	if m != magic {
		return nil, errors.Errorf("bad magic number %#x", m)
	}
	c := &Class{}
	if c.Minor, err = r.u2(); err != nil {
		return nil, err
	}
	if c.Major, err = r.u2(); err != nil {
		return nil, err
	}
	cp, err := readConstantPool(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read constant pool")
	}
	if c.Access, err = r.u2(); err != nil {
		return nil, err
	}
	this, err := r.u2()
	if err != nil {
		return nil, err
	}
	if c.Name, err = cp.className(this); err != nil {
		return nil, err
	}
	super, err := r.u2()
	if err != nil {
		return nil, err
	}
	if c.Super, err = cp.className(super); err != nil {
		return nil, err
	}
	n, err := r.u2()
	if err != nil {
		return nil, err
	}
	for i := 0; i < int(n); i++ {
		idx, err := r.u2()
		if err != nil {
			return nil, err
		}
		name, err := cp.className(idx)
		if err != nil {
			return nil, err
		}
		c.Interfaces = append(c.Interfaces, name)
	}
	if c.Fields, err = readMembers(r, cp); err != nil {
		return nil, errors.Wrapf(err, "failed to read fields of %s", c.Name)
	}
	if c.Methods, err = readMembers(r, cp); err != nil {
		return nil, errors.Wrapf(err, "failed to read methods of %s", c.Name)
	}
	err = readAttributes(r, cp, func(name string, body *reader) error {
		switch name {
		case "Signature":
			c.Signature, err = readSignatureAttr(body, cp)
			return err
		case "InnerClasses":
			c.Inner, err = readInnerClasses(body, cp)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read attributes of %s", c.Name)
	}
	return c, nil
}

func readConstantPool(r *reader) (constantPool, error) {
	count, err := r.u2()
	if err != nil {
		return nil, err
	}
	cp := make(constantPool, count)
	for i := 1; i < int(count); i++ {
		tag, err := r.u1()
		if err != nil {
			return nil, err
		}
		e := cpEntry{tag: tag}
		switch tag {
		case tagUtf8:
			l, err := r.u2()
			if err != nil {
				return nil, err
			}
			b, err := r.bytes(int(l))
			if err != nil {
				return nil, err
			}
			e.str = string(b)
		case tagClass, tagString, tagMethodType, tagModule, tagPackage:
			if e.ref1, err = r.u2(); err != nil {
				return nil, err
			}
		case tagInteger, tagFloat, tagFieldref, tagMethodref, tagInterfaceMethodref, tagNameAndType,
			tagDynamic, tagInvokeDynamic:
			if _, err := r.u4(); err != nil {
				return nil, err
			}
		case tagMethodHandle:
			if _, err := r.bytes(3); err != nil {
				return nil, err
			}
		case tagLong, tagDouble:
			if _, err := r.bytes(8); err != nil {
				return nil, err
			}
			cp[i] = e
			i++
			continue
		default:
			return nil, errors.Errorf("unknown constant pool tag %d at entry %d", tag, i)
		}
		cp[i] = e
	}
	return cp, nil
}

func readMembers(r *reader, cp constantPool) ([]Member, error) {
	n, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]Member, 0, n)
	for i := 0; i < int(n); i++ {
		var m Member
		if m.Access, err = r.u2(); err != nil {
			return nil, err
		}
		nameIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		descIdx, err := r.u2()
		if err != nil {
			return nil, err
		}
		if m.Name, err = cp.utf8(nameIdx); err != nil {
			return nil, err
		}
		if m.Descriptor, err = cp.utf8(descIdx); err != nil {
			return nil, err
		}
		err = readAttributes(r, cp, func(name string, body *reader) error {
			if name == "Signature" {
				m.Signature, err = readSignatureAttr(body, cp)
				return err
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func readAttributes(r *reader, cp constantPool, visit func(name string, body *reader) error) error {
	n, err := r.u2()
	if err != nil {
		return err
	}
	for i := 0; i < int(n); i++ {
		nameIdx, err := r.u2()
		if err != nil {
			return err
		}
		length, err := r.u4()
		if err != nil {
			return err
		}
		body, err := r.bytes(int(length))
		if err != nil {
			return err
		}
		name, err := cp.utf8(nameIdx)
		if err != nil {
			return err
		}
		if err := visit(name, &reader{data: body}); err != nil {
			return errors.Wrapf(err, "attribute %s", name)
		}
	}
	return nil
}

func readSignatureAttr(r *reader, cp constantPool) (string, error) {
	idx, err := r.u2()
	if err != nil {
		return "", err
	}
	return cp.utf8(idx)
}

func readInnerClasses(r *reader, cp constantPool) ([]InnerClass, error) {
	n, err := r.u2()
	if err != nil {
		return nil, err
	}
	out := make([]InnerClass, 0, n)
	for i := 0; i < int(n); i++ {
		var idx [3]uint16
		for j := range idx {
			if idx[j], err = r.u2(); err != nil {
				return nil, err
			}
		}
		var ic InnerClass
		if ic.Access, err = r.u2(); err != nil {
			return nil, err
		}
		if ic.Inner, err = cp.className(idx[0]); err != nil {
			return nil, err
		}
		if ic.Outer, err = cp.className(idx[1]); err != nil {
			return nil, err
		}
		if idx[2] != 0 {
			if ic.Name, err = cp.utf8(idx[2]); err != nil {
				return nil, err
			}
		}
		out = append(out, ic)
	}
	return out, nil
}
