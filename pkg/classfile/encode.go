package classfile

import (
	"bytes"
	"encoding/binary"
)

type poolWriter struct {
	buf     bytes.Buffer
	count   uint16
	utf8s   map[string]uint16
	classes map[string]uint16
}

func newPoolWriter() *poolWriter {
	return &poolWriter{count: 1, utf8s: map[string]uint16{}, classes: map[string]uint16{}}
}

func (w *poolWriter) utf8(s string) uint16 {
	if idx, ok := w.utf8s[s]; ok {
		return idx
	}
	w.buf.WriteByte(tagUtf8)
	_ = binary.Write(&w.buf, binary.BigEndian, uint16(len(s)))
	w.buf.WriteString(s)
	idx := w.count
	w.count++
	w.utf8s[s] = idx
	return idx
}

func (w *poolWriter) class(name string) uint16 {
	if name == "" {
		return 0
	}
	if idx, ok := w.classes[name]; ok {
		return idx
	}
	ref := w.utf8(name)
	w.buf.WriteByte(tagClass)
	_ = binary.Write(&w.buf, binary.BigEndian, ref)
	idx := w.count
	w.count++
	w.classes[name] = idx
	return idx
}

type attr struct {
	name uint16
	body []byte
}

func u2(v uint16) []byte {
	return binary.BigEndian.AppendUint16(nil, v)
}

func writeAttrs(out *bytes.Buffer, attrs []attr) {
	out.Write(u2(uint16(len(attrs))))
	for _, a := range attrs {
		out.Write(u2(a.name))
		out.Write(binary.BigEndian.AppendUint32(nil, uint32(len(a.body))))
		out.Write(a.body)
	}
}

// Encode writes the parts of c that Parse reads. Methods carry no Code attribute.
func Encode(c *Class) []byte {
	pool := newPoolWriter()
	var body bytes.Buffer
	body.Write(u2(c.Access))
	body.Write(u2(pool.class(c.Name)))
	body.Write(u2(pool.class(c.Super)))
	body.Write(u2(uint16(len(c.Interfaces))))
	for _, itf := range c.Interfaces {
		body.Write(u2(pool.class(itf)))
	}
	for _, members := range [][]Member{c.Fields, c.Methods} {
		body.Write(u2(uint16(len(members))))
		for _, m := range members {
			body.Write(u2(m.Access))
			body.Write(u2(pool.utf8(m.Name)))
			body.Write(u2(pool.utf8(m.Descriptor)))
			var attrs []attr
			if m.Signature != "" {
				attrs = append(attrs, attr{pool.utf8("Signature"), u2(pool.utf8(m.Signature))})
			}
			writeAttrs(&body, attrs)
		}
	}
	var attrs []attr
	if c.Signature != "" {
		attrs = append(attrs, attr{pool.utf8("Signature"), u2(pool.utf8(c.Signature))})
	}
	if len(c.Inner) > 0 {
		var ic bytes.Buffer
		ic.Write(u2(uint16(len(c.Inner))))
		for _, in := range c.Inner {
			ic.Write(u2(pool.class(in.Inner)))
			ic.Write(u2(pool.class(in.Outer)))
			if in.Name == "" {
				ic.Write(u2(0))
			} else {
				ic.Write(u2(pool.utf8(in.Name)))
			}
			ic.Write(u2(in.Access))
		}
		attrs = append(attrs, attr{pool.utf8("InnerClasses"), ic.Bytes()})
	}
	writeAttrs(&body, attrs)

	var out bytes.Buffer
	out.Write(binary.BigEndian.AppendUint32(nil, magic))
	out.Write(u2(c.Minor))
	out.Write(u2(c.Major))
	out.Write(u2(pool.count))
	out.Write(pool.buf.Bytes())
	out.Write(body.Bytes())
	return out.Bytes()
}
