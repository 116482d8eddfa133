package solver

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"log"
	"path"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"

	"jsolve/pkg/classfile"
	"jsolve/pkg/types"
)

// classSource locates the bytes of one class file.
type classSource struct {
	url   string
	entry *zip.File
}

// Compiled indexes class files found on a classpath and decodes them on first use.
type Compiled struct {
	fs        afs.Service
	classpath []string
	index     map[string]classSource
	decls     map[string]*types.TypeDecl
	builder   *declBuilder
	logger    *log.Logger
	ctx       context.Context
}

// NewCompiled walks every classpath entry: directories recursively, .jar and .zip archives in full, and
// single .class files.
func NewCompiled(ctx context.Context, classpath []string, opts ...Option) (*Compiled, error) {
	c := newConf(opts)
	p := &Compiled{
		fs:        afs.New(),
		classpath: classpath,
		index:     make(map[string]classSource),
		decls:     make(map[string]*types.TypeDecl),
		logger:    c.logger,
		ctx:       ctx,
	}
	p.builder = &declBuilder{origin: types.OriginCompiled, root: p}
	for _, entry := range classpath {
		if err := p.indexEntry(ctx, entry); err != nil {
			return nil, err
		}
	}
	p.logger.Printf("compiled: indexed %d classes from %d classpath entries", len(p.index), len(classpath))
	return p, nil
}

func (p *Compiled) indexEntry(ctx context.Context, URL string) error {
	switch ext := strings.ToLower(path.Ext(URL)); ext {
	case ".jar", ".zip":
		return p.indexArchive(ctx, URL)
	case ".class":
		data, err := p.fs.DownloadWithURL(ctx, URL)
		if err != nil {
			return errors.Wrapf(err, "failed to download %v", URL)
		}
		c, err := classfile.Parse(data)
		if err != nil {
			return errors.Wrapf(err, "failed to parse %v", URL)
		}
		p.index[c.CanonicalName()] = classSource{url: URL}
		return nil
	}
	objects, err := p.fs.List(ctx, URL, option.NewRecursive(true))
	if err != nil {
		return errors.Wrapf(err, "failed to list %v", URL)
	}
	rootPath := strings.TrimSuffix(url.Path(URL), "/")
	for _, object := range objects {
		if object.IsDir() || path.Ext(object.Name()) != ".class" {
			continue
		}
		rel := strings.TrimPrefix(url.Path(object.URL()), rootPath+"/")
		name, ok := classNameOf(rel)
		if !ok {
			continue
		}
		if _, seen := p.index[name]; !seen {
			p.index[name] = classSource{url: object.URL()}
		}
	}
	return nil
}

func (p *Compiled) indexArchive(ctx context.Context, URL string) error {
	data, err := p.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return errors.Wrapf(err, "failed to download %v", URL)
	}
	reader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return errors.Wrapf(err, "failed to open archive %v", URL)
	}
	for _, f := range reader.File {
		name, ok := classNameOf(f.Name)
		if !ok || f.FileInfo().IsDir() {
			continue
		}
		if _, seen := p.index[name]; !seen {
			p.index[name] = classSource{url: URL + "!/" + f.Name, entry: f}
		}
	}
	return nil
}

// classNameOf maps a relative class file path to a canonical name.
func classNameOf(rel string) (string, bool) {
	if !strings.HasSuffix(rel, ".class") {
		return "", false
	}
	rel = strings.TrimSuffix(rel, ".class")
	base := path.Base(rel)
	if base == "module-info" || base == "package-info" {
		return "", false
	}
	return classfile.Canonical(rel), true
}

func (p *Compiled) Kind() Kind { return KindCompiled }

func (p *Compiled) SetRoot(root types.Solver) { p.builder.root = root }

// Names lists the indexed canonical class names.
func (p *Compiled) Names() []string {
	out := make([]string, 0, len(p.index))
	for name := range p.index {
		out = append(out, name)
	}
	return out
}

func (p *Compiled) read(src classSource) ([]byte, error) {
	if src.entry == nil {
		return p.fs.DownloadWithURL(p.ctx, src.url)
	}
	rc, err := src.entry.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (p *Compiled) SolveType(name string) (*types.TypeDecl, error) {
	if d, ok := p.decls[name]; ok {
		return d, nil
	}
	src, ok := p.index[name]
	if !ok {
		return nil, types.NewUnresolvedNameError(name, "compiled provider")
	}
	data, err := p.read(src)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %v", src.url)
	}
	c, err := classfile.Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %v", src.url)
	}
	d, err := p.builder.build(fromClassFile(c))
	if err != nil {
		return nil, err
	}
	p.logger.Printf("compiled: loaded %s from %s", name, src.url)
	p.decls[name] = d
	return d, nil
}

func (p *Compiled) SolveMethod(typeName, name string, _ []types.Type, staticOnly bool) ([]*types.MethodDecl, error) {
	d, err := p.SolveType(typeName)
	if err != nil {
		return nil, err
	}
	return methodsOf(d, name, staticOnly), nil
}
