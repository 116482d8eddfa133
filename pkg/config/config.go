// Package config describes which declaration providers a resolver session consults, in which order,
// and builds them.
package config

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
	"gopkg.in/yaml.v3"

	"jsolve/pkg/ast"
	"jsolve/pkg/reflection"
	"jsolve/pkg/resolve"
	"jsolve/pkg/solver"
)

type Provider struct {
	Kind      string   `yaml:"kind"`
	Classpath []string `yaml:"classpath,omitempty"`
}

type Config struct {
	URL       string     `yaml:"-"`
	MaxDepth  int        `yaml:"maxDepth,omitempty"`
	Providers []Provider `yaml:"providers"`
}

// Default consults the parsed sources first, then the runtime library mirrors.
func Default() *Config {
	return &Config{
		MaxDepth: resolve.DefaultMaxDepth,
		Providers: []Provider{
			{Kind: solver.KindSource.String()},
			{Kind: solver.KindReflective.String()},
		},
	}
}

func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	if cfg.MaxDepth == 0 {
		cfg.MaxDepth = resolve.DefaultMaxDepth
	}
	return cfg, cfg.Validate()
}

// Load downloads and decodes the config at URL. Relative classpath entries are taken relative to
// the config's location.
func Load(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to download config %v", URL)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid config %v", URL)
	}
	cfg.URL = URL
	cfg.normalizeURLs(baseDir(URL))
	return cfg, nil
}

func baseDir(URL string) string {
	if strings.Contains(URL, "://") {
		parent, _ := url.Split(URL, "file")
		return parent
	}
	return filepath.Dir(URL)
}

func (c *Config) normalizeURLs(baseURL string) {
	for i := range c.Providers {
		for j, entry := range c.Providers[i].Classpath {
			if url.IsRelative(entry) {
				c.Providers[i].Classpath[j] = url.Join(baseURL, entry)
			}
		}
	}
}

func (c *Config) Validate() error {
	if len(c.Providers) == 0 {
		return errors.New("no providers configured")
	}
	if c.MaxDepth < 0 {
		return errors.Errorf("maxDepth must be positive, got %d", c.MaxDepth)
	}
	for i, p := range c.Providers {
		kind, ok := solver.ParseKind(p.Kind)
		switch {
		case !ok:
			return errors.Errorf("provider %d: unknown kind %q", i, p.Kind)
		case kind == solver.KindCombined:
			return errors.Errorf("provider %d: combined providers cannot be nested", i)
		case kind == solver.KindCompiled && len(p.Classpath) == 0:
			return errors.Errorf("provider %d: compiled provider without classpath", i)
		case kind != solver.KindCompiled && len(p.Classpath) > 0:
			return errors.Errorf("provider %d: only compiled providers take a classpath", i)
		}
	}
	return nil
}

// AddClasspath appends entries to the first compiled provider, adding one ahead of the reflective
// provider when there is none.
func (c *Config) AddClasspath(entries ...string) {
	if len(entries) == 0 {
		return
	}
	for i := range c.Providers {
		if c.Providers[i].Kind == solver.KindCompiled.String() {
			c.Providers[i].Classpath = append(c.Providers[i].Classpath, entries...)
			return
		}
	}
	compiled := Provider{Kind: solver.KindCompiled.String(), Classpath: entries}
	at := len(c.Providers)
	for i, p := range c.Providers {
		if p.Kind == solver.KindReflective.String() {
			at = i
			break
		}
	}
	c.Providers = append(c.Providers[:at], append([]Provider{compiled}, c.Providers[at:]...)...)
}

// Build creates the providers in declared order. Source providers serve trees.
func Build(ctx context.Context, cfg *Config, trees []*ast.Tree, opts ...solver.Option) (*solver.Combined, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	providers := make([]solver.Provider, 0, len(cfg.Providers))
	for _, p := range cfg.Providers {
		kind, _ := solver.ParseKind(p.Kind)
		switch kind {
		case solver.KindSource:
			providers = append(providers, resolve.NewSourceProvider(trees...))
		case solver.KindReflective:
			providers = append(providers, solver.NewReflective(reflection.Core(), opts...))
		case solver.KindCompiled:
			compiled, err := solver.NewCompiled(ctx, p.Classpath, opts...)
			if err != nil {
				return nil, err
			}
			providers = append(providers, compiled)
		}
	}
	return solver.NewCombined(providers, opts...), nil
}

// Session builds the providers and opens a resolver session over them.
func (c *Config) Session(ctx context.Context, trees []*ast.Tree, opts ...solver.Option) (*resolve.Session, error) {
	ts, err := Build(ctx, c, trees, opts...)
	if err != nil {
		return nil, err
	}
	return resolve.NewSession(ts, resolve.WithMaxDepth(c.MaxDepth), resolve.WithLogger(ts.Logger())), nil
}
