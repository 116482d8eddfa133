package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime/debug"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v3"

	"jsolve/pkg/config"
	"jsolve/pkg/resolve"
	"jsolve/pkg/solver"
	"jsolve/pkg/types"
)

var version = "0.0.1"

func main() {
	defer func() {
		if r := recover(); r != nil {
			_, _ = fmt.Fprintf(os.Stderr, "jsolve: internal error: %v\n%s", r, debug.Stack())
			os.Exit(2)
		}
	}()
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:    "jsolve",
		Usage:   "resolve Java names, types and calls",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "provider configuration (yaml)"},
			&cli.StringSliceFlag{Name: "classpath", Aliases: []string{"cp"}, Usage: "class directory or jar, repeatable"},
			&cli.BoolFlag{Name: "debug"},
		},
		Commands: []*cli.Command{
			{
				Name:      "describe",
				Aliases:   []string{"d"},
				Usage:     "print a type's parameters, ancestors and members",
				ArgsUsage: "<qualified type>",
				Action:    describeAction,
			},
			{
				Name:      "ancestors",
				Aliases:   []string{"a"},
				Usage:     "print every ancestor of a type, nearest first",
				ArgsUsage: "<qualified type>",
				Action:    ancestorsAction,
			},
			{
				Name:      "method",
				Aliases:   []string{"m"},
				Usage:     "pick the overload a call with the given argument types resolves to",
				ArgsUsage: "<qualified type> <name> [argument type...]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "static", Usage: "only consider static methods"},
				},
				Action: methodAction,
			},
			{
				Name:   "version",
				Usage:  "print jsolve version",
				Action: versionAction,
			},
		},
	}
}

func versionAction(ctx context.Context, cmd *cli.Command) error {
	_, err := fmt.Fprintf(cmd.Root().Writer, "jsolve v%s\n", version)
	return err
}

// session opens a resolver over the configured providers. There are no parsed sources on the
// command line, so the source provider is always empty.
func session(ctx context.Context, cmd *cli.Command) (*resolve.Session, error) {
	cfg := config.Default()
	if URL := cmd.String("config"); URL != "" {
		var err error
		if cfg, err = config.Load(ctx, URL); err != nil {
			return nil, err
		}
	}
	cfg.AddClasspath(cmd.StringSlice("classpath")...)
	logger := log.New(io.Discard, "", 0)
	if cmd.Bool("debug") {
		logger = log.New(os.Stderr, "[jsolve] ", log.LstdFlags)
	}
	return cfg.Session(ctx, nil, solver.WithLogger(logger))
}

func typeArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() < 1 {
		return "", errors.Errorf("%s: missing type name", cmd.Name)
	}
	return cmd.Args().Get(0), nil
}

func describeAction(ctx context.Context, cmd *cli.Command) error {
	name, err := typeArg(cmd)
	if err != nil {
		return err
	}
	s, err := session(ctx, cmd)
	if err != nil {
		return err
	}
	d, err := s.Solver().SolveType(name)
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	params, err := typeParams(d.TypeParams)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s %s%s (%s)\n", d.Kind, d.QualifiedName, params, d.Origin)
	ancestors, err := types.GenericReference(d).DirectAncestors()
	if err != nil {
		return err
	}
	for _, a := range ancestors {
		fmt.Fprintf(w, "  extends %s\n", a.Describe())
	}
	for _, c := range d.EnumConstants {
		fmt.Fprintf(w, "  constant %s\n", c)
	}
	for _, f := range d.Fields {
		t, err := f.Type()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  field %s %s\n", f.Name, t.Describe())
	}
	for _, c := range d.Constructors {
		fmt.Fprintf(w, "  constructor %s\n", c.Signature())
	}
	for _, m := range d.Methods {
		t, err := m.ReturnType()
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  method %s %s\n", m.Signature(), t.Describe())
	}
	return nil
}

func typeParams(params []*types.TypeParamDecl) (string, error) {
	if len(params) == 0 {
		return "", nil
	}
	out := make([]string, len(params))
	for i, p := range params {
		bounds, err := p.Bounds()
		if err != nil {
			return "", err
		}
		out[i] = p.Name
		if len(bounds) == 1 && types.IsReference(bounds[0]) && bounds[0].(*types.Reference).IsObject() {
			continue
		}
		if len(bounds) > 0 {
			names := make([]string, len(bounds))
			for j, b := range bounds {
				names[j] = b.Describe()
			}
			out[i] += " extends " + strings.Join(names, " & ")
		}
	}
	return "<" + strings.Join(out, ", ") + ">", nil
}

func ancestorsAction(ctx context.Context, cmd *cli.Command) error {
	name, err := typeArg(cmd)
	if err != nil {
		return err
	}
	s, err := session(ctx, cmd)
	if err != nil {
		return err
	}
	d, err := s.Solver().SolveType(name)
	if err != nil {
		return err
	}
	ancestors, err := types.GenericReference(d).AllAncestors()
	if err != nil {
		return err
	}
	w := cmd.Root().Writer
	for _, a := range ancestors {
		fmt.Fprintln(w, a.Describe())
	}
	return nil
}

func methodAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() < 2 {
		return errors.New("method: expected a type and a method name")
	}
	s, err := session(ctx, cmd)
	if err != nil {
		return err
	}
	ts := s.Solver()
	argv := cmd.Args().Slice()
	args := make([]types.Type, 0, len(argv)-2)
	for _, a := range argv[2:] {
		t, err := parseType(ts, a)
		if err != nil {
			return err
		}
		args = append(args, t)
	}
	m, err := ts.ResolveMethod(argv[0], argv[1], args, cmd.Bool("static"))
	if err != nil {
		return err
	}
	ret, err := m.ReturnType()
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "%s %s\n", m.Describe(), ret.Describe())
	return err
}

// parseType reads an argument type: a primitive keyword, null, or a qualified class name, each
// optionally followed by array brackets. Class names denote raw types.
func parseType(ts *solver.Combined, s string) (types.Type, error) {
	dims := 0
	for strings.HasSuffix(s, "[]") {
		s = strings.TrimSuffix(s, "[]")
		dims++
	}
	if s == "null" {
		if dims > 0 {
			return nil, errors.Errorf("invalid argument type %q", s+strings.Repeat("[]", dims))
		}
		return types.Null{}, nil
	}
	if p, ok := types.PrimitiveByName(s); ok {
		return types.ArrayOf(p, dims), nil
	}
	d, err := ts.SolveType(s)
	if err != nil {
		return nil, errors.Wrapf(err, "argument type %s", s)
	}
	return types.ArrayOf(types.NewReference(d), dims), nil
}
