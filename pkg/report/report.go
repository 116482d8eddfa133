// Package report turns resolver answers into records an indexing front end can store: one
// Reference per resolved use site and one Failure per use site the resolver could not answer.
package report

import (
	"errors"
	"fmt"

	"github.com/sourcegraph/go-lsp"

	"jsolve/pkg/ast"
	"jsolve/pkg/types"
)

// Source names this tool in editor diagnostics.
const Source = "jsolve"

type RefKind uint8

const (
	RefType RefKind = iota + 1
	RefTypeParam
	RefField
	RefVariable
	RefParameter
	RefMethod
	RefConstructor
)

var refKindNames = map[RefKind]string{
	RefType:        "type",
	RefTypeParam:   "type parameter",
	RefField:       "field",
	RefVariable:    "variable",
	RefParameter:   "parameter",
	RefMethod:      "method",
	RefConstructor: "constructor",
}

func (k RefKind) String() string { return refKindNames[k] }

// Reference links a use site to the declaration it resolves to. Target is the declaration's
// qualified description, Context the qualified name of the type around the use site.
type Reference struct {
	File    string
	Kind    RefKind
	Name    string
	Target  string
	Context string
	Range   ast.Range
}

func (r Reference) String() string {
	return fmt.Sprintf("%s:%s %s %s -> %s", r.File, r.Range.Start, r.Kind, r.Name, r.Target)
}

type Severity uint8

const (
	SeverityNote Severity = iota
	SeverityError
	SeverityFatal
)

// Kind classifies a failure by the engine error behind it.
type Kind string

const (
	KindUnresolved   Kind = "unresolved"
	KindAmbiguous    Kind = "ambiguous"
	KindConflicting  Kind = "conflicting-types"
	KindTypeShape    Kind = "type-shape"
	KindUnsupported  Kind = "unsupported"
	KindIllegalState Kind = "illegal-state"
	KindRecursion    Kind = "recursion-limit"
	KindInternal     Kind = "internal"
)

// Severity: unsupported constructs are notes, a wrong type shape or exhausted depth ends the
// node, everything else is an ordinary error.
func (k Kind) Severity() Severity {
	switch k {
	case KindUnsupported:
		return SeverityNote
	case KindTypeShape, KindRecursion, KindInternal:
		return SeverityFatal
	}
	return SeverityError
}

// ErrorKind maps an engine error to its failure kind. Errors from outside the engine are internal.
func ErrorKind(err error) Kind {
	var (
		unresolved  *types.UnresolvedNameError
		ambiguous   *types.AmbiguityError
		conflicting *types.ConflictingTypesError
		shape       *types.TypeShapeError
		unsupported *types.UnsupportedConstructError
		illegal     *types.IllegalStateError
		limit       *types.RecursionLimitError
	)
	switch {
	case errors.As(err, &unresolved):
		return KindUnresolved
	case errors.As(err, &ambiguous):
		return KindAmbiguous
	case errors.As(err, &conflicting):
		return KindConflicting
	case errors.As(err, &shape):
		return KindTypeShape
	case errors.As(err, &unsupported):
		return KindUnsupported
	case errors.As(err, &illegal):
		return KindIllegalState
	case errors.As(err, &limit):
		return KindRecursion
	}
	return KindInternal
}

type Failure struct {
	File    string
	Kind    Kind
	Message string
	Range   ast.Range
	Fatal   bool
}

func newFailure(file string, n *ast.Node, err error) Failure {
	k := ErrorKind(err)
	return Failure{File: file, Kind: k, Message: err.Error(), Range: n.Range, Fatal: k.Severity() == SeverityFatal}
}

func (f Failure) Severity() Severity {
	if f.Fatal {
		return SeverityFatal
	}
	return f.Kind.Severity()
}

func (f Failure) String() string {
	return fmt.Sprintf("%s:%s %s: %s", f.File, f.Range.Start, f.Kind, f.Message)
}

// Sink receives the records of an indexing run.
type Sink interface {
	Reference(Reference)
	Failure(Failure)
}

var symbolKinds = map[RefKind]lsp.SymbolKind{
	RefType:        lsp.SKClass,
	RefTypeParam:   lsp.SKTypeParameter,
	RefField:       lsp.SKField,
	RefVariable:    lsp.SKVariable,
	RefParameter:   lsp.SKVariable,
	RefMethod:      lsp.SKMethod,
	RefConstructor: lsp.SKConstructor,
}

// lspPosition converts a one-based tree position to a zero-based protocol position.
func lspPosition(p ast.Position) lsp.Position {
	return lsp.Position{Line: max(p.Line-1, 0), Character: max(p.Column-1, 0)}
}

func lspRange(r ast.Range) lsp.Range {
	return lsp.Range{Start: lspPosition(r.Start), End: lspPosition(r.End)}
}

func ToSymbolInformation(uri string, ref Reference) lsp.SymbolInformation {
	return lsp.SymbolInformation{
		Name: ref.Name,
		Kind: symbolKinds[ref.Kind],
		Location: lsp.Location{
			URI:   lsp.DocumentURI(uri),
			Range: lspRange(ref.Range),
		},
		ContainerName: ref.Context,
	}
}

func ToDiagnostic(f Failure) lsp.Diagnostic {
	var severity lsp.DiagnosticSeverity
	switch f.Severity() {
	case SeverityNote:
		severity = lsp.Information
	case SeverityError:
		severity = lsp.Warning
	default:
		severity = lsp.Error
	}
	return lsp.Diagnostic{
		Range:    lspRange(f.Range),
		Severity: severity,
		Code:     string(f.Kind),
		Source:   Source,
		Message:  f.Message,
	}
}
