package gen

import (
	"bytes"
	"cmp"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/tools/imports"

	"github.com/syssam/fluentmap"
	"github.com/syssam/fluentmap/compiler/load"
	"github.com/syssam/fluentmap/types"
)

const (
	rootPkg        = "github.com/syssam/fluentmap"
	typesPkg       = rootPkg + "/types"
	schemaPkg      = rootPkg + "/schema"
	modelPkg       = rootPkg + "/model"
	conventionsPkg = rootPkg + "/conventions"
)

// Generator emits the scaffold of a loaded project.
type Generator struct {
	cfg    *Config
	loaded *load.Loaded
}

// New returns a generator for l.
func New(l *load.Loaded, opts ...Option) (*Generator, error) {
	if l == nil {
		return nil, fluentmap.NewConfigError("Loaded", nil, "project is required")
	}
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	if cfg.Package == "" {
		cfg.Package = cmp.Or(l.Project.Package, "mappings")
		if err := WithPackage(cfg.Package)(cfg); err != nil {
			return nil, err
		}
	}
	return &Generator{cfg: cfg, loaded: l}, nil
}

// File returns the jennifer file of the scaffold.
func (g *Generator) File() (*jen.File, error) {
	e := &emitter{loaded: g.loaded}
	f := jen.NewFile(g.cfg.Package)
	if g.cfg.Header != "" {
		f.HeaderComment(g.cfg.Header)
	}
	f.ImportName(rootPkg, "fluentmap")
	f.ImportName(typesPkg, "types")
	f.ImportName(schemaPkg, "schema")
	f.ImportName(modelPkg, "model")
	f.ImportName(conventionsPkg, "conventions")
	if err := e.file(f); err != nil {
		return nil, err
	}
	return f, nil
}

// Source returns the formatted scaffold.
func (g *Generator) Source() ([]byte, error) {
	f, err := g.File()
	if err != nil {
		return nil, &GenerationError{File: g.cfg.Filename, Stage: "render", Cause: err}
	}
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return nil, &GenerationError{File: g.cfg.Filename, Stage: "render", Cause: err}
	}
	src, err := imports.Process(g.cfg.Filename, buf.Bytes(), &imports.Options{
		Comments:   true,
		TabIndent:  true,
		TabWidth:   8,
		FormatOnly: true,
	})
	if err != nil {
		return nil, &GenerationError{File: g.cfg.Filename, Stage: "format", Cause: err}
	}
	return src, nil
}

// WriteFile writes the scaffold to path, creating its directory.
func (g *Generator) WriteFile(path string) error {
	src, err := g.Source()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return &GenerationError{File: path, Stage: "write", Cause: err}
	}
	if err := os.WriteFile(path, src, 0o644); err != nil {
		return &GenerationError{File: path, Stage: "write", Cause: err}
	}
	return nil
}

// Generate writes the scaffold of l to path.
func Generate(l *load.Loaded, path string, opts ...Option) error {
	g, err := New(l, append([]Option{WithFilename(filepath.Base(path))}, opts...)...)
	if err != nil {
		return err
	}
	return g.WriteFile(path)
}

// exported turns a declared name into an exported Go identifier.
func exported(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	title := cases.Title(language.Und, cases.NoLower)
	for i, p := range parts {
		parts[i] = title.String(p)
	}
	id := strings.Join(parts, "")
	if id == "" || unicode.IsDigit(rune(id[0])) {
		id = "T" + id
	}
	return id
}

// primitives names the package variables of the predeclared types.
var primitives = map[*types.Type]string{
	types.String:   "String",
	types.Int:      "Int",
	types.Int32:    "Int32",
	types.Int64:    "Int64",
	types.Bool:     "Bool",
	types.Float32:  "Float32",
	types.Float64:  "Float64",
	types.Decimal:  "Decimal",
	types.Time:     "Time",
	types.Duration: "Duration",
	types.UUID:     "UUID",
	types.Bytes:    "Bytes",
}

// typeExpr returns the expression building t, with declared types read
// from the Types value t.
func typeExpr(t *types.Type) (jen.Code, error) {
	switch t.Kind {
	case types.KindPrimitive:
		name, ok := primitives[t]
		if !ok {
			return nil, fmt.Errorf("unknown primitive %s", t.Name)
		}
		return jen.Qual(typesPkg, name), nil
	case types.KindSlice:
		elem, err := typeExpr(t.Elem)
		if err != nil {
			return nil, err
		}
		return jen.Qual(typesPkg, "SliceOf").Call(elem), nil
	case types.KindMap:
		key, err := typeExpr(t.Key)
		if err != nil {
			return nil, err
		}
		elem, err := typeExpr(t.Elem)
		if err != nil {
			return nil, err
		}
		return jen.Qual(typesPkg, "MapOf").Call(key, elem), nil
	}
	return jen.Id("t").Dot(exported(t.Name)), nil
}
