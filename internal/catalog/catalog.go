// Package catalog loads product seed catalogs from CUE or YAML files.
//
// Both formats carry a top-level products list:
//
//	products: [
//		{id: "widget", name: "Widget", stock: 10},
//	]
//
// CUE catalogs are unified with an embedded #Product schema, so type and
// range errors are reported with file positions. YAML catalogs are decoded
// strictly; unknown fields are errors.
package catalog

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/stockroom/internal/domain"
)

//go:embed schema.cue
var schemaSource string

// ErrUnsupportedFormat is returned for files that are neither CUE nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported catalog format")

type entry struct {
	ID    string `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Stock int    `json:"stock" yaml:"stock"`
}

type document struct {
	Products []entry `json:"products" yaml:"products"`
}

// Load reads the catalog at path, choosing the decoder by extension.
func Load(path string) ([]domain.ProductInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".cue":
		return ParseCUE(path, data)
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return nil, fmt.Errorf("catalog: %s: %w", path, ErrUnsupportedFormat)
	}
}

// ParseCUE validates data against the #Product schema and decodes it.
// filename is used only in error positions.
func ParseCUE(filename string, data []byte) ([]domain.ProductInput, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("catalog: schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename(filename))
	if err := value.Err(); err != nil {
		return nil, fmt.Errorf("catalog: %s: %s", filename, describe(err))
	}

	unified := schema.Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("catalog: %s: %s", filename, describe(err))
	}

	var doc document
	if err := unified.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: %s: decode: %w", filename, err)
	}
	return doc.inputs(), nil
}

// ParseYAML decodes a YAML catalog, rejecting unknown fields.
func ParseYAML(data []byte) ([]domain.ProductInput, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("catalog: yaml: %w", err)
	}
	for i, e := range doc.Products {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("catalog: yaml: products[%d]: name is required", i)
		}
		if e.Stock < 0 {
			return nil, fmt.Errorf("catalog: yaml: products[%d]: stock must be >= 0, got %d", i, e.Stock)
		}
	}
	return doc.inputs(), nil
}

func (d document) inputs() []domain.ProductInput {
	out := make([]domain.ProductInput, 0, len(d.Products))
	for _, e := range d.Products {
		out = append(out, domain.ProductInput{ID: e.ID, Name: e.Name, StockQuantity: e.Stock})
	}
	return out
}

// describe flattens a CUE error list into one line per error, with
// positions.
func describe(err error) string {
	var lines []string
	for _, e := range cueerrors.Errors(err) {
		msg := e.Error()
		if path := strings.Join(e.Path(), "."); path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		if pos := e.Position(); pos.IsValid() {
			msg = fmt.Sprintf("%s:%d:%d: %s", filepath.Base(pos.Filename()), pos.Line(), pos.Column(), msg)
		}
		lines = append(lines, msg)
	}
	if len(lines) == 0 {
		return err.Error()
	}
	return strings.Join(lines, "; ")
}
