// Package schema checks documents against a JSON Schema.
//
// Three failure classes are kept apart: the schema could not be loaded
// (LoadError), the schema is not a valid schema (InvalidSchemaError), and
// the document does not conform (Violation). Only the last one is a
// statement about the document.
package schema

import (
	"bytes"
	_ "embed" // bundled default schema
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/leapstack-labs/needscheck/pkg/needs"
)

//go:embed schemas/sphinx-needs.schema.json
var defaultSchema []byte

// DefaultName names the bundled schema in reports.
const DefaultName = "bundled:sphinx-needs"

const defaultURL = "https://needscheck.dev/schemas/sphinx-needs.schema.json"

// PathSeparator joins instance path segments for display.
const PathSeparator = " -> "

var printer = message.NewPrinter(language.English)

// Source is an unparsed schema document.
type Source struct {
	Name string
	URL  string
	Data []byte
}

// Default returns the bundled schema.
func Default() Source {
	return Source{Name: DefaultName, URL: defaultURL, Data: defaultSchema}
}

// FromFile reads a schema from disk.
func FromFile(path string) (Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Source{}, &LoadError{Name: path, Err: os.ErrNotExist}
		}
		return Source{}, &LoadError{Name: path, Err: err}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}
	return Source{Name: path, URL: u.String(), Data: data}, nil
}

// LoadError reports a schema that is missing, unreadable or not JSON.
type LoadError struct {
	Name string
	Err  error
}

func (e *LoadError) Error() string {
	if errors.Is(e.Err, os.ErrNotExist) {
		return fmt.Sprintf("Schema file not found: %s", e.Name)
	}
	return fmt.Sprintf("Invalid schema JSON: %s: %v", e.Name, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InvalidSchemaError reports a schema that fails meta-schema validation
// or cannot be compiled.
type InvalidSchemaError struct {
	Name    string
	Message string
	Err     error
}

func (e *InvalidSchemaError) Error() string {
	return fmt.Sprintf("Invalid schema: %s", e.Message)
}

func (e *InvalidSchemaError) Unwrap() error { return e.Err }

// Checker validates documents against one compiled schema.
// It is safe for concurrent use.
type Checker struct {
	name   string
	schema *jsonschema.Schema
}

// Load compiles the schema at path, or the bundled schema when path is empty.
func Load(path string) (*Checker, error) {
	if path == "" {
		return Compile(Default())
	}
	src, err := FromFile(path)
	if err != nil {
		return nil, err
	}
	return Compile(src)
}

// Compile parses and compiles a schema source.
func Compile(src Source) (*Checker, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(src.Data))
	if err != nil {
		return nil, &LoadError{Name: src.Name, Err: err}
	}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft7)
	if err := c.AddResource(src.URL, doc); err != nil {
		return nil, &InvalidSchemaError{Name: src.Name, Message: err.Error(), Err: err}
	}
	sch, err := c.Compile(src.URL)
	if err != nil {
		return nil, &InvalidSchemaError{Name: src.Name, Message: compileMessage(err), Err: err}
	}
	return &Checker{name: src.Name, schema: sch}, nil
}

func compileMessage(err error) string {
	var sve *jsonschema.SchemaValidationError
	if errors.As(err, &sve) {
		var ve *jsonschema.ValidationError
		if errors.As(sve.Err, &ve) {
			leaf := firstLeaf(ve, nil)
			return fmt.Sprintf("%s (at %s)", leaf.ErrorKind.LocalizedString(printer), formatPath(leaf.InstanceLocation))
		}
	}
	return err.Error()
}

// Name returns the schema name used in reports.
func (c *Checker) Name() string { return c.name }

// Check validates the document root. It returns nil when the document
// conforms, otherwise the first violation in document order.
func (c *Checker) Check(root *needs.Node) *Violation {
	err := c.schema.Validate(root.Interface())
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &Violation{Message: err.Error()}
	}
	leaf := firstLeaf(ve, root)
	return &Violation{
		Message:     leaf.ErrorKind.LocalizedString(printer),
		Path:        leaf.InstanceLocation,
		KeywordPath: leaf.ErrorKind.KeywordPath(),
	}
}

// Violation is a structural mismatch between document and schema.
type Violation struct {
	Message     string
	Path        []string
	KeywordPath []string
}

// Location renders the instance path, "(root)" for the document itself.
func (v *Violation) Location() string {
	return formatPath(v.Path)
}

func (v *Violation) Error() string {
	if len(v.Path) == 0 {
		return fmt.Sprintf("Schema validation error: %s", v.Message)
	}
	return fmt.Sprintf("Schema validation error: %s (at path: %s)", v.Message, v.Location())
}

func formatPath(path []string) string {
	if len(path) == 0 {
		return "(root)"
	}
	return strings.Join(path, PathSeparator)
}

// firstLeaf picks the leaf of the error tree whose instance comes first in
// document order. Cause order follows schema keyword iteration, which is
// not stable, so ties are broken on keyword path and message.
func firstLeaf(ve *jsonschema.ValidationError, root *needs.Node) *jsonschema.ValidationError {
	var leaves []*jsonschema.ValidationError
	collectLeaves(ve, &leaves)

	best := leaves[0]
	for _, l := range leaves[1:] {
		if lessLeaf(l, best, root) {
			best = l
		}
	}
	return best
}

func collectLeaves(ve *jsonschema.ValidationError, out *[]*jsonschema.ValidationError) {
	if len(ve.Causes) == 0 {
		*out = append(*out, ve)
		return
	}
	for _, c := range ve.Causes {
		collectLeaves(c, out)
	}
}

func lessLeaf(a, b *jsonschema.ValidationError, root *needs.Node) bool {
	pa, pb := positions(root, a.InstanceLocation), positions(root, b.InstanceLocation)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] < pb[i]
		}
	}
	if len(pa) != len(pb) {
		return len(pa) < len(pb)
	}
	ka := strings.Join(a.ErrorKind.KeywordPath(), "/")
	kb := strings.Join(b.ErrorKind.KeywordPath(), "/")
	if ka != kb {
		return ka < kb
	}
	return a.ErrorKind.LocalizedString(printer) < b.ErrorKind.LocalizedString(printer)
}

// positions maps an instance path onto member indexes so that paths
// compare in document order. Unresolvable segments sort last.
func positions(root *needs.Node, path []string) []int {
	out := make([]int, len(path))
	n := root
	for i, seg := range path {
		child, pos, ok := n.Child(seg)
		if !ok {
			for j := i; j < len(path); j++ {
				out[j] = int(^uint(0) >> 1)
			}
			return out
		}
		out[i] = pos
		n = child
	}
	return out
}
