// Package needs models a sphinx-needs export: a document of versions, each
// holding a mapping of needs keyed by their identifier.
//
// Every field is optional. The model never rejects a document; it exposes
// whatever structure is present and leaves judgement to the checks.
package needs

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// Field names with a meaning to the checks.
const (
	FieldVersions    = "versions"
	FieldNeeds       = "needs"
	FieldNeedsAmount = "needs_amount"
	FieldID          = "id"
	FieldType        = "type"
	FieldStatus      = "status"
	FieldLinks       = "links"
	FieldTags        = "tags"
)

// IDPattern is the conventional shape of need ids and link tokens.
var IDPattern = regexp.MustCompile(`^[A-Z0-9_]+$`)

// TagPattern is the allowed shape of a single tag.
var TagPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DefaultRelationships are the fields whose values name other needs.
var DefaultRelationships = []string{"includes", "extends", "associates", "links"}

// ExtendedRelationships adds the relationship kinds produced by richer
// exporters. VR02 checks them with the "extended" preset.
var ExtendedRelationships = []string{"includes", "extends", "associates", "links", "derive", "contains", "refines"}

// Document is a loaded export.
type Document struct {
	Source string
	Format Format
	Root   *Node

	// Versions is nil when the root has no "versions" object.
	Versions []*Version
}

// Version is one named snapshot of needs.
type Version struct {
	Key  string
	Node *Node

	// NeedsAmount is the declared count, nil when absent.
	NeedsAmount *Node

	// HasNeeds is false when "needs" is absent or not an object.
	HasNeeds bool
	Needs    []*Need
}

// Need is one record of a version. Pointer fields are nil when absent.
type Need struct {
	Key     string
	Version string
	Node    *Node

	ID     *Node
	Type   *Node
	Status *Node
	Links  *Node
	Tags   *Node
}

// Field returns the raw value of any field, nil when absent.
func (n *Need) Field(name string) *Node {
	v, ok := n.Node.Get(name)
	if !ok {
		return nil
	}
	return v
}

// Field returns a top-level document field, nil when absent.
func (d *Document) Field(name string) *Node {
	v, ok := d.Root.Get(name)
	if !ok {
		return nil
	}
	return v
}

// NeedCount returns the number of needs across all versions.
func (d *Document) NeedCount() int {
	total := 0
	for _, v := range d.Versions {
		total += len(v.Needs)
	}
	return total
}

// IDs returns the set of need keys of the version.
func (v *Version) IDs() map[string]struct{} {
	ids := make(map[string]struct{}, len(v.Needs))
	for _, n := range v.Needs {
		ids[n.Key] = struct{}{}
	}
	return ids
}

// FromNode builds the document model over a decoded tree.
func FromNode(root *Node) *Document {
	doc := &Document{Root: root}

	versions, ok := root.Get(FieldVersions)
	if !ok || !versions.IsObject() {
		return doc
	}
	doc.Versions = make([]*Version, 0, versions.Len())
	for _, m := range versions.Members() {
		doc.Versions = append(doc.Versions, newVersion(m.Key, m.Value))
	}
	return doc
}

func newVersion(key string, node *Node) *Version {
	v := &Version{Key: key, Node: node}
	if amount, ok := node.Get(FieldNeedsAmount); ok {
		v.NeedsAmount = amount
	}
	needs, ok := node.Get(FieldNeeds)
	if !ok || !needs.IsObject() {
		return v
	}
	v.HasNeeds = true
	v.Needs = make([]*Need, 0, needs.Len())
	for _, m := range needs.Members() {
		v.Needs = append(v.Needs, newNeed(key, m.Key, m.Value))
	}
	return v
}

func newNeed(version, key string, node *Node) *Need {
	n := &Need{Key: key, Version: version, Node: node}
	n.ID = n.Field(FieldID)
	n.Type = n.Field(FieldType)
	n.Status = n.Field(FieldStatus)
	n.Links = n.Field(FieldLinks)
	n.Tags = n.Field(FieldTags)
	return n
}

// Parse decodes data and builds the document model.
func Parse(data []byte, format Format) (*Document, error) {
	root, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	doc := FromNode(root)
	doc.Format = format
	return doc, nil
}

// FormatForPath picks YAML for .yaml and .yml files and JSON otherwise.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load reads and parses the document at path.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := Parse(data, FormatForPath(path))
	if err != nil {
		return nil, err
	}
	doc.Source = path
	return doc, nil
}

// Targets reads a relationship value as need ids. Arrays yield their
// elements, strings are split on commas, anything else names nothing.
func Targets(v *Node) []string {
	switch v.Kind() {
	case KindArray:
		out := make([]string, 0, v.Len())
		for _, item := range v.Items() {
			out = append(out, item.Text())
		}
		return out
	case KindString:
		s, _ := v.AsString()
		return SplitTokens(s)
	default:
		return nil
	}
}
