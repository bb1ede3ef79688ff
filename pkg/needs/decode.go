package needs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	gojson "github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Format is the serialization of a document.
type Format int

// Supported document formats.
const (
	FormatJSON Format = iota
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ParseError is returned when a document cannot be parsed.
type ParseError struct {
	Format Format
	Err    error
}

func (e *ParseError) Error() string {
	if e.Format == FormatYAML {
		return fmt.Sprintf("invalid YAML: %v", e.Err)
	}
	return fmt.Sprintf("invalid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Decode parses data in the given format into a Node tree.
func Decode(data []byte, format Format) (*Node, error) {
	if format == FormatYAML {
		return DecodeYAML(data)
	}
	return DecodeJSON(data)
}

// DecodeJSON parses a single JSON value, keeping object key order.
// Trailing data after the value is an error.
func DecodeJSON(data []byte) (*Node, error) {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	root, err := readJSONValue(dec, tok)
	if err != nil {
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		if err == nil {
			err = errors.New("unexpected data after top-level value")
		}
		return nil, &ParseError{Format: FormatJSON, Err: err}
	}
	return root, nil
}

func readJSONValue(dec *gojson.Decoder, tok gojson.Token) (*Node, error) {
	switch v := tok.(type) {
	case gojson.Delim:
		switch v {
		case '{':
			return readJSONObject(dec)
		case '[':
			return readJSONArray(dec)
		default:
			return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
		}
	case string:
		return String(v), nil
	case bool:
		return Bool(v), nil
	case gojson.Number:
		return Number(string(v)), nil
	case float64:
		return Number(strconv.FormatFloat(v, 'g', -1, 64)), nil
	case nil:
		return Null(), nil
	default:
		return nil, fmt.Errorf("unexpected token %v", tok)
	}
}

func readJSONObject(dec *gojson.Decoder) (*Node, error) {
	obj := Object()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		if d, ok := tok.(gojson.Delim); ok && d == '}' {
			return obj, nil
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("object key must be a string, got %v", tok)
		}
		tok, err = dec.Token()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		value, err := readJSONValue(dec, tok)
		if err != nil {
			return nil, err
		}
		obj.set(key, value)
	}
}

func readJSONArray(dec *gojson.Decoder) (*Node, error) {
	arr := Array()
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, eofAsUnexpected(err)
		}
		if d, ok := tok.(gojson.Delim); ok && d == ']' {
			return arr, nil
		}
		item, err := readJSONValue(dec, tok)
		if err != nil {
			return nil, err
		}
		arr.items = append(arr.items, item)
	}
}

func eofAsUnexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}

// DecodeYAML parses the first YAML document into a Node tree.
// Only the JSON-compatible subset is accepted: mapping keys must be scalars.
func DecodeYAML(data []byte) (*Node, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Format: FormatYAML, Err: err}
	}
	if doc.Kind == 0 {
		return nil, &ParseError{Format: FormatYAML, Err: errors.New("empty document")}
	}
	n, err := fromYAML(&doc)
	if err != nil {
		return nil, &ParseError{Format: FormatYAML, Err: err}
	}
	return n, nil
}

func fromYAML(y *yaml.Node) (*Node, error) {
	switch y.Kind {
	case yaml.DocumentNode:
		if len(y.Content) == 0 {
			return Null(), nil
		}
		return fromYAML(y.Content[0])
	case yaml.AliasNode:
		return fromYAML(y.Alias)
	case yaml.SequenceNode:
		arr := Array()
		for _, c := range y.Content {
			item, err := fromYAML(c)
			if err != nil {
				return nil, err
			}
			arr.items = append(arr.items, item)
		}
		return arr, nil
	case yaml.MappingNode:
		obj := Object()
		for i := 0; i+1 < len(y.Content); i += 2 {
			k := y.Content[i]
			if k.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: mapping key must be a scalar", k.Line)
			}
			value, err := fromYAML(y.Content[i+1])
			if err != nil {
				return nil, err
			}
			obj.set(k.Value, value)
		}
		return obj, nil
	case yaml.ScalarNode:
		switch y.ShortTag() {
		case "!!null":
			return Null(), nil
		case "!!bool":
			var b bool
			if err := y.Decode(&b); err != nil {
				return nil, err
			}
			return Bool(b), nil
		case "!!int":
			var i int64
			if err := y.Decode(&i); err == nil {
				return Number(strconv.FormatInt(i, 10)), nil
			}
			return String(y.Value), nil
		case "!!float":
			var f float64
			if err := y.Decode(&f); err != nil {
				return nil, err
			}
			return Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
		default:
			return String(y.Value), nil
		}
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node", y.Line)
	}
}
