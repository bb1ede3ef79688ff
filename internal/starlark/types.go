// Package starlark runs user-supplied Starlark scripts as need rules.
package starlark

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"go.starlark.net/starlark"

	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// NodeToStarlark converts a document value to a Starlark value.
// Objects become dicts that keep document key order.
func NodeToStarlark(n *needs.Node) starlark.Value {
	switch n.Kind() {
	case needs.KindNull:
		return starlark.None
	case needs.KindBool:
		return starlark.Bool(n.Truthy())
	case needs.KindNumber:
		return numberToStarlark(n.Text())
	case needs.KindString:
		s, _ := n.AsString()
		return starlark.String(s)
	case needs.KindArray:
		items := n.Items()
		list := make([]starlark.Value, len(items))
		for i, item := range items {
			list[i] = NodeToStarlark(item)
		}
		return starlark.NewList(list)
	default:
		members := n.Members()
		dict := starlark.NewDict(len(members))
		for _, m := range members {
			_ = dict.SetKey(starlark.String(m.Key), NodeToStarlark(m.Value))
		}
		return dict
	}
}

func numberToStarlark(literal string) starlark.Value {
	if !strings.ContainsAny(literal, ".eE") {
		if i, err := strconv.ParseInt(literal, 10, 64); err == nil {
			return starlark.MakeInt64(i)
		}
		if b, ok := new(big.Int).SetString(literal, 10); ok {
			return starlark.MakeBigInt(b)
		}
	}
	f, err := strconv.ParseFloat(literal, 64)
	if err != nil {
		return starlark.String(literal)
	}
	return starlark.Float(f)
}

// NeedToStarlark builds the dict handed to check(): the need's fields plus
// _key and _version.
func NeedToStarlark(n *needs.Need) *starlark.Dict {
	var dict *starlark.Dict
	if d, ok := NodeToStarlark(n.Node).(*starlark.Dict); ok {
		dict = d
	} else {
		dict = starlark.NewDict(2)
	}
	_ = dict.SetKey(starlark.String("_key"), starlark.String(n.Key))
	_ = dict.SetKey(starlark.String("_version"), starlark.String(n.Version))
	return dict
}

// GoToStarlark converts a Go value to a Starlark value.
// Supported types: string, int, int64, float64, bool, []string, []any, map[string]any
func GoToStarlark(v any) (starlark.Value, error) {
	if v == nil {
		return starlark.None, nil
	}

	switch val := v.(type) {
	case string:
		return starlark.String(val), nil

	case int:
		return starlark.MakeInt(val), nil

	case int64:
		return starlark.MakeInt64(val), nil

	case float64:
		return starlark.Float(val), nil

	case bool:
		return starlark.Bool(val), nil

	case []string:
		list := make([]starlark.Value, len(val))
		for i, s := range val {
			list[i] = starlark.String(s)
		}
		return starlark.NewList(list), nil

	case []any:
		list := make([]starlark.Value, len(val))
		for i, item := range val {
			sv, err := GoToStarlark(item)
			if err != nil {
				return nil, fmt.Errorf("list index %d: %w", i, err)
			}
			list[i] = sv
		}
		return starlark.NewList(list), nil

	case map[string]any:
		dict := starlark.NewDict(len(val))
		for k, v := range val {
			sv, err := GoToStarlark(v)
			if err != nil {
				return nil, fmt.Errorf("dict key %q: %w", k, err)
			}
			if err := dict.SetKey(starlark.String(k), sv); err != nil {
				return nil, fmt.Errorf("dict setkey %q: %w", k, err)
			}
		}
		return dict, nil

	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// Messages reads the value returned by check(). None means no findings;
// otherwise it must be a list or tuple of strings.
func Messages(v starlark.Value) ([]string, error) {
	if v == starlark.None {
		return nil, nil
	}
	seq, ok := v.(starlark.Indexable)
	if !ok {
		return nil, fmt.Errorf("check must return a list of strings, got %s", v.Type())
	}
	if _, isString := v.(starlark.String); isString {
		return nil, fmt.Errorf("check must return a list of strings, got string")
	}

	out := make([]string, 0, seq.Len())
	for i := 0; i < seq.Len(); i++ {
		s, ok := starlark.AsString(seq.Index(i))
		if !ok {
			return nil, fmt.Errorf("check result index %d: expected string, got %s", i, seq.Index(i).Type())
		}
		out = append(out, s)
	}
	return out, nil
}
