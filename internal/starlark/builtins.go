package starlark

import (
	"regexp"
	"sync"

	"go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
	"go.starlark.net/syntax"

	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// fileOptions are the dialect options scripts are compiled with.
var fileOptions = &syntax.FileOptions{
	Set:             true,
	While:           true,
	TopLevelControl: true,
	GlobalReassign:  true,
}

// patternCache holds compiled matches() patterns across scripts.
var patternCache sync.Map // string -> *regexp.Regexp

// Predeclared returns the builtins available to every script:
//
//	split_tokens(s)      comma split with trimming, as used for links and tags
//	matches(pattern, s)  full-string regular expression match
//	ID_PATTERN           the well-formed need id pattern
//	TAG_PATTERN          the well-formed tag pattern
//	struct(**kwargs)     immutable record
func Predeclared() starlark.StringDict {
	return starlark.StringDict{
		"split_tokens": starlark.NewBuiltin("split_tokens", splitTokens),
		"matches":      starlark.NewBuiltin("matches", matches),
		"ID_PATTERN":   starlark.String(needs.IDPattern.String()),
		"TAG_PATTERN":  starlark.String(needs.TagPattern.String()),
		"struct":       starlark.NewBuiltin("struct", starlarkstruct.Make),
	}
}

func splitTokens(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 1, &s); err != nil {
		return nil, err
	}
	tokens := needs.SplitTokens(s)
	list := make([]starlark.Value, len(tokens))
	for i, tok := range tokens {
		list[i] = starlark.String(tok)
	}
	return starlark.NewList(list), nil
}

func matches(_ *starlark.Thread, b *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var pattern, s string
	if err := starlark.UnpackPositionalArgs(b.Name(), args, kwargs, 2, &pattern, &s); err != nil {
		return nil, err
	}
	re, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	return starlark.Bool(re.MatchString(s)), nil
}

func compilePattern(pattern string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)$`)
	if err != nil {
		return nil, err
	}
	patternCache.Store(pattern, re)
	return re, nil
}
