package lint

import (
	"reflect"

	"github.com/go-viper/mapstructure/v2"

	"github.com/leapstack-labs/needscheck/pkg/needs"
)

// commaListHook lets list options be written as "a, b, c".
func commaListHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() == reflect.String && to.Kind() == reflect.Slice {
		return needs.SplitTokens(data.(string)), nil
	}
	return data, nil
}

// DecodeOptions decodes rule options into a typed struct using
// `mapstructure` tags. Fields absent from opts keep their current value,
// so callers pre-populate defaults.
func DecodeOptions(opts map[string]any, out any) error {
	if len(opts) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ZeroFields:       true,
		DecodeHook:       commaListHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(opts)
}
