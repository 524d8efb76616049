package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	pkgconfig "github.com/goliatone/go-tmptoml/pkg/config"
)

func builtinDecoders() []pkgconfig.Decoder {
	return []pkgconfig.Decoder{tomlDecoder{}, yamlDecoder{}, jsonDecoder{}}
}

type tomlDecoder struct{}

func (tomlDecoder) Format() pkgconfig.Format { return pkgconfig.FormatTOML }

func (tomlDecoder) Decode(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type yamlDecoder struct{}

func (yamlDecoder) Format() pkgconfig.Format { return pkgconfig.FormatYAML }

func (yamlDecoder) Decode(data []byte) (map[string]any, error) {
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// jsonDecoder accepts JSON with comments and trailing commas.
type jsonDecoder struct{}

func (jsonDecoder) Format() pkgconfig.Format { return pkgconfig.FormatJSON }

func (jsonDecoder) Decode(data []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	out := map[string]any{}
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	normaliseNumbers(out)
	return out, nil
}

// normaliseNumbers replaces json.Number with int64 or float64 so values
// stringify the same way regardless of the source syntax.
func normaliseNumbers(m map[string]any) {
	for key, value := range m {
		m[key] = normaliseNumber(value)
	}
}

func normaliseNumber(value any) any {
	switch v := value.(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return i
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		normaliseNumbers(v)
		return v
	case []any:
		for i := range v {
			v[i] = normaliseNumber(v[i])
		}
		return v
	default:
		return v
	}
}
