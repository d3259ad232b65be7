// Package serialize implements the export surface: converting a
// fully-forced lucid value tree into JSON, YAML, or TOML, and parsing
// those formats back into a lucid term tree. Each format round-trips
// through an intermediate any-typed tree (gopkg.in/yaml.v3 for YAML,
// github.com/BurntSushi/toml for TOML, encoding/json for JSON). JSON
// additionally goes through github.com/tidwall/gjson/sjson for the
// path-addressed get/set primitives the standard library exposes
// alongside whole-document marshal/unmarshal.
package serialize

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/lucid-lang/lucid/internal/ast"
)

// Format names the supported export/import encodings.
type Format string

const (
	JSON Format = "json"
	YAML Format = "yaml"
	TOML Format = "toml"
)

// ToGo converts a fully-forced lucid value into plain Go data
// (map[string]any, []any, float64, string, bool, nil) suitable for
// handing to encoding/json, yaml.v3, or toml. v must already be forced
// transitively — this package never forces anything itself, matching
// the rest of the non-evaluator packages' rule of only ever seeing
// already-forced ast.Term values. Use a deep-forcing walk (internal/eval
// exposes this for the embedding API and the CLI, since only it can call
// Force) before calling ToGo.
func ToGo(v ast.Term) (any, error) {
	switch t := v.(type) {
	case ast.Null:
		return nil, nil
	case ast.Bool:
		return t.Value, nil
	case ast.Num:
		return t.Value, nil
	case ast.Str:
		return t.Value, nil
	case ast.Enum:
		return t.Tag, nil
	case ast.List:
		out := make([]any, len(t.Elems))
		for i, e := range t.Elems {
			gv, err := ToGo(e)
			if err != nil {
				return nil, fmt.Errorf("serialize: list element at index %d: %w", i, err)
			}
			out[i] = gv
		}
		return out, nil
	case ast.Record:
		out := make(map[string]any, len(t.Fields))
		for k, f := range t.Fields {
			gv, err := ToGo(f)
			if err != nil {
				return nil, fmt.Errorf("serialize: field %q: %w", k, err)
			}
			out[k] = gv
		}
		return out, nil
	default:
		// Anything else — *runtime.Thunk, contracts.Deferred, a
		// function closure — means the caller handed ToGo a value that
		// was not deep-forced first.
		return nil, fmt.Errorf("serialize: value of type %T cannot be exported (not fully forced, or not data)", v)
	}
}

// FromGo converts plain Go data (as produced by encoding/json,
// yaml.v3, or BurntSushi/toml unmarshaling into `any`) into a lucid
// value tree.
func FromGo(v any) ast.Term {
	switch t := v.(type) {
	case nil:
		return ast.Null{}
	case bool:
		return ast.Bool{Value: t}
	case float64:
		return ast.Num{Value: t}
	case int:
		return ast.Num{Value: float64(t)}
	case int64:
		return ast.Num{Value: float64(t)}
	case string:
		return ast.Str{Value: t}
	case []any:
		elems := make([]ast.Term, len(t))
		for i, e := range t {
			elems[i] = FromGo(e)
		}
		return ast.List{Elems: elems}
	case map[string]any:
		fields := make(map[string]ast.Term, len(t))
		for k, e := range t {
			fields[k] = FromGo(e)
		}
		return ast.Record{Fields: fields}
	case map[any]any: // yaml.v3 can produce this for non-string-keyed maps
		fields := make(map[string]ast.Term, len(t))
		for k, e := range t {
			fields[fmt.Sprintf("%v", k)] = FromGo(e)
		}
		return ast.Record{Fields: fields}
	default:
		return ast.Str{Value: fmt.Sprintf("%v", t)}
	}
}

// Marshal renders v (already forced) in the given format.
func Marshal(v ast.Term, format Format) (string, error) {
	data, err := ToGo(v)
	if err != nil {
		return "", err
	}
	switch format {
	case JSON:
		// encoding/json already sorts map keys when marshaling
		//, so data needs no
		// pre-sorting pass before MarshalIndent.
		out, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return "", err
		}
		return string(out), nil
	case YAML:
		out, err := yaml.Marshal(data)
		if err != nil {
			return "", err
		}
		return string(out), nil
	case TOML:
		m, ok := data.(map[string]any)
		if !ok {
			return "", fmt.Errorf("serialize: TOML export requires a record at the top level")
		}
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(m); err != nil {
			return "", err
		}
		return buf.String(), nil
	default:
		return "", fmt.Errorf("serialize: unknown format %q", format)
	}
}

// Unmarshal parses text in the given format into a lucid value tree.
func Unmarshal(text string, format Format) (ast.Term, error) {
	switch format {
	case JSON:
		var v any
		if err := json.Unmarshal([]byte(text), &v); err != nil {
			return nil, err
		}
		return FromGo(v), nil
	case YAML:
		var v any
		if err := yaml.Unmarshal([]byte(text), &v); err != nil {
			return nil, err
		}
		return FromGo(normalizeYAML(v)), nil
	case TOML:
		var v map[string]any
		if _, err := toml.Decode(text, &v); err != nil {
			return nil, err
		}
		return FromGo(v), nil
	default:
		return nil, fmt.Errorf("serialize: unknown format %q", format)
	}
}

// normalizeYAML recursively converts yaml.v3's map[string]interface{}
// (and, for non-string keys, map[interface{}]interface{}) into plain
// map[string]any so FromGo's type switch covers it uniformly.
func normalizeYAML(v any) any {
	switch t := v.(type) {
	case map[string]interface{}:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = normalizeYAML(e)
		}
		return out
	case []interface{}:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = normalizeYAML(e)
		}
		return out
	default:
		return t
	}
}

// JSONGet and JSONSet expose gjson/sjson's path-addressed access as
// primitives for the standard library's `serialize.json_get`/`json_set`
// (internal/eval/stdlib.go's registerSerializeBuiltins), letting lucid
// code patch one field of a JSON document without a full marshal/
// unmarshal round trip.
func JSONGet(doc, path string) (string, bool) {
	r := gjson.Get(doc, path)
	if !r.Exists() {
		return "", false
	}
	return r.Raw, true
}

func JSONSet(doc, path, valueJSON string) (string, error) {
	var v any
	if err := json.Unmarshal([]byte(valueJSON), &v); err != nil {
		return "", err
	}
	return sjson.Set(doc, path, v)
}
