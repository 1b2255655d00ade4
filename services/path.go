package services

import (
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Resolve walks a dot-separated path ("location.district") through a
// record and returns the value found, or nil as soon as a segment is
// missing or nil. Structs are addressed by their JSON field names; plain
// map[string]any records are walked as-is. Resolve never fails: an
// unresolvable path is an ordinary nil result.
func Resolve(record any, path string) any {
	if path == "" {
		return nil
	}

	current := flatten(record)
	for _, segment := range strings.Split(path, ".") {
		fields, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		next, exists := fields[segment]
		if !exists {
			return nil
		}
		current = flatten(next)
		if current == nil {
			return nil
		}
	}
	return current
}

// flatten turns structs (and pointers to them) into map[string]any keyed
// by JSON name. Nil pointers become an untyped nil; everything else is
// returned untouched.
func flatten(v any) any {
	if v == nil {
		return nil
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}

	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return rv.Interface()
	}

	out := make(map[string]any)
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &out,
	})
	if err != nil {
		return nil
	}
	if err := decoder.Decode(rv.Interface()); err != nil {
		return nil
	}
	return out
}
