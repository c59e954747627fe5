package configvalidator

import (
	"errors"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// ErrUnknownField returns when an unknown field appears in the config.
var ErrUnknownField = errors.New("unknown field")

// CheckForUnknownFields checks that every key of configMap has a field in
// the config struct. Field names are taken from `mapstructure` tags, untagged
// fields are matched by lower-cased name. Nested maps are checked against
// struct fields, map fields accept any keys.
func CheckForUnknownFields(configMap map[string]any, config any) error {
	return check(configMap, reflect.TypeOf(config), "")
}

func check(m map[string]any, t reflect.Type, prefix string) error {
	t = deref(t)
	fields := fieldsOf(t)

	for _, key := range slices.Sorted(maps.Keys(m)) {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		f, ok := fields[key]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, path)
		}

		nested, isMap := m[key].(map[string]any)
		ft := deref(f.Type)

		switch {
		case ft.Kind() == reflect.Struct:
			if !isMap {
				return fmt.Errorf("%s: section expected", path)
			}

			if err := check(nested, ft, path); err != nil {
				return err
			}
		case isMap && ft.Kind() != reflect.Map:
			return fmt.Errorf("%w: %s is not a section", ErrUnknownField, path)
		}
	}

	return nil
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func fieldsOf(t reflect.Type) map[string]reflect.StructField {
	fields := make(map[string]reflect.StructField, t.NumField())
	for i := range t.NumField() {
		f := t.Field(i)

		name := f.Tag.Get("mapstructure")
		if name == "" {
			name = strings.ToLower(f.Name)
		}

		fields[name] = f
	}
	return fields
}
