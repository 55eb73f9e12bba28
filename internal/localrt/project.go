package localrt

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

// project reads field from a map or struct value. Struct fields match by
// json tag name first, then case-insensitively by Go name. A missing field
// yields nil.
func project(source any, field string) (any, error) {
	if m, ok := source.(map[string]any); ok {
		return m[field], nil
	}

	rv := reflect.ValueOf(source)
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, nil
		}
		rv = rv.Elem()
	}

	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		v := rv.MapIndex(reflect.ValueOf(field).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return nil, nil
		}
		return v.Interface(), nil
	case reflect.Struct:
		if i, ok := structFieldIndex(rv.Type(), field); ok {
			return rv.Field(i).Interface(), nil
		}
		return nil, nil
	}
	return nil, errors.Errorf("cannot read field %q from %T", field, source)
}

func structFieldIndex(t reflect.Type, field string) (int, bool) {
	fallback := -1
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		if tag, ok := f.Tag.Lookup("json"); ok {
			name, _, _ := strings.Cut(tag, ",")
			if name == field {
				return i, true
			}
			if name != "" {
				continue
			}
		}
		if fallback < 0 && strings.EqualFold(f.Name, field) {
			fallback = i
		}
	}
	return fallback, fallback >= 0
}
