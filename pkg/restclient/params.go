package restclient

import (
	"fmt"
	"reflect"
)

// structParams extracts the exported fields of the struct v as parameters.
// The `param` tag overrides the field name and `param:"-"` skips the field.
func structParams(v any) []Parameter {
	if v == nil {
		panic("value is nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		panic(fmt.Sprintf("value of type %T is not a struct or a pointer to a struct", v))
	}

	params := make([]Parameter, 0, rv.NumField())
	for i := 0; i < rv.NumField(); i++ {
		field := rv.Type().Field(i)
		if !field.IsExported() {
			continue
		}

		name := field.Tag.Get("param")
		if name == "-" {
			continue
		}
		if name == "" {
			name = field.Name
		}

		params = append(params, Parameter{Name: name, Value: toString(rv.Field(i).Interface())})
	}

	return params
}
