package rest

import (
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"strings"
)

// ParseId parses an entity id taken from a path. Ids are SERIAL columns, so values
// outside the int32 range are rejected.
func ParseId(s string) (int, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// BodyFieldErrors turns a JSON decoding error caused by a wrongly typed field into
// field details. Syntax errors and other failures yield nil.
func BodyFieldErrors(err error) []FieldError {
	var typeErr *json.UnmarshalTypeError
	if !errors.As(err, &typeErr) || typeErr.Field == "" {
		return nil
	}
	return []FieldError{{Field: typeErr.Field, Message: typeMessage(typeErr)}}
}

func typeMessage(typeErr *json.UnmarshalTypeError) string {
	t := typeErr.Type
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "has an invalid type"
	}
	switch t.Kind() {
	case reflect.String:
		return "must be a string"
	case reflect.Bool:
		return "must be a boolean"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		if strings.HasPrefix(typeErr.Value, "number") {
			return "must be a whole number in range"
		}
		return "must be a number"
	case reflect.Slice, reflect.Array:
		return "must be an array"
	case reflect.Struct, reflect.Map:
		return "must be an object"
	}
	return "has an invalid type"
}
