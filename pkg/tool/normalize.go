package tool

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Normalize converts an arbitrary return value into a JSON-safe
// representation. It is a best-effort, total function: values without a
// natural JSON form are rendered as display strings. It fails only on
// genuinely unrepresentable state such as circular references.
func Normalize(value any) (any, error) {
	n := normalizer{seen: map[uintptr]struct{}{}}
	return n.walk(reflect.ValueOf(value))
}

type normalizer struct {
	seen map[uintptr]struct{}
}

func (n normalizer) walk(v reflect.Value) (any, error) {
	if !v.IsValid() {
		return nil, nil
	}

	switch v.Kind() {
	case reflect.Interface, reflect.Ptr:
		if v.IsNil() {
			return nil, nil
		}
		if v.Kind() == reflect.Ptr {
			if err := n.enter(v.Pointer()); err != nil {
				return nil, err
			}
			defer n.leave(v.Pointer())
		}
		return n.walk(v.Elem())

	case reflect.Bool:
		return v.Bool(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint(), nil
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.String:
		return v.String(), nil

	case reflect.Slice:
		if v.IsNil() {
			return nil, nil
		}
		if err := n.enter(v.Pointer()); err != nil {
			return nil, err
		}
		defer n.leave(v.Pointer())
		return n.walkSequence(v)

	case reflect.Array:
		return n.walkSequence(v)

	case reflect.Map:
		if v.IsNil() {
			return nil, nil
		}
		if err := n.enter(v.Pointer()); err != nil {
			return nil, err
		}
		defer n.leave(v.Pointer())

		out := make(map[string]any, v.Len())
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			val, err := n.walk(iter.Value())
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil

	case reflect.Struct:
		// Most structs marshal cleanly, including time.Time.
		raw, err := json.Marshal(v.Interface())
		if err == nil {
			var out any
			if err := json.Unmarshal(raw, &out); err == nil {
				return out, nil
			}
		}
		return n.walkStruct(v)

	default:
		// Channels, funcs, complex numbers, unsafe pointers.
		return fmt.Sprintf("%v", v.Interface()), nil
	}
}

func (n normalizer) walkSequence(v reflect.Value) (any, error) {
	out := make([]any, v.Len())
	for i := 0; i < v.Len(); i++ {
		item, err := n.walk(v.Index(i))
		if err != nil {
			return nil, err
		}
		out[i] = item
	}
	return out, nil
}

// walkStruct handles structs that do not marshal directly, walking exported
// fields with cycle detection intact.
func (n normalizer) walkStruct(v reflect.Value) (any, error) {
	t := v.Type()
	out := make(map[string]any)
	exported := false
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" {
			continue
		}
		exported = true
		val, err := n.walk(v.Field(i))
		if err != nil {
			return nil, err
		}
		out[fieldName(field)] = val
	}
	if !exported {
		return fmt.Sprintf("%v", v.Interface()), nil
	}
	return out, nil
}

func fieldName(field reflect.StructField) string {
	tag := field.Tag.Get("json")
	if tag == "" || tag == "-" {
		return field.Name
	}
	name, _, _ := strings.Cut(tag, ",")
	if name == "" {
		return field.Name
	}
	return name
}

func (n normalizer) enter(ptr uintptr) error {
	if _, ok := n.seen[ptr]; ok {
		return NewError(KindSerialization, "cannot serialize result: circular reference detected")
	}
	n.seen[ptr] = struct{}{}
	return nil
}

func (n normalizer) leave(ptr uintptr) {
	delete(n.seen, ptr)
}
