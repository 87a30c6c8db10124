package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
)

var (
	ctxType = reflect.TypeOf((*context.Context)(nil)).Elem()
	errType = reflect.TypeOf((*error)(nil)).Elem()
)

// ValidateFunc checks whether fn has a shape supported as a tool handler.
// It only inspects the signature and has no side effects.
func ValidateFunc(fn any) error {
	if fn == nil {
		return NewError(KindValidation, "tool handler must be a function, got nil")
	}

	t := reflect.TypeOf(fn)
	if t.Kind() != reflect.Func {
		return NewError(KindValidation, fmt.Sprintf("tool handler must be a function, got %T", fn))
	}

	if t.IsVariadic() {
		return NewError(KindValidation, "tools cannot use variadic parameters")
	}

	for i := 0; i < t.NumIn(); i++ {
		if t.In(i).Kind() == reflect.Chan {
			return NewError(KindValidation, "tools cannot accept channel parameters; handlers must be synchronous")
		}
	}

	for i := 0; i < t.NumOut(); i++ {
		if t.Out(i).Kind() == reflect.Chan {
			return NewError(KindValidation, "tools cannot return channels; return the complete result instead")
		}
	}

	return nil
}

// Adapt converts a native Go function into a canonical Handler. Canonical
// handlers pass through unchanged. Other functions may take an optional
// leading context.Context and at most one payload parameter (a struct,
// pointer to struct, or map[string]any) which is bound from the JSON
// argument map; they may return (T, error), T, or error.
func Adapt(fn any) (Handler, error) {
	switch h := fn.(type) {
	case Handler:
		return h, nil
	case func(ctx context.Context, args map[string]any) (any, error):
		return Handler(h), nil
	}

	if err := ValidateFunc(fn); err != nil {
		return nil, err
	}

	v := reflect.ValueOf(fn)
	t := v.Type()

	takesCtx := false
	payloadIdx := -1
	for i := 0; i < t.NumIn(); i++ {
		in := t.In(i)
		if i == 0 && in.Implements(ctxType) {
			takesCtx = true
			continue
		}
		if payloadIdx >= 0 {
			return nil, NewError(KindValidation,
				fmt.Sprintf("unsupported function signature: at most one payload parameter is allowed, got %d inputs", t.NumIn()))
		}
		if !bindable(in) {
			return nil, NewError(KindValidation,
				fmt.Sprintf("unsupported function signature: parameter %d must be a struct, struct pointer, or map, got %s", i, in))
		}
		payloadIdx = i
	}

	errIdx, valIdx := -1, -1
	switch t.NumOut() {
	case 0:
	case 1:
		if t.Out(0).Implements(errType) {
			errIdx = 0
		} else {
			valIdx = 0
		}
	case 2:
		if !t.Out(1).Implements(errType) {
			return nil, NewError(KindValidation,
				fmt.Sprintf("unsupported function signature: second result must be error, got %s", t.Out(1)))
		}
		valIdx = 0
		errIdx = 1
	default:
		return nil, NewError(KindValidation,
			fmt.Sprintf("unsupported function signature: too many results (%d)", t.NumOut()))
	}

	return func(ctx context.Context, args map[string]any) (any, error) {
		in := make([]reflect.Value, 0, t.NumIn())
		if takesCtx {
			in = append(in, reflect.ValueOf(ctx))
		}
		if payloadIdx >= 0 {
			payload, err := bindPayload(t.In(payloadIdx), args)
			if err != nil {
				return nil, err
			}
			in = append(in, payload)
		}

		out := v.Call(in)

		if errIdx >= 0 {
			if errVal := out[errIdx]; !errVal.IsNil() {
				return nil, errVal.Interface().(error)
			}
		}
		if valIdx >= 0 {
			return out[valIdx].Interface(), nil
		}
		return nil, nil
	}, nil
}

func bindable(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Struct, reflect.Map:
		return true
	case reflect.Ptr:
		return t.Elem().Kind() == reflect.Struct
	default:
		return false
	}
}

// bindPayload marshals the argument map to JSON and unmarshals it into a
// fresh value of the parameter type.
func bindPayload(t reflect.Type, args map[string]any) (reflect.Value, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return reflect.Value{}, WrapError(KindInvalidArguments, "arguments are not JSON-representable", err)
	}

	ptr := reflect.New(t)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return reflect.Value{}, WrapError(KindInvalidArguments, "arguments do not match handler parameters", err)
	}
	return ptr.Elem(), nil
}
