package events

import (
	"log/slog"
	"reflect"

	"github.com/BenRutlandWeb/atomic-framework/pkg/hooks"
)

var errorType = reflect.TypeFor[error]()

// adapt turns an arbitrary func into a hook callback and reports its arity.
//
// Missing arguments are passed as zero values. A listener that returns
// nothing leaves the filtered value unchanged, as does one whose trailing
// error result is non-nil (the error is logged). Arguments that do not fit the
// parameter types skip the listener.
func adapt(fn reflect.Value, log *slog.Logger) (hooks.Callback, int) {
	typ := fn.Type()
	// Always take the filtered value so a listener without
	// parameters can pass it through.
	accepted := max(typ.NumIn(), 1)
	if typ.IsVariadic() {
		accepted = hooks.AllArgs
	}

	return func(args ...any) any {
		var current any
		if len(args) > 0 {
			current = args[0]
		}

		in, ok := buildArgs(typ, args)
		if !ok {
			log.Warn("listener skipped: argument types do not match",
				slog.String("listener", typ.String()),
			)
			return current
		}

		out := fn.Call(in)
		if n := len(out); n > 0 && typ.Out(n-1) == errorType {
			if err, _ := out[n-1].Interface().(error); err != nil {
				log.Error("listener failed",
					slog.String("listener", typ.String()),
					slog.Any("error", err),
				)
				return current
			}
			out = out[:n-1]
		}
		if len(out) == 0 {
			return current
		}
		return out[0].Interface()
	}, accepted
}

func buildArgs(typ reflect.Type, args []any) ([]reflect.Value, bool) {
	n := typ.NumIn()
	count := n
	if typ.IsVariadic() {
		count = max(n-1, len(args))
	}

	in := make([]reflect.Value, 0, count)
	for i := range count {
		pt := paramType(typ, i)
		if i >= len(args) || args[i] == nil {
			in = append(in, reflect.Zero(pt))
			continue
		}
		v := reflect.ValueOf(args[i])
		switch {
		case v.Type().AssignableTo(pt):
			in = append(in, v)
		case isNumeric(v.Kind()) && isNumeric(pt.Kind()):
			in = append(in, v.Convert(pt))
		default:
			return nil, false
		}
	}
	return in, true
}

func paramType(typ reflect.Type, i int) reflect.Type {
	if typ.IsVariadic() && i >= typ.NumIn()-1 {
		return typ.In(typ.NumIn() - 1).Elem()
	}
	return typ.In(i)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}
