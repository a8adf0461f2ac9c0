package account

import (
	"fmt"
	"reflect"

	"xdao.co/solframe/program"
)

// Decoder consumes a declaration-specific count of accounts from the shared
// cursor. On failure nothing is consumed.
type Decoder interface {
	DecodeAccounts(cur *Cursor, arg any, ctx *program.Context) error
}

// Validator checks the declaration's constraints against its decoded
// accounts. Validation never mutates external state (Init is the deliberate
// exception: creation is its declared purpose).
type Validator interface {
	ValidateAccounts(arg any, ctx *program.Context) error
}

// Cleaner runs the declaration's post-conditions after business logic.
type Cleaner interface {
	CleanupAccounts(arg any, ctx *program.Context) error
}

// Set is a full account declaration.
type Set interface {
	Decoder
	Validator
	Cleaner
}

// Single is a declaration wrapping exactly one underlying account.
type Single interface {
	Set
	Info() *program.AccountInfo
}

// Unwrapper is implemented by wrapper declarations so capability lookups can
// walk to the inner declaration.
type Unwrapper interface {
	Unwrap() Single
}

// FixedArity is implemented by declarations whose account consumption is
// known statically. Variable-arity declarations (Rest) omit it.
type FixedArity interface {
	RequiredAccounts() int
}

// Decode runs the decode capability over v: a Set, or a (pointer to) struct
// whose exported fields are declarations, visited in field-declaration
// order. A failed decode restores the cursor so the failing declaration
// consumes nothing.
func Decode(v any, cur *Cursor, arg any, ctx *program.Context) error {
	if n, ok := requiredOf(v); ok && cur.Remaining() < n {
		return program.NewError(program.KindArity, program.CodeAccountShortfall,
			fmt.Sprintf("%s: expected >=%d accounts, got %d", declName(v), n, cur.Remaining()))
	}
	if d, ok := v.(Decoder); ok {
		start := cur.snapshot()
		if err := d.DecodeAccounts(cur, arg, ctx); err != nil {
			cur.restore(start)
			return err
		}
		return nil
	}
	start := cur.snapshot()
	err := eachField(v, func(name string, child any) error {
		return Decode(child, cur, arg, ctx)
	})
	if err != nil {
		cur.restore(start)
	}
	return err
}

// Validate runs the validate capability over v in field-declaration order,
// failing fast on the first violated constraint.
func Validate(v any, arg any, ctx *program.Context) error {
	if val, ok := v.(Validator); ok {
		return val.ValidateAccounts(arg, ctx)
	}
	return eachField(v, func(name string, child any) error {
		return Validate(child, arg, ctx)
	})
}

// Cleanup runs the cleanup capability over v in field-declaration order.
func Cleanup(v any, arg any, ctx *program.Context) error {
	if cl, ok := v.(Cleaner); ok {
		return cl.CleanupAccounts(arg, ctx)
	}
	return eachField(v, func(name string, child any) error {
		return Cleanup(child, arg, ctx)
	})
}

// eachField visits the exported fields of a (pointer to) struct as child
// declarations. Nil pointer fields to concrete declaration structs are
// allocated in place, the reflective analogue of a derived constructor.
func eachField(v any, fn func(name string, child any) error) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return program.NewError(program.KindInternal, program.CodeInternal, "nil account declaration")
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return program.NewError(program.KindInternal, program.CodeInternal,
			fmt.Sprintf("account declaration %T implements no capability and is not a struct", v))
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		fv := rv.Field(i)
		var child any
		switch fv.Kind() {
		case reflect.Ptr:
			if fv.IsNil() {
				if f.Type.Elem().Kind() != reflect.Struct || !fv.CanSet() {
					return program.NewError(program.KindInternal, program.CodeInternal,
						fmt.Sprintf("uninitialized account declaration field %s", f.Name))
				}
				fv.Set(reflect.New(f.Type.Elem()))
			}
			child = fv.Interface()
		case reflect.Interface:
			if fv.IsNil() {
				return program.NewError(program.KindInternal, program.CodeInternal,
					fmt.Sprintf("uninitialized account declaration field %s", f.Name))
			}
			child = fv.Interface()
		case reflect.Struct:
			child = fv.Addr().Interface()
		default:
			return program.NewError(program.KindInternal, program.CodeInternal,
				fmt.Sprintf("account declaration field %s has unsupported kind %s", f.Name, fv.Kind()))
		}
		if err := fn(f.Name, child); err != nil {
			return err
		}
	}
	return nil
}

// requiredOf reports the total fixed account consumption of a declaration
// tree, or false when any part is variable-arity.
func requiredOf(v any) (int, bool) {
	if a, ok := v.(FixedArity); ok {
		return a.RequiredAccounts(), true
	}
	if _, ok := v.(Decoder); ok {
		// A custom decoder with undeclared arity.
		return 0, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return 0, false
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return 0, false
	}
	total := 0
	known := true
	_ = eachField(v, func(name string, child any) error {
		n, ok := requiredOf(child)
		if !ok {
			known = false
			return nil
		}
		total += n
		return nil
	})
	if !known {
		return 0, false
	}
	return total, true
}

func declName(v any) string {
	return fmt.Sprintf("%T", v)
}
