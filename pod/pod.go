// Package pod provides zero-copy reinterpretation of byte buffers as
// fixed-layout Go values ("plain old data").
//
// A type is pod when its in-memory representation is fixed-size, gapless and
// self-contained: sized integers, floats, arrays of pod, and padding-free
// structs of pod. Pointers, slices, maps, strings, interfaces, bools and
// platform-sized integers are rejected. Layout is verified once per type via
// Validate, not per call.
//
// Reinterpretation is native-endian. Wire compatibility assumes little-endian
// hosts, the same assumption the upstream protocol makes for its execution
// targets.
package pod

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"unsafe"
)

var (
	ErrShortBuffer = errors.New("buffer shorter than type size")
	ErrMisaligned  = errors.New("buffer misaligned for type")
)

var layoutCache sync.Map // reflect.Type -> error (nil when valid)

// Validate checks that T has a stable, padding-free byte layout. The result
// is cached; call it at type-definition time (e.g. from a constructor) so
// layout mistakes surface before any payload is processed.
func Validate[T any]() error {
	return validateType(reflect.TypeOf((*T)(nil)).Elem())
}

// MustValidate panics if T is not pod.
func MustValidate[T any]() {
	if err := Validate[T](); err != nil {
		panic(err)
	}
}

// SizeOf returns the byte size of T.
func SizeOf[T any]() int {
	var v T
	return int(unsafe.Sizeof(v))
}

func validateType(t reflect.Type) error {
	if cached, ok := layoutCache.Load(t); ok {
		if cached == nil {
			return nil
		}
		return cached.(error)
	}
	err := checkLayout(t, t.String())
	if err == nil {
		layoutCache.Store(t, nil)
	} else {
		layoutCache.Store(t, err)
	}
	return err
}

func checkLayout(t reflect.Type, path string) error {
	switch t.Kind() {
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return nil
	case reflect.Array:
		return checkLayout(t.Elem(), path+"[]")
	case reflect.Struct:
		var offset uintptr
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Offset != offset {
				return fmt.Errorf("%s: padding before field %s (offset %d, want %d)", path, f.Name, f.Offset, offset)
			}
			if err := checkLayout(f.Type, path+"."+f.Name); err != nil {
				return err
			}
			offset += f.Type.Size()
		}
		if offset != t.Size() {
			return fmt.Errorf("%s: trailing padding (%d bytes of %d used)", path, offset, t.Size())
		}
		return nil
	case reflect.Int, reflect.Uint, reflect.Uintptr:
		return fmt.Errorf("%s: platform-sized integer kind %s has no stable layout", path, t.Kind())
	case reflect.Bool:
		return fmt.Errorf("%s: bool has no canonical byte representation", path)
	default:
		return fmt.Errorf("%s: kind %s is not plain old data", path, t.Kind())
	}
}

// Read copies the first SizeOf[T] bytes of b into a T. This is the single
// initial read of the hybrid decoder; the returned value owns its bytes.
func Read[T any](b []byte) (T, error) {
	var v T
	if err := Validate[T](); err != nil {
		return v, err
	}
	size := int(unsafe.Sizeof(v))
	if len(b) < size {
		return v, fmt.Errorf("%w: need %d, got %d", ErrShortBuffer, size, len(b))
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), size), b[:size])
	return v, nil
}

// View reinterprets the front of b as a *T without copying. The pointee
// aliases b: mutations through the pointer are mutations of the buffer.
// Fails if b is too short or misaligned for T.
func View[T any](b []byte) (*T, error) {
	if err := Validate[T](); err != nil {
		return nil, err
	}
	size := SizeOf[T]()
	if len(b) < size {
		return nil, fmt.Errorf("%w: need %d, got %d", ErrShortBuffer, size, len(b))
	}
	p := unsafe.Pointer(unsafe.SliceData(b))
	var v T
	if align := unsafe.Alignof(v); uintptr(p)%align != 0 {
		return nil, fmt.Errorf("%w: alignment %d required", ErrMisaligned, align)
	}
	return (*T)(p), nil
}

// Bytes exposes the raw bytes of *v without copying. Panics if T is not pod;
// validate T before shipping its bytes on a wire.
func Bytes[T any](v *T) []byte {
	MustValidate[T]()
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), SizeOf[T]())
}
