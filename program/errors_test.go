package program

import (
	"errors"
	"fmt"
	"testing"
)

func TestError_WrapsAndUnwraps(t *testing.T) {
	cause := errors.New("underlying")
	err := WrapError(KindValidation, CodeOwnerMismatch, "account check", cause)

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if e.Kind != KindValidation || e.Code != CodeOwnerMismatch {
		t.Fatalf("got %s/%s", e.Kind, e.Code)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("cause not reachable through Unwrap")
	}
	if want := "account check: underlying"; err.Error() != want {
		t.Fatalf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIsKind_SeesThroughWrapping(t *testing.T) {
	inner := NewError(KindArity, CodeAccountShortfall, "short")
	outer := fmt.Errorf("while dispatching: %w", inner)
	if !IsKind(outer, KindArity) {
		t.Fatalf("IsKind missed a wrapped error")
	}
	if IsKind(outer, KindCleanup) {
		t.Fatalf("IsKind matched the wrong kind")
	}
	if CodeOf(outer) != CodeAccountShortfall {
		t.Fatalf("CodeOf = %s", CodeOf(outer))
	}
	if IsKind(errors.New("plain"), KindArity) {
		t.Fatalf("IsKind matched an unstructured error")
	}
	if CodeOf(errors.New("plain")) != "" {
		t.Fatalf("CodeOf invented a code")
	}
}

func TestWrapError_NilCauseDegrades(t *testing.T) {
	err := WrapError(KindDecode, CodeShortHeader, "short", nil)
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("expected *Error")
	}
	if e.Cause != nil {
		t.Fatalf("nil cause retained")
	}
	if err.Error() != "short" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestRent_MinimumBalanceIncludesStorageOverhead(t *testing.T) {
	rent := DefaultRent()
	zero := rent.MinimumBalance(0)
	if zero == 0 {
		t.Fatalf("zero-length accounts still pay for metadata storage")
	}
	bigger := rent.MinimumBalance(100)
	if bigger <= zero {
		t.Fatalf("minimum must grow with data length: %d <= %d", bigger, zero)
	}
	// Doubling the rate doubles the minimum.
	double := Rent{LamportsPerByteYear: rent.LamportsPerByteYear * 2, ExemptionThreshold: rent.ExemptionThreshold}
	if double.MinimumBalance(100) != 2*bigger {
		t.Fatalf("minimum does not scale with the byte-year rate")
	}
}
