package errors

import (
	stderrors "errors"
	"testing"
)

func TestError_MessageOnly(t *testing.T) {
	err := NotFound("student not found")
	if err.Error() != "student not found" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if err.Kind != ErrNotFound {
		t.Errorf("expected ErrNotFound kind, got %v", err.Kind)
	}
}

func TestError_WrapsUnderlying(t *testing.T) {
	inner := stderrors.New("disk full")
	err := Storage(inner, "persist queue")

	if err.Kind != ErrStorage {
		t.Errorf("expected ErrStorage kind, got %v", err.Kind)
	}
	if err.Error() != "persist queue: disk full" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !stderrors.Is(err, inner) {
		t.Error("expected errors.Is to see the wrapped error")
	}
}

func TestError_AsMatchesKind(t *testing.T) {
	var appErr *Error
	err := Conflictf("slot %s already open", "2024-01-15/lunch")

	if !stderrors.As(err, &appErr) {
		t.Fatal("expected errors.As to match *Error")
	}
	if appErr.Kind != ErrConflict {
		t.Errorf("expected ErrConflict, got %v", appErr.Kind)
	}
	if appErr.Message != "slot 2024-01-15/lunch already open" {
		t.Errorf("unexpected message: %q", appErr.Message)
	}
}

func TestIsKind(t *testing.T) {
	err := NotFoundf("menu %s not found", "m-pho")
	if !IsKind(err, ErrNotFound) {
		t.Error("expected IsKind to match ErrNotFound")
	}
	if IsKind(err, ErrStorage) {
		t.Error("IsKind should not match a different kind")
	}
	if IsKind(stderrors.New("plain"), ErrNotFound) {
		t.Error("IsKind should not match a plain error")
	}
}

func TestWrap_PreservesKindAndCause(t *testing.T) {
	inner := stderrors.New("boom")
	err := Wrap(inner, ErrValidation, "bad payload")

	if err.Kind != ErrValidation {
		t.Errorf("expected ErrValidation, got %v", err.Kind)
	}
	if stderrors.Unwrap(err) != inner {
		t.Error("expected Unwrap to return the cause")
	}
}
