package smt

import (
	"errors"
	"testing"
)

func TestIncorrectNumberOfLeavesErrorMessage(t *testing.T) {
	err := &IncorrectNumberOfLeavesError{Expected: 2, Actual: 1}
	if err.Error() == "" {
		t.Fatal("Error() should produce a non-empty message")
	}
}

func TestCorruptedProofErrorMessage(t *testing.T) {
	err := &CorruptedProofError{Reason: "truncated stream"}
	if err.Error() == "" {
		t.Fatal("Error() should produce a non-empty message")
	}
}

func TestStoreErrorUnwrap(t *testing.T) {
	inner := errors.New("disk full")
	err := &StoreError{Op: "get_branch", Err: inner}
	if !errors.Is(err, inner) {
		t.Fatal("StoreError should unwrap to its wrapped error")
	}
}

func TestNonMergableErrorUnwrapsSentinel(t *testing.T) {
	err := &NonMergableError{Height: 7}
	if !errors.Is(err, ErrNonMergable) {
		t.Fatal("NonMergableError should unwrap to ErrNonMergable")
	}
}
