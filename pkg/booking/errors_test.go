package booking

import (
	"errors"
	"testing"
)

func TestWrapErrorCarriesSegments(test *testing.T) {
	test.Parallel()
	cause := errors.New("boom")
	wrapped := WrapError("store", "profile", "create", cause)

	var operationError OperationError
	if !errors.As(wrapped, &operationError) {
		test.Fatalf("expected OperationError, got %T", wrapped)
	}
	if operationError.Operation() != "store" || operationError.Subject() != "profile" || operationError.Code() != "create" {
		test.Fatalf("unexpected segments: %s.%s.%s", operationError.Operation(), operationError.Subject(), operationError.Code())
	}
	if !errors.Is(wrapped, cause) {
		test.Fatalf("expected wrapped cause to unwrap")
	}
	if wrapped.Error() != "store.profile.create: boom" {
		test.Fatalf("unexpected message: %s", wrapped.Error())
	}
}

func TestWrapErrorNilPassthrough(test *testing.T) {
	test.Parallel()
	if WrapError("store", "profile", "create", nil) != nil {
		test.Fatalf("expected nil for nil cause")
	}
}
