package vecstore

import (
	"errors"
	"fmt"
)

type OperationErrorCode string

const (
	OperationErrorValidation        OperationErrorCode = "validation_failed"
	OperationErrorNotFound          OperationErrorCode = "not_found"
	OperationErrorDimensionMismatch OperationErrorCode = "dimension_mismatch"
	OperationErrorEncodeFailed      OperationErrorCode = "encode_failed"
	OperationErrorDecodeFailed      OperationErrorCode = "decode_failed"
	OperationErrorTransportFailed   OperationErrorCode = "transport_failed"
	OperationErrorTimeout           OperationErrorCode = "timeout"
	OperationErrorQueryFailed       OperationErrorCode = "query_failed"
)

type OperationError struct {
	Code       OperationErrorCode
	Operation  string
	StatusCode int
	Message    string
	Cause      error
}

func (e *OperationError) Error() string {
	if e == nil {
		return "vector store operation failed"
	}
	if e.Message != "" {
		return fmt.Sprintf(
			"vector store operation failed (op=%s code=%s status=%d): %s",
			e.Operation,
			e.Code,
			e.StatusCode,
			e.Message,
		)
	}
	if e.Cause != nil {
		return fmt.Sprintf(
			"vector store operation failed (op=%s code=%s status=%d): %v",
			e.Operation,
			e.Code,
			e.StatusCode,
			e.Cause,
		)
	}
	return fmt.Sprintf(
		"vector store operation failed (op=%s code=%s status=%d)",
		e.Operation,
		e.Code,
		e.StatusCode,
	)
}

func (e *OperationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

func NewOperationError(op string, code OperationErrorCode, msg string, cause error) error {
	return &OperationError{
		Code:      code,
		Operation: op,
		Message:   msg,
		Cause:     cause,
	}
}

func codeIs(err error, code OperationErrorCode) bool {
	var opErr *OperationError
	return errors.As(err, &opErr) && opErr.Code == code
}

// IsNotFound reports whether err is a missing-collection error.
func IsNotFound(err error) bool {
	return codeIs(err, OperationErrorNotFound)
}

// IsDimensionMismatch reports whether err is a vector width mismatch.
// This is the one store error the pipeline recovers from internally.
func IsDimensionMismatch(err error) bool {
	return codeIs(err, OperationErrorDimensionMismatch)
}

// IsUnavailable reports whether err indicates the store cannot be
// reached at all (transport failure or timeout).
func IsUnavailable(err error) bool {
	return codeIs(err, OperationErrorTransportFailed) || codeIs(err, OperationErrorTimeout)
}
