// Package errors provides structured error handling for the marketplace engine.
package errors

import "google.golang.org/grpc/codes"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodeUnauthorized Code = "UNAUTHORIZED"

	// Role registry errors
	CodeAlreadyGranted Code = "ROLE_ALREADY_GRANTED"
	CodeNotGranted     Code = "ROLE_NOT_GRANTED"
	CodeOperatorEmpty  Code = "ROLE_OPERATOR_EMPTY"

	// Catalog errors
	CodeInvalidPrice    Code = "LISTING_INVALID_PRICE"
	CodeInvalidDiscount Code = "LISTING_INVALID_DISCOUNT"
	CodeNotCertifiable  Code = "LISTING_NOT_CERTIFIABLE"
	CodeUnavailable     Code = "LISTING_UNAVAILABLE"

	// Commission errors
	CodeInvalidRate Code = "COMMISSION_INVALID_RATE"

	// Order errors
	CodeIncorrectPayment        Code = "ORDER_INCORRECT_PAYMENT"
	CodeAlreadyFinal            Code = "ORDER_ALREADY_FINAL"
	CodeDeadlineExpired         Code = "ORDER_DEADLINE_EXPIRED"
	CodeMilestoneExceedsBalance Code = "ORDER_MILESTONE_EXCEEDS_BALANCE"
	CodeNotDisputed             Code = "ORDER_NOT_DISPUTED"
	CodeAlreadyDisputed         Code = "ORDER_ALREADY_DISPUTED"
	CodeTransferFailed          Code = "ORDER_TRANSFER_FAILED"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// GRPCCode maps domain codes to gRPC status codes.
func (c Code) GRPCCode() codes.Code {
	switch c {
	// InvalidArgument - validation failures, bad input
	case CodeInvalidPrice,
		CodeInvalidDiscount,
		CodeInvalidRate,
		CodeIncorrectPayment,
		CodeMilestoneExceedsBalance:
		return codes.InvalidArgument

	// PermissionDenied - caller lacks the required role
	case CodeUnauthorized:
		return codes.PermissionDenied

	// FailedPrecondition - state doesn't allow operation
	case CodeAlreadyGranted,
		CodeNotGranted,
		CodeOperatorEmpty,
		CodeNotCertifiable,
		CodeUnavailable,
		CodeAlreadyFinal,
		CodeDeadlineExpired,
		CodeNotDisputed,
		CodeAlreadyDisputed:
		return codes.FailedPrecondition

	// NotFound - resource doesn't exist
	case CodeNotFound:
		return codes.NotFound

	// Aborted - external transfer failed, operation rolled back
	case CodeTransferFailed:
		return codes.Aborted

	default:
		return codes.Internal
	}
}
