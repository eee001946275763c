package apperr

import (
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ToGRPC converts an error to a gRPC status error.
// Errors without a Kind are reported as Internal.
func ToGRPC(err error) error {
	if err == nil {
		return nil
	}
	switch KindOf(err) {
	case KindNotFound:
		return status.Error(codes.NotFound, err.Error())
	case KindForbidden:
		return status.Error(codes.PermissionDenied, err.Error())
	case KindInvalidTransition:
		return status.Error(codes.FailedPrecondition, err.Error())
	case KindValidation:
		return status.Error(codes.InvalidArgument, err.Error())
	case KindConflict:
		return status.Error(codes.Aborted, err.Error())
	}
	return status.Errorf(codes.Internal, "internal error: %v", err)
}
