package service

import (
	"errors"
	"fmt"

	"ratethem-backend/internal/repository"

	"github.com/samber/oops"
)

// Error codes carried by service errors.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeEmailTaken          = "EMAIL_TAKEN"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	CodeUnauthenticated     = "UNAUTHENTICATED"
	CodeForbidden           = "FORBIDDEN"
	CodeNotFound            = "NOT_FOUND"
	CodeRatingDuplicate     = "RATING_DUPLICATE"
	CodeConflict            = "CONFLICT"
	CodeInternal            = "INTERNAL"
)

// ErrorCode returns the code attached to err, or CodeInternal for uncoded errors
func ErrorCode(err error) string {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return CodeInternal
	}
	code, ok := oopsErr.Code().(string)
	if !ok || code == "" {
		return CodeInternal
	}
	return code
}

func errInvalidInput(format string, args ...any) error {
	return oops.Code(CodeInvalidInput).Errorf(format, args...)
}

func errEmailTaken(email string) error {
	return oops.Code(CodeEmailTaken).
		With("email", email).
		Errorf("Email already registered")
}

func errInvalidCredentials() error {
	return oops.Code(CodeInvalidCredentials).Errorf("Incorrect email or password")
}

func errInvalidRefreshToken() error {
	return oops.Code(CodeInvalidRefreshToken).Errorf("Invalid or expired refresh token")
}

func errUnauthenticated() error {
	return oops.Code(CodeUnauthenticated).Errorf("Could not validate credentials")
}

func errForbidden(format string, args ...any) error {
	return oops.Code(CodeForbidden).Errorf(format, args...)
}

func errNotFound(resource string, id uint) error {
	return oops.Code(CodeNotFound).
		With("resource", resource).
		With("id", id).
		Errorf("%s not found", resource)
}

func errDuplicateRating(userID, itemID uint) error {
	return oops.Code(CodeRatingDuplicate).
		With("user_id", userID).
		With("item_id", itemID).
		Errorf("You have already rated this item")
}

func errConflict(format string, args ...any) error {
	return oops.Code(CodeConflict).Errorf(format, args...)
}

func errInternal(operation string, err error) error {
	return oops.Code(CodeInternal).
		With("operation", operation).
		Wrap(err)
}

// lookupErr converts a repository lookup failure into a service error
func lookupErr(resource string, id uint, operation string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return errNotFound(resource, id)
	}
	return errInternal(operation, fmt.Errorf("%s %d: %w", resource, id, err))
}
