/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package errors

import (
	"errors"
	"fmt"
)

// Common sentinel errors
var (
	// ErrResourceNotFound is returned when no resource exists for a uid
	ErrResourceNotFound = errors.New("resource not found")

	// ErrResourceAlreadyMaterialized is returned when a bulk registration is
	// attempted against a resource whose payload container already exists
	ErrResourceAlreadyMaterialized = errors.New("resource already materialized")

	// ErrResourceNotMaterialized is returned when an append or read is
	// attempted against a resource with no payload container yet
	ErrResourceNotMaterialized = errors.New("resource not materialized")

	// ErrDatumNotFound is returned for a malformed datum id or a local id
	// that does not resolve to a stored row
	ErrDatumNotFound = errors.New("datum not found")

	// ErrUnknownSpec is returned when no handler is registered for a
	// resource's spec
	ErrUnknownSpec = errors.New("unknown spec")

	// ErrColumnLengthMismatch is returned when the columns of a bulk
	// registration do not all have the same length
	ErrColumnLengthMismatch = errors.New("column length mismatch")

	// ErrInvalidLocalID is returned when a local id cannot take part in a
	// datum id
	ErrInvalidLocalID = errors.New("invalid local id")

	// ErrDuplicateResourceUID is returned on a metadata-store integrity
	// violation caused by a colliding resource uid
	ErrDuplicateResourceUID = errors.New("duplicate resource uid")

	// ErrInvalidInput is returned when input validation fails
	ErrInvalidInput = errors.New("invalid input")

	// ErrValidationUnsupported is returned when the reserved bulk-insert
	// validation option is enabled; kwarg-table validation is not supported
	ErrValidationUnsupported = errors.New("bulk kwarg validation not supported")

	// ErrBackendIO wraps any failure of an underlying storage backend
	ErrBackendIO = errors.New("backend i/o failure")
)

// ResourceNotFoundError represents a lookup of a uid with no resource record
type ResourceNotFoundError struct {
	UID string
}

func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource %q not found", e.UID)
}

func (e *ResourceNotFoundError) Is(target error) bool {
	return target == ErrResourceNotFound
}

// ResourceAlreadyMaterializedError represents a second bulk registration
// against a resource whose payload container was already written
type ResourceAlreadyMaterializedError struct {
	UID string
}

func (e *ResourceAlreadyMaterializedError) Error() string {
	return fmt.Sprintf("resource %q already materialized", e.UID)
}

func (e *ResourceAlreadyMaterializedError) Is(target error) bool {
	return target == ErrResourceAlreadyMaterialized
}

// ResourceNotMaterializedError represents an append or read against a
// resource that has no payload container yet
type ResourceNotMaterializedError struct {
	UID string
}

func (e *ResourceNotMaterializedError) Error() string {
	return fmt.Sprintf("resource %q not materialized", e.UID)
}

func (e *ResourceNotMaterializedError) Is(target error) bool {
	return target == ErrResourceNotMaterialized
}

// DatumNotFoundError represents a datum id that is malformed or does not
// resolve to a stored row
type DatumNotFoundError struct {
	DatumID string
}

func (e *DatumNotFoundError) Error() string {
	return fmt.Sprintf("datum %q not found", e.DatumID)
}

func (e *DatumNotFoundError) Is(target error) bool {
	return target == ErrDatumNotFound
}

// UnknownSpecError represents a resource spec with no registered handler
type UnknownSpecError struct {
	Spec string
}

func (e *UnknownSpecError) Error() string {
	return fmt.Sprintf("no handler registered for spec %q", e.Spec)
}

func (e *UnknownSpecError) Is(target error) bool {
	return target == ErrUnknownSpec
}

// ColumnLengthMismatchError represents a bulk kwarg table whose columns do
// not all have the same length
type ColumnLengthMismatchError struct {
	Column string
	Want   int
	Got    int
}

func (e *ColumnLengthMismatchError) Error() string {
	return fmt.Sprintf("column %q has %d values, want %d", e.Column, e.Got, e.Want)
}

func (e *ColumnLengthMismatchError) Is(target error) bool {
	return target == ErrColumnLengthMismatch
}

// InvalidLocalIDError represents a local id that cannot take part in a
// datum id, such as one containing the id separator
type InvalidLocalIDError struct {
	LocalID string
}

func (e *InvalidLocalIDError) Error() string {
	return fmt.Sprintf("invalid local id %q", e.LocalID)
}

func (e *InvalidLocalIDError) Is(target error) bool {
	return target == ErrInvalidLocalID
}

// DuplicateResourceUIDError represents a metadata-store integrity violation
// on a colliding resource uid
type DuplicateResourceUIDError struct {
	UID string
}

func (e *DuplicateResourceUIDError) Error() string {
	return fmt.Sprintf("resource uid %q already exists", e.UID)
}

func (e *DuplicateResourceUIDError) Is(target error) bool {
	return target == ErrDuplicateResourceUID
}

// ValidationError represents an input validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %q: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// BackendError wraps a failure of an underlying storage backend such as a
// bad disk, a broken connection, or a permission problem. Op names the
// failed operation and Store the backend that performed it.
type BackendError struct {
	Op    string
	Store string
	Err   error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Store, e.Op, e.Err)
}

func (e *BackendError) Is(target error) bool {
	return target == ErrBackendIO
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// Helper functions for creating errors

// NewResourceNotFoundError creates a new ResourceNotFoundError
func NewResourceNotFoundError(uid string) error {
	return &ResourceNotFoundError{UID: uid}
}

// NewResourceAlreadyMaterializedError creates a new ResourceAlreadyMaterializedError
func NewResourceAlreadyMaterializedError(uid string) error {
	return &ResourceAlreadyMaterializedError{UID: uid}
}

// NewResourceNotMaterializedError creates a new ResourceNotMaterializedError
func NewResourceNotMaterializedError(uid string) error {
	return &ResourceNotMaterializedError{UID: uid}
}

// NewDatumNotFoundError creates a new DatumNotFoundError
func NewDatumNotFoundError(datumID string) error {
	return &DatumNotFoundError{DatumID: datumID}
}

// NewUnknownSpecError creates a new UnknownSpecError
func NewUnknownSpecError(spec string) error {
	return &UnknownSpecError{Spec: spec}
}

// NewColumnLengthMismatchError creates a new ColumnLengthMismatchError
func NewColumnLengthMismatchError(column string, want, got int) error {
	return &ColumnLengthMismatchError{Column: column, Want: want, Got: got}
}

// NewInvalidLocalIDError creates a new InvalidLocalIDError
func NewInvalidLocalIDError(localID string) error {
	return &InvalidLocalIDError{LocalID: localID}
}

// NewDuplicateResourceUIDError creates a new DuplicateResourceUIDError
func NewDuplicateResourceUIDError(uid string) error {
	return &DuplicateResourceUIDError{UID: uid}
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// NewBackendError creates a new BackendError wrapping err
func NewBackendError(store, op string, err error) error {
	return &BackendError{Op: op, Store: store, Err: err}
}

// IsResourceNotFound checks if an error is a resource not found error
func IsResourceNotFound(err error) bool {
	return errors.Is(err, ErrResourceNotFound)
}

// IsResourceAlreadyMaterialized checks if an error reports an existing
// payload container
func IsResourceAlreadyMaterialized(err error) bool {
	return errors.Is(err, ErrResourceAlreadyMaterialized)
}

// IsResourceNotMaterialized checks if an error reports a missing payload
// container
func IsResourceNotMaterialized(err error) bool {
	return errors.Is(err, ErrResourceNotMaterialized)
}

// IsDatumNotFound checks if an error is a datum not found error
func IsDatumNotFound(err error) bool {
	return errors.Is(err, ErrDatumNotFound)
}

// IsUnknownSpec checks if an error reports an unregistered spec
func IsUnknownSpec(err error) bool {
	return errors.Is(err, ErrUnknownSpec)
}

// IsColumnLengthMismatch checks if an error reports ragged bulk columns
func IsColumnLengthMismatch(err error) bool {
	return errors.Is(err, ErrColumnLengthMismatch)
}

// IsInvalidLocalID checks if an error reports an unusable local id
func IsInvalidLocalID(err error) bool {
	return errors.Is(err, ErrInvalidLocalID)
}

// IsDuplicateResourceUID checks if an error reports a uid collision
func IsDuplicateResourceUID(err error) bool {
	return errors.Is(err, ErrDuplicateResourceUID)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsBackendIO checks if an error wraps an underlying storage failure
func IsBackendIO(err error) bool {
	return errors.Is(err, ErrBackendIO)
}
