/*
Package errors provides semantic error types for the AssetStore library.

The package defines common error scenarios with specific types that can be
checked using the standard errors.Is() function or the provided helper functions.

Common Errors:

	var (
	    ErrResourceNotFound            = errors.New("resource not found")
	    ErrResourceAlreadyMaterialized = errors.New("resource already materialized")
	    ErrResourceNotMaterialized     = errors.New("resource not materialized")
	    ErrDatumNotFound               = errors.New("datum not found")
	    ErrUnknownSpec                 = errors.New("unknown spec")
	    ErrColumnLengthMismatch        = errors.New("column length mismatch")
	    ErrInvalidLocalID              = errors.New("invalid local id")
	    ErrDuplicateResourceUID        = errors.New("duplicate resource uid")
	    ErrInvalidInput                = errors.New("invalid input")
	    ErrValidationUnsupported       = errors.New("bulk kwarg validation not supported")
	    ErrBackendIO                   = errors.New("backend i/o failure")
	)

Usage:

	// Check error type
	res, err := registry.ResourceGivenUID(ctx, "123")
	if err != nil {
	    if errors.IsResourceNotFound(err) {
	        // Handle not found case
	        return nil, fmt.Errorf("resource %s does not exist", "123")
	    }
	    return nil, err
	}

	// Create typed errors
	err := errors.NewResourceNotFoundError("123")
	err := errors.NewColumnLengthMismatchError("offset", 4, 3)
	err := errors.NewBackendError("sqlite", "insert resource", ioErr)

The error types implement the error interface and support wrapping,
making them compatible with Go's standard error handling patterns.
*/
package errors
