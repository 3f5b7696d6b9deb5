package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates resource not found
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidRequest indicates invalid request
	ErrInvalidRequest = errors.New("invalid request")
	// ErrUnauthorized indicates unauthorized access
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNoStatement indicates no statement has been loaded
	ErrNoStatement = errors.New("no statement loaded")

	// ErrMissingRequiredLineItem indicates the total assets row is absent
	ErrMissingRequiredLineItem = errors.New("missing required line item")
	// ErrInsufficientData indicates the liquidity inputs are absent
	ErrInsufficientData = errors.New("insufficient data")
	// ErrUnreadableFile indicates the upload could not be parsed as a table
	ErrUnreadableFile = errors.New("unreadable file")
	// ErrCredentialMissing indicates no API key is configured
	ErrCredentialMissing = errors.New("credential missing")
)

// Kind classifies failures for surfacing to the user
type Kind string

const (
	KindStructural              Kind = "structural_error"
	KindUnreadableFile          Kind = "unreadable_file"
	KindMissingOptionalLineItem Kind = "missing_optional_line_item"
	KindCredentialMissing       Kind = "credential_missing"
	KindProviderError           Kind = "provider_error"
	KindUnexpected              Kind = "unexpected_error"
)

// Error attaches a kind and operation to an underlying error
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name
func E(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind of err. Sentinels map to their natural kind;
// anything unclassified is KindUnexpected.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	switch {
	case errors.Is(err, ErrMissingRequiredLineItem):
		return KindStructural
	case errors.Is(err, ErrInsufficientData):
		return KindMissingOptionalLineItem
	case errors.Is(err, ErrUnreadableFile):
		return KindUnreadableFile
	case errors.Is(err, ErrCredentialMissing):
		return KindCredentialMissing
	}
	return KindUnexpected
}
