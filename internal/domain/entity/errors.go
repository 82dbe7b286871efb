package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrColumnNotFound   = errors.New("column not found")
	ErrColumnAmbiguous  = errors.New("column ambiguous")
	ErrNoMatch          = errors.New("no matching record")
	ErrRuleFileInvalid  = errors.New("rule file invalid")
	ErrProductNotFound  = errors.New("product not found")
	ErrJobNotFound      = errors.New("job not found")
	ErrProviderDisabled = errors.New("provider disabled")
	ErrQueueDisabled    = errors.New("task queue not configured")
)

// ColumnError column resolution failure for one logical field
type ColumnError struct {
	Field      string
	Override   string
	Candidates []string
	Ambiguous  bool
}

func (e *ColumnError) Error() string {
	switch {
	case e.Ambiguous:
		return fmt.Sprintf("column for %q is ambiguous: %s", e.Field, strings.Join(e.Candidates, ", "))
	case e.Override != "":
		return fmt.Sprintf("column %q for %q not found", e.Override, e.Field)
	default:
		return fmt.Sprintf("no column found for %q", e.Field)
	}
}

// Unwrap an ambiguous column is also a missing column
func (e *ColumnError) Unwrap() []error {
	if e.Ambiguous {
		return []error{ErrColumnAmbiguous, ErrColumnNotFound}
	}
	return []error{ErrColumnNotFound}
}

// ExternalServiceError remote call failure (text API, search API, download)
type ExternalServiceError struct {
	Service string
	Op      string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Service, e.Op, e.Err)
}

func (e *ExternalServiceError) Unwrap() error {
	return e.Err
}

// ImageRejectedError image failed a validation check
type ImageRejectedError struct {
	Check  string
	Reason string
}

func (e *ImageRejectedError) Error() string {
	return fmt.Sprintf("image rejected by %s: %s", e.Check, e.Reason)
}

// RuleFileError invalid category rule file
type RuleFileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *RuleFileError) Error() string {
	msg := "invalid rule file"
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RuleFileError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRuleFileInvalid, e.Err}
	}
	return []error{ErrRuleFileInvalid}
}

// InvalidArgumentError bad command option
type InvalidArgumentError struct {
	Field string
	Value string
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("invalid %s: %q", e.Field, e.Value)
}

// IsRejected reports whether err is an image validation rejection
func IsRejected(err error) bool {
	var rejected *ImageRejectedError
	return errors.As(err, &rejected)
}
