package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrUnrecognizedLink = errors.New("unrecognized link")
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// FailureKind classifies why a resolution did not produce content.
type FailureKind string

const (
	FailureClassification FailureKind = "classification"
	FailureHTTPStatus     FailureKind = "http_status"
	FailureTransport      FailureKind = "transport"
)

// FetchError is the only error shape a resolution reports.
// HTTPStatus is 0 when no response was received.
type FetchError struct {
	Kind          FailureKind
	Link          string
	LinkHTML      string
	AttemptedURLs []string
	HTTPStatus    int
	Cause         error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s failure for link %q", e.Kind, e.Link)
	if len(e.AttemptedURLs) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.AttemptedURLs, ", "))
	}
	if e.HTTPStatus != 0 {
		fmt.Fprintf(&b, ": http %d", e.HTTPStatus)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error { return e.Cause }

// ErrorRecord is a persisted diagnostic for one reported failure.
type ErrorRecord struct {
	ID            uuid.UUID
	Kind          FailureKind
	Link          string
	LinkHTML      string
	AttemptedURLs []string
	HTTPStatus    int
	Message       string
	CreatedAt     time.Time
}

// NewErrorRecord snapshots a failure for the diagnostics journal.
func NewErrorRecord(ferr *FetchError, at time.Time) ErrorRecord {
	urls := make([]string, len(ferr.AttemptedURLs))
	copy(urls, ferr.AttemptedURLs)
	return ErrorRecord{
		ID:            uuid.New(),
		Kind:          ferr.Kind,
		Link:          ferr.Link,
		LinkHTML:      ferr.LinkHTML,
		AttemptedURLs: urls,
		HTTPStatus:    ferr.HTTPStatus,
		Message:       ferr.Error(),
		CreatedAt:     at.UTC(),
	}
}
