// Package normalize converts raw fetch outcomes into *domain.FetchError values.
package normalize

import (
	"errors"
	"fmt"
	"net/http"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/ports"
)

var _ ports.StatusValidator = ProcessHTTPErrors

// StatusCoder is implemented by transport faults that still know a status.
type StatusCoder interface {
	StatusCode() int
}

// ProcessHTTPErrors accepts 2xx responses and rejects everything else.
func ProcessHTTPErrors(resp ports.Response, link domain.ClickedLink, url string) error {
	if resp.Status >= http.StatusOK && resp.Status < http.StatusMultipleChoices {
		return nil
	}
	return StatusFailure(resp, link, url, fmt.Errorf("%w: %d %s", domain.ErrUnexpectedStatus, resp.Status, http.StatusText(resp.Status)))
}

// StatusFailure reports a received response rejected by a validator. A cause
// that already is a *domain.FetchError is returned as is.
func StatusFailure(resp ports.Response, link domain.ClickedLink, url string, cause error) *domain.FetchError {
	var ferr *domain.FetchError
	if errors.As(cause, &ferr) {
		return ferr
	}
	return &domain.FetchError{
		Kind:          domain.FailureHTTPStatus,
		Link:          link.Href,
		LinkHTML:      link.OriginHTML,
		AttemptedURLs: []string{url},
		HTTPStatus:    resp.Status,
		Cause:         cause,
	}
}

// ProcessUnknownError wraps a fault raised while fetching. Faults that already
// are *domain.FetchError pass through unchanged.
func ProcessUnknownError(fault error, link domain.ClickedLink, urls []string) *domain.FetchError {
	var ferr *domain.FetchError
	if errors.As(fault, &ferr) {
		return ferr
	}

	status := 0
	var coder StatusCoder
	if errors.As(fault, &coder) {
		status = coder.StatusCode()
	}

	attempted := make([]string, len(urls))
	copy(attempted, urls)

	return &domain.FetchError{
		Kind:          domain.FailureTransport,
		Link:          link.Href,
		LinkHTML:      link.OriginHTML,
		AttemptedURLs: attempted,
		HTTPStatus:    status,
		Cause:         fault,
	}
}

// ClassificationFailure reports a link that produced nothing to fetch.
func ClassificationFailure(link domain.ClickedLink) *domain.FetchError {
	return &domain.FetchError{
		Kind:     domain.FailureClassification,
		Link:     link.Href,
		LinkHTML: link.OriginHTML,
		Cause:    domain.ErrUnrecognizedLink,
	}
}
