package normalize

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/ports"
)

var link = domain.ClickedLink{Href: "rc://*/ta/man/translate/translate-names", OriginHTML: `<a href="rc://*/ta/man/translate/translate-names">Names</a>`}

type statusFault struct{ code int }

func (f statusFault) Error() string   { return fmt.Sprintf("fault %d", f.code) }
func (f statusFault) StatusCode() int { return f.code }

func TestProcessHTTPErrors(t *testing.T) {
	t.Parallel()

	for _, status := range []int{200, 204, 299} {
		assert.NoError(t, ProcessHTTPErrors(ports.Response{Status: status}, link, "u"), "status %d", status)
	}

	err := ProcessHTTPErrors(ports.Response{Status: 404, Data: "Not found"}, link, "https://example.org/01.md")
	require.Error(t, err)

	var ferr *domain.FetchError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, domain.FailureHTTPStatus, ferr.Kind)
	assert.Equal(t, 404, ferr.HTTPStatus)
	assert.Equal(t, link.Href, ferr.Link)
	assert.Equal(t, link.OriginHTML, ferr.LinkHTML)
	assert.Equal(t, []string{"https://example.org/01.md"}, ferr.AttemptedURLs)
	assert.ErrorIs(t, err, domain.ErrUnexpectedStatus)
}

func TestProcessUnknownError(t *testing.T) {
	t.Parallel()

	urls := []string{"a", "b"}
	ferr := ProcessUnknownError(context.DeadlineExceeded, link, urls)

	assert.Equal(t, domain.FailureTransport, ferr.Kind)
	assert.Equal(t, 0, ferr.HTTPStatus)
	assert.Equal(t, []string{"a", "b"}, ferr.AttemptedURLs)
	assert.ErrorIs(t, ferr, context.DeadlineExceeded)
}

func TestProcessUnknownError_KeepsStatus(t *testing.T) {
	t.Parallel()

	ferr := ProcessUnknownError(fmt.Errorf("read body: %w", statusFault{code: 502}), link, []string{"a"})
	assert.Equal(t, 502, ferr.HTTPStatus)
}

func TestProcessUnknownError_PassThrough(t *testing.T) {
	t.Parallel()

	original := &domain.FetchError{Kind: domain.FailureHTTPStatus, HTTPStatus: 500}
	assert.Same(t, original, ProcessUnknownError(fmt.Errorf("wrapped: %w", original), link, nil))
}

func TestClassificationFailure(t *testing.T) {
	t.Parallel()

	ferr := ClassificationFailure(link)
	assert.Equal(t, domain.FailureClassification, ferr.Kind)
	assert.Empty(t, ferr.AttemptedURLs)
	assert.ErrorIs(t, ferr, domain.ErrUnrecognizedLink)
}
