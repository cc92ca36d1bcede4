package ports

import (
	"context"
	"net/http"
	"time"

	"HelpsResolver/internal/domain"
)

// Event is a UI event delivered by an EventSource.
type Event interface {
	Name() string
	// TargetHTML is the serialized outer markup of the event target.
	TargetHTML() string
	PreventDefault()
}

// EventHandler consumes events of one name.
type EventHandler func(ctx context.Context, ev Event)

// EventSource is the global event subscription primitive.
type EventSource interface {
	Subscribe(eventName string, handler EventHandler) (unsubscribe func())
}

// RequestConfig is the per-request configuration handed to the transport.
type RequestConfig struct {
	Header  http.Header
	Timeout time.Duration
}

// Clone returns a copy that shares nothing mutable with the receiver.
func (c RequestConfig) Clone() RequestConfig {
	return RequestConfig{Header: c.Header.Clone(), Timeout: c.Timeout}
}

// AuthProvider exposes the read-only authentication config for requests.
type AuthProvider interface {
	RequestConfig() RequestConfig
}

// Response is a received HTTP response, whatever its status.
type Response struct {
	Status int
	Data   string
}

// Transport performs GET requests. A returned error means no response was
// received; unacceptable statuses are left to a StatusValidator.
type Transport interface {
	Get(ctx context.Context, url string, cfg RequestConfig) (Response, error)
}

// StatusValidator accepts or rejects a received response.
type StatusValidator func(resp Response, link domain.ClickedLink, url string) error

// ErrorReporter receives normalized resolution failures.
type ErrorReporter interface {
	ReportResourceError(ctx context.Context, ferr *domain.FetchError) error
}

// ErrorJournal persists failures for later diagnostics.
type ErrorJournal interface {
	Record(ctx context.Context, rec domain.ErrorRecord) error
	Recent(ctx context.Context, limit int) ([]domain.ErrorRecord, error)
}
