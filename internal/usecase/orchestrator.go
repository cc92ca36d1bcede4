package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/normalize"
	"HelpsResolver/internal/ports"
)

// OrchestratorDeps wires the driven adapters used to fetch a resource.
type OrchestratorDeps struct {
	Transport ports.Transport
	Auth      ports.AuthProvider
	Validator ports.StatusValidator
	Timeout   time.Duration
	Logger    *slog.Logger
}

// FetchRequest is one planned resolution.
type FetchRequest struct {
	Link       domain.ClickedLink
	Descriptor domain.ResourceDescriptor
	Plan       domain.FetchPlan
}

// Orchestrator fetches the content and title of a planned resource.
type Orchestrator struct {
	transport ports.Transport
	auth      ports.AuthProvider
	validate  ports.StatusValidator
	timeout   time.Duration
	logger    *slog.Logger
}

// NewOrchestrator constructs the fetch component. A nil validator accepts 2xx.
func NewOrchestrator(deps OrchestratorDeps) *Orchestrator {
	validate := deps.Validator
	if validate == nil {
		validate = normalize.ProcessHTTPErrors
	}
	return &Orchestrator{
		transport: deps.Transport,
		auth:      deps.Auth,
		validate:  validate,
		timeout:   deps.Timeout,
		logger:    deps.Logger,
	}
}

// Resolve issues the planned requests concurrently and reports one outcome.
// Every returned error is a *domain.FetchError.
func (o *Orchestrator) Resolve(ctx context.Context, req FetchRequest) (domain.Resource, error) {
	if !req.Descriptor.Recognized() || req.Plan.Empty() {
		return domain.Resource{}, normalize.ClassificationFailure(req.Link)
	}
	if o.transport == nil {
		return domain.Resource{}, normalize.ProcessUnknownError(errors.New("transport is not configured"), req.Link, req.Plan.URLs())
	}

	cfg := o.requestConfig()
	resource := domain.Resource{Title: req.Descriptor.DerivedTitle}

	g, gctx := errgroup.WithContext(ctx)

	if req.Plan.ContentURL != "" {
		g.Go(func() error {
			data, err := o.fetch(gctx, req, req.Plan.ContentURL, cfg)
			if err != nil {
				return err
			}
			resource.Content = data
			return nil
		})
	}

	if req.Plan.TitleURL != "" {
		g.Go(func() error {
			data, err := o.fetch(gctx, req, req.Plan.TitleURL, cfg)
			if err != nil {
				return err
			}
			resource.Title = data
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return domain.Resource{}, err
	}

	o.debug("resource resolved", "link", req.Link.Href, "category", req.Descriptor.Category.String(), "content_bytes", len(resource.Content))
	return resource, nil
}

func (o *Orchestrator) fetch(ctx context.Context, req FetchRequest, url string, cfg ports.RequestConfig) (string, error) {
	resp, err := o.transport.Get(ctx, url, cfg.Clone())
	if err != nil {
		return "", normalize.ProcessUnknownError(err, req.Link, req.Plan.URLs())
	}
	if err := o.validate(resp, req.Link, url); err != nil {
		return "", normalize.StatusFailure(resp, req.Link, url, err)
	}
	return resp.Data, nil
}

// requestConfig merges the provider config with the timeout override without
// touching the provider's copy.
func (o *Orchestrator) requestConfig() ports.RequestConfig {
	var cfg ports.RequestConfig
	if o.auth != nil {
		cfg = o.auth.RequestConfig().Clone()
	}
	cfg.Timeout = o.timeout
	return cfg
}

func (o *Orchestrator) debug(msg string, args ...interface{}) {
	if o.logger != nil {
		o.logger.Debug(msg, args...)
	}
}
