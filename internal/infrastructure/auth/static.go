package auth

import (
	"net/http"
	"strings"

	"HelpsResolver/internal/ports"
)

// StaticProvider serves a fixed request configuration built at startup.
type StaticProvider struct {
	cfg ports.RequestConfig
}

var _ ports.AuthProvider = (*StaticProvider)(nil)

// NewStaticProvider builds the Gitea token header when a token is given.
func NewStaticProvider(token, userAgent string) *StaticProvider {
	header := http.Header{}
	if token = strings.TrimSpace(token); token != "" {
		header.Set("Authorization", "token "+token)
	}
	if userAgent != "" {
		header.Set("User-Agent", userAgent)
	}
	return &StaticProvider{cfg: ports.RequestConfig{Header: header}}
}

// RequestConfig returns a copy; callers may modify it freely.
func (p *StaticProvider) RequestConfig() ports.RequestConfig {
	return p.cfg.Clone()
}
