// Package capture turns click events on rendered help content into links.
package capture

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"HelpsResolver/internal/domain"
	"HelpsResolver/internal/ports"
)

// ClickEvent is the event name the listener subscribes to.
const ClickEvent = "click"

const linkSelector = "a[href], area[href]"

// Capturer extracts the clicked link from an event target.
type Capturer struct {
	base      *url.URL
	converter *md.Converter
	logger    *slog.Logger
}

// NewCapturer builds a capturer. When baseURL is set, relative hrefs are
// resolved against it the way a browser resolves element.href.
func NewCapturer(baseURL string, log *slog.Logger) (*Capturer, error) {
	c := &Capturer{
		converter: md.NewConverter("", true, nil),
		logger:    log,
	}
	if baseURL != "" {
		base, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		c.base = base
	}
	return c, nil
}

// Capture suppresses the default navigation and returns the link the event
// target carries. ok is false when the target is not a hyperlink.
func (c *Capturer) Capture(ev ports.Event) (domain.ClickedLink, bool) {
	ev.PreventDefault()

	target := strings.TrimSpace(ev.TargetHTML())
	if target == "" {
		return domain.ClickedLink{}, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(target))
	if err != nil {
		c.debug("parse event target", "error", err)
		return domain.ClickedLink{}, false
	}

	// Only the target itself counts; links nested inside it do not.
	anchor := doc.Find("body").Children().First()
	if anchor.Length() == 0 || !anchor.Is(linkSelector) {
		return domain.ClickedLink{}, false
	}

	href, _ := anchor.Attr("href")
	href = strings.TrimSpace(href)
	if href == "" {
		return domain.ClickedLink{}, false
	}

	outer, err := goquery.OuterHtml(anchor)
	if err != nil {
		outer = target
	}

	return domain.ClickedLink{
		Href:       c.resolve(href),
		OriginHTML: outer,
		Label:      c.label(anchor),
	}, true
}

func (c *Capturer) resolve(href string) string {
	if c.base == nil || strings.HasPrefix(strings.ToLower(href), "rc:") {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return c.base.ResolveReference(ref).String()
}

func (c *Capturer) label(anchor *goquery.Selection) string {
	inner, err := anchor.Html()
	if err != nil || strings.TrimSpace(inner) == "" {
		return strings.TrimSpace(anchor.Text())
	}
	text, err := c.converter.ConvertString(inner)
	if err != nil {
		return strings.TrimSpace(anchor.Text())
	}
	return strings.TrimSpace(text)
}

func (c *Capturer) debug(msg string, args ...interface{}) {
	if c.logger != nil {
		c.logger.Debug(msg, args...)
	}
}

// SubmitFunc receives every captured link.
type SubmitFunc func(ctx context.Context, link domain.ClickedLink)

// Listener forwards captured clicks to a resolver.
type Listener struct {
	capturer *Capturer
	submit   SubmitFunc
}

// NewListener binds a capturer to a submit function.
func NewListener(capturer *Capturer, submit SubmitFunc) *Listener {
	return &Listener{capturer: capturer, submit: submit}
}

// Attach subscribes to click events and returns the unsubscribe func.
func (l *Listener) Attach(source ports.EventSource) func() {
	return source.Subscribe(ClickEvent, l.Handle)
}

// Handle processes one event.
func (l *Listener) Handle(ctx context.Context, ev ports.Event) {
	link, ok := l.capturer.Capture(ev)
	if !ok {
		return
	}
	l.capturer.debug("link captured", "href", link.Href, "label", link.Label)
	if l.submit != nil {
		l.submit(ctx, link)
	}
}
