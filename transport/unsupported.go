package transport

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-repowatch/core"
)

// UnsupportedTransport occupies a platform slot whose real transport is not
// configured. Every send fails with a descriptive error so dispatch results
// surface the misconfiguration instead of dropping messages silently.
type UnsupportedTransport struct {
	platform string
	reason   string
}

func NewUnsupportedTransport(platform string, reason string) *UnsupportedTransport {
	return &UnsupportedTransport{
		platform: strings.TrimSpace(strings.ToLower(platform)),
		reason:   strings.TrimSpace(reason),
	}
}

func (t *UnsupportedTransport) Platform() string {
	if t == nil {
		return ""
	}
	return t.platform
}

func (t *UnsupportedTransport) Send(context.Context, core.PushTarget, core.Message) error {
	if t == nil {
		return fmt.Errorf("transport: transport is nil")
	}
	if t.reason != "" {
		return fmt.Errorf("transport: %s transport is not configured: %s", t.platform, t.reason)
	}
	return fmt.Errorf("transport: %s transport is not configured", t.platform)
}

var _ core.Transport = (*UnsupportedTransport)(nil)
var _ core.TransportResolver = (*Registry)(nil)
