package webhooks

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Request is one raw inbound webhook delivery: the headers the provider sent
// and the unmodified body bytes the signature covers.
type Request struct {
	Headers map[string]string
	Body    []byte
}

var (
	ErrMissingSignature = errors.New("webhooks: signature header is required")
	ErrInvalidSignature = errors.New("webhooks: signature verification failed")
)

type Verifier interface {
	Verify(ctx context.Context, req Request) error
}

type DeliveryIDExtractor func(req Request) (string, error)

// ProviderWebhookTemplate bundles the verifier and delivery-id extractor for
// one provider's header conventions.
type ProviderWebhookTemplate struct {
	ProviderID  string
	EventHeader string
	Verifier    Verifier
	Extractor   DeliveryIDExtractor
}

// HeaderHMACVerifier checks an HMAC-SHA256 signature carried in a request
// header against the raw body. Comparison is constant time; a signature of
// the wrong length class fails the decode-and-compare without an early
// content-dependent return.
type HeaderHMACVerifier struct {
	Header   string
	Prefix   string
	Secret   string
	Encoding string // hex | base64
}

func (v HeaderHMACVerifier) Verify(_ context.Context, req Request) error {
	header := strings.TrimSpace(headerValue(req.Headers, v.Header))
	if header == "" {
		return fmt.Errorf("%w: %s", ErrMissingSignature, strings.TrimSpace(v.Header))
	}
	secret := strings.TrimSpace(v.Secret)
	if secret == "" {
		return fmt.Errorf("webhooks: signature secret is required")
	}
	prefix := strings.TrimSpace(v.Prefix)
	if prefix != "" && !strings.HasPrefix(header, prefix) {
		return fmt.Errorf("%w: expected %q prefix", ErrInvalidSignature, prefix)
	}
	signature := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if signature == "" {
		return fmt.Errorf("%w: signature value is empty", ErrInvalidSignature)
	}

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write(req.Body)
	expected := mac.Sum(nil)

	var decoded []byte
	var err error
	switch strings.ToLower(strings.TrimSpace(v.Encoding)) {
	case "base64":
		decoded, err = base64.StdEncoding.DecodeString(signature)
		if err != nil {
			return fmt.Errorf("%w: decode base64 signature: %v", ErrInvalidSignature, err)
		}
	default:
		decoded, err = hex.DecodeString(signature)
		if err != nil {
			return fmt.Errorf("%w: decode hex signature: %v", ErrInvalidSignature, err)
		}
	}
	if subtle.ConstantTimeCompare(decoded, expected) != 1 {
		return fmt.Errorf("%w: verify the raw body matches the signed payload", ErrInvalidSignature)
	}
	return nil
}

func HeaderDeliveryIDExtractor(headers ...string) DeliveryIDExtractor {
	keys := append([]string(nil), headers...)
	return func(req Request) (string, error) {
		for _, key := range keys {
			if value := strings.TrimSpace(headerValue(req.Headers, key)); value != "" {
				return value, nil
			}
		}
		return "", fmt.Errorf("webhooks: delivery id is required for dedupe")
	}
}

func ChainDeliveryIDExtractors(extractors ...DeliveryIDExtractor) DeliveryIDExtractor {
	list := append([]DeliveryIDExtractor(nil), extractors...)
	return func(req Request) (string, error) {
		var lastErr error
		for _, extractor := range list {
			if extractor == nil {
				continue
			}
			deliveryID, err := extractor(req)
			if err == nil && strings.TrimSpace(deliveryID) != "" {
				return strings.TrimSpace(deliveryID), nil
			}
			if err != nil {
				lastErr = err
			}
		}
		if lastErr != nil {
			return "", lastErr
		}
		return "", fmt.Errorf("webhooks: delivery id is required for dedupe")
	}
}

// NewGitHubWebhookTemplate follows GitHub's header conventions: hex HMAC in
// X-Hub-Signature-256 with a "sha256=" prefix, the event name in
// X-GitHub-Event, and the delivery id in X-GitHub-Delivery.
func NewGitHubWebhookTemplate(secret string) ProviderWebhookTemplate {
	return ProviderWebhookTemplate{
		ProviderID:  "github",
		EventHeader: "X-GitHub-Event",
		Verifier: HeaderHMACVerifier{
			Header:   "X-Hub-Signature-256",
			Prefix:   "sha256=",
			Secret:   strings.TrimSpace(secret),
			Encoding: "hex",
		},
		Extractor: HeaderDeliveryIDExtractor("X-GitHub-Delivery", "X-Delivery-Id"),
	}
}

// NewGiteaWebhookTemplate follows Gitea's header conventions; the payload
// shape is close enough to GitHub's for the shared normalizer.
func NewGiteaWebhookTemplate(secret string) ProviderWebhookTemplate {
	return ProviderWebhookTemplate{
		ProviderID:  "gitea",
		EventHeader: "X-Gitea-Event",
		Verifier: HeaderHMACVerifier{
			Header:   "X-Gitea-Signature",
			Secret:   strings.TrimSpace(secret),
			Encoding: "hex",
		},
		Extractor: HeaderDeliveryIDExtractor("X-Gitea-Delivery", "X-Delivery-Id"),
	}
}

// SignBody produces the signature header value a provider would send for the
// given body, useful for tests and outbound verification tooling.
func SignBody(secret string, prefix string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(strings.TrimSpace(secret)))
	_, _ = mac.Write(body)
	return strings.TrimSpace(prefix) + hex.EncodeToString(mac.Sum(nil))
}

func headerValue(headers map[string]string, key string) string {
	if len(headers) == 0 {
		return ""
	}
	for existing, value := range headers {
		if strings.EqualFold(strings.TrimSpace(existing), strings.TrimSpace(key)) {
			return strings.TrimSpace(value)
		}
	}
	return ""
}
