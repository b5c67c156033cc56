// Package gateway is the reverse proxy in front of the mesh: it resolves
// the target service dynamically and relays the downstream response
// verbatim.
package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

// instanceResolver is the piece of the registry the proxy needs.
type instanceResolver interface {
	Resolve(ctx context.Context, serviceName string) (registry.ServiceInstance, error)
}

// bodylessMethods never carry a forwarded body, even if the inbound request
// unexpectedly had one.
var bodylessMethods = map[string]bool{
	http.MethodGet:  true,
	http.MethodHead: true,
}

// Proxy forwards /api/{service}/* requests to a resolved instance of
// {service}, preserving method, headers, and body, and relaying the
// response byte-for-byte.
type Proxy struct {
	resolver instanceResolver
	client   *http.Client
}

// NewProxy builds a proxy with the given upstream timeout. A zero timeout
// leaves upstream calls bounded only by the inbound request context.
func NewProxy(resolver instanceResolver, upstreamTimeout time.Duration) *Proxy {
	return &Proxy{
		resolver: resolver,
		client: &http.Client{
			Timeout: upstreamTimeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 100,
			},
		},
	}
}

// Forward is the handler behind ANY /api/{service}/*.
func (p *Proxy) Forward(w http.ResponseWriter, r *http.Request) {
	serviceName := chi.URLParam(r, "service")
	rest := chi.URLParam(r, "*")

	instance, err := p.resolver.Resolve(r.Context(), serviceName)
	if err != nil {
		if errors.Is(err, registry.ErrServiceNotFound) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "Service not found"})
			return
		}
		p.transportError(w, err)
		return
	}

	target := instance.BaseURL() + "/" + rest
	if r.URL.RawQuery != "" {
		target += "?" + r.URL.RawQuery
	}

	slog.InfoContext(r.Context(), "forwarding request",
		"service", serviceName,
		"method", r.Method,
		"target", target,
	)

	var body io.Reader
	if !bodylessMethods[r.Method] {
		body = r.Body
	}

	outbound, err := http.NewRequestWithContext(r.Context(), r.Method, target, body)
	if err != nil {
		p.transportError(w, err)
		return
	}
	copyHeaders(outbound.Header, r.Header)
	// The outbound Host follows the target URL; forwarding the inbound host
	// would confuse the downstream service's own routing.

	resp, err := p.client.Do(outbound)
	if err != nil {
		// Connection refused, timeout, DNS failure. A downstream that
		// answered with 4xx/5xx does NOT land here — its deliberate error
		// response is relayed below, never masked as a gateway 500.
		p.transportError(w, err)
		return
	}
	defer resp.Body.Close()

	copyHeaders(w.Header(), resp.Header)
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		slog.WarnContext(r.Context(), "relay interrupted", "service", serviceName, "error", err)
	}
}

func (p *Proxy) transportError(w http.ResponseWriter, err error) {
	http.Error(w, fmt.Sprintf("Internal Server Error: %s", err.Error()), http.StatusInternalServerError)
}

func copyHeaders(dst, src http.Header) {
	for key, values := range src {
		if strings.EqualFold(key, "Host") {
			continue
		}
		for _, v := range values {
			dst.Add(key, v)
		}
	}
}
