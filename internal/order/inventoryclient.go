package order

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	"github.com/jcmexdev/ecommerce-mesh/internal/registry"
)

const inventoryServiceName = "inventory-service"

// HTTPInventoryClient calls the inventory collaborator over HTTP, resolving
// an instance through the registry on every call.
type HTTPInventoryClient struct {
	resolver *registry.Resolver
	http     *resty.Client
}

func NewHTTPInventoryClient(resolver *registry.Resolver) *HTTPInventoryClient {
	return &HTTPInventoryClient{
		resolver: resolver,
		// No client-level timeout: calls are bounded by the breaker's
		// per-call context.
		http: resty.New(),
	}
}

func (c *HTTPInventoryClient) Check(ctx context.Context, items []Item) (CheckResult, error) {
	instance, err := c.resolver.Resolve(ctx, inventoryServiceName)
	if err != nil {
		return CheckResult{}, err
	}

	var result CheckResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"items": items}).
		SetResult(&result).
		Post(instance.BaseURL() + "/inventory/check")
	if err != nil {
		return CheckResult{}, fmt.Errorf("inventory check: %w", err)
	}
	if resp.IsError() {
		return CheckResult{}, fmt.Errorf("inventory check: %s returned %s", instance.BaseURL(), resp.Status())
	}

	return result, nil
}

func (c *HTTPInventoryClient) Release(ctx context.Context, items []Item) error {
	instance, err := c.resolver.Resolve(ctx, inventoryServiceName)
	if err != nil {
		return err
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"items": items}).
		Post(instance.BaseURL() + "/inventory/release")
	if err != nil {
		return fmt.Errorf("inventory release: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("inventory release: %s returned %s", instance.BaseURL(), resp.Status())
	}

	return nil
}
