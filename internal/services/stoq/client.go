package stoq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"preorder/internal/logger"
)

const (
	addChunkSize    = 50
	removeChunkSize = 10 // small batches avoid silent partial failures
)

// Client talks to the Stoq external preorders API.
type Client struct {
	baseURL     string
	accessKey   string
	httpClient  *http.Client
	logger      *logger.Logger
	maxRetries  int
	backoffBase time.Duration
	pacing      time.Duration
}

func NewClient(baseURL, accessKey string, logger *logger.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		accessKey: accessKey,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
		logger:      logger,
		maxRetries:  3,
		backoffBase: time.Second,
		pacing:      500 * time.Millisecond,
	}
}

// CreatePlan registers a new selling plan and returns its Stoq id.
func (c *Client) CreatePlan(ctx context.Context, plan PlanInput) (int64, error) {
	status, body, err := c.do(ctx, http.MethodPost, c.baseURL, planEnvelope{SellingPlan: plan})
	if err != nil {
		return 0, fmt.Errorf("failed to create selling plan %q: %w", plan.InternalName, err)
	}
	if status < 200 || status >= 300 {
		return 0, fmt.Errorf("create selling plan %q failed: %d - %s", plan.InternalName, status, string(body))
	}

	var resp planResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return 0, fmt.Errorf("failed to decode create response for %q: %w", plan.InternalName, err)
	}
	if resp.ID == 0 {
		return 0, fmt.Errorf("create response for %q has no id: %s", plan.InternalName, string(body))
	}
	return resp.ID, nil
}

// UpdatePlan refreshes the mapped fields on an existing plan.
func (c *Client) UpdatePlan(ctx context.Context, planID int64, plan PlanInput) error {
	url := fmt.Sprintf("%s/%d", c.baseURL, planID)
	status, body, err := c.do(ctx, http.MethodPut, url, planEnvelope{SellingPlan: plan})
	if err != nil {
		return fmt.Errorf("failed to update selling plan %d: %w", planID, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("update selling plan %d failed: %d - %s", planID, status, string(body))
	}
	return nil
}

// DisablePlan flips a plan off without deleting it.
func (c *Client) DisablePlan(ctx context.Context, planID int64) error {
	enabled := false
	url := fmt.Sprintf("%s/%d", c.baseURL, planID)
	status, body, err := c.do(ctx, http.MethodPut, url, planEnvelope{SellingPlan: PlanInput{Enabled: &enabled}})
	if err != nil {
		return fmt.Errorf("failed to disable selling plan %d: %w", planID, err)
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("disable selling plan %d failed: %d - %s", planID, status, string(body))
	}
	return nil
}

// DeletePlan removes a plan. A 404 counts as success so deletes are safe to
// re-run.
func (c *Client) DeletePlan(ctx context.Context, planID int64) error {
	url := fmt.Sprintf("%s/%d", c.baseURL, planID)
	status, body, err := c.do(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("failed to delete selling plan %d: %w", planID, err)
	}
	if status == http.StatusNotFound {
		c.logger.Info("Selling plan %d already deleted (404)", planID)
		return nil
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("delete selling plan %d failed: %d - %s", planID, status, string(body))
	}
	return nil
}

// PlanVariantIDs lists the Shopify variant ids currently attached to a plan.
func (c *Client) PlanVariantIDs(ctx context.Context, planID int64) ([]int64, error) {
	url := fmt.Sprintf("%s/%d/product_variants", c.baseURL, planID)
	status, body, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list variants for plan %d: %w", planID, err)
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("list variants for plan %d failed: %d - %s", planID, status, string(body))
	}

	var resp productVariantsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode variants for plan %d: %w", planID, err)
	}
	ids := make([]int64, 0, len(resp.ProductVariants))
	for _, v := range resp.ProductVariants {
		ids = append(ids, v.ShopifyVariantID)
	}
	return ids, nil
}

// AddVariants attaches variants to a plan in chunks. A 422 naming
// existing_variants strips those ids and retries the remainder; a generic
// 422 bisects the chunk until the offending ids are isolated and skipped.
func (c *Client) AddVariants(ctx context.Context, planID int64, variantIDs []int64) (AddResult, error) {
	result := AddResult{Requested: len(variantIDs)}
	url := fmt.Sprintf("%s/%d/add_variant", c.baseURL, planID)

	for start := 0; start < len(variantIDs); start += addChunkSize {
		end := start + addChunkSize
		if end > len(variantIDs) {
			end = len(variantIDs)
		}
		batch := variantIDs[start:end]

		skipped, err := c.addChunk(ctx, url, batch)
		if err != nil {
			return result, fmt.Errorf("add variants to plan %d failed: %w", planID, err)
		}
		result.Skipped = append(result.Skipped, skipped...)
		result.Added += len(batch) - len(skipped)
		c.pace(ctx)
	}
	return result, nil
}

func (c *Client) addChunk(ctx context.Context, url string, batch []int64) ([]int64, error) {
	if len(batch) == 0 {
		return nil, nil
	}

	status, body, err := c.do(ctx, http.MethodPost, url, variantIDsPayload{ShopifyVariantIDs: batch})
	if err != nil {
		return nil, err
	}
	if status >= 200 && status < 300 {
		return nil, nil
	}
	if status != http.StatusUnprocessableEntity {
		return nil, fmt.Errorf("add_variant failed: %d - %s", status, string(body))
	}

	// 422: strip the ids the API reports as already attached and retry the
	// remainder once before falling back to bisection.
	var validation validationResponse
	_ = json.Unmarshal(body, &validation)
	if len(validation.ExistingVariants) > 0 {
		remainder := exclude(batch, validation.ExistingVariants)
		if len(remainder) == 0 {
			return nil, nil
		}
		status, body, err = c.do(ctx, http.MethodPost, url, variantIDsPayload{ShopifyVariantIDs: remainder})
		if err != nil {
			return nil, err
		}
		if status >= 200 && status < 300 {
			return nil, nil
		}
		if status != http.StatusUnprocessableEntity {
			return nil, fmt.Errorf("add_variant failed: %d - %s", status, string(body))
		}
		batch = remainder
	}

	if len(batch) == 1 {
		c.logger.Warn("Variant %d rejected by add_variant, skipping", batch[0])
		return batch, nil
	}

	mid := len(batch) / 2
	left, err := c.addChunk(ctx, url, batch[:mid])
	if err != nil {
		return nil, err
	}
	right, err := c.addChunk(ctx, url, batch[mid:])
	if err != nil {
		return nil, err
	}
	return append(left, right...), nil
}

// RemoveVariants detaches variants in small chunks, falling back to
// per-item calls when a whole chunk fails.
func (c *Client) RemoveVariants(ctx context.Context, planID int64, variantIDs []int64) (RemoveResult, error) {
	result := RemoveResult{Requested: len(variantIDs)}
	url := fmt.Sprintf("%s/%d/remove_variant", c.baseURL, planID)

	for start := 0; start < len(variantIDs); start += removeChunkSize {
		end := start + removeChunkSize
		if end > len(variantIDs) {
			end = len(variantIDs)
		}
		batch := variantIDs[start:end]

		status, body, err := c.do(ctx, http.MethodDelete, url, variantIDsPayload{ShopifyVariantIDs: batch})
		if err == nil && status >= 200 && status < 300 {
			result.Removed += len(batch)
			c.pace(ctx)
			continue
		}
		if err != nil {
			c.logger.Warn("Batch remove on plan %d failed, retrying per item: %v", planID, err)
		} else {
			c.logger.Warn("Batch remove on plan %d failed, retrying per item: %d - %s", planID, status, string(body))
		}

		for _, id := range batch {
			status, body, err := c.do(ctx, http.MethodDelete, url, variantIDsPayload{ShopifyVariantIDs: []int64{id}})
			if err == nil && status >= 200 && status < 300 {
				result.Removed++
			} else {
				if err != nil {
					c.logger.Error("Failed to remove variant %d from plan %d: %v", id, planID, err)
				} else {
					c.logger.Error("Failed to remove variant %d from plan %d: %d - %s", id, planID, status, string(body))
				}
				result.Failed = append(result.Failed, id)
			}
			c.pace(ctx)
		}
	}
	return result, nil
}

// do performs one JSON request with transient retries (network errors, 429,
// 5xx) and exponential backoff. Non-transient statuses are returned to the
// caller undecoded.
func (c *Client) do(ctx context.Context, method, url string, payload interface{}) (int, []byte, error) {
	var bodyBytes []byte
	if payload != nil {
		var err error
		bodyBytes, err = json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	backoff := c.backoffBase
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		var reader io.Reader
		if bodyBytes != nil {
			reader = bytes.NewReader(bodyBytes)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Auth-Token", c.accessKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to make request: %w", err)
		} else {
			respBody, readErr := io.ReadAll(resp.Body)
			resp.Body.Close()
			if readErr != nil {
				lastErr = fmt.Errorf("failed to read response: %w", readErr)
			} else if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				lastErr = fmt.Errorf("transient API error: %d - %s", resp.StatusCode, string(respBody))
			} else {
				return resp.StatusCode, respBody, nil
			}
		}

		if attempt < c.maxRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return 0, nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return 0, nil, lastErr
}

func (c *Client) pace(ctx context.Context) {
	if c.pacing <= 0 {
		return
	}
	select {
	case <-time.After(c.pacing):
	case <-ctx.Done():
	}
}

func exclude(ids, drop []int64) []int64 {
	dropSet := make(map[int64]bool, len(drop))
	for _, id := range drop {
		dropSet[id] = true
	}
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !dropSet[id] {
			out = append(out, id)
		}
	}
	return out
}
