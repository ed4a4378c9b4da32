package shopify

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
	checkBatchSize   = 250 // nodes() accepts at most 250 ids per call
	profileBatchSize = 50
)

// Client talks to the Shopify Admin GraphQL endpoint with an access token.
type Client struct {
	endpoint    string
	accessToken string
	httpClient  *http.Client
	logger      *logger.Logger
	maxRetries  int
	backoffBase time.Duration
	pacing      time.Duration
}

func NewClient(endpoint, accessToken string, logger *logger.Logger) *Client {
	return &Client{
		endpoint:    endpoint,
		accessToken: accessToken,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger:      logger,
		maxRetries:  4,
		backoffBase: time.Second,
		pacing:      150 * time.Millisecond,
	}
}

// execute posts one GraphQL document, retrying rate limits and server errors
// with exponential backoff.
func (c *Client) execute(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	body, err := json.Marshal(GraphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := c.backoffBase
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("X-Shopify-Access-Token", c.accessToken)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("failed to make request: %w", err)
		} else {
			payload, retryable, err := c.decode(resp)
			if err == nil {
				return payload, nil
			}
			if !retryable {
				return nil, err
			}
			lastErr = err
		}

		if attempt < c.maxRetries {
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			backoff *= 2
		}
	}
	return nil, lastErr
}

func (c *Client) decode(resp *http.Response) (json.RawMessage, bool, error) {
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		body, _ := io.ReadAll(resp.Body)
		return nil, true, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("API request failed: %d - %s", resp.StatusCode, string(body))
	}

	var gqlResp GraphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&gqlResp); err != nil {
		return nil, false, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return nil, false, fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))
	}
	return gqlResp.Data, false, nil
}

// ToVariantGID converts a numeric variant id to a Shopify GID. Values that
// already look like GIDs pass through; anything else is left for the API's
// userErrors to flag.
func ToVariantGID(value string) string {
	if strings.HasPrefix(value, "gid://shopify/ProductVariant/") {
		return value
	}
	return "gid://shopify/ProductVariant/" + value
}

// CheckVariants verifies which variant ids still exist on Shopify. It returns
// the numeric ids that resolved to a ProductVariant node and those that did
// not.
func (c *Client) CheckVariants(ctx context.Context, variantIDs []string) (found, missing []string, err error) {
	for start := 0; start < len(variantIDs); start += checkBatchSize {
		end := start + checkBatchSize
		if end > len(variantIDs) {
			end = len(variantIDs)
		}
		batch := variantIDs[start:end]

		gids := make([]string, len(batch))
		for i, id := range batch {
			gids[i] = ToVariantGID(id)
		}

		data, err := c.execute(ctx, nodesQuery, map[string]interface{}{"ids": gids})
		if err != nil {
			return nil, nil, fmt.Errorf("variant check failed: %w", err)
		}

		var payload nodesPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, nil, fmt.Errorf("failed to decode nodes payload: %w", err)
		}
		if len(payload.Nodes) != len(batch) {
			return nil, nil, fmt.Errorf("nodes payload has %d entries for %d ids", len(payload.Nodes), len(batch))
		}
		for i, node := range payload.Nodes {
			if node != nil && node.Typename == "ProductVariant" {
				found = append(found, batch[i])
			} else {
				missing = append(missing, batch[i])
			}
		}

		c.pace(ctx)
	}
	return found, missing, nil
}

// ProfileVariantIDs pages through the delivery profile's items and collects
// every member variant GID.
func (c *Client) ProfileVariantIDs(ctx context.Context, profileID string) (map[string]bool, error) {
	existing := make(map[string]bool)
	var cursor *string

	for {
		variables := map[string]interface{}{"id": profileID}
		if cursor != nil {
			variables["cursor"] = *cursor
		}
		data, err := c.execute(ctx, profileItemsQuery, variables)
		if err != nil {
			return nil, fmt.Errorf("profile items query failed: %w", err)
		}

		var payload profileItemsPayload
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("failed to decode profile payload: %w", err)
		}
		if payload.DeliveryProfile == nil {
			return nil, fmt.Errorf("delivery profile not found: %s", profileID)
		}

		items := payload.DeliveryProfile.ProfileItems
		for _, edge := range items.Edges {
			for _, v := range edge.Node.Variants.Edges {
				existing[v.Node.ID] = true
			}
		}
		if !items.PageInfo.HasNextPage || len(items.Edges) == 0 {
			break
		}
		last := items.Edges[len(items.Edges)-1].Cursor
		cursor = &last
	}
	return existing, nil
}

// ProfileSyncError records one failed associate/dissociate batch.
type ProfileSyncError struct {
	Op         string      `json:"op"`
	BatchIndex int         `json:"batch_index"`
	MemberIDs  []string    `json:"member_ids"`
	UserErrors []UserError `json:"user_errors,omitempty"`
	Err        string      `json:"error,omitempty"`
}

// AssociateVariants adds variant GIDs to the delivery profile in batches,
// collecting failures instead of aborting.
func (c *Client) AssociateVariants(ctx context.Context, profileID string, gids []string) (int, []ProfileSyncError) {
	return c.updateProfileMembers(ctx, profileID, gids, "variantsToAssociate", "associate")
}

// DissociateVariants removes variant GIDs from the delivery profile.
func (c *Client) DissociateVariants(ctx context.Context, profileID string, gids []string) (int, []ProfileSyncError) {
	return c.updateProfileMembers(ctx, profileID, gids, "variantsToDissociate", "dissociate")
}

func (c *Client) updateProfileMembers(ctx context.Context, profileID string, gids []string, field, op string) (int, []ProfileSyncError) {
	applied := 0
	var errs []ProfileSyncError

	batchIndex := 0
	for start := 0; start < len(gids); start += profileBatchSize {
		end := start + profileBatchSize
		if end > len(gids) {
			end = len(gids)
		}
		batch := gids[start:end]
		batchIndex++

		variables := map[string]interface{}{
			"id":      profileID,
			"profile": map[string]interface{}{field: batch},
		}
		data, err := c.execute(ctx, deliveryProfileUpdateMutation, variables)
		if err != nil {
			errs = append(errs, ProfileSyncError{Op: op, BatchIndex: batchIndex, MemberIDs: batch, Err: err.Error()})
			continue
		}

		var payload deliveryProfileUpdatePayload
		if err := json.Unmarshal(data, &payload); err != nil {
			errs = append(errs, ProfileSyncError{Op: op, BatchIndex: batchIndex, MemberIDs: batch, Err: err.Error()})
			continue
		}
		if userErrs := payload.DeliveryProfileUpdate.UserErrors; len(userErrs) > 0 {
			errs = append(errs, ProfileSyncError{Op: op, BatchIndex: batchIndex, MemberIDs: batch, UserErrors: userErrs})
			continue
		}

		applied += len(batch)
		c.pace(ctx)
	}
	return applied, errs
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
