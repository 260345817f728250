package voiceai

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// endpointStrategy is one legacy endpoint worth probing. Older API
// generations disagree on whether date-range filters are accepted, so each
// entry records that alongside its path.
type endpointStrategy struct {
	name              string
	path              string
	supportsDateRange bool
}

// legacyEndpoints is probed in priority order after the v2 endpoint fails.
var legacyEndpoints = []endpointStrategy{
	{name: "v1-calls", path: "/v1/calls", supportsDateRange: true},
	{name: "api-calls", path: "/api/calls", supportsDateRange: true},
	{name: "call-logs", path: "/call-logs", supportsDateRange: false},
	{name: "api-v1-call", path: "/api/v1/call", supportsDateRange: false},
	{name: "calls", path: "/calls", supportsDateRange: false},
}

// RawPayload is the undecoded-but-parsed body of whichever endpoint answered,
// plus where it came from. Only the v2 endpoint returns per-call detail rich
// enough to skip enhancement.
type RawPayload struct {
	Body     any
	Endpoint string
	FromV2   bool
}

// FetchRawPayload locates a working calls endpoint and returns its payload.
// The v2 assistant-scoped endpoint is tried unconditionally first; on its
// failure the legacy list is walked in order and the first 2xx wins. Errors
// along the way are logged and skipped, and only full exhaustion is returned
// to the caller.
func (c *Client) FetchRawPayload(ctx context.Context, apiKey string, start, end time.Time) (RawPayload, error) {
	v2Path := fmt.Sprintf("/assistant/%s/calls", c.cfg.AssistantID)
	v2Query := url.Values{
		"page":  {"1"},
		"limit": {strconv.Itoa(c.pageLimit())},
	}
	body, err := c.getJSON(ctx, apiKey, v2Path, v2Query)
	if err == nil {
		c.log.Info("fetched call logs", "endpoint", "v2-assistant-calls")
		return RawPayload{Body: body, Endpoint: "v2-assistant-calls", FromV2: true}, nil
	}
	if ctx.Err() != nil {
		return RawPayload{}, ctx.Err()
	}
	c.log.Warn("v2 calls endpoint failed, probing legacy endpoints", "err", err)
	lastErr := err

	for _, ep := range legacyEndpoints {
		query := url.Values{
			"assistantId": {c.cfg.AssistantID},
			"limit":       {strconv.Itoa(c.pageLimit())},
		}
		if ep.supportsDateRange {
			query.Set("createdAtGe", start.UTC().Format(time.RFC3339))
			query.Set("createdAtLe", end.UTC().Format(time.RFC3339))
		}

		body, err := c.getJSON(ctx, apiKey, ep.path, query)
		if err == nil {
			c.log.Info("fetched call logs", "endpoint", ep.name)
			return RawPayload{Body: body, Endpoint: ep.name}, nil
		}
		if ctx.Err() != nil {
			return RawPayload{}, ctx.Err()
		}
		c.log.Warn("calls endpoint failed", "endpoint", ep.name, "err", err)
		lastErr = err
	}

	c.discover(ctx, apiKey)
	return RawPayload{}, fmt.Errorf("voiceai: all call endpoints failed: %w", lastErr)
}

// FetchCallDetail fetches one call by id from the per-call detail endpoint.
func (c *Client) FetchCallDetail(ctx context.Context, apiKey, callID string) (map[string]any, error) {
	body, err := c.getJSON(ctx, apiKey, "/call/"+url.PathEscape(callID), nil)
	if err != nil {
		return nil, err
	}
	detail, ok := body.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("voiceai: call %s detail is not an object", callID)
	}
	return detail, nil
}

// discover probes the auth-check endpoint and the API root. It exists purely
// so the logs show whether the credential or the endpoint layout is at fault
// when every calls endpoint has failed.
func (c *Client) discover(ctx context.Context, apiKey string) {
	if _, err := c.getJSON(ctx, apiKey, "/me", nil); err != nil {
		c.log.Warn("auth-check probe failed", "err", err)
	} else {
		c.log.Info("auth-check probe succeeded; credential is valid but no calls endpoint answered")
	}
	if _, err := c.getJSON(ctx, apiKey, "/", nil); err != nil {
		c.log.Warn("api root probe failed", "err", err)
	} else {
		c.log.Info("api root probe succeeded")
	}
}

func (c *Client) pageLimit() int {
	if c.cfg.PageLimit > 0 {
		return c.cfg.PageLimit
	}
	return 100
}
