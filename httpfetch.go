package pinpoint

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// HTTPFetcher returns a Fetcher backed by a configuration server. It
// issues GET {baseURL}/api/configs/{key} with bearer authentication; a
// 404 response means the key has no configuration (nil, not an error).
// A nil client falls back to http.DefaultClient.
func HTTPFetcher(baseURL string, apiKey string, client *http.Client) Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	base := strings.TrimRight(baseURL, "/")

	return func(ctx context.Context, key string) (map[string]any, error) {
		endpoint := base + "/api/configs/" + url.PathEscape(key)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, fmt.Errorf("building config request for key %q : %w", key, err)
		}
		if apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+apiKey)
		}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetching config for key %q : %w", key, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("fetching config for key %q : unexpected status %s", key, resp.Status)
		}

		var raw map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decoding config for key %q : %w", key, err)
		}
		return raw, nil
	}
}
