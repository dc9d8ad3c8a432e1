package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"kitchensync/internal/logger"
)

// ErrProvider wraps any transport, auth, or decode failure from the catalog
// provider. A provider failure is fatal for a sync run.
var ErrProvider = errors.New("catalog provider request failed")

// Client lists the full remote catalog for a set of owner credentials.
type Client interface {
	ListCatalog(ctx context.Context, creds Credentials, location string) ([]Item, error)
}

// HTTPClient talks to a Square-style catalog list endpoint, following
// pagination cursors until the catalog is exhausted.
type HTTPClient struct {
	baseURL string
	httpc   *http.Client
	log     *logger.Logger
}

// NewHTTPClient creates a catalog client for the given provider base URL.
func NewHTTPClient(baseURL string, timeout time.Duration, baseLog *logger.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPClient{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     baseLog.With("component", "catalog"),
	}
}

// ListCatalog fetches every catalog page. The optional location filter is
// passed through to the provider untouched.
func (c *HTTPClient) ListCatalog(ctx context.Context, creds Credentials, location string) ([]Item, error) {
	if creds.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing access token", ErrProvider)
	}

	var items []Item
	cursor := ""
	pages := 0

	for {
		page, next, err := c.listPage(ctx, creds, location, cursor)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		pages++

		if next == "" {
			break
		}
		cursor = next
	}

	c.log.Info("fetched remote catalog", "objects", len(items), "pages", pages)
	return items, nil
}

func (c *HTTPClient) listPage(ctx context.Context, creds Credentials, location, cursor string) ([]Item, string, error) {
	endpoint, err := url.Parse(c.baseURL + "/v2/catalog/list")
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid base url: %v", ErrProvider, err)
	}

	query := endpoint.Query()
	query.Set("types", "ITEM,MODIFIER_LIST")
	if cursor != "" {
		query.Set("cursor", cursor)
	}
	if location != "" {
		query.Set("location_id", location)
	}
	endpoint.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, "", fmt.Errorf("%w: status %d: %s", ErrProvider, resp.StatusCode, string(body))
	}

	var decoded listResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, "", fmt.Errorf("%w: decoding response: %v", ErrProvider, err)
	}
	if len(decoded.Errors) > 0 {
		first := decoded.Errors[0]
		return nil, "", fmt.Errorf("%w: %s/%s: %s", ErrProvider, first.Category, first.Code, first.Detail)
	}

	items := make([]Item, 0, len(decoded.Objects))
	for _, obj := range decoded.Objects {
		items = append(items, obj.toItem())
	}
	return items, decoded.Cursor, nil
}
