// Author: Sachindu Nethmin
// GitHub: https://github.com/sachindu-nethmin
// Created: 2026-03-05
// Last Modified: 2026-03-13

// Package bugzilla adapts the Bugzilla REST API to the migration engine's
// source interface. Reads only; the importer never writes back to Bugzilla.
package bugzilla

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/similigh/bugport/internal/core/migrate"
)

const recordFields = "id,summary,product,component,status,resolution"

// Client talks to a single Bugzilla instance.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a Bugzilla client. baseURL is the installation root
// (for example https://bugs.llvm.org); apiKey may be empty for public
// instances.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

type bugDTO struct {
	ID         int    `json:"id"`
	Summary    string `json:"summary"`
	Product    string `json:"product"`
	Component  string `json:"component"`
	Status     string `json:"status"`
	Resolution string `json:"resolution"`
}

type bugsResponse struct {
	Bugs []bugDTO `json:"bugs"`
}

// GetRecordRange fetches the bugs with ids in [startID, startID+count).
// Ids without a bug are simply absent from the result; the returned slice
// is ordered by id.
func (c *Client) GetRecordRange(ctx context.Context, startID, count int) ([]*migrate.Record, error) {
	if count <= 0 {
		return nil, nil
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		ids = append(ids, strconv.Itoa(startID+i))
	}

	params := url.Values{}
	params.Set("id", strings.Join(ids, ","))
	params.Set("include_fields", recordFields)

	var resp bugsResponse
	if err := c.get(ctx, "/rest/bug", params, &resp); err != nil {
		return nil, fmt.Errorf("fetch bugs %d-%d: %w", startID, startID+count-1, err)
	}

	records := make([]*migrate.Record, 0, len(resp.Bugs))
	for _, b := range resp.Bugs {
		records = append(records, &migrate.Record{
			ID:         b.ID,
			Title:      b.Summary,
			Product:    b.Product,
			Component:  b.Component,
			Status:     b.Status,
			Resolution: b.Resolution,
		})
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })

	return records, nil
}

// LastRecordID returns the highest bug id the instance currently has,
// or 0 when the instance holds no bugs at all.
func (c *Client) LastRecordID(ctx context.Context) (int, error) {
	params := url.Values{}
	params.Set("limit", "1")
	params.Set("order", "bug_id desc")
	params.Set("f1", "bug_id")
	params.Set("o1", "greaterthan")
	params.Set("v1", "0")
	params.Set("include_fields", "id")

	var resp bugsResponse
	if err := c.get(ctx, "/rest/bug", params, &resp); err != nil {
		return 0, fmt.Errorf("query last bug id: %w", err)
	}
	if len(resp.Bugs) == 0 {
		return 0, nil
	}
	return resp.Bugs[0].ID, nil
}

// Component is a product component as reported by Bugzilla.
type Component struct {
	Name string `json:"name"`
}

// Product is a Bugzilla product with its components.
type Product struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Components  []Component `json:"components"`
}

type productsResponse struct {
	Products []Product `json:"products"`
}

// ListProducts returns every selectable product with its components,
// sorted by product name. The labels command seeds one label per
// product/component pair from this listing.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	params := url.Values{}
	params.Set("type", "selectable")
	params.Set("include_fields", "name,description,components.name")

	var resp productsResponse
	if err := c.get(ctx, "/rest/product", params, &resp); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	sort.Slice(resp.Products, func(i, j int) bool {
		return resp.Products[i].Name < resp.Products[j].Name
	})
	return resp.Products, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	// The key goes in a header, never the URL: transport errors embed the
	// full URL in their message and would leak it into logs.
	if c.apiKey != "" {
		req.Header.Set("X-BUGZILLA-API-KEY", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%v: %w", err, migrate.ErrTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("bugzilla returned %d: %s: %w", resp.StatusCode, strings.TrimSpace(string(body)), migrate.ErrTransient)
		}
		return fmt.Errorf("bugzilla returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
