package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dukerupert/grocer/internal/model"
)

// Client calls a grocer server over the /rpc surface.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient targets the server at baseURL, e.g. "http://localhost:8080".
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) call(ctx context.Context, method string, body any, out any) error {
	var payload io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", method, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rpc/"+method, payload)
	if err != nil {
		return fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e struct {
			Error string `json:"error"`
		}
		json.NewDecoder(resp.Body).Decode(&e)
		return fmt.Errorf("call %s: status %d: %s", method, resp.StatusCode, e.Error)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// GetCategories fetches the whole catalog.
func (c *Client) GetCategories(ctx context.Context) ([]model.Category, error) {
	var out []model.Category
	err := c.call(ctx, MethodGetCategories, nil, &out)
	return out, err
}

// GetCartItems fetches the cart in insertion order.
func (c *Client) GetCartItems(ctx context.Context) ([]model.GroceryItem, error) {
	var out []model.GroceryItem
	err := c.call(ctx, MethodGetCartItems, nil, &out)
	return out, err
}

func (c *Client) mutate(ctx context.Context, method string, id uint64) (Result, error) {
	var res Result
	err := c.call(ctx, method, map[string]uint64{"id": id}, &res)
	return res, err
}

// AddToCart returns the service's Result; the error is non-nil only for
// transport or protocol failures.
func (c *Client) AddToCart(ctx context.Context, id uint64) (Result, error) {
	return c.mutate(ctx, MethodAddToCart, id)
}

// RemoveFromCart deletes the entry for id.
func (c *Client) RemoveFromCart(ctx context.Context, id uint64) (Result, error) {
	return c.mutate(ctx, MethodRemoveFromCart, id)
}

// ToggleItemCompletion flips the completed flag of the entry for id.
func (c *Client) ToggleItemCompletion(ctx context.Context, id uint64) (Result, error) {
	return c.mutate(ctx, MethodToggleItemCompletion, id)
}
