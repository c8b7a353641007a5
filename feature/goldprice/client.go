package goldprice

import (
	"context"
	"fmt"
	"time"

	"goldwatch/core/apperror"

	"github.com/go-resty/resty/v2"
)

// FeedClient fetches the raw gold price payload from the external provider.
type FeedClient interface {
	FetchRaw(ctx context.Context) ([]byte, error)
}

// Client is the resty-based feed client.
type Client struct {
	http *resty.Client
	url  string
}

// NewClient creates a feed client for the given endpoint.
func NewClient(url string, timeout time.Duration) *Client {
	return &Client{
		http: resty.New().SetTimeout(timeout),
		url:  url,
	}
}

// FetchRaw retrieves the feed payload. Any transport failure or non-200
// response is a ConnectivityError; the caller aborts the run.
func (c *Client) FetchRaw(ctx context.Context) ([]byte, error) {
	resp, err := c.http.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, apperror.NewConnectivity("gold price feed unreachable", err)
	}
	if resp.StatusCode() != 200 {
		return nil, apperror.NewConnectivity(
			fmt.Sprintf("gold price feed returned status %d", resp.StatusCode()), nil)
	}
	return resp.Body(), nil
}
