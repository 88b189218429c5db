// Package geo resolves a client IP to an approximate location via ipinfo.io.
package geo

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseURL = "https://ipinfo.io"

// Location is what the pages need to preselect the visitor's city.
type Location struct {
	IP      string `json:"ip"`
	Region  string `json:"region"`
	City    string `json:"city"`
	Country string `json:"country"`
}

// LookupError is returned for a non-2xx answer from the geolocation service.
type LookupError struct {
	StatusCode int
	Body       string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("ipinfo lookup failed: status %d", e.StatusCode)
}

// Client looks up IP locations.
type Client struct {
	http  *resty.Client
	token string
}

func New(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(time.Second)
	client.AddRetryCondition(func(r *resty.Response, err error) bool {
		return err != nil || r.StatusCode() >= http.StatusInternalServerError
	})
	return &Client{http: client, token: token}
}

// Lookup resolves ip. The returned Location always carries the ip that was asked for.
func (c *Client) Lookup(ctx context.Context, ip string) (Location, error) {
	if ip == "" {
		return Location{}, errors.New("ip is required")
	}
	var loc Location
	req := c.http.R().
		SetContext(ctx).
		SetPathParam("ip", ip).
		SetResult(&loc)
	if c.token != "" {
		req.SetQueryParam("token", c.token)
	}
	resp, err := req.Get("/{ip}/json")
	if err != nil {
		return Location{}, fmt.Errorf("ipinfo request: %w", err)
	}
	if resp.IsError() {
		return Location{}, &LookupError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	loc.IP = ip
	return loc, nil
}
