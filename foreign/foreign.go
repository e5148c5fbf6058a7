// Package foreign looks up balances of the bridge account on the foreign
// ledger through its REST API.
package foreign

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const maxResponseSize = 1 << 20

type Client struct {
	baseURL string
	http    *http.Client
	log     logrus.FieldLogger
}

// New returns a client for the API rooted at baseURL. A zero timeout means
// the request context alone bounds a lookup.
func New(baseURL string, timeout time.Duration, log logrus.FieldLogger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log,
	}
}

type accountResponse struct {
	Balances []struct {
		Symbol string `json:"symbol"`
		Free   string `json:"free"`
	} `json:"balances"`
}

// Balances maps asset symbol to free amount for address. Lookups never
// fail: any error yields an empty mapping.
func (c *Client) Balances(ctx context.Context, address string) map[string]string {
	res, err := c.balances(ctx, address)
	if err != nil {
		c.log.WithError(err).WithField("address", address).Debug("Foreign balance lookup failed")
		return map[string]string{}
	}
	return res
}

func (c *Client) balances(ctx context.Context, address string) (map[string]string, error) {
	if c.baseURL == "" {
		return nil, fmt.Errorf("no foreign url configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/account/"+url.PathEscape(address), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var account accountResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&account); err != nil {
		return nil, err
	}
	res := make(map[string]string, len(account.Balances))
	for _, b := range account.Balances {
		res[b.Symbol] = b.Free
	}
	return res, nil
}
