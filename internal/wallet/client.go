// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Playerd Contributors

// Package wallet provisions player wallets in the currency service.
package wallet

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

const (
	defaultTimeout = 5 * time.Second
	maxRetries     = 3
	retryBase      = 250 * time.Millisecond
)

// Client calls the currency service to provision a wallet for a newly
// registered player. It implements auth.WalletProvisioner.
type Client struct {
	url        string
	httpClient *http.Client
}

// NewClient creates a wallet client for the given provisioning URL.
// A zero timeout falls back to a 5 second default.
func NewClient(url string, timeout time.Duration) (*Client, error) {
	if url == "" {
		return nil, oops.Code("WALLET_URL_MISSING").Errorf("wallet provisioning url is required")
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Provision creates a wallet for the player identified by the bearer
// token. The currency service authenticates the request with the same
// token the player received. Transport failures and 5xx responses are
// retried with fibonacci backoff; any other non-201 response fails
// immediately.
func (c *Client) Provision(ctx context.Context, token string) error {
	backoff := retry.WithMaxRetries(maxRetries, retry.NewFibonacci(retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, nil)
		if err != nil {
			return oops.Code("WALLET_REQUEST_INVALID").Wrap(err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(err)
		}
		defer func() {
			_, _ = io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain for connection reuse
			_ = resp.Body.Close()                 //nolint:errcheck
		}()

		switch {
		case resp.StatusCode == http.StatusCreated:
			return nil
		case resp.StatusCode >= 500:
			return retry.RetryableError(oops.Code("WALLET_UPSTREAM_ERROR").
				With("status", resp.StatusCode).
				Errorf("currency service returned %d", resp.StatusCode))
		default:
			return oops.Code("WALLET_PROVISION_REJECTED").
				With("status", resp.StatusCode).
				Errorf("currency service returned %d", resp.StatusCode)
		}
	})
	if err != nil {
		return oops.Code("WALLET_PROVISION_FAILED").
			With("url", c.url).
			Wrap(err)
	}
	return nil
}
