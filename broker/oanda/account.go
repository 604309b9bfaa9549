package oanda

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rustyeddy/propguard/broker"
)

type accountSummary struct {
	Account struct {
		ID       string `json:"id"`
		Currency string `json:"currency"`
		Balance  string `json:"balance"`
		NAV      string `json:"NAV"`
	} `json:"account"`
}

// FetchEquity returns the account NAV (balance plus unrealized P/L).
func (c *Client) FetchEquity(ctx context.Context) (float64, error) {
	if c.AccountID == "" {
		return 0, fmt.Errorf("%w: %v", broker.ErrDataUnavailable, errors.New("oanda: missing account id"))
	}

	var s accountSummary
	path := fmt.Sprintf("/v3/accounts/%s/summary", c.AccountID)
	if err := c.do(ctx, "GET", path, nil, nil, &s); err != nil {
		return 0, fmt.Errorf("%w: %v", broker.ErrDataUnavailable, err)
	}

	nav, err := strconv.ParseFloat(s.Account.NAV, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: parse NAV %q: %v", broker.ErrDataUnavailable, s.Account.NAV, err)
	}
	return nav, nil
}
