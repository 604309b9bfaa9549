package oanda

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rustyeddy/propguard/broker"
	"github.com/rustyeddy/propguard/market"
)

type priceOnFill struct {
	Price string `json:"price"`
}

type marketOrder struct {
	Type             string       `json:"type"`
	Instrument       string       `json:"instrument"`
	Units            string       `json:"units"`
	TimeInForce      string       `json:"timeInForce"`
	PositionFill     string       `json:"positionFill"`
	StopLossOnFill   *priceOnFill `json:"stopLossOnFill,omitempty"`
	TakeProfitOnFill *priceOnFill `json:"takeProfitOnFill,omitempty"`
	ClientExtensions *struct {
		ID string `json:"id"`
	} `json:"clientExtensions,omitempty"`
}

type orderRequest struct {
	Order marketOrder `json:"order"`
}

type orderResponse struct {
	OrderFillTransaction *struct {
		ID string `json:"id"`
	} `json:"orderFillTransaction"`
	OrderCancelTransaction *struct {
		ID     string `json:"id"`
		Reason string `json:"reason"`
	} `json:"orderCancelTransaction"`
}

// PlaceOrder submits a FOK market order with stop loss and take profit on fill.
// Short intents are sent as negative units.
func (c *Client) PlaceOrder(ctx context.Context, in market.OrderIntent) (broker.OrderResult, error) {
	if c.AccountID == "" {
		return broker.OrderResult{}, errors.New("oanda: missing account id")
	}
	if in.Signal == market.None || in.Size <= 0 {
		return broker.OrderResult{}, fmt.Errorf("%w: nothing to send for %s size %.2f", broker.ErrOrderRejected, in.Signal, in.Size)
	}

	meta := market.Instrument(in.Symbol)
	units := meta.Units(in.Size)
	if !meta.Tradable(units) {
		res := broker.OrderResult{Message: fmt.Sprintf("units %s below minimum %v for %s", units, meta.MinimumTradeSize, in.Symbol)}
		return res, fmt.Errorf("%w: %s", broker.ErrOrderRejected, res.Message)
	}
	if in.Signal == market.Short {
		units = units.Neg()
	}

	req := orderRequest{Order: marketOrder{
		Type:             "MARKET",
		Instrument:       in.Symbol,
		Units:            units.String(),
		TimeInForce:      "FOK",
		PositionFill:     "DEFAULT",
		StopLossOnFill:   &priceOnFill{Price: price(in.StopLoss, meta.DisplayPrecision)},
		TakeProfitOnFill: &priceOnFill{Price: price(in.TakeProfit, meta.DisplayPrecision)},
	}}
	if in.ID != "" {
		req.Order.ClientExtensions = &struct {
			ID string `json:"id"`
		}{ID: in.ID}
	}

	var resp orderResponse
	path := fmt.Sprintf("/v3/accounts/%s/orders", c.AccountID)
	if err := c.do(ctx, "POST", path, nil, req, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			return broker.OrderResult{Message: apiErr.Body}, fmt.Errorf("%w: %v", broker.ErrOrderRejected, err)
		}
		return broker.OrderResult{}, err
	}

	if resp.OrderFillTransaction != nil {
		return broker.OrderResult{Accepted: true, BrokerRef: resp.OrderFillTransaction.ID}, nil
	}
	res := broker.OrderResult{Message: "no fill"}
	if resp.OrderCancelTransaction != nil {
		res.BrokerRef = resp.OrderCancelTransaction.ID
		res.Message = resp.OrderCancelTransaction.Reason
	}
	return res, fmt.Errorf("%w: %s", broker.ErrOrderRejected, res.Message)
}

// price rounds to the instrument's display precision; OANDA rejects more.
func price(p float64, decimals int) string {
	return strconv.FormatFloat(p, 'f', decimals, 64)
}
