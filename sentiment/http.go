package sentiment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrBadResponse is returned when the inference endpoint answers with
// something that is not a label/score list.
var ErrBadResponse = errors.New("sentiment: bad response")

// HTTP calls a hosted text-classification model. The endpoint is expected
// to answer the Hugging Face inference shape:
//
//	[{"label":"positive","score":0.93}, ...]
//
// optionally nested one level deeper. The top-ranked label wins.
type HTTP struct {
	URL    string
	Token  string
	Client *http.Client
}

func NewHTTP(url, token string) *HTTP {
	return &HTTP{URL: url, Token: token, Client: &http.Client{Timeout: 15 * time.Second}}
}

func (h *HTTP) Score(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(h.URL) == "" {
		return 0, errors.New("sentiment: missing url")
	}
	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.URL, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if h.Token != "" {
		req.Header.Set("Authorization", "Bearer "+h.Token)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return 0, err
	}
	if resp.StatusCode/100 != 2 {
		return 0, fmt.Errorf("sentiment http %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	return Parse(raw)
}

// Parse extracts a signed score from a classifier response.
func Parse(raw []byte) (float64, error) {
	if !gjson.ValidBytes(raw) {
		return 0, fmt.Errorf("%w: invalid json", ErrBadResponse)
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return 0, fmt.Errorf("%w: want array, got %s", ErrBadResponse, res.Type)
	}
	// Batched endpoints wrap the list once more.
	if first := res.Get("0"); first.IsArray() {
		res = first
	}

	best := gjson.Result{}
	res.ForEach(func(_, v gjson.Result) bool {
		if !v.Get("label").Exists() {
			return true
		}
		if !best.Exists() || v.Get("score").Float() > best.Get("score").Float() {
			best = v
		}
		return true
	})
	if !best.Exists() {
		return 0, fmt.Errorf("%w: no labels", ErrBadResponse)
	}
	return FromLabel(best.Get("label").String(), best.Get("score").Float()), nil
}
