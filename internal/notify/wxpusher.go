package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

const wxpusherEndpoint = "https://wxpusher.zjiecode.com/api/send/message"

// WxPusher pushes WeChat notifications through the WxPusher API.
type WxPusher struct {
	token    string
	uid      string
	endpoint string
	client   *http.Client
}

func NewWxPusher(token, uid string, client *http.Client) (*WxPusher, error) {
	if token == "" || uid == "" {
		return nil, errors.New("wxpusher token or uid is empty")
	}
	return &WxPusher{
		token:    token,
		uid:      uid,
		endpoint: wxpusherEndpoint,
		client:   client,
	}, nil
}

func (w *WxPusher) Name() string { return "wxpusher" }

func (w *WxPusher) Send(ctx context.Context, content, confirmURL string) error {
	// The WxPusher client follows url directly on tap, so the confirm
	// link is decoded back to a raw URL.
	jumpURL, err := url.QueryUnescape(confirmURL)
	if err != nil {
		jumpURL = confirmURL
	}

	payload, err := json.Marshal(map[string]any{
		"appToken":    w.token,
		"content":     unescapeNewlines(content),
		"summary":     "🚗 挪车请求",
		"contentType": 1, // plain text
		"uids":        []string{w.uid},
		"url":         jumpURL,
	})
	if err != nil {
		return fmt.Errorf("wxpusher: marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("wxpusher: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("wxpusher: %w", err)
	}
	defer resp.Body.Close()

	// WxPusher signals failure in the response body, not the HTTP
	// status.
	var result struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("wxpusher: decode response: %w", err)
	}
	if result.Code != 1000 {
		return fmt.Errorf("wxpusher: api error: %s", result.Msg)
	}
	return nil
}
