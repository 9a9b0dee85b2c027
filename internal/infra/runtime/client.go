// Package runtime talks to the reminder application's runtime over its
// method-channel HTTP endpoint.
package runtime

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"reminder_relay/internal/domain/channel"
)

const defaultTimeout = 30 * time.Second

// Reply statuses sent back by the runtime.
const (
	StatusSuccess        = "success"
	StatusError          = "error"
	StatusNotImplemented = "notImplemented"
)

type invokeRequest struct {
	Args map[string]any `json:"args,omitempty"`
}

type invokeReply struct {
	Status  string          `json:"status"`
	Result  json.RawMessage `json:"result,omitempty"`
	Code    string          `json:"code,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Client invokes methods on one named channel of the application runtime.
type Client struct {
	baseURL string
	channel string
	client  *http.Client
}

func NewClient(baseURL, channelName string) *Client {
	return &Client{
		baseURL: baseURL,
		channel: channelName,
		client:  &http.Client{Timeout: defaultTimeout},
	}
}

// Invoke implements channel.Invoker.
func (c *Client) Invoke(ctx context.Context, method string, args map[string]any) (any, error) {
	endpoint := fmt.Sprintf("%s/channels/%s/methods/%s", c.baseURL, url.PathEscape(c.channel), url.PathEscape(method))

	body, err := json.Marshal(invokeRequest{Args: args})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotImplemented {
		return nil, channel.ErrNotImplemented
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read reply: %w", err)
	}

	var reply invokeReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return nil, fmt.Errorf("runtime replied %s with unreadable body: %w", resp.Status, err)
	}

	switch reply.Status {
	case StatusSuccess:
		if len(reply.Result) == 0 {
			return nil, nil
		}
		var result any
		if err := json.Unmarshal(reply.Result, &result); err != nil {
			return nil, fmt.Errorf("decode result: %w", err)
		}
		return result, nil
	case StatusNotImplemented:
		return nil, channel.ErrNotImplemented
	case StatusError:
		return nil, &channel.MethodError{Code: reply.Code, Message: reply.Message}
	default:
		return nil, fmt.Errorf("runtime replied %s with unknown status %q", resp.Status, reply.Status)
	}
}
