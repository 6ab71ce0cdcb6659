package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"wishlist-cli/internal/model"

	"github.com/gorilla/websocket"
)

// StatusError is a non-2xx response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d %s", e.Code, http.StatusText(e.Code))
	}
	return fmt.Sprintf("server returned %d: %s", e.Code, e.Message)
}

func (e *StatusError) StatusCode() int { return e.Code }

type Client struct {
	BaseURL string
	ActorID string
	Timeout time.Duration
	HTTP    *http.Client
}

func NewClient(baseURL, actorID string, timeout time.Duration) *Client {
	return &Client{BaseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"), ActorID: actorID, Timeout: timeout}
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func (c *Client) endpoint(listID, suffix string) string {
	return c.BaseURL + "/lists/" + url.PathEscape(listID) + suffix
}

func (c *Client) do(ctx context.Context, method, u string, body any) (*http.Response, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		// The body is read before do returns, so cancelling here is safe.
		defer cancel()
	}
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.ActorID != "" {
		req.Header.Set(ActorHeader, c.ActorID)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	b, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(b))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusErrorFrom(resp.StatusCode, b)
	}
	return resp, nil
}

func statusErrorFrom(code int, body []byte) *StatusError {
	var env struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return &StatusError{Code: code, Message: env.Error}
	}
	return &StatusError{Code: code, Message: strings.TrimSpace(string(body))}
}

// PersistOrder sends a rank assignment. Non-2xx responses come back as *StatusError.
func (c *Client) PersistOrder(ctx context.Context, listID string, ranks []model.RankUpdate) error {
	_, err := c.do(ctx, http.MethodPut, c.endpoint(listID, "/order"), OrderRequest{Ranks: ranks})
	return err
}

func (c *Client) ListItems(ctx context.Context, listID string) ([]model.Item, error) {
	resp, err := c.do(ctx, http.MethodGet, c.endpoint(listID, "/items"), nil)
	if err != nil {
		return nil, err
	}
	var env struct {
		Data []model.Item `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode items: %w", err)
	}
	if env.Data == nil {
		env.Data = []model.Item{}
	}
	return env.Data, nil
}

// Stream subscribes to change events for listID. The channel closes when ctx is done or
// the connection drops.
func (c *Client) Stream(ctx context.Context, listID string) (<-chan ChangeEvent, error) {
	u, err := url.Parse(c.endpoint(listID, "/stream"))
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	hdr := http.Header{}
	if c.ActorID != "" {
		hdr.Set(ActorHeader, c.ActorID)
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, u.String(), hdr)
	if err != nil {
		if resp != nil {
			return nil, &StatusError{Code: resp.StatusCode}
		}
		return nil, err
	}

	out := make(chan ChangeEvent, 8)
	readerDone := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
		case <-readerDone:
		}
		_ = conn.Close()
	}()
	go func() {
		defer close(out)
		defer close(readerDone)
		for {
			var ev ChangeEvent
			if err := conn.ReadJSON(&ev); err != nil {
				_ = conn.Close()
				return
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
