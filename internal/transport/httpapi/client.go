package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hay-kot/remindme/internal/bot"
)

// Client talks to the reminder API of a running server.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the server at baseURL. A nil hc uses
// http.DefaultClient.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimSuffix(baseURL, "/"), http: hc}
}

// List returns the reminders of a chat.
func (c *Client) List(ctx context.Context, chatID string) ([]ReminderView, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.remindersURL(chatID), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list reminders: %w", readError(resp))
	}

	var out []ReminderView
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode reminders: %w", err)
	}
	return out, nil
}

// Unset cancels a reminder. It returns bot.ErrNoActiveItem when the server
// does not know the reminder.
func (c *Client) Unset(ctx context.Context, chatID, name string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.remindersURL(chatID)+"/"+url.PathEscape(name), nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("unset reminder: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("unset %q: %w", name, bot.ErrNoActiveItem)
	default:
		return fmt.Errorf("unset reminder: %w", readError(resp))
	}
}

func (c *Client) remindersURL(chatID string) string {
	return c.baseURL + "/api/chats/" + url.PathEscape(chatID) + "/reminders"
}

func readError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Error != "" {
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, body.Error)
	}
	return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
}
