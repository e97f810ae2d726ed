package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hay-kot/remindme/internal/bot"
)

// sentMessage is a decoded sendMessage form.
type sentMessage struct {
	ChatID      string
	Text        string
	ReplyMarkup *tgbotapi.ReplyKeyboardMarkup
}

// fakeAPI serves queued getUpdates batches and records sendMessage calls.
type fakeAPI struct {
	mu       sync.Mutex
	batches  []string
	failures int
	offsets  []string
	sent     []sentMessage
	sendResp string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/botTOKEN/getMe":
		_, _ = w.Write([]byte(`{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"Remind","username":"remindme_bot"}}`))

	case "/botTOKEN/getUpdates":
		offset := r.FormValue("offset")
		if offset == "" {
			offset = "0"
		}

		f.mu.Lock()
		f.offsets = append(f.offsets, offset)
		if f.failures > 0 {
			f.failures--
			f.mu.Unlock()
			http.Error(w, `{"ok":false,"error_code":502,"description":"Bad Gateway"}`, http.StatusBadGateway)
			return
		}
		var batch string
		if len(f.batches) > 0 {
			batch, f.batches = f.batches[0], f.batches[1:]
		}
		f.mu.Unlock()

		if batch == "" {
			// idle long poll
			select {
			case <-r.Context().Done():
			case <-time.After(20 * time.Millisecond):
			}
			batch = "[]"
		}
		fmt.Fprintf(w, `{"ok":true,"result":%s}`, batch)

	case "/botTOKEN/sendMessage":
		req := sentMessage{ChatID: r.FormValue("chat_id"), Text: r.FormValue("text")}
		if markup := r.FormValue("reply_markup"); markup != "" {
			req.ReplyMarkup = &tgbotapi.ReplyKeyboardMarkup{}
			if err := json.Unmarshal([]byte(markup), req.ReplyMarkup); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		f.mu.Lock()
		f.sent = append(f.sent, req)
		resp := f.sendResp
		f.mu.Unlock()

		if resp == "" {
			resp = `{"ok":true,"result":{"message_id":1,"chat":{"id":42}}}`
		}
		_, _ = w.Write([]byte(resp))

	default:
		http.NotFound(w, r)
	}
}

type recorder struct {
	msgs chan bot.Message
}

func (r *recorder) HandleMessage(_ context.Context, msg bot.Message) {
	r.msgs <- msg
}

func newClient(t *testing.T, api *fakeAPI, allowed ...int64) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := New(zerolog.Nop(), Options{
		APIURL:       srv.URL + "/",
		Token:        "TOKEN",
		PollTimeout:  time.Second,
		RetryDelay:   10 * time.Millisecond,
		AllowedChats: allowed,
		HTTPClient:   srv.Client(),
	})
	require.NoError(t, err)
	return c
}

func runClient(t *testing.T, c *Client) *recorder {
	t.Helper()
	rec := &recorder{msgs: make(chan bot.Message, 16)}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, rec) }()

	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return rec
}

func next(t *testing.T, rec *recorder) bot.Message {
	t.Helper()
	select {
	case msg := <-rec.msgs:
		return msg
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for message")
		return bot.Message{}
	}
}

func TestRun_DispatchesAndAdvancesOffset(t *testing.T) {
	api := &fakeAPI{batches: []string{
		`[{"update_id":10,"message":{"message_id":1,"from":{"id":7,"username":"ann"},"chat":{"id":42},"text":"/start"}},
		  {"update_id":11,"message":{"message_id":2,"from":{"id":7,"first_name":"Ann"},"chat":{"id":42},"text":"Meeting"}}]`,
		`[{"update_id":12}]`,
		`[{"update_id":13,"message":{"message_id":3,"chat":{"id":42},"text":"/help"}}]`,
	}}
	rec := runClient(t, newClient(t, api))

	assert.Equal(t, bot.Message{ChatID: "42", User: "ann", Text: "/start"}, next(t, rec))
	assert.Equal(t, bot.Message{ChatID: "42", User: "Ann", Text: "Meeting"}, next(t, rec))
	assert.Equal(t, bot.Message{ChatID: "42", Text: "/help"}, next(t, rec))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.GreaterOrEqual(t, len(api.offsets), 3)
	assert.Equal(t, []string{"0", "12", "13"}, api.offsets[:3])
}

func TestRun_AllowedChats(t *testing.T) {
	api := &fakeAPI{batches: []string{
		`[{"update_id":1,"message":{"chat":{"id":99},"text":"/start"}},
		  {"update_id":2,"message":{"chat":{"id":42},"text":"/help"}}]`,
	}}
	rec := runClient(t, newClient(t, api, 42))

	assert.Equal(t, "42", next(t, rec).ChatID)
	select {
	case msg := <-rec.msgs:
		t.Fatalf("unexpected message %+v", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRun_RetriesAfterFailure(t *testing.T) {
	api := &fakeAPI{
		failures: 2,
		batches:  []string{`[{"update_id":5,"message":{"chat":{"id":42},"text":"/list"}}]`},
	}
	rec := runClient(t, newClient(t, api))

	assert.Equal(t, "/list", next(t, rec).Text)

	api.mu.Lock()
	defer api.mu.Unlock()
	assert.Equal(t, []string{"0", "0", "0"}, api.offsets[:3])
}

func TestSend(t *testing.T) {
	api := &fakeAPI{}
	c := newClient(t, api)

	err := c.Send(context.Background(), bot.Reply{
		ChatID:   "42",
		Text:     "Hi!",
		Keyboard: [][]string{{"/event", "/timer"}, {"/cancel", "/help"}},
	})
	require.NoError(t, err)

	require.NoError(t, c.Send(context.Background(), bot.Reply{ChatID: "-100", Text: "plain"}))

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.sent, 2)

	first := api.sent[0]
	assert.Equal(t, "42", first.ChatID)
	assert.Equal(t, "Hi!", first.Text)
	require.NotNil(t, first.ReplyMarkup)
	assert.True(t, first.ReplyMarkup.ResizeKeyboard)
	assert.False(t, first.ReplyMarkup.OneTimeKeyboard, "keyboard stays visible after a tap")
	assert.Equal(t, [][]tgbotapi.KeyboardButton{
		{{Text: "/event"}, {Text: "/timer"}},
		{{Text: "/cancel"}, {Text: "/help"}},
	}, first.ReplyMarkup.Keyboard)

	assert.Equal(t, "-100", api.sent[1].ChatID)
	assert.Nil(t, api.sent[1].ReplyMarkup)
}

func TestSend_Errors(t *testing.T) {
	api := &fakeAPI{sendResp: `{"ok":false,"error_code":403,"description":"Forbidden: bot was blocked by the user"}`}
	c := newClient(t, api)

	err := c.Send(context.Background(), bot.Reply{ChatID: "42", Text: "Hi!"})
	var apiErr *tgbotapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.Code)
	assert.Contains(t, err.Error(), "sendMessage")

	err = c.Send(context.Background(), bot.Reply{ChatID: "console", Text: "Hi!"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "console")
}

func TestNew_RedactsToken(t *testing.T) {
	_, err := New(zerolog.Nop(), Options{
		APIURL:      "http://127.0.0.1:1",
		Token:       "SECRET",
		PollTimeout: time.Second,
		RetryDelay:  time.Millisecond,
	})
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "SECRET")
}

func TestNew_RejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
	}))
	t.Cleanup(srv.Close)

	_, err := New(zerolog.Nop(), Options{APIURL: srv.URL, Token: "BAD", PollTimeout: time.Second})
	var apiErr *tgbotapi.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 401, apiErr.Code)
}
