// Package httpapi exposes the HTTP routes of the server: the websocket
// endpoint, a health check and the reminder listing and cancel API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/hay-kot/remindme/internal/bot"
	"github.com/hay-kot/remindme/internal/core/chat"
	"github.com/hay-kot/remindme/internal/core/logging"
)

// Reminders is the part of the bot the API serves.
type Reminders interface {
	Reminders(chatID string) []*chat.Job
	Unset(ctx context.Context, chatID, name string) error
}

// ReminderView is the JSON form of a scheduled reminder.
type ReminderView struct {
	Name   string    `json:"name"`
	Kind   string    `json:"kind"`
	Text   string    `json:"text"`
	FireAt time.Time `json:"fire_at"`
	Fired  bool      `json:"fired"`
}

type errorBody struct {
	Error string `json:"error"`
}

type api struct {
	log       zerolog.Logger
	reminders Reminders
}

// NewRouter builds the server routes. ws handles websocket upgrades.
func NewRouter(log zerolog.Logger, reminders Reminders, ws http.Handler) *mux.Router {
	a := &api{log: log, reminders: reminders}

	r := mux.NewRouter()
	r.Use(a.logRequests)

	r.HandleFunc("/healthz", a.handleHealth).Methods(http.MethodGet)
	r.Handle("/ws", ws).Methods(http.MethodGet)

	chats := r.PathPrefix("/api/chats/{chat}").Subrouter()
	chats.HandleFunc("/reminders", a.handleList).Methods(http.MethodGet)
	chats.HandleFunc("/reminders/{name}", a.handleUnset).Methods(http.MethodDelete)

	return r
}

func (a *api) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *api) handleList(w http.ResponseWriter, r *http.Request) {
	chatID := mux.Vars(r)["chat"]

	jobs := a.reminders.Reminders(chatID)
	out := make([]ReminderView, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ReminderView{
			Name:   j.Name,
			Kind:   string(j.Kind),
			Text:   j.Text,
			FireAt: j.FireAt(),
			Fired:  j.Fired(),
		})
	}

	writeJSON(w, http.StatusOK, out)
}

func (a *api) handleUnset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ctx := logging.WithTransport(r.Context(), "http")

	err := a.reminders.Unset(ctx, vars["chat"], vars["name"])
	switch {
	case errors.Is(err, bot.ErrNoActiveItem):
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case err != nil:
		a.log.Error().Ctx(ctx).Err(err).Msg("unset failed")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
