package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/hay-kot/remindme/internal/core/logging"
	"github.com/hay-kot/remindme/internal/profiler"
	"github.com/hay-kot/remindme/internal/transport/httpapi"
	"github.com/hay-kot/remindme/internal/transport/websocket"
)

const shutdownTimeout = 10 * time.Second

type ServeCmd struct {
	flags *Flags

	// flags
	addr      string
	pprofAddr string
}

// NewServeCmd creates a new serve command
func NewServeCmd(flags *Flags) *ServeCmd {
	return &ServeCmd{flags: flags}
}

// Register adds the serve command to the application
func (cmd *ServeCmd) Register(app *cli.Command) *cli.Command {
	app.Commands = append(app.Commands, &cli.Command{
		Name:      "serve",
		Usage:     "Serve chats over websocket",
		UsageText: "remindme serve [--addr host:port]",
		Description: `Starts the HTTP server. Clients connect to /ws?chat=<id> and exchange JSON
frames with the bot. Reminders of a chat can be listed and cancelled through
/api/chats/<id>/reminders.

Reminders live in memory and are lost when the server stops.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "addr",
				Usage:       "listen address (overrides server.addr)",
				Sources:     cli.EnvVars("REMINDME_ADDR"),
				Destination: &cmd.addr,
			},
			&cli.StringFlag{
				Name:        "pprof-addr",
				Usage:       "serve pprof endpoints on this address (disabled when empty)",
				Sources:     cli.EnvVars("REMINDME_PPROF_ADDR"),
				Destination: &cmd.pprofAddr,
			},
		},
		Action: cmd.run,
	})

	return app
}

func (cmd *ServeCmd) run(ctx context.Context, _ *cli.Command) error {
	cfg := cmd.flags.Config
	addr := cfg.Server.Addr
	if cmd.addr != "" {
		addr = cmd.addr
	}

	ctx, stop := signalContext(ctx)
	defer stop()

	var prof *profiler.Server
	if cmd.pprofAddr != "" {
		prof = profiler.New(logging.Component("profiler"), cmd.pprofAddr)
		if err := prof.Start(); err != nil {
			return err
		}
	}

	hub := websocket.NewHub(logging.Component("websocket"), cfg.Server.AllowedOrigins)
	b, rt := newBot(ctx, hub)

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(logging.Component("http"), b, hub.Handler(b)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		errc <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("serve: %w", err)
		}
	}

	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if prof != nil {
		if err := prof.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("profiler shutdown")
		}
	}
	hub.Close()
	stop()
	rt.Wait()

	return runErr
}
