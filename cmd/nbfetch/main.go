// Package main implements an interactive HTTP client shell on top of the connection pool.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/desertbit/grumble"
	"github.com/indigo-web/nbclient/client"
	"github.com/indigo-web/nbclient/config"
	"github.com/indigo-web/nbclient/http/method"
	"github.com/indigo-web/nbclient/internal/timer"
	"github.com/indigo-web/nbclient/logging"
	"github.com/indigo-web/nbclient/pool"
	"github.com/indigo-web/nbclient/transport"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// session is everything the commands share. It's set up by OnInit and torn down once
// the shell exits.
type session struct {
	cfg    *config.Config
	pool   *pool.Pool
	clock  *timer.Coarse
	cancel context.CancelFunc
	done   sync.WaitGroup
}

var current *session

func start(cfg *config.Config) *session {
	s := &session{
		cfg:   cfg,
		clock: timer.NewCoarse(cfg.NET.TimerResolution),
	}

	s.pool = pool.New(cfg, transport.TCP{},
		pool.WithClock(s.clock),
		pool.WithSink(logging.NewZerolog(log.Logger)),
		pool.WithLogger(log.Logger),
	)

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done.Add(1)

	go func() {
		defer s.done.Done()
		_ = s.pool.Run(ctx, cfg.Pool.TickInterval)
	}()

	return s
}

func (s *session) stop() {
	s.cancel()
	s.done.Wait()
	s.clock.Stop()
}

type outcome struct {
	resp *client.Response
	err  error
}

// fetch sends the request and waits for its completion.
func (s *session) fetch(m method.Method, rawURL, body string, timeout time.Duration) (*client.Response, error) {
	req, target, err := client.FromURL(m, rawURL)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	addr, err := transport.Resolve(ctx, target.Host, target.Port)
	if err != nil {
		return nil, err
	}

	if len(body) > 0 {
		req.String(body)
	}

	results := make(chan outcome, 1)
	req.WithConfig(s.cfg).OnComplete(func(resp *client.Response, err error) {
		results <- outcome{resp: resp, err: err}
	})

	log.Debug().
		Stringer("request", req.ID()).
		Stringer("addr", addr).
		Msg("submitting")

	if err = s.pool.Do(addr, req); err != nil {
		return nil, err
	}

	select {
	case res := <-results:
		return res.resp, res.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", target, ctx.Err())
	}
}

func printResponse(a *grumble.App, resp *client.Response, headers bool) {
	a.Printf("%s %d %s\n", resp.Protocol, resp.Code, resp.Status)
	if headers {
		for key, value := range resp.Headers.Pairs() {
			a.Printf("%s: %s\n", key, value)
		}
	}

	a.Println()
	a.Println(resp.String())
}

func addCommands(app *grumble.App) {
	requestFlags := func(f *grumble.Flags) {
		f.Duration("t", "timeout", 10*time.Second, "how long to wait for the response")
		f.Bool("i", "include", false, "print the response headers too")
	}

	app.AddCommand(&grumble.Command{
		Name: "get",
		Help: "send a GET request and print the response",
		Args: func(a *grumble.Args) {
			a.String("url", "absolute http URL")
		},
		Flags: requestFlags,
		Run: func(c *grumble.Context) error {
			resp, err := current.fetch(method.GET, c.Args.String("url"), "", c.Flags.Duration("timeout"))
			if err != nil {
				log.Error().Err(err).Msg("Request failed")
				return nil
			}

			printResponse(c.App, resp, c.Flags.Bool("include"))
			return nil
		},
	})

	app.AddCommand(&grumble.Command{
		Name: "post",
		Help: "send a POST request with the body and print the response",
		Args: func(a *grumble.Args) {
			a.String("url", "absolute http URL")
			a.StringList("body", "request body, words are joined by spaces")
		},
		Flags: requestFlags,
		Run: func(c *grumble.Context) error {
			body := strings.Join(c.Args.StringList("body"), " ")
			resp, err := current.fetch(method.POST, c.Args.String("url"), body, c.Flags.Duration("timeout"))
			if err != nil {
				log.Error().Err(err).Msg("Request failed")
				return nil
			}

			printResponse(c.App, resp, c.Flags.Bool("include"))
			return nil
		},
	})

	app.AddCommand(&grumble.Command{
		Name:    "conns",
		Aliases: []string{"ls"},
		Help:    "list connections of the pool",
		Run: func(c *grumble.Context) error {
			c.App.Println(renderStats(current.pool.Stats()))
			if queued := current.pool.Queued(); queued > 0 {
				log.Info().Int("queued", queued).Msg("Requests are waiting for a connection")
			}

			return nil
		},
	})

	app.AddCommand(&grumble.Command{
		Name: "close",
		Help: "close idle connections",
		Run: func(c *grumble.Context) error {
			log.Info().Int("closed", current.pool.CloseIdle()).Msg("Idle connections closed")
			return nil
		},
	})
}

func configureLogging() {
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05",
	})

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func setupCLI() *grumble.App {
	histFile := ".nbfetch"
	if home, err := os.UserHomeDir(); err == nil {
		histFile = filepath.Join(home, ".nbfetch")
	}

	app := grumble.New(&grumble.Config{
		Name:        "nbfetch",
		Description: "non-blocking HTTP/1.1 client shell",
		HistoryFile: histFile,
		Flags: func(f *grumble.Flags) {
			f.Int("s", "size", config.Default().Pool.Size, "number of connections in the pool")
			f.Bool("v", "verbose", false, "log every connection state transition")
		},
	})

	app.OnInit(func(a *grumble.App, flags grumble.FlagMap) error {
		if flags.Bool("verbose") {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		}

		cfg := config.Default()
		if cfg.Pool.Size = flags.Int("size"); cfg.Pool.Size <= 0 {
			return fmt.Errorf("pool size must be positive, got %d", cfg.Pool.Size)
		}

		current = start(cfg)
		return nil
	})

	return app
}

func main() {
	configureLogging()

	app := setupCLI()
	addCommands(app)

	err := app.Run()
	if current != nil {
		current.stop()
	}

	if err != nil {
		log.Fatal().Msg(err.Error())
	}
}
