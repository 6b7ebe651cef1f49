package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/kbukum/restkit/httpclient/rest"
	"github.com/kbukum/restkit/internal/fakeapi"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/observability"
	"github.com/kbukum/restkit/storage"
)

var loginCommand = &cli.Command{
	Name:  "login",
	Usage: "log in and cache the returned user",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:     "username",
			Aliases:  []string{"u"},
			Required: true,
		},
		&cli.StringFlag{
			Name:     "password",
			Aliases:  []string{"p"},
			EnvVars:  []string{envPrefix + "_PASSWORD"},
			Required: true,
		},
	},
	Action: func(c *cli.Context) error {
		a := appFrom(c)
		u, err := a.sessions.Login(c.Context, map[string]string{
			"username": c.String("username"),
			"password": c.String("password"),
		})
		if err != nil {
			return err
		}
		if u == nil {
			return cli.Exit("login rejected", 2)
		}
		return printJSON(c.App.Writer, *u)
	},
}

var logoutCommand = &cli.Command{
	Name:  "logout",
	Usage: "end the server session and clear all cached state",
	Action: func(c *cli.Context) error {
		return appFrom(c).sessions.Logout(c.Context)
	},
}

var whoamiCommand = &cli.Command{
	Name:  "whoami",
	Usage: "print the cached user without contacting the server",
	Action: func(c *cli.Context) error {
		u := appFrom(c).sessions.Current()
		if u == nil {
			return cli.Exit("not logged in", 1)
		}
		return printJSON(c.App.Writer, *u)
	},
}

var fetchCommand = &cli.Command{
	Name:  "fetch",
	Usage: "ask the server for the session user",
	Action: func(c *cli.Context) error {
		u, err := appFrom(c).sessions.Fetch(c.Context)
		if err != nil {
			return err
		}
		if u == nil {
			return cli.Exit("no session", 1)
		}
		return printJSON(c.App.Writer, *u)
	},
}

var storeCommand = &cli.Command{
	Name:  "store",
	Usage: "inspect the cached state",
	Subcommands: []*cli.Command{
		{
			Name:  "keys",
			Usage: "list cached keys",
			Action: func(c *cli.Context) error {
				for _, k := range appFrom(c).store.Keys() {
					fmt.Fprintln(c.App.Writer, k)
				}
				return nil
			},
		},
		{
			Name:      "get",
			Usage:     "print a cached value",
			ArgsUsage: "KEY",
			Action: func(c *cli.Context) error {
				if c.NArg() != 1 {
					return cli.Exit("usage: store get KEY", 2)
				}
				raw, ok := appFrom(c).store.Raw(c.Args().First())
				if !ok {
					return cli.Exit("no such key", 1)
				}
				_, err := fmt.Fprintln(c.App.Writer, string(raw))
				return err
			},
		},
		{
			Name:  "clear",
			Usage: "remove every cached key",
			Action: func(c *cli.Context) error {
				appFrom(c).store.Clear(c.Context)
				return nil
			},
		},
	},
}

var healthCommand = &cli.Command{
	Name:  "health",
	Usage: "check storage and API reachability",
	Action: func(c *cli.Context) error {
		a := appFrom(c)
		report := observability.Check(c.Context, a.cfg.Name, a.cfg.Version,
			storageChecker(a.cfg.Storage.Backend, a.medium),
			observability.CheckerFunc(func(ctx context.Context) observability.Health {
				_, err := rest.Get[json.RawMessage](ctx, rest.New(a.http), a.cfg.Session.Path, nil)
				return observability.FromError("api", err)
			}),
		)
		if err := printJSON(c.App.Writer, report); err != nil {
			return err
		}
		if report.Status == observability.HealthStatusDown {
			return cli.Exit("", 1)
		}
		return nil
	},
}

var serveFakeCommand = &cli.Command{
	Name:  "serve-fake",
	Usage: "run an in-memory session API for local testing",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8080"},
		&cli.StringFlag{Name: "user", Value: "ada"},
		&cli.StringFlag{Name: "password", Value: "secret"},
		&cli.StringFlag{Name: "name", Value: "Ada Lovelace"},
	},
	Action: func(c *cli.Context) error {
		a := appFrom(c)
		api := fakeapi.New(a.log, fakeapi.Account{
			User:     fakeapi.User{ID: "1", Username: c.String("user"), Name: c.String("name")},
			Password: c.String("password"),
		})

		ln, err := net.Listen("tcp", c.String("addr"))
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return serve(ctx, ln, api.Handler(), a.log)
	},
}

// storageChecker reports the medium as degraded, not down, when it rejects
// writes: the store keeps working in memory.
func storageChecker(backend string, m storage.Medium) observability.Checker {
	return observability.CheckerFunc(func(ctx context.Context) observability.Health {
		p := storage.Probe(ctx, m)
		h := observability.Health{
			Name:    "storage",
			Status:  observability.HealthStatusUp,
			Details: map[string]string{"backend": backend},
		}
		if !p.Available {
			h.Status = observability.HealthStatusDegraded
			if p.Reason != nil {
				h.Message = p.Reason.Error()
			}
		}
		return h
	})
}

// serve runs handler on ln until ctx is done, then shuts down gracefully.
func serve(ctx context.Context, ln net.Listener, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{Handler: handler, ReadHeaderTimeout: 5 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("fake API listening", logger.Fields("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
