// Command sessionctl logs in to and out of a REST session API and inspects
// the locally cached user.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/kbukum/restkit/config"
	"github.com/kbukum/restkit/logger"
	"github.com/kbukum/restkit/version"
)

const (
	appName   = "sessionctl"
	envPrefix = "SESSIONCTL"
)

type appKey struct{}

func newRootApp() *cli.App {
	return &cli.App{
		Name:            appName,
		Usage:           "manage the session of a REST envelope API",
		Version:         version.Get().Short(),
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a config.yml file",
				EnvVars: []string{envPrefix + "_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "base-url",
				Usage:   "base URL of the API",
				EnvVars: []string{envPrefix + "_BASE_URL"},
			},
			&cli.StringFlag{
				Name:     "log-level",
				Usage:    "set the log level. Options: debug, info, warn, error, disabled.",
				Category: "logging",
			},
			&cli.StringFlag{
				Name:     "log-format",
				Usage:    "set the log format. Options: console, json.",
				Category: "logging",
			},
			&cli.StringFlag{
				Name:     "storage-backend",
				Usage:    "where the cached state lives. Options: memory, local, redis.",
				Category: "storage",
			},
			&cli.StringFlag{
				Name:     "storage-path",
				Usage:    "directory of the local storage backend",
				Category: "storage",
			},
		},
		Before: func(c *cli.Context) error {
			cfg, err := loadConfig(c)
			if err != nil {
				return err
			}
			log := logger.NewWithWriter(&cfg.Logging, cfg.Name, c.App.ErrWriter)

			a, err := newApp(c.Context, cfg, log)
			if err != nil {
				return err
			}
			c.Context = context.WithValue(c.Context, appKey{}, a)
			return nil
		},
		After: func(c *cli.Context) error {
			if a, ok := c.Context.Value(appKey{}).(*app); ok {
				a.close(context.Background())
			}
			return nil
		},
		Commands: []*cli.Command{
			loginCommand,
			logoutCommand,
			whoamiCommand,
			fetchCommand,
			storeCommand,
			healthCommand,
			serveFakeCommand,
		},
	}
}

// loadConfig reads the config file and environment, then applies flags.
func loadConfig(c *cli.Context) (*Config, error) {
	var cfg Config
	opts := []config.LoaderOption{config.WithEnvPrefix(envPrefix)}
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		return nil, err
	}

	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = version.UserAgent(appName)
	}
	if v := c.String("base-url"); v != "" {
		cfg.HTTP.BaseURL = v
	}
	if v := c.String("log-level"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := c.String("log-format"); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := c.String("storage-backend"); v != "" {
		cfg.Storage.Backend = v
	}
	if v := c.String("storage-path"); v != "" {
		cfg.Storage.Local.BasePath = v
	}

	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func appFrom(c *cli.Context) *app {
	return c.Context.Value(appKey{}).(*app)
}

func main() {
	if err := newRootApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}
