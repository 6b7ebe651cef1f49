// Package config loads restkit application configuration.
//
// Values come from a YAML file, then from the process environment and an
// optional .env file. Environment variables map onto nested keys by
// splitting on underscores, so RESTKIT_STORAGE_BACKEND sets storage.backend
// when the loader is given the RESTKIT prefix.
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    HTTP httpclient.Config `yaml:"http" mapstructure:"http"`
//	}
//
//	cfg, err := config.Load[AppConfig]("sessionctl", config.WithEnvPrefix("RESTKIT"))
package config
