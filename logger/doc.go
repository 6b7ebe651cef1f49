// Package logger provides structured logging built on zerolog.
//
// Library constructors in this module accept a *Logger and fall back to
// NewNop when none is given, so nothing is written unless the composition
// root asks for it.
//
// # Configuration
//
//	logging:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.New(&cfg, "sessionctl").WithComponent("httpclient")
//	log.Info("request sent", logger.Fields("method", "GET", "url", u))
package logger
