// Package logging provides structured logging for hamqtt services.
//
// This package wraps Go's standard log/slog package to provide
// consistent, structured logging across a service and its MQTT glue.
//
// # Features
//
//   - JSON output for production (machine-parsable)
//   - Text output for development (human-readable)
//   - Default fields (service, version) on all log entries
//   - Level-based filtering (debug, info, warn, error)
//   - Thread-safe for concurrent use
//
// # Configuration
//
// Logging is configured via the LoggingConfig section of config.yaml:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// # Usage
//
//	logger := logging.New(cfg.Logging, cfg.Service.Name, "1.0.0")
//	logger.Info("connecting to broker", "host", host, "port", port)
//	logger.Error("connect failed", "error", err)
//
// Never log secrets: broker passwords and TLS key paths stay out of log
// lines even at debug level.
package logging
