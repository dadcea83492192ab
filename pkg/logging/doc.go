// Package logging provides subsystem-tagged structured logging for mcpnode.
//
// It is a thin layer over log/slog. Every entry carries a subsystem
// attribute and, when present, an error attribute.
//
// # Usage
//
//	logging.InitForCLI(logging.LevelInfo, os.Stderr)
//
//	logging.Info("Session", "Connected to %s", target)
//	logging.Error("Session", err, "Failed to close transport")
//
// Components that accept a sink interface instead of calling the package
// functions directly can be handed a bound logger:
//
//	log := logging.For("Node")
//	log.Debug("Running operation %s", op)
//
// Nothing is logged until InitForCLI has been called.
package logging
