// Package observability provides OpenTelemetry-based tracing, metrics, and
// structured logging for every flowdeck mode (CLI, MCP, server).
package observability

import "log/slog"

// AppMode identifies the application execution mode.
type AppMode string

const (
	// ModeCLI is the CLI command execution mode.
	ModeCLI AppMode = "cli"
	// ModeMCP is the MCP stdio server mode.
	ModeMCP AppMode = "mcp"
	// ModeServe is the HTTP server mode.
	ModeServe AppMode = "serve"
)

const (
	// defaultServiceName is the default OTel service name.
	defaultServiceName = "flowdeck"

	// defaultShutdownTimeoutSec is the default shutdown timeout in seconds.
	defaultShutdownTimeoutSec = 5

	defaultLogMaxSizeMB  = 20
	defaultLogMaxBackups = 3
	defaultLogMaxAgeDays = 14
)

// Config holds all observability configuration.
type Config struct {
	// ServiceName is the OTel resource service name.
	ServiceName string

	// ServiceVersion is the semantic version of the running binary.
	ServiceVersion string

	// Environment is the deployment environment (e.g. "production", "dev").
	Environment string

	// Mode identifies how the binary was launched.
	Mode AppMode

	// OTLPEndpoint is the OTLP gRPC collector address (e.g. "localhost:4317").
	// Empty disables export; providers become no-op.
	OTLPEndpoint string

	// OTLPHeaders are additional gRPC metadata headers for the OTLP exporter.
	OTLPHeaders map[string]string

	// OTLPInsecure disables TLS for the OTLP gRPC connection.
	OTLPInsecure bool

	// DebugTrace forces 100% trace sampling when true.
	DebugTrace bool

	// SampleRatio is the trace sampling ratio (0.0 to 1.0) when DebugTrace is false.
	SampleRatio float64

	// TraceVerbose keeps per-slide spans. When false only deck and request
	// spans are recorded.
	TraceVerbose bool

	// LogLevel controls the minimum slog severity.
	LogLevel slog.Level

	// LogJSON enables JSON-formatted log output.
	LogJSON bool

	// LogFile, when set, sends logs to a rotated file instead of stderr.
	LogFile string

	// LogMaxSizeMB is the size at which the log file is rotated.
	LogMaxSizeMB int

	// LogMaxBackups is the number of rotated files kept.
	LogMaxBackups int

	// LogMaxAgeDays is the retention of rotated files.
	LogMaxAgeDays int

	// ShutdownTimeoutSec is the maximum seconds to wait for flush on shutdown.
	ShutdownTimeoutSec int
}

// DefaultConfig returns a Config with sensible defaults for zero-config startup.
func DefaultConfig() Config {
	return Config{
		ServiceName:        defaultServiceName,
		Mode:               ModeCLI,
		LogLevel:           slog.LevelInfo,
		LogMaxSizeMB:       defaultLogMaxSizeMB,
		LogMaxBackups:      defaultLogMaxBackups,
		LogMaxAgeDays:      defaultLogMaxAgeDays,
		ShutdownTimeoutSec: defaultShutdownTimeoutSec,
	}
}
