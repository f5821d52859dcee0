package version

// Version information set via ldflags at build time
var (
	Version   = "dev"     // -X 'github.com/tobilg/otlp-langfuse-bridge/internal/version.Version=...'
	GitCommit = "unknown" // -X 'github.com/tobilg/otlp-langfuse-bridge/internal/version.GitCommit=...'
	BuildDate = "unknown" // -X 'github.com/tobilg/otlp-langfuse-bridge/internal/version.BuildDate=...'
)
