package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/tonyvu2014/fresh/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/tonyvu2014/fresh/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/tonyvu2014/fresh/internal/version.Date={{.Date}}
)
