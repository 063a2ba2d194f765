package version

// Build information, overridden at link time with
// -ldflags "-X github.com/compozy/git-version-header/pkg/version.Version=...".
var (
	Version    = "dev"
	CommitHash = "unknown"
	BuildDate  = "unknown"
)
