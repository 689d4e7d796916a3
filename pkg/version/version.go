package version

// These are filled in at build time with -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
)
