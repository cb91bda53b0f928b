package config

// Version is the localityd binary version.
// Set at build time via: -ldflags "-X github.com/healthsites/localityd/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
