package types

// Version is overwritten at build time via -ldflags.
var Version = "dev"

// ServiceName is reported by the health endpoint and used as the CLI name.
const ServiceName = "greeter"
