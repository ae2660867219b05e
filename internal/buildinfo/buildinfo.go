package buildinfo

// Version is overridden at build time via
// -ldflags "-X kitsubot/internal/buildinfo.Version=v1.2.3".
var Version = "dev"
