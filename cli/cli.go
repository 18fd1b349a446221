package cli

// Version and Date should be set at build time using ldflags, e.g.:
//
//  -ldflags "-X 'github.com/hollowoak/distill/cli.Version=1.2.3' -X 'github.com/hollowoak/distill/cli.Date=2026-08-24'"
var (
	Version string
	Date    string
)
