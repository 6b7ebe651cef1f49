// Package version reports build information for restkit binaries.
//
// Version and Commit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/restkit/version.Version=1.2.0" ./cmd/sessionctl
//
// Missing values are filled from the module's embedded VCS settings.
package version
