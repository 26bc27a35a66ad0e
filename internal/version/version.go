// Package version pins the toolchain version string.
package version

// Version is stamped by the release process; the default marks a
// development build.
var Version = "0.1.0-dev"
