// Package version holds the application version, overridable at build time
// via -ldflags "-X logbook/version.AppVersion=...".
package version

var AppVersion = "0.1.0"
