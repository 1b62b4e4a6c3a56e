// Package config assembles the gateway's runtime configuration.
//
// Settings arrive through TABARD_* environment variables and are parsed
// once at startup; the serve command may then override individual
// fields from flags before validation. There are no baked-in defaults
// for anything sensitive: a missing database path is an error, a
// missing auth token means auth stays off, and the backup webhook URL
// must be supplied explicitly whenever mirroring is enabled.
//
// The optional table map lives in a CUE file so operators get syntax
// checking, comments, and string labels with spaces, none of which
// survive an environment variable.
package config
