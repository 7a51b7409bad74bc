// Package config loads the tokgate-cli profile from ~/.tokgate/cli.yaml.
//
// The profile supplies defaults for the global flags. Flags and TOKGATE_*
// environment variables always win over the file.
package config
