// Package confloader loads configuration with koanf.
//
// Sources, highest priority first:
//
//  1. Overrides given with WithOverrides (command-line flags)
//  2. Environment variables (TOKGATE_ prefix)
//  3. The YAML configuration file
//  4. Values already present in the target struct (defaults)
//
// Watcher reports changes to the configuration file through fsnotify so
// the server can apply hot-reloadable settings.
package confloader
