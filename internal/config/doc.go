// Package config loads, normalizes, and validates subsweep configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// JELLYFIN_URL and JELLYFIN_API_KEY. The Config type centralizes every knob the
// scanner, the daemon and the CLI need so subtitle roots, Jellyfin credentials
// and language toggles are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
