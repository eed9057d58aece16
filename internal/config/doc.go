// Package config loads and validates songscout configuration from TOML.
//
// Configuration resolution order: an explicit --config path, then
// ~/.config/songscout/config.toml, then built-in defaults. All detection and
// matching thresholds live here so the pipeline stays reproducible: the same
// config and the same audio always produce the same segments and matches.
package config
