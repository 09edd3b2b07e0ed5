// Package config loads and validates the viewer configuration.
//
// Configuration is YAML with ${VAR} environment expansion. All reconciliation
// thresholds and poll intervals are tunables here rather than constants in
// code; the defaults match the values the UI was tuned against.
package config
