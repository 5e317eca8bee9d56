// Package config loads the flipper's YAML configuration.
//
// Load expands ${VAR} references from the environment before parsing, so
// secrets can stay out of the file. LoadAndValidate is what main uses.
package config
