// Package config loads the YAML configuration file.
//
// Values not present in the file keep their defaults; see DefaultConfig.
package config
