// Package config loads and validates the service configuration.
//
// Configuration comes from a YAML file with ${VAR} environment expansion;
// a .env file, when present, is loaded first so local development needs no
// exported shell variables.
package config
