// Package config centralizes every server tunable: room timing, the economy
// and combat constants, lobby thresholds, terrain generation parameters, and
// the Redis/identity settings.
//
// Defaults are defined in code; Load overlays environment variables on top so
// a deployment only sets what it changes. A .env file is honored when the
// process is started through the server entrypoint.
package config
