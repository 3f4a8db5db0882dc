// Package config loads application configuration from environment
// variables. All variables are prefixed BOOKLINE_ and carry sensible
// defaults except the postgres URL and the verifier credentials, which
// must be provided.
package config
