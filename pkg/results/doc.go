// Package results holds the workflow result store backends and their wiring.
//
// Backends live in subpackages: memory, file and redis. Open selects one from
// a location string, and middleware wraps any of them with masking or encryption.
package results
