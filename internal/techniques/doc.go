// Package techniques holds the registry of known technique ids and the
// checks run against a resolved index.
//
// # File format
//
//	techniques:
//	  - id: G90
//	    title: Providing keyboard-triggered event handlers
//	  - id: SCR20
//	    title: Using both keyboard and other device-specific functions
//
// The technology of a technique comes from the letters of its id, so it is
// never written in the file.
package techniques
