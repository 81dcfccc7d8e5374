// Package app contains the core application logic. It wires a loaded program
// to the grid world, the execution engine and its listeners, and owns the
// process lifecycle, decoupled from any specific entrypoint like a CLI.
package app
