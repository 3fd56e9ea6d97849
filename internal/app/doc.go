// Package app contains the core application logic. It wires configuration,
// logging, node-type manifests, abstraction loading, compilation and output
// together, decoupled from any specific entrypoint like a CLI.
package app
