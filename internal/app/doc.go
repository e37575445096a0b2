// Package app contains the core application logic. It wires the manifest
// loader, the planning pipeline and the spool together behind a Config,
// decoupled from any specific entrypoint like a CLI.
package app
