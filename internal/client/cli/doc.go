// Package cli is the interactive lawdesk command-line client.
//
// NewApp wires configuration, the local database, the session and the
// services. App.Run starts a background connectivity watcher and blocks in
// the REPL until the user exits. Every command reports failures as a short
// message and returns to the prompt.
package cli
