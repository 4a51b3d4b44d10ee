// Package app contains the core application logic. It wires the extension
// loaders, the watchers, the catalog coordinator and the remote connection
// together, and owns the dispatch of inbound requests. It is decoupled from
// any specific entrypoint like a CLI.
package app
