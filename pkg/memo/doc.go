// Package memo is the embeddable façade over memo's store, embedder,
// deduper, search engine, and importer. One Open call wires every
// subsystem together against a single project database, for Go programs
// that want the memory store as a library rather than through the CLI or
// the MCP server.
package memo
