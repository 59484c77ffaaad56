// Package driven defines the outbound interfaces (driven ports) that core
// services depend on. Adapters under internal/adapters/driven implement
// these against real infrastructure: the ValueSERP batch API, the remote
// clustering function, SQLite storage and the TOML config file.
//
// Core services only ever see these interfaces, never the adapters.
package driven
