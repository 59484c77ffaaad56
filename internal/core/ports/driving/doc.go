// Package driving defines the inbound interfaces (driving ports) through
// which the CLI drives the core. The pipeline runner is the single entry
// point for an end-to-end clustering run.
package driving
