// Package services implements the core pipeline logic: keyword table
// normalization, result collection, the keyword/result join and the
// end-to-end pipeline orchestrator. Services depend only on the domain
// package and the driven ports.
package services
