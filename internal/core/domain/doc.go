// Package domain defines the core business entities for serpcluster.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - KeywordRecord: A normalized keyword with its search volume
//   - Batch: A remote SERP-retrieval job and its lifecycle status
//   - ResultRecord: Organic links extracted for one query
//   - UnifiedRecord: The keyword/volume/links join row sent to clustering
//   - ClusterAssignment: One keyword's cluster membership
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
