package domain

// ResultRecord is the normalized form of one query's entry in a fetched
// result document.
type ResultRecord struct {
	// Query is the search query the links belong to.
	Query string

	// Links are the organic result URLs in SERP order. Empty (never nil)
	// when the document carried no organic results for the query.
	Links []string
}

// UnifiedRecord is one row of the left join of the keyword table with the
// collected results, keyed on Query. This is the exact shape handed to the
// clustering service.
type UnifiedRecord struct {
	// Query is the cleaned keyword text.
	Query string

	// Volume is the keyword's search volume.
	Volume int

	// Links are the organic URLs for the query. Empty (never nil) when
	// no result document covered the query.
	Links []string
}

// ClusterAssignment is one keyword's membership row as returned by the
// remote clustering service.
type ClusterAssignment struct {
	// ClusterName is the label the service chose for the group.
	ClusterName string

	// Query is the keyword assigned to the cluster.
	Query string

	// ClusterSize is the number of keywords sharing ClusterName.
	ClusterSize int
}
