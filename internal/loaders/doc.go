// Package loaders parses tabular keyword files into domain.RawTable.
// One loader per file format, selected by extension: CSV via the standard
// library reader, XLSX via excelize. Loaders only parse; all validation and
// normalization lives in the core services.
package loaders
