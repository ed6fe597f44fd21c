// Package exporter serializes cleaned tables for download as CSV, JSON
// or xlsx, and builds the multi-sheet analysis report workbook that
// bundles a data sample with statistics, data quality and column info.
// All writers stream to an io.Writer so handlers can pipe exports
// straight into the response body.
package exporter
