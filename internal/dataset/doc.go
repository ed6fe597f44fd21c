// Package dataset defines the in-memory columnar table model used across
// the cleaning pipeline, together with column type inference and dataset
// summarization.
//
// # Data Model
//
// A Table is an ordered set of named columns of equal length. Cells are
// tagged Value variants over numeric, boolean, datetime, categorical/text
// and missing; all kind conversions are explicit.
//
// # Type Inference
//
// Profile classifies each column with a fixed precedence: boolean, then
// numeric, then datetime, then categorical, then text. A column of only
// "1"/"0" tokens therefore classifies as boolean, and a column that is 90%
// parseable dates classifies as datetime. Profiles carry missing counts,
// distinct counts, numeric/datetime bounds and sample values, and must be
// recomputed whenever row or column membership changes.
//
// # Summaries
//
// Summarize produces the dataset overview surfaced in previews and the
// exported report workbook: shape, per-type column lists, missing data,
// duplicate counts, descriptive statistics and per-column IQR fences.
package dataset
