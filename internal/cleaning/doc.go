// Package cleaning implements the data-cleaning pipeline that sits
// between file loading and charting or export.
//
// # Stages
//
// A run profiles the table's columns, resolves missing values under the
// configured strategy, removes duplicate rows on the configured key set
// and finally flags statistical outliers. Stages run in that fixed
// order; each consumes the table produced by the one before it and
// contributes to a cumulative Report.
//
// # Policy
//
// Configuration mistakes (an unknown strategy token, a dedup key naming
// no column) are fatal and surface before any mutation. Data problems
// never are: a numeric fill strategy on a text column silently falls
// back to mode, forward-fill leaves leading gaps unresolved, constant
// columns drop out of the outlier feature matrix. Every such fallback is
// recorded as a notice in the Report so the user always gets a
// best-effort result plus an honest account of what happened.
//
// Outliers are flagged by row index and left in the table; downstream
// collaborators decide whether to highlight or exclude them.
package cleaning
