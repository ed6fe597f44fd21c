package cleaning

// Notice codes recorded in the report. Notices are informational; none
// of them aborts a run.
const (
	NoticeTruncated           = "truncated"
	NoticeFallbackToMode      = "fallback_to_mode"
	NoticeUnresolvableMissing = "unresolvable_missing"
	NoticeOutlierSkipped      = "outlier_detection_skipped"
	NoticeConstantColumn      = "constant_column_excluded"
)

// Notice is one informational event surfaced to the user alongside the
// cleaned data.
type Notice struct {
	Code   string `json:"code"`
	Column string `json:"column,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// Report accumulates everything a pipeline run did to the data. It is
// owned by the run that builds it and never mutated after being returned
// to the caller.
type Report struct {
	RowsIn  int `json:"rows_in"`
	RowsOut int `json:"rows_out"`

	// Loader metadata.
	Truncated  bool     `json:"truncated"`
	SourceRows int      `json:"source_rows,omitempty"`
	SheetNames []string `json:"sheet_names,omitempty"`

	// Missing-value stage.
	MissingFilled       map[string]int `json:"missing_filled,omitempty"`
	UnresolvableMissing map[string]int `json:"unresolvable_missing,omitempty"`
	RowsDropped         int            `json:"rows_dropped"`

	// Duplicate stage.
	DuplicatesRemoved int   `json:"duplicates_removed"`
	DuplicateIndices  []int `json:"duplicate_indices,omitempty"`

	// Outlier stage. Indices refer to rows of the returned table; rows
	// are flagged, never removed.
	OutlierMethod   string `json:"outlier_method"`
	OutlierIndices  []int  `json:"outlier_indices,omitempty"`
	OutliersFlagged int    `json:"outliers_flagged"`

	Notices []Notice `json:"notices,omitempty"`
}

// NewReport creates an empty report.
func NewReport() *Report {
	return &Report{
		MissingFilled:       make(map[string]int),
		UnresolvableMissing: make(map[string]int),
	}
}

// AddNotice appends an informational notice.
func (r *Report) AddNotice(code, column, detail string) {
	r.Notices = append(r.Notices, Notice{Code: code, Column: column, Detail: detail})
}

// HasNotice reports whether any notice with the given code was recorded.
func (r *Report) HasNotice(code string) bool {
	for _, n := range r.Notices {
		if n.Code == code {
			return true
		}
	}
	return false
}
