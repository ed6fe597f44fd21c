package cleaning

import (
	"tabcleaner/internal/dataset"
	apperrors "tabcleaner/internal/errors"
)

// MissingStrategy selects how missing cells are resolved.
type MissingStrategy string

const (
	StrategyDropRow      MissingStrategy = "drop_row"
	StrategyFillMean     MissingStrategy = "fill_mean"
	StrategyFillMedian   MissingStrategy = "fill_median"
	StrategyFillMode     MissingStrategy = "fill_mode"
	StrategyFillConstant MissingStrategy = "fill_constant"
	StrategyFillForward  MissingStrategy = "fill_forward"
)

// OutlierMethod selects the outlier detection method.
type OutlierMethod string

const (
	OutlierNone            OutlierMethod = "none"
	OutlierIsolationForest OutlierMethod = "isolation_forest"
)

// DefaultContamination is the expected outlier fraction used when the
// caller leaves it unset.
const DefaultContamination = 0.1

// Config is the cleaning configuration for one pipeline run. It is
// treated as immutable once handed to Run.
type Config struct {
	MissingStrategy MissingStrategy `json:"missing_strategy" validate:"required"`
	// FillConstant is the literal used by fill_constant, given as text
	// and coerced to each column's inferred type where possible.
	FillConstant string `json:"fill_constant,omitempty"`
	// DedupKeys names the columns forming the duplicate key. Empty means
	// the full row tuple.
	DedupKeys     []string      `json:"dedup_keys,omitempty"`
	OutlierMethod OutlierMethod `json:"outlier_method" validate:"required"`
	// Contamination is the expected outlier fraction in (0, 0.5].
	Contamination float64 `json:"contamination,omitempty" validate:"omitempty,gt=0,lte=0.5"`
}

var validStrategies = map[MissingStrategy]struct{}{
	StrategyDropRow:      {},
	StrategyFillMean:     {},
	StrategyFillMedian:   {},
	StrategyFillMode:     {},
	StrategyFillConstant: {},
	StrategyFillForward:  {},
}

var validOutlierMethods = map[OutlierMethod]struct{}{
	OutlierNone:            {},
	OutlierIsolationForest: {},
}

// Validate checks the configuration against the table before any stage
// mutates it. Unknown strategy tokens and references to absent columns
// are configuration errors, fatal to the run.
func (c Config) Validate(t *dataset.Table) error {
	if _, ok := validStrategies[c.MissingStrategy]; !ok {
		return apperrors.Newf(apperrors.ErrTypeInvalidStrategy,
			"unknown missing-value strategy %q", string(c.MissingStrategy))
	}
	if _, ok := validOutlierMethods[c.OutlierMethod]; !ok {
		return apperrors.Newf(apperrors.ErrTypeInvalidStrategy,
			"unknown outlier method %q", string(c.OutlierMethod))
	}
	if c.Contamination < 0 || c.Contamination > 0.5 {
		return apperrors.Newf(apperrors.ErrTypeInvalidStrategy,
			"contamination %v outside (0, 0.5]", c.Contamination)
	}
	for _, key := range c.DedupKeys {
		if _, ok := t.Column(key); !ok {
			return apperrors.Newf(apperrors.ErrTypeInvalidColumn,
				"dedup key %q does not name a column", key)
		}
	}
	return nil
}

// contamination returns the effective contamination fraction.
func (c Config) contamination() float64 {
	if c.Contamination == 0 {
		return DefaultContamination
	}
	return c.Contamination
}
