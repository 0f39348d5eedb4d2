// Package metrics defines the canonical feature vector the rest of the
// analysis pipeline evaluates, and the invariants that reconcile
// contradictions between directly-observed and inferred fields.
//
// The original source models this as a string-keyed heterogeneous
// dictionary; here it is a structured record with explicit optional
// fields, serialized to/from a dynamic mapping only at the EXPLAIN-ingestion
// boundary (see internal/planparser).
package metrics

// AccessType is the shape of how a table is read.
type AccessType string

const (
	AccessUnknown        AccessType = ""
	AccessConstRow       AccessType = "const_row"
	AccessZeroRowConst   AccessType = "zero_row_const"
	AccessSingleRow      AccessType = "single_row_lookup"
	AccessIndexLookup    AccessType = "index_lookup"
	AccessIndexRangeScan AccessType = "index_range_scan"
	AccessTableScan      AccessType = "table_scan"
	AccessIndexScan      AccessType = "index_scan"
)

// Complexity is the Big-O class assigned to the query's dominant access
// path.
type Complexity string

const (
	ComplexityUnknown    Complexity = ""
	ComplexityConstant   Complexity = "O(1)"
	ComplexityLogN       Complexity = "O(log n)"
	ComplexityLogNPlusK  Complexity = "O(log n + k)"
	ComplexityLinear     Complexity = "O(n)"
	ComplexityLinearLogN Complexity = "O(n log n)"
	ComplexityQuadratic  Complexity = "O(n²)"
	ComplexityCubic      Complexity = "O(n³)"
)

// complexityRank orders Complexity values from cheapest to most expensive,
// used by the reconciler and scoring engine to compare complexity classes.
var complexityRank = map[Complexity]int{
	ComplexityConstant:   0,
	ComplexityLogN:       1,
	ComplexityLogNPlusK:  2,
	ComplexityLinear:     3,
	ComplexityLinearLogN: 4,
	ComplexityQuadratic:  5,
	ComplexityCubic:      6,
}

// Rank returns complexity's position in the cheap-to-expensive ordering, or
// -1 for ComplexityUnknown.
func (c Complexity) Rank() int {
	if r, ok := complexityRank[c]; ok {
		return r
	}
	return -1
}

// RiskLevel is the coarse risk banding derived from Complexity.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

// RiskFor maps a Complexity to its risk band.
func RiskFor(c Complexity) RiskLevel {
	switch c {
	case ComplexityConstant, ComplexityLogN:
		return RiskLow
	case ComplexityLogNPlusK, ComplexityLinear:
		return RiskMedium
	case ComplexityLinearLogN:
		return RiskHigh
	case ComplexityQuadratic, ComplexityCubic:
		return RiskCritical
	default:
		return RiskLow
	}
}

// TableEstimate holds per-table row estimates, used to detect stale
// optimizer statistics (estimated vs. actual row counts diverging).
type TableEstimate struct {
	Table         string
	EstimatedRows int64
	ActualRows    int64
	Loops         int64
}

// Metrics is the canonical feature vector produced by PlanParser and
// repaired by the reconciler. Zero values mean "not observed" except where
// documented otherwise (booleans default false, which is a meaningful
// "no" for plan-shape flags).
type Metrics struct {
	// Access
	PrimaryAccessType AccessType
	MySQLAccessType   string
	IsIndexBacked     bool
	IsZeroRowConst    bool
	IndexesUsed       []string
	HasCoveringIndex  bool
	HasIndexMerge     bool

	// Volume
	RowsExamined      int64
	RowsReturned      int64
	PerTableEstimates []TableEstimate

	// Shape
	HasTableScan        bool
	HasTempTable        bool
	HasDiskTemp         bool
	HasWeedout          bool
	HasFilesort         bool
	HasEarlyTermination bool
	IsIntentionalScan   bool
	NestedLoopDepth     int
	MaxLoops            int64
	FanoutFactor        float64

	// Complexity
	Complexity       Complexity
	ComplexityLabel  string
	ComplexityRisk   RiskLevel

	// Context
	TablesAccessed  []string
	ExecutionTimeMS float64
}

// New returns a zero-value Metrics with FanoutFactor defaulted to 1 (a
// single access has no fanout), the only non-zero-value default.
func New() Metrics {
	return Metrics{FanoutFactor: 1}
}
