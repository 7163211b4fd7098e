package model

// RiskLevel classifies how often a password appears in known breach corpora.
type RiskLevel string

const (
	RiskUnknown  RiskLevel = "unknown" // check failed, exposure undetermined
	RiskSafe     RiskLevel = "safe"
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// ClassifyRisk maps a breach occurrence count to a RiskLevel. A negative
// count is the failed-check sentinel and classifies as RiskUnknown; it is
// never folded into RiskSafe. This threshold table is the single source of
// truth -- reporting code consults it rather than re-deriving ranges.
func ClassifyRisk(count int) RiskLevel {
	switch {
	case count < 0:
		return RiskUnknown
	case count == 0:
		return RiskSafe
	case count < 10:
		return RiskLow
	case count < 100:
		return RiskMedium
	case count < 1000:
		return RiskHigh
	default:
		return RiskCritical
	}
}
