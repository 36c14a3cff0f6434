package halstead

import "math"

// Halstead formula constants.
const (
	// TimeConstant is the standard constant used in time-to-program estimation (18 seconds).
	TimeConstant = 18.0
	// BugConstant is the standard constant used in delivered bugs estimation.
	BugConstant = 3000.0
	// DifficultyDivisor is used in the difficulty formula: n1/2 * (N2/n2).
	DifficultyDivisor = 2.0
)

// Calculate fills the derived Halstead measures of m from its four counts.
func (m *Metrics) Calculate() {
	m.Vocabulary = m.DistinctOperators + m.DistinctOperands
	m.Length = m.TotalOperators + m.TotalOperands

	m.EstimatedLength = 0
	if m.DistinctOperators > 0 && m.DistinctOperands > 0 {
		m.EstimatedLength = float64(m.DistinctOperators)*math.Log2(float64(m.DistinctOperators)) +
			float64(m.DistinctOperands)*math.Log2(float64(m.DistinctOperands))
	}

	m.Volume = 0
	if m.Vocabulary > 0 {
		m.Volume = float64(m.Length) * math.Log2(float64(m.Vocabulary))
	}

	m.Difficulty = 0
	if m.DistinctOperands > 0 {
		m.Difficulty = (float64(m.DistinctOperators) / DifficultyDivisor) *
			(float64(m.TotalOperands) / float64(m.DistinctOperands))
	}

	m.Effort = m.Volume * m.Difficulty
	m.TimeToProgram = m.Effort / TimeConstant
	m.DeliveredBugs = m.Volume / BugConstant
}
