package grading

// Summary holds the aggregate fields of a completed attempt.
type Summary struct {
	Score      float64
	Percentage float64
	Passed     bool
}

// Summarize derives score, percentage and pass/fail from per-question marks.
// An exam with no total marks always yields 0% and a fail. No rounding is applied.
func Summarize(totalMarks, passingMarks float64, marks ...float64) Summary {
	var score float64
	for _, m := range marks {
		score += m
	}

	if totalMarks <= 0 {
		return Summary{Score: score}
	}

	percentage := score / totalMarks * 100
	passThreshold := passingMarks / totalMarks * 100

	return Summary{
		Score:      score,
		Percentage: percentage,
		Passed:     percentage >= passThreshold,
	}
}
