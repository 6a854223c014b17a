// Package difficulty infers how hard a card currently is for the learner
// from its bounded review histories. It produces a signed difficulty delta
// and a short explanation of the dominant reason, or a typed no-op result
// when the card has too little history to judge.
package difficulty

import (
	"fmt"
	"strings"

	"mnemo/internal/models"
)

const (
	// MinOutcomes is the number of recorded outcomes required before the
	// analyzer will adjust a card at all.
	MinOutcomes = 3

	// MaxDelta bounds a single adjustment to +/-0.2.
	MaxDelta = 0.2

	// Factor weights. Response time is weighted highest: it is the least
	// gameable signal of effort.
	accuracyWeight     = 0.3
	responseTimeWeight = 0.4
	confidenceWeight   = 0.3

	// neutralAccuracy is the rolling accuracy at which the accuracy factor
	// contributes nothing. Above it the card is easing, below it hardening.
	neutralAccuracy = 0.6

	// calibrationNoise is the confidence-vs-accuracy mismatch beyond which
	// the confidence signal is treated as noise and ignored.
	calibrationNoise = 0.4

	// trendWindow is how many recent response times form the "recent"
	// average compared against the personal average of the full window.
	trendWindow = 3
)

// Status tags the analyzer's result.
type Status int

const (
	// Adjusted means the delta and explanation are meaningful.
	Adjusted Status = iota + 1
	// InsufficientHistory means the analyzer declined to adjust; the delta
	// is zero. This is a no-op result with a reason, not an error.
	InsufficientHistory
)

// String returns "Adjusted" or "InsufficientHistory".
func (s Status) String() string {
	switch s {
	case Adjusted:
		return "Adjusted"
	case InsufficientHistory:
		return "InsufficientHistory"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Factors holds the weighted contribution of each signal to the delta.
// Each lies in [-weight, +weight]; negative values push the card easier.
type Factors struct {
	Accuracy     float64 `json:"accuracy"`
	ResponseTime float64 `json:"response_time"`
	Confidence   float64 `json:"confidence"`
}

// Result is the analyzer's output for one card.
type Result struct {
	Status      Status  `json:"status"`
	Delta       float64 `json:"delta"` // clamped to [-MaxDelta, +MaxDelta]
	Explanation string  `json:"explanation"`
	Factors     Factors `json:"factors"`
}

// Analyzer computes difficulty adjustments. It is stateless and safe to
// share; all inputs come from the card itself.
type Analyzer struct{}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// Analyze produces a difficulty adjustment for the card. Cards with fewer
// than MinOutcomes recorded outcomes get an InsufficientHistory result with
// a zero delta.
func (a *Analyzer) Analyze(card *models.Card) Result {
	if card.Outcomes.Len() < MinOutcomes {
		return Result{
			Status:      InsufficientHistory,
			Explanation: fmt.Sprintf("not enough reviews yet (%d of %d)", card.Outcomes.Len(), MinOutcomes),
		}
	}

	accuracy := card.Accuracy()
	f := Factors{
		Accuracy:     accuracyWeight * accuracyFactor(accuracy),
		ResponseTime: responseTimeWeight * responseTimeFactor(card.ResponseTimes.Values()),
		Confidence:   confidenceWeight * confidenceFactor(card.Confidences.Values(), accuracy),
	}

	// Weights sum to 1, so the combined signal is already in [-1,1].
	delta := clamp((f.Accuracy+f.ResponseTime+f.Confidence)*MaxDelta, -MaxDelta, MaxDelta)

	return Result{
		Status:      Adjusted,
		Delta:       delta,
		Explanation: explain(delta, f),
		Factors:     f,
	}
}

// accuracyFactor maps rolling accuracy into [-1,1]: high accuracy eases the
// card, low accuracy hardens it.
func accuracyFactor(accuracy float64) float64 {
	return clamp((neutralAccuracy-accuracy)/(1-neutralAccuracy), -1, 1)
}

// responseTimeFactor compares the recent response-time average against the
// personal average of the whole window. Faster than average is an easing
// signal. A degenerate history (all identical times, or a zero average)
// yields a zero trend rather than a division error.
func responseTimeFactor(times []float64) float64 {
	if len(times) < trendWindow {
		return 0
	}
	total := 0.0
	for _, t := range times {
		total += t
	}
	mean := total / float64(len(times))
	if mean <= 0 {
		return 0
	}
	recent := 0.0
	for _, t := range times[len(times)-trendWindow:] {
		recent += t
	}
	recentMean := recent / float64(trendWindow)
	return clamp((recentMean-mean)/mean, -1, 1)
}

// confidenceFactor converts the learner's self-rated confidence (1-5) into
// an easing/hardening signal, but only when confidence is calibrated with
// actual accuracy. A large mismatch signals noise and contributes nothing.
func confidenceFactor(confidences []float64, accuracy float64) float64 {
	if len(confidences) == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range confidences {
		sum += c
	}
	normalized := (sum/float64(len(confidences)) - 1) / 4 // 1-5 -> [0,1]
	if diff := normalized - accuracy; diff > calibrationNoise || diff < -calibrationNoise {
		return 0
	}
	return clamp((0.5-normalized)*2, -1, 1)
}

// explain renders the dominant reason for the adjustment. The largest
// weighted factor wins; ties break toward accuracy, the most stable signal.
// Agreeing secondary factors above a small floor are mentioned too.
func explain(delta float64, f Factors) string {
	type reason struct {
		contribution float64
		eased        string
		hardened     string
	}
	// Order fixes the tie-break: accuracy first.
	reasons := []reason{
		{f.Accuracy, "high accuracy", "low accuracy"},
		{f.ResponseTime, "fast response", "slow response"},
		{f.Confidence, "high confidence", "low confidence"},
	}

	dominant := 0
	for i, r := range reasons {
		if abs(r.contribution) > abs(reasons[dominant].contribution) {
			dominant = i
		}
	}

	const mentionFloor = 0.02
	var parts []string
	for i, r := range reasons {
		if i != dominant && (abs(r.contribution) < mentionFloor || !sameSign(r.contribution, reasons[dominant].contribution)) {
			continue
		}
		if reasons[dominant].contribution < 0 {
			parts = append(parts, r.eased)
		} else {
			parts = append(parts, r.hardened)
		}
	}

	direction := "increased"
	if delta < 0 {
		direction = "decreased"
	} else if delta == 0 {
		return "unchanged: signals balanced out"
	}
	return fmt.Sprintf("%s based on %s", direction, strings.Join(parts, " and "))
}

func sameSign(a, b float64) bool {
	return (a < 0) == (b < 0)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
