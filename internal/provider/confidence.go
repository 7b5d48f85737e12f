package provider

// responseSignals are the vendor-response quality signals feeding the
// confidence heuristic.
type responseSignals struct {
	// FinishedCleanly is true when the vendor reported a natural stop
	// (stop / end_turn / STOP), as opposed to length cutoffs or filters.
	FinishedCleanly bool

	// PromptLength is the byte length of the generated prompt.
	PromptLength int

	// SafetyFlagged is true when the vendor attached moderation or
	// content-filter flags to the response.
	SafetyFlagged bool
}

// Prompt lengths inside this band read as healthy output; far shorter or
// longer suggests a truncated or rambling generation.
const (
	healthyPromptMin = 80
	healthyPromptMax = 2400
)

// scoreConfidence derives a rough quality score in [0,1] from vendor
// response signals. It is a deterministic heuristic per vendor response,
// not a calibrated probability, and scores are not comparable across
// vendors.
func scoreConfidence(sig responseSignals) float64 {
	score := 0.5

	if sig.FinishedCleanly {
		score += 0.3
	}

	if sig.PromptLength >= healthyPromptMin && sig.PromptLength <= healthyPromptMax {
		score += 0.2
	} else if sig.PromptLength > 0 {
		score += 0.05
	}

	if sig.SafetyFlagged {
		score -= 0.2
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
