package cli

// validateAnalyzeFlags validates the flags of the analyze command. It
// returns a user-facing message, empty when everything is fine.
func validateAnalyzeFlags() string {
	// All three inputs are required.
	if *analyzeHypotheses == "" {
		return "A hypothesis dump is required (--hypotheses)."
	}
	if *analyzeAlignment == "" {
		return "A forced-alignment file is required (--alignment)."
	}
	if *analyzeDict == "" {
		return "A symbol table is required (--dict)."
	}

	// Subsampling of zero would collapse the hypothesis time base.
	if *analyzeSubsampling <= 0 {
		return "Subsampling factor must be greater than 0."
	}

	return ""
}
