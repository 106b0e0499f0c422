package retrieval

// NormalizeScore maps a raw similarity-search score onto [0,1], where 1.0 is
// most similar. The raw convention depends on the index metric in use, so the
// rule is metric-agnostic:
//
//   - [0, 2]: L2 distance between (near-)unit vectors; 0 maps to 1.0,
//     1.0 to 0.5, 2.0 to 0.0.
//   - < 0: cosine-similarity-like value in [-1, 1], shifted into [0, 1].
//   - > 2: unbounded distance, decayed as 1/(1+(raw-2)).
//
// Every downstream score and statistic goes through this one function.
func NormalizeScore(raw float64) float64 {
	var s float64
	switch {
	case raw >= 0 && raw <= 2.0:
		s = 1.0 - raw/2.0
	case raw < 0:
		s = (raw + 1.0) / 2.0
	case raw > 2.0:
		s = 1.0 / (1.0 + (raw - 2.0))
	default:
		s = raw
	}
	if s < 0 {
		s = 0
	}
	if s > 1 {
		s = 1
	}
	return s
}
