package proativo

import "math"

// estimateConfidence is the default confidence heuristic used when the
// caller supplied no score: a blend of supporting-data volume and response
// length. Ten records and ~300 response tokens saturate their shares.
func estimateConfidence(responseTokens, recordCount int) float64 {
	if responseTokens < 0 {
		responseTokens = 0
	}
	if recordCount < 0 {
		recordCount = 0
	}
	conf := 0.4 +
		0.3*math.Min(1.0, float64(recordCount)/10.0) +
		0.3*math.Min(1.0, float64(responseTokens)/300.0)
	if conf < 0.1 {
		conf = 0.1
	}
	if conf > 0.95 {
		conf = 0.95
	}
	return conf
}
