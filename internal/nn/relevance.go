package nn

import "gonum.org/v1/gonum/mat"

// Redistribute propagates output relevance back to inputs proportionally
// to the recorded contributions.
//
// contrib is an out×in matrix where contrib[j,k] is input k's share of
// output j. Each output j hands its relevance outRel[j] down weighted by
// contrib[j,k] / Σ_k' contrib[j,k']. When a row sums to exactly zero the
// relevance of that output is split uniformly across the inputs, so the
// conservation law Σ inRel = Σ outRel holds regardless of the
// contribution values.
//
// Accumulates into inRel (out×1 outRel, in×1 inRel).
func Redistribute(contrib *mat.Dense, outRel, inRel *mat.Dense) {
	rows, cols := contrib.Dims()
	uniform := 1.0 / float64(cols)
	for j := 0; j < rows; j++ {
		sum := 0.0
		for k := 0; k < cols; k++ {
			sum += contrib.At(j, k)
		}
		r := outRel.At(j, 0)
		for k := 0; k < cols; k++ {
			share := uniform
			if sum != 0 {
				share = contrib.At(j, k) / sum
			}
			inRel.Set(k, 0, inRel.At(k, 0)+share*r)
		}
	}
}

// splitByShare apportions each element of rel between two additive parts a
// and b of a total (a + b). Element j of a receives rel[j]·a[j]/(a[j]+b[j])
// and b the complement; a zero total splits the element evenly. Results
// accumulate into aRel and bRel.
func splitByShare(a, b, rel, aRel, bRel *mat.Dense) {
	n, _ := rel.Dims()
	for j := 0; j < n; j++ {
		total := a.At(j, 0) + b.At(j, 0)
		shareA := 0.5
		if total != 0 {
			shareA = a.At(j, 0) / total
		}
		r := rel.At(j, 0)
		aRel.Set(j, 0, aRel.At(j, 0)+shareA*r)
		bRel.Set(j, 0, bRel.At(j, 0)+(1.0-shareA)*r)
	}
}
