// Package align locates utterance boundaries inside a synthesized voice
// track by matching utterance tails against recognized words, refining each
// boundary to a nearby silence, and reconciling the resulting segments with
// the utterance count.
package align

// Ratio computes Ratcliff/Obershelp similarity between two strings over
// runes, in [0, 1]. Two empty strings are identical. Unlike cosine measures
// it is order sensitive, which matters for short Hangul tails.
func Ratio(a, b string) float64 {
	ar, br := []rune(a), []rune(b)
	if len(ar) == 0 && len(br) == 0 {
		return 1.0
	}
	matched := matchedRunes(ar, br, 0, len(ar), 0, len(br))
	return 2 * float64(matched) / float64(len(ar)+len(br))
}

func matchedRunes(a, b []rune, alo, ahi, blo, bhi int) int {
	i, j, size := longestMatch(a, b, alo, ahi, blo, bhi)
	if size == 0 {
		return 0
	}
	total := size
	total += matchedRunes(a, b, alo, i, blo, j)
	total += matchedRunes(a, b, i+size, ahi, j+size, bhi)
	return total
}

// longestMatch finds the longest common run between a[alo:ahi] and
// b[blo:bhi], preferring the earliest occurrence on ties.
func longestMatch(a, b []rune, alo, ahi, blo, bhi int) (besti, bestj, size int) {
	besti, bestj = alo, blo
	j2len := make(map[int]int)
	for i := alo; i < ahi; i++ {
		next := make(map[int]int)
		for j := blo; j < bhi; j++ {
			if a[i] != b[j] {
				continue
			}
			k := j2len[j-1] + 1
			next[j] = k
			if k > size {
				besti, bestj, size = i-k+1, j-k+1, k
			}
		}
		j2len = next
	}
	return besti, bestj, size
}
