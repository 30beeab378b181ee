package storage

import (
	"math"
	"sort"
	"unicode/utf8"
)

// 1 - cosine similarity. mismatched or zero vectors are maximally distant.
func CosineDistance(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 2
	}

	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}

	if na == 0 || nb == 0 {
		return 2
	}

	return float32(1 - dot/(math.Sqrt(na)*math.Sqrt(nb)))
}

// brute-force ranking for stores without a vector index. records must be
// in storage order; the sort is stable so equal distances keep that order.
func RankRecords(records []Record, embedding []float32, minContentChars, topK int) []QueryResult {
	results := make([]QueryResult, 0, len(records))

	for _, r := range records {
		if len(r.Embedding) == 0 {
			continue
		}

		if utf8.RuneCountInString(r.Content) <= minContentChars {
			continue
		}

		results = append(results, QueryResult{
			Content:  r.Content,
			Distance: CosineDistance(embedding, r.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Distance < results[j].Distance
	})

	if topK >= 0 && len(results) > topK {
		results = results[:topK]
	}

	return results
}
