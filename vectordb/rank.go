package vectordb

import (
	"cmp"
	"fmt"
	"math"
	"slices"
)

// RRFK is the reciprocal rank fusion constant.
const RRFK = 60

// Cosine returns the cosine similarity of a and b, or 0 when either is zero
// or their lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

// Rank scores candidates against req in memory and returns the best
// req.Limit of them, highest score first.
func Rank(candidates []Document, req SearchRequest) ([]Document, error) {
	req = req.Normalize()
	switch req.Type {
	case SearchVector:
		if len(req.Vector) == 0 {
			return nil, fmt.Errorf("vector search needs a query vector")
		}
		return top(byVector(candidates, req.Vector), req.Limit), nil
	case SearchKeyword:
		return top(byKeyword(candidates, req.Query), req.Limit), nil
	case SearchHybrid:
		if len(req.Vector) == 0 {
			return top(byKeyword(candidates, req.Query), req.Limit), nil
		}
		return FuseRRF(req.Limit, byVector(candidates, req.Vector), byKeyword(candidates, req.Query)), nil
	default:
		return nil, fmt.Errorf("unknown search type %q", req.Type)
	}
}

func byVector(docs []Document, vec []float32) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		d.Score = Cosine(vec, d.Embedding)
		out[i] = d
	}
	sortByScore(out)
	return out
}

func byKeyword(docs []Document, query string) []Document {
	texts := make([]string, len(docs))
	for i, d := range docs {
		texts[i] = d.Content
	}
	scores := NewBM25(texts).Scores(query)

	var out []Document
	for i, d := range docs {
		if scores[i] <= 0 {
			continue
		}
		d.Score = scores[i]
		out = append(out, d)
	}
	sortByScore(out)
	return out
}

// FuseRRF merges ranked lists with reciprocal rank fusion: each document
// scores the sum of 1/(RRFK+rank) over the lists it appears in.
func FuseRRF(limit int, lists ...[]Document) []Document {
	scores := make(map[string]float64)
	docs := make(map[string]Document)
	var order []string
	for _, list := range lists {
		for rank, d := range list {
			if _, ok := docs[d.ID]; !ok {
				docs[d.ID] = d
				order = append(order, d.ID)
			}
			scores[d.ID] += 1.0 / float64(RRFK+rank+1)
		}
	}
	out := make([]Document, 0, len(order))
	for _, id := range order {
		d := docs[id]
		d.Score = scores[id]
		out = append(out, d)
	}
	sortByScore(out)
	return top(out, limit)
}

func sortByScore(docs []Document) {
	slices.SortStableFunc(docs, func(a, b Document) int { return cmp.Compare(b.Score, a.Score) })
}

func top(docs []Document, n int) []Document {
	if n > 0 && len(docs) > n {
		return docs[:n]
	}
	return docs
}
