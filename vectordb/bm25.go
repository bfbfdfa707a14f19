package vectordb

import (
	"math"
	"strings"
	"unicode"
)

// BM25 parameters.
const (
	bm25K1 = 1.2
	bm25B  = 0.75
)

// BM25 scores a fixed corpus against keyword queries.
type BM25 struct {
	docs  []map[string]int
	lens  []int
	avgdl float64
	df    map[string]int
}

// NewBM25 indexes texts.
func NewBM25(texts []string) *BM25 {
	b := &BM25{
		docs: make([]map[string]int, len(texts)),
		lens: make([]int, len(texts)),
		df:   make(map[string]int),
	}
	total := 0
	for i, t := range texts {
		tf := make(map[string]int)
		toks := Tokenize(t)
		for _, tok := range toks {
			tf[tok]++
		}
		for tok := range tf {
			b.df[tok]++
		}
		b.docs[i] = tf
		b.lens[i] = len(toks)
		total += len(toks)
	}
	if len(texts) > 0 {
		b.avgdl = float64(total) / float64(len(texts))
	}
	return b
}

// Scores returns one score per indexed text, in index order.
func (b *BM25) Scores(query string) []float64 {
	scores := make([]float64, len(b.docs))
	if b.avgdl == 0 {
		return scores
	}
	n := float64(len(b.docs))
	seen := make(map[string]bool)
	for _, term := range Tokenize(query) {
		if seen[term] {
			continue
		}
		seen[term] = true
		df := float64(b.df[term])
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (n-df+0.5)/(df+0.5))
		for i, tf := range b.docs {
			f := float64(tf[term])
			if f == 0 {
				continue
			}
			norm := 1 - bm25B + bm25B*float64(b.lens[i])/b.avgdl
			scores[i] += idf * f * (bm25K1 + 1) / (f + bm25K1*norm)
		}
	}
	return scores
}

// Tokenize lowercases text and splits it on anything that is not a letter
// or a digit.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
