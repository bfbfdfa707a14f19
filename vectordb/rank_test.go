package vectordb_test

import (
	"math"
	"testing"

	"github.com/agentcookbook/gemini-agents/vectordb"
)

var recipes = []vectordb.Document{
	{ID: "tom-kha", Content: "Tom Kha Gai: chicken in coconut milk soup with galangal", Embedding: []float32{1, 0, 0}},
	{ID: "pad-thai", Content: "Pad Thai: stir fried rice noodles with tamarind and peanuts", Embedding: []float32{0, 1, 0}},
	{ID: "green-curry", Content: "Green curry with chicken, coconut milk and thai basil", Embedding: []float32{0.7, 0.7, 0}},
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2}, []float32{1, 2}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1}, []float32{1, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := vectordb.Cosine(tt.a, tt.b); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRank_Vector(t *testing.T) {
	got, err := vectordb.Rank(recipes, vectordb.SearchRequest{Vector: []float32{1, 0.1, 0}, Limit: 2, Type: vectordb.SearchVector})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[0].ID != "tom-kha" || got[1].ID != "green-curry" {
		t.Errorf("ranking = %v", ids(got))
	}
}

func TestRank_KeywordDropsNonMatches(t *testing.T) {
	got, err := vectordb.Rank(recipes, vectordb.SearchRequest{Query: "coconut chicken", Type: vectordb.SearchKeyword})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("ranking = %v", ids(got))
	}
	for _, d := range got {
		if d.ID == "pad-thai" {
			t.Error("pad thai matched a coconut query")
		}
	}
}

func TestRank_HybridFusesBothLists(t *testing.T) {
	// The vector favors pad thai, the keywords favor the coconut dishes.
	got, err := vectordb.Rank(recipes, vectordb.SearchRequest{
		Query:  "coconut milk",
		Vector: []float32{0, 1, 0},
		Limit:  3,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("ranking = %v", ids(got))
	}
	// green curry is second in both lists and wins the fusion.
	if got[0].ID != "green-curry" {
		t.Errorf("top = %s, ranking = %v", got[0].ID, ids(got))
	}
}

func TestRank_VectorRequiresVector(t *testing.T) {
	if _, err := vectordb.Rank(recipes, vectordb.SearchRequest{Query: "soup", Type: vectordb.SearchVector}); err == nil {
		t.Error("expected error")
	}
}

func TestFuseRRF(t *testing.T) {
	a := []vectordb.Document{{ID: "x"}, {ID: "y"}}
	b := []vectordb.Document{{ID: "y"}, {ID: "z"}}
	got := vectordb.FuseRRF(10, a, b)
	if got[0].ID != "y" {
		t.Errorf("ranking = %v", ids(got))
	}
	want := 1.0/61 + 1.0/62
	if math.Abs(got[0].Score-want) > 1e-12 {
		t.Errorf("score = %v, want %v", got[0].Score, want)
	}
	if len(vectordb.FuseRRF(1, a, b)) != 1 {
		t.Error("limit ignored")
	}
}

func TestSearchRequest_Normalize(t *testing.T) {
	tests := []struct {
		req  vectordb.SearchRequest
		want vectordb.SearchType
	}{
		{vectordb.SearchRequest{Query: "q"}, vectordb.SearchKeyword},
		{vectordb.SearchRequest{Vector: []float32{1}}, vectordb.SearchVector},
		{vectordb.SearchRequest{Query: "q", Vector: []float32{1}}, vectordb.SearchHybrid},
		{vectordb.SearchRequest{Query: "q", Vector: []float32{1}, Type: vectordb.SearchVector}, vectordb.SearchVector},
	}
	for _, tt := range tests {
		got := tt.req.Normalize()
		if got.Type != tt.want || got.Limit != vectordb.DefaultLimit {
			t.Errorf("Normalize(%+v) = %s/%d", tt.req, got.Type, got.Limit)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := vectordb.Tokenize("Tom Kha Gai: coconut-milk soup, 2 servings!")
	want := []string{"tom", "kha", "gai", "coconut", "milk", "soup", "2", "servings"}
	if len(got) != len(want) {
		t.Fatalf("tokens = %q", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func ids(docs []vectordb.Document) []string {
	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = d.ID
	}
	return out
}
