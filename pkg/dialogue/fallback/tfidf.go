// Package fallback answers free text the rule table could not place by
// retrieving the closest knowledge paragraphs.
package fallback

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"

	"heystack-be/pkg/store"
)

const (
	// DefaultTopK is how many paragraphs a match may return
	DefaultTopK = 2
	// DefaultThreshold is the cosine similarity a paragraph must exceed
	DefaultThreshold = 0.05
)

var tokenPattern = regexp.MustCompile(`\b\w\w+\b`)

// Matcher is the best-effort text matcher the dialogue engine falls back to
type Matcher interface {
	Match(text string) []string
}

// Noop never matches
type Noop struct{}

func (Noop) Match(string) []string { return nil }

// TFIDF ranks paragraphs by cosine similarity of smoothed, L2-normalised
// tf-idf vectors. It is immutable after construction and safe for
// concurrent use.
type TFIDF struct {
	paragraphs []string
	vocab      map[string]int
	idf        []float64
	vectors    []sparse
	topK       int
	threshold  float64
}

type sparse map[int]float64

// Option configures a TFIDF matcher
type Option func(*TFIDF)

// WithTopK overrides DefaultTopK
func WithTopK(k int) Option {
	return func(t *TFIDF) {
		if k > 0 {
			t.topK = k
		}
	}
}

// WithThreshold overrides DefaultThreshold
func WithThreshold(th float64) Option {
	return func(t *TFIDF) { t.threshold = th }
}

// NewTFIDF fits the vectoriser over paragraphs. An empty corpus yields a
// matcher that never matches.
func NewTFIDF(paragraphs []string, opts ...Option) *TFIDF {
	t := &TFIDF{
		paragraphs: append([]string(nil), paragraphs...),
		vocab:      make(map[string]int),
		topK:       DefaultTopK,
		threshold:  DefaultThreshold,
	}
	for _, o := range opts {
		o(t)
	}

	docs := make([][]string, len(t.paragraphs))
	var df []int
	for i, p := range t.paragraphs {
		docs[i] = Tokenize(p)
		seen := make(map[int]struct{})
		for _, tok := range docs[i] {
			id, ok := t.vocab[tok]
			if !ok {
				id = len(t.vocab)
				t.vocab[tok] = id
				df = append(df, 0)
			}
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				df[id]++
			}
		}
	}

	n := float64(len(t.paragraphs))
	t.idf = make([]float64, len(df))
	for id, d := range df {
		t.idf[id] = math.Log((1+n)/(1+float64(d))) + 1
	}

	t.vectors = make([]sparse, len(docs))
	for i, toks := range docs {
		t.vectors[i] = t.vectorize(toks)
	}
	return t
}

// Match returns up to topK paragraphs most similar to text, best first,
// keeping only those scoring above the threshold
func (t *TFIDF) Match(text string) []string {
	docs := t.Rank(text)
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Content)
	}
	return out
}

// Rank is Match with scores attached
func (t *TFIDF) Rank(text string) []store.Document {
	if len(t.paragraphs) == 0 {
		return nil
	}
	q := t.vectorize(Tokenize(text))
	if len(q) == 0 {
		return nil
	}

	type scored struct {
		idx   int
		score float64
	}
	scores := make([]scored, len(t.vectors))
	for i, v := range t.vectors {
		scores[i] = scored{idx: i, score: dot(q, v)}
	}
	sort.SliceStable(scores, func(a, b int) bool { return scores[a].score > scores[b].score })

	var out []store.Document
	for _, s := range scores {
		if len(out) == t.topK {
			break
		}
		if s.score <= t.threshold {
			continue
		}
		out = append(out, store.Document{
			ID:      fmt.Sprintf("p%d", s.idx),
			Content: t.paragraphs[s.idx],
			Score:   float32(s.score),
		})
	}
	return out
}

// Len is the number of indexed paragraphs
func (t *TFIDF) Len() int { return len(t.paragraphs) }

func (t *TFIDF) vectorize(tokens []string) sparse {
	v := make(sparse)
	for _, tok := range tokens {
		if id, ok := t.vocab[tok]; ok {
			v[id]++
		}
	}
	var norm float64
	for id, tf := range v {
		w := tf * t.idf[id]
		v[id] = w
		norm += w * w
	}
	if norm == 0 {
		return v
	}
	norm = math.Sqrt(norm)
	for id := range v {
		v[id] /= norm
	}
	return v
}

// dot of two unit vectors is their cosine similarity
func dot(a, b sparse) float64 {
	if len(b) < len(a) {
		a, b = b, a
	}
	var sum float64
	for id, w := range a {
		sum += w * b[id]
	}
	return sum
}

// Tokenize lower-cases text, splits it into words of two or more word
// characters and drops English stop words
func Tokenize(text string) []string {
	raw := tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := raw[:0]
	for _, tok := range raw {
		if _, stop := stopWords[tok]; !stop {
			out = append(out, tok)
		}
	}
	return out
}
