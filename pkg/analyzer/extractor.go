package analyzer

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// Extractor state errors.
var (
	// ErrNotFitted is returned by Transform when Fit has not completed.
	ErrNotFitted = errors.New("extractor is not fitted")
	// ErrEmptyCorpus is returned by Fit for an empty corpus or when
	// document-frequency filtering leaves no vocabulary.
	ErrEmptyCorpus = errors.New("corpus produced an empty vocabulary")
)

// Default extractor configuration.
const (
	DefaultMaxFeatures = 1000
	DefaultNComponents = 50

	// svdSeed fixes the random initialization of the truncated SVD so
	// fitting the same corpus twice yields the same projection.
	svdSeed = 42

	minDocFreq     = 2
	maxDocFreqFrac = 0.95
)

var tokenPattern = regexp.MustCompile(`[\p{L}\p{N}_]{2,}`)

// FeatureName returns the fixed slot name for projected coordinate i.
func FeatureName(i int) string {
	return fmt.Sprintf("feature_%d", i)
}

// Extractor fits a TF-IDF model with truncated-SVD dimensionality reduction
// over a corpus and projects single documents into a fixed-size dense vector.
// An Extractor is immutable after Fit; fit-before-transform sequencing is the
// caller's responsibility and concurrent Fit calls are a caller error.
type Extractor struct {
	maxFeatures int
	nComponents int

	vocab      map[string]int // term -> column
	idf        []float64      // per column, smoothed
	components [][]float64    // effective rank x vocab size
	fitted     bool
}

// NewExtractor creates an unfitted extractor. Non-positive arguments fall
// back to the defaults.
func NewExtractor(maxFeatures, nComponents int) *Extractor {
	if maxFeatures <= 0 {
		maxFeatures = DefaultMaxFeatures
	}
	if nComponents <= 0 {
		nComponents = DefaultNComponents
	}
	return &Extractor{
		maxFeatures: maxFeatures,
		nComponents: nComponents,
	}
}

// NComponents returns the fixed length of transformed feature vectors.
func (e *Extractor) NComponents() int { return e.nComponents }

// Fitted reports whether Fit has completed successfully.
func (e *Extractor) Fitted() bool { return e.fitted }

// Fit builds the TF-IDF vocabulary (unigrams and bigrams, stop words
// excluded, document-frequency bounds applied, capped to maxFeatures terms
// by corpus frequency) and fits the SVD projection over the weighted-term
// matrix. A degenerate corpus is a hard failure; Fit never silently yields a
// zero model.
func (e *Extractor) Fit(texts []string) error {
	if len(texts) == 0 {
		return fmt.Errorf("fit: %w", ErrEmptyCorpus)
	}

	docs := make([][]string, len(texts))
	df := make(map[string]int)
	tf := make(map[string]int)
	for i, text := range texts {
		terms := ngrams(text)
		docs[i] = terms

		seen := make(map[string]bool, len(terms))
		for _, t := range terms {
			tf[t]++
			if !seen[t] {
				df[t]++
				seen[t] = true
			}
		}
	}

	n := len(texts)
	maxDocCount := maxDocFreqFrac * float64(n)

	var candidates []string
	for term, count := range df {
		// Document-frequency bounds only make sense with more than one
		// document; a single-document corpus keeps every term.
		if n > 1 && (count < minDocFreq || float64(count) > maxDocCount) {
			continue
		}
		candidates = append(candidates, term)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("fit over %d documents: %w", n, ErrEmptyCorpus)
	}

	// Cap vocabulary to the top terms by corpus frequency, alphabetical on
	// ties so fitting is deterministic.
	sort.Slice(candidates, func(i, j int) bool {
		if tf[candidates[i]] != tf[candidates[j]] {
			return tf[candidates[i]] > tf[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})
	if len(candidates) > e.maxFeatures {
		candidates = candidates[:e.maxFeatures]
	}
	sort.Strings(candidates)

	vocab := make(map[string]int, len(candidates))
	idf := make([]float64, len(candidates))
	for i, term := range candidates {
		vocab[term] = i
		idf[i] = math.Log(float64(1+n)/float64(1+df[term])) + 1
	}

	// Weighted-term matrix, L2-normalized rows.
	matrix := make([][]float64, n)
	for i, terms := range docs {
		matrix[i] = weightedRow(terms, vocab, idf)
	}

	k := min(e.nComponents, len(candidates))
	components, err := truncatedSVD(matrix, k, svdSeed)
	if err != nil {
		return fmt.Errorf("fit svd: %w", err)
	}

	e.vocab = vocab
	e.idf = idf
	e.components = components
	e.fitted = true
	return nil
}

// Transform projects one text into the fitted latent space and returns a
// mapping feature_0..feature_{n-1} of exactly NComponents entries. It fails
// with ErrNotFitted if called before a successful Fit; the coordinate
// semantics derive entirely from the corpus the extractor was fitted on.
func (e *Extractor) Transform(text string) (map[string]float64, error) {
	if !e.fitted {
		return nil, fmt.Errorf("transform: %w", ErrNotFitted)
	}

	row := weightedRow(ngrams(text), e.vocab, e.idf)

	features := make(map[string]float64, e.nComponents)
	for i := 0; i < e.nComponents; i++ {
		v := 0.0
		if i < len(e.components) {
			v = dot(e.components[i], row)
		}
		features[FeatureName(i)] = v
	}
	return features, nil
}

// ngrams tokenizes text into lowercase unigrams and bigrams with stop words
// removed before bigram construction.
func ngrams(text string) []string {
	words := tokenPattern.FindAllString(strings.ToLower(text), -1)

	kept := words[:0]
	for _, w := range words {
		if !englishStopWords[w] {
			kept = append(kept, w)
		}
	}

	terms := make([]string, 0, 2*len(kept))
	terms = append(terms, kept...)
	for i := 0; i+1 < len(kept); i++ {
		terms = append(terms, kept[i]+" "+kept[i+1])
	}
	return terms
}

// weightedRow builds the L2-normalized TF-IDF vector of one document.
func weightedRow(terms []string, vocab map[string]int, idf []float64) []float64 {
	row := make([]float64, len(idf))
	for _, t := range terms {
		if j, ok := vocab[t]; ok {
			row[j] += idf[j]
		}
	}

	norm := 0.0
	for _, v := range row {
		norm += v * v
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for j := range row {
			row[j] /= norm
		}
	}
	return row
}

func dot(a, b []float64) float64 {
	s := 0.0
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}
