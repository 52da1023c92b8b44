package similarity

import (
	"fmt"

	"github.com/poiesic/storyweave/core"
)

// WeightConfig holds the lexical weights used when blending similarities.
type WeightConfig struct {
	// Base is the lexical weight for ordinary pairs. Default: 0.30
	Base float64

	// Ambiguous is the lexical weight for two documents from the same
	// ambiguous domain. Default: 0.60
	Ambiguous float64

	// AmbiguousDomains are outlets whose articles share enough template
	// text that embeddings over-estimate their similarity.
	AmbiguousDomains map[string]struct{}
}

// DefaultAmbiguousDomains are the outlets flagged out of the box.
var DefaultAmbiguousDomains = []string{"boadilladigital.es", "soydemadrid.com"}

// DefaultWeightConfig returns the default weights and ambiguous domains.
func DefaultWeightConfig() WeightConfig {
	return WeightConfig{
		Base:             0.30,
		Ambiguous:        0.60,
		AmbiguousDomains: NewDomainSet(DefaultAmbiguousDomains...),
	}
}

// NewDomainSet builds a set of domains in the form produced by core.DomainFromURL.
// Entries may be bare hosts or full URLs.
func NewDomainSet(domains ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		if host := core.DomainFromURL(d); host != "" {
			set[host] = struct{}{}
			continue
		}
		if host := core.DomainFromURL("http://" + d); host != "" {
			set[host] = struct{}{}
		}
	}
	return set
}

// WeightFor returns the lexical weight for a pair of source domains.
func (c WeightConfig) WeightFor(a, b string) float64 {
	if a != "" && a == b {
		if _, ok := c.AmbiguousDomains[a]; ok {
			return c.Ambiguous
		}
	}
	return c.Base
}

// AdaptiveWeights returns the per-pair lexical weight matrix.
func AdaptiveWeights(domains []string, cfg WeightConfig) Matrix {
	n := len(domains)
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		m[i][i] = cfg.WeightFor(domains[i], domains[i])
		for j := i + 1; j < n; j++ {
			w := cfg.WeightFor(domains[i], domains[j])
			m[i][j] = w
			m[j][i] = w
		}
	}
	return m
}

// Combine blends lexical and semantic similarity pair by pair:
// H = w·lex + (1−w)·sem, with w taken from AdaptiveWeights.
func Combine(lex, sem Matrix, domains []string, cfg WeightConfig) (Matrix, error) {
	n := lex.Size()
	if sem.Size() != n || len(domains) != n {
		return nil, fmt.Errorf("%w: lexical %d, semantic %d, domains %d", ErrShapeMismatch, n, sem.Size(), len(domains))
	}

	weights := AdaptiveWeights(domains, cfg)
	return symmetricFrom(n, func(i, j int) float64 {
		w := weights[i][j]
		return w*lex[i][j] + (1-w)*sem[i][j]
	}), nil
}
