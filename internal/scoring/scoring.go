// Package scoring turns a raw URL into a phishing score, label and
// explanation: validate, featurize, classify, explain.
package scoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/raysh454/phishscan/internal/classifier"
	"github.com/raysh454/phishscan/internal/features"
	"github.com/raysh454/phishscan/internal/logging"
	"github.com/raysh454/phishscan/internal/utils"
)

const (
	LabelPhishing = "phishing"
	LabelLegit    = "legit"

	// Threshold is inclusive: a score of exactly 0.5 is phishing.
	Threshold = 0.5
)

// ErrInvalidURL is returned when the input has no usable scheme and host
// after normalization.
var ErrInvalidURL = errors.New("invalid url")

// Result is the outcome of scoring one URL.
type Result struct {
	URL         string          `json:"url"`
	Score       float64         `json:"score"`
	Label       string          `json:"label"`
	Explanation string          `json:"explanation"`
	Features    features.Vector `json:"features"`
	ScoredAt    time.Time       `json:"scored_at"`
}

// Extractor produces the feature vector for a normalized URL
// (satisfied by *features.Assembler).
type Extractor interface {
	Extract(ctx context.Context, url string) features.Vector
}

// ModelSource hands out the classifier (satisfied by *classifier.Loader).
type ModelSource interface {
	Model() (classifier.Model, error)
}

// Pipeline holds no per-call state and is safe for concurrent use.
type Pipeline struct {
	extractor Extractor
	models    ModelSource
	logger    logging.Logger
}

func NewPipeline(extractor Extractor, models ModelSource, logger logging.Logger) *Pipeline {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &Pipeline{
		extractor: extractor,
		models:    models,
		logger:    logger.With(logging.Field{Key: "component", Value: "scoring"}),
	}
}

// Predict scores rawURL. The URL is normalized before validation and
// feature extraction. A missing or corrupt model is an error; fetch
// failures are not (they degrade the structural features to zero). A
// context cancelled before scoring completes is an error, never a verdict.
func (p *Pipeline) Predict(ctx context.Context, rawURL string) (*Result, error) {
	url, err := utils.ParseTarget(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	model, err := p.models.Model()
	if err != nil {
		return nil, fmt.Errorf("load model: %w", err)
	}

	vec := p.extractor.Extract(ctx, url)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score %s: %w", url, err)
	}
	score := clamp(model.Probability(vec))

	res := &Result{
		URL:         url,
		Score:       score,
		Label:       Label(score),
		Explanation: Explain(score),
		Features:    vec,
		ScoredAt:    time.Now().UTC(),
	}
	p.logger.Info("scored url",
		logging.Field{Key: "url", Value: url},
		logging.Field{Key: "score", Value: score},
		logging.Field{Key: "label", Value: res.Label})
	return res, nil
}

// Label maps a score to "phishing" (score >= 0.5) or "legit".
func Label(score float64) string {
	if score >= Threshold {
		return LabelPhishing
	}
	return LabelLegit
}

// Explain renders the fixed explanation template for score.
func Explain(score float64) string {
	return fmt.Sprintf("Phishing score: %.2f. Based on URL/HTML features (e.g., length, forms).", score)
}

func clamp(s float64) float64 {
	switch {
	case s < 0 || s != s:
		return 0
	case s > 1:
		return 1
	}
	return s
}
