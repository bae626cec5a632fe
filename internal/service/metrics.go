package service

import (
	"github.com/pkoukk/tiktoken-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	textTokensTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storybook_text_tokens_total",
		Help: "Tokens exchanged with the text model.",
	}, []string{"direction"})

	illustrationAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storybook_illustration_attempts_total",
		Help: "Per-attempt outcomes of page illustration calls.",
	}, []string{"outcome"})

	illustrationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "storybook_illustration_duration_seconds",
		Help:    "Wall time to fully illustrate one page, successful attempts only.",
		Buckets: prometheus.ExponentialBuckets(0.5, 2, 8),
	})
)

func observeTextTokens(promptTokens, completionTokens int) {
	textTokensTotal.WithLabelValues("prompt").Add(float64(promptTokens))
	textTokensTotal.WithLabelValues("completion").Add(float64(completionTokens))
}

// observeTextTokensEstimate covers backends that do not report usage.
// cl100k_base is close enough for a trend metric.
func observeTextTokensEstimate(prompt, completion string) {
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		return
	}
	textTokensTotal.WithLabelValues("prompt").Add(float64(len(enc.Encode(prompt, nil, nil))))
	textTokensTotal.WithLabelValues("completion").Add(float64(len(enc.Encode(completion, nil, nil))))
}
