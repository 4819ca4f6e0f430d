// Package sentiment tags news headlines with a keyword-based tone.
package sentiment

import (
	"math"
	"strings"
	"time"

	"github.com/seenimoa/researchdesk/pkg/models"
)

// Tone labels.
const (
	TonePositive = "positive"
	ToneNegative = "negative"
	ToneNeutral  = "neutral"
)

// toneThreshold is the absolute score a headline needs to leave neutral.
const toneThreshold = 0.1

// Keyword weights, lowercase. Phrases match as substrings.
var positiveWords = map[string]float64{
	"beats estimates": 0.6, "beat": 0.5, "raises guidance": 0.7, "upgrade": 0.6,
	"outperform": 0.6, "record": 0.5, "surge": 0.7, "rally": 0.6, "jumps": 0.5,
	"strong": 0.4, "growth": 0.4, "buyback": 0.5, "dividend": 0.4,
	"expands": 0.4, "profit": 0.3, "approval": 0.5,
}

var negativeWords = map[string]float64{
	"misses": 0.5, "miss": 0.5, "cuts guidance": 0.7, "downgrade": 0.6,
	"underperform": 0.6, "plunge": 0.7, "slump": 0.6, "falls": 0.4,
	"weak": 0.4, "decline": 0.5, "loss": 0.4, "lawsuit": 0.5,
	"probe": 0.5, "investigation": 0.5, "recall": 0.5, "layoffs": 0.4,
	"fraud": 0.8, "warning": 0.5,
}

// ScoreHeadline returns a score in [-1, 1] and a confidence in [0.1, 0.85]
// for text. Text with no keyword scores 0 at the floor confidence.
func ScoreHeadline(text string) (score, confidence float64) {
	lower := strings.ToLower(text)

	var pos, neg float64
	matches := 0
	for w, weight := range positiveWords {
		if strings.Contains(lower, w) {
			pos += weight
			matches++
		}
	}
	for w, weight := range negativeWords {
		if strings.Contains(lower, w) {
			neg += weight
			matches++
		}
	}
	if matches == 0 || pos+neg == 0 {
		return 0, 0.1
	}

	score = (pos - neg) / (pos + neg)
	confidence = math.Min(float64(matches)*0.15+0.2, 0.85)
	return score, confidence
}

// ToneOf maps a score to a tone label.
func ToneOf(score float64) string {
	switch {
	case score > toneThreshold:
		return TonePositive
	case score < -toneThreshold:
		return ToneNegative
	}
	return ToneNeutral
}

// Annotate returns copies of articles with Tone and ToneScore set from
// each title and summary.
func Annotate(articles []models.NewsArticle) []models.NewsArticle {
	out := make([]models.NewsArticle, len(articles))
	for i, a := range articles {
		text := a.Title
		if a.Summary != "" {
			text += " " + a.Summary
		}
		score, _ := ScoreHeadline(text)
		a.ToneScore = score
		a.Tone = ToneOf(score)
		out[i] = a
	}
	return out
}

// Summary is the decayed average tone of a ticker's headlines.
type Summary struct {
	Ticker   string  `json:"ticker"`
	Score    float64 `json:"score"`
	Tone     string  `json:"tone"`
	Articles int     `json:"articles"`
}

// Summarize averages headline scores weighted by confidence, halving an
// article's weight for every day of age relative to now.
func Summarize(ticker string, articles []models.NewsArticle, now time.Time) Summary {
	s := Summary{Ticker: ticker, Tone: ToneNeutral, Articles: len(articles)}
	var sum, weights float64
	for _, a := range articles {
		score, conf := ScoreHeadline(a.Title + " " + a.Summary)
		age := now.Sub(a.PublishedAt).Hours()
		if age < 0 || a.PublishedAt.IsZero() {
			age = 0
		}
		w := math.Exp(-math.Ln2*age/24) * conf
		sum += score * w
		weights += w
	}
	if weights > 0 {
		s.Score = sum / weights
		s.Tone = ToneOf(s.Score)
	}
	return s
}
