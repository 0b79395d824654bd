package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/jotkeeper/internal/client/models"
)

// Classifier tags a raw captured text as a log, expense, or action item.
// The sync protocol does not care how records were classified; this is the
// capture-side convenience that routes text into the right collection.
type Classifier interface {
	Classify(text string) models.Kind
}

var (
	amountRe      = regexp.MustCompile(`(?i)(?:[$€£]\s?\d+(?:[.,]\d{1,2})?)|(?:\d+(?:[.,]\d{1,2})?\s?(?:usd|eur|gbp|dollars?|euros?|bucks))`)
	expenseVerbRe = regexp.MustCompile(`(?i)\b(spent|paid|bought|cost|costs)\b`)
	actionRe      = regexp.MustCompile(`(?i)^\s*(todo|task|remember to|need to|must|don'?t forget)\b`)
	numberRe      = regexp.MustCompile(`\d+(?:[.,]\d{1,2})?`)
)

// HeuristicClassifier is the default rule-based implementation: an amount
// of money makes an expense, an imperative task marker makes an action
// item, anything else is a plain log.
type HeuristicClassifier struct{}

func (HeuristicClassifier) Classify(text string) models.Kind {
	if actionRe.MatchString(text) {
		return models.KindAction
	}
	if amountRe.MatchString(text) || expenseVerbRe.MatchString(text) {
		return models.KindExpense
	}
	return models.KindLog
}

// ExtractAmount pulls the first monetary amount out of an expense text.
// Returns false when no number is present.
func ExtractAmount(text string) (float64, bool) {
	m := numberRe.FindString(text)
	if m == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", "."), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
