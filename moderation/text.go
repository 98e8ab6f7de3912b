package moderation

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	// trimmed reports shorter than this are rejected outright
	minReportRunes = 10

	spamScoreThreshold  = 0.8
	toxicScoreThreshold = 0.7
)

var (
	// Sri Lankan mobile numbers: 0711234567, 071-1234567, +94711234567, etc
	phonePattern = regexp.MustCompile(`(\+94|0)7\d[- ]?\d{7}`)
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	// national ID (NIC): old format (9 digits + letter) or new format (12 digits)
	nicPattern = regexp.MustCompile(`\b\d{9}[vVxX]\b|\b\d{12}\b`)

	urlPattern = regexp.MustCompile(`http[s]?://|www\.|[a-zA-Z0-9]+\.com`)
)

// civic reports don't advertise
var spamPhrases = []string{
	"earn money",
	"buy now",
	"click here",
	"cheap",
	"discount",
	"winner",
	"prize",
}

// Scans for personally identifiable information. Returns a rejection reason
// if found, otherwise the empty string. Reports are rejected rather than
// redacted so the submitter's testimony is never silently altered.
func checkPII(text string) string {
	if phonePattern.MatchString(text) {
		return "Text contains a mobile phone number. Please remove it for your privacy."
	}
	if emailPattern.MatchString(text) {
		return "Text contains an email address. Please remove it for your privacy."
	}
	if nicPattern.MatchString(text) {
		return "Text contains a National ID number. Please remove it."
	}
	return ""
}

// Fast rule-based checks for obvious spam, ahead of any classifier call.
// Returns a violation description, or the empty string.
func checkSpamRules(text string) string {
	if urlPattern.MatchString(text) {
		return "Contains unauthorized links/URLs"
	}

	lower := strings.ToLower(text)
	for _, phrase := range spamPhrases {
		if strings.Contains(lower, phrase) {
			return "Contains commercial spam phrases"
		}
	}

	if hasRepeatedWord(text) {
		return "Contains repetitive text patterns"
	}
	return ""
}

// A word of 4+ characters appearing three times in a row (eg, "test test
// test") marks repetitive filler. Checked over normalized tokens; RE2 has no
// backreferences.
func hasRepeatedWord(text string) bool {
	toks := tokenizeText(text)
	for i := 0; i+2 < len(toks); i++ {
		if utf8.RuneCountInString(toks[i]) >= 4 && toks[i] == toks[i+1] && toks[i] == toks[i+2] {
			return true
		}
	}
	return false
}

// the spam model reports its positive class as LABEL_1
func isSpamLabel(label string) bool {
	return label == "spam" || label == "LABEL_1"
}

// Runs the text checks in strict order; the first violation terminates with
// its own reason and score. On full pass the approve score is the toxicity
// classifier's top-label score, whatever that label was.
func (eng *Engine) evaluateText(ctx context.Context, text string) (*Decision, error) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minReportRunes {
		return reject("Text is too short (spam suspected)", 0.0), nil
	}

	if reason := checkPII(text); reason != "" {
		return reject(reason, 0.0), nil
	}

	if violation := checkSpamRules(text); violation != "" {
		return reject(fmt.Sprintf("Spam detected: %s", violation), 1.0), nil
	}

	spamResults, err := eng.Spam.ClassifyText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("spam classification failed: %w", err)
	}
	if len(spamResults) == 0 {
		return nil, fmt.Errorf("spam classifier returned no results")
	}
	if top := spamResults[0]; isSpamLabel(top.Label) && top.Score > spamScoreThreshold {
		return reject(fmt.Sprintf("Spam content detected (%d%% confidence)", int(top.Score*100)), top.Score), nil
	}

	toxResults, err := eng.Toxicity.ClassifyText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("toxicity classification failed: %w", err)
	}
	if len(toxResults) == 0 {
		return nil, fmt.Errorf("toxicity classifier returned no results")
	}
	top := toxResults[0]
	if top.Label == "toxic" && top.Score > toxicScoreThreshold {
		return reject(fmt.Sprintf("Toxic content detected (%d%% confidence)", int(top.Score*100)), top.Score), nil
	}

	return approve("Content is safe", top.Score), nil
}
