package moderation

import (
	"context"
	"testing"

	"github.com/civicsignal/arbiter/moderation/classifier"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTextTooShort(t *testing.T) {
	assert := assert.New(t)
	eng := EngineTestFixture()
	ctx := context.Background()

	for _, text := range []string{"hi", "", "   pothole   ", "爛路"} {
		dec, err := eng.evaluateText(ctx, text)
		require.NoError(t, err)
		assert.False(dec.Approved)
		assert.Contains(dec.Reason, "too short")
		assert.Equal(0.0, dec.Score)
	}
}

func TestTextPII(t *testing.T) {
	assert := assert.New(t)
	eng := EngineTestFixture()
	ctx := context.Background()

	fixtures := []struct {
		text   string
		reason string
	}{
		{"Call 0711234567 please, the road is broken", "mobile phone number"},
		{"There is a pothole, contact +94712345678", "mobile phone number"},
		{"Report sent to someone@example.com already", "email address"},
		{"My NIC is 123456789V for reference here", "National ID"},
		{"My NIC is 200012345678 for reference here", "National ID"},
	}
	for _, fix := range fixtures {
		dec, err := eng.evaluateText(ctx, fix.text)
		require.NoError(t, err)
		assert.False(dec.Approved, fix.text)
		assert.Contains(dec.Reason, fix.reason)
		assert.Equal(0.0, dec.Score)
	}
}

// the PII check runs ahead of the spam rules, so a report containing both
// gets the privacy reason
func TestTextPIIBeforeSpamRules(t *testing.T) {
	eng := EngineTestFixture()

	dec, err := eng.evaluateText(context.Background(), "buy now and call 0711234567 today")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Contains(t, dec.Reason, "phone number")
	assert.Equal(t, 0.0, dec.Score)
}

func TestTextSpamRules(t *testing.T) {
	assert := assert.New(t)
	eng := EngineTestFixture()
	ctx := context.Background()

	fixtures := []string{
		"Check out https://example.org for details",
		"Visit www.example.org for more info",
		"More details at potholes.com every day",
		"BUY NOW while stocks last, big discount",
		"You are a winner of our grand prize draw",
		"Pothole pothole pothole on the main road",
	}
	for _, text := range fixtures {
		dec, err := eng.evaluateText(ctx, text)
		require.NoError(t, err)
		assert.False(dec.Approved, text)
		assert.Contains(dec.Reason, "Spam detected")
		assert.Equal(1.0, dec.Score)
	}

	// short words repeating is not the repetition pattern
	dec, err := eng.evaluateText(ctx, "the the the road near the school is flooded")
	require.NoError(t, err)
	assert.True(dec.Approved)
}

func TestTextClassifierSpam(t *testing.T) {
	eng := EngineTestFixture()
	eng.Spam = &FixedTextClassifier{Results: []classifier.Result{{Label: "LABEL_1", Score: 0.95}}}

	dec, err := eng.evaluateText(context.Background(), "a perfectly ordinary looking report text")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Contains(t, dec.Reason, "Spam content detected")
	assert.InDelta(t, 0.95, dec.Score, 0.0001)

	// below threshold passes through
	eng.Spam = &FixedTextClassifier{Results: []classifier.Result{{Label: "LABEL_1", Score: 0.7}}}
	dec, err = eng.evaluateText(context.Background(), "a perfectly ordinary looking report text")
	require.NoError(t, err)
	assert.True(t, dec.Approved)
}

func TestTextClassifierToxicity(t *testing.T) {
	eng := EngineTestFixture()
	eng.Toxicity = &FixedTextClassifier{Results: []classifier.Result{{Label: "toxic", Score: 0.92}}}

	dec, err := eng.evaluateText(context.Background(), "some very rude report text here")
	require.NoError(t, err)
	assert.False(t, dec.Approved)
	assert.Contains(t, dec.Reason, "Toxic content detected")
	assert.InDelta(t, 0.92, dec.Score, 0.0001)
}

// the approve score is the toxicity classifier's top-label score, whatever
// that label was
func TestTextApproveScoreIsToxicityScore(t *testing.T) {
	eng := EngineTestFixture()
	eng.Toxicity = &FixedTextClassifier{Results: []classifier.Result{{Label: "not_toxic", Score: 0.87}}}

	dec, err := eng.evaluateText(context.Background(), "There's a large pothole on Main Street")
	require.NoError(t, err)
	assert.True(t, dec.Approved)
	assert.InDelta(t, 0.87, dec.Score, 0.0001)

	// a "toxic" top label below threshold also passes, carrying its raw score
	eng.Toxicity = &FixedTextClassifier{Results: []classifier.Result{{Label: "toxic", Score: 0.4}}}
	dec, err = eng.evaluateText(context.Background(), "There's a large pothole on Main Street")
	require.NoError(t, err)
	assert.True(t, dec.Approved)
	assert.InDelta(t, 0.4, dec.Score, 0.0001)
}

func TestHasRepeatedWord(t *testing.T) {
	assert := assert.New(t)

	assert.True(hasRepeatedWord("test test test"))
	assert.True(hasRepeatedWord("Test, TEST. test!"))
	assert.True(hasRepeatedWord("aaaa spam spam spam bbbb"))
	assert.False(hasRepeatedWord("test test pause test"))
	assert.False(hasRepeatedWord("one one one"))
	assert.False(hasRepeatedWord(""))
}
