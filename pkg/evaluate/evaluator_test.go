package evaluate

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/openai/openai-go/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenroom/pkg/schema"
)

type stubInferencer struct {
	out string
	err error
}

func (s *stubInferencer) Infer(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	return s.out, s.err
}

func (s *stubInferencer) Edit(ctx context.Context, params *openai.ChatCompletionNewParams, system, user string) (string, error) {
	return s.out, s.err
}

func (s *stubInferencer) Verify(ctx context.Context, result string) (bool, error) {
	return result != "", nil
}

// cleanScene is long enough to dodge the short-content check and carries
// no phrases from the cliche table.
var cleanScene = strings.Repeat("Ava rearranges the cue cards while the band tunes behind her. ", 4)

func TestQuickCleanContent(t *testing.T) {
	e := New(nil, "")
	q := e.Quick(cleanScene)
	assert.InDelta(t, 0.7, q.Score, 1e-9)
	assert.Zero(t, q.ClicheCount)
	assert.Zero(t, q.IssueCount)
	assert.False(t, q.NeedsFullEvaluation)
}

func TestQuickDeductions(t *testing.T) {
	e := New(nil, "")

	oneCliche := cleanScene + "\nTheo: We need to talk."
	q := e.Quick(oneCliche)
	assert.InDelta(t, 0.6, q.Score, 1e-9)
	require.Len(t, q.Cliches, 1)
	assert.Equal(t, schema.ClicheDialogue, q.Cliches[0].Type)
	assert.True(t, q.NeedsFullEvaluation)

	// one cliche plus the short-content issue
	short := "Suddenly, the lights die."
	q = e.Quick(short)
	assert.InDelta(t, 0.7-0.1-0.05, q.Score, 1e-9)
	require.Len(t, q.Issues, 1)
	assert.Equal(t, schema.IssueStructure, q.Issues[0].Category)
}

func TestQuickFloor(t *testing.T) {
	e := New(nil, "")
	loaded := cleanScene +
		"\nWe need to talk. It's not what it looks like. I can explain." +
		"\nIt was all a dream. Love at first sight. Little did they know."
	q := e.Quick(loaded)
	assert.InDelta(t, 0.3, q.Score, 1e-9)
}

func TestQuickIsDeterministic(t *testing.T) {
	e := New(nil, "")
	content := cleanScene + "\nSuddenly, we need to talk."
	first := e.Quick(content)
	second := e.Quick(content)
	assert.Equal(t, first.ClicheCount, second.ClicheCount)
	assert.Equal(t, first.IssueCount, second.IssueCount)
	assert.Equal(t, first.Score, second.Score)
}

func TestQuickRepeatedParagraph(t *testing.T) {
	e := New(nil, "")
	para := strings.Repeat("The desk lamp buzzes and nobody fixes it. ", 3)
	q := e.Quick(para + "\n\n" + para)
	require.Len(t, q.Issues, 1)
	assert.Equal(t, "a paragraph repeats verbatim", q.Issues[0].Message)
}

func TestDialogueRatio(t *testing.T) {
	content := "Ava leans in.\n\"Cut the feed,\" she says.\n\"Now?\" asks Theo.\nNobody moves."
	assert.InDelta(t, 0.5, dialogueRatio(content), 1e-9)
	assert.Zero(t, dialogueRatio(""))
}

func TestDetectClichesTypes(t *testing.T) {
	found := DetectCliches("Meanwhile, back at the studio, it was all a dream.")
	require.Len(t, found, 2)
	types := []schema.ClicheType{found[0].Type, found[1].Type}
	assert.Contains(t, types, schema.ClichePlot)
	assert.Contains(t, types, schema.ClicheTransition)
}

func TestExtractJSON(t *testing.T) {
	obj := `{"a": 1}`

	got, ok := ExtractJSON(obj)
	require.True(t, ok)
	assert.Equal(t, obj, got)

	got, ok = ExtractJSON("```json\n" + obj + "\n```")
	require.True(t, ok)
	assert.Equal(t, obj, got)

	got, ok = ExtractJSON("Here is the judgment:\n" + obj + "\nHope that helps!")
	require.True(t, ok)
	assert.Equal(t, obj, got)

	_, ok = ExtractJSON("no json here")
	assert.False(t, ok)

	_, ok = ExtractJSON("{broken")
	assert.False(t, ok)
}

func TestEvaluateMergesJudgment(t *testing.T) {
	judgment := `{
		"creativity_score": 0.9,
		"consistency_score": 0.8,
		"emotion_score": 0.7,
		"pacing_score": 0.6,
		"dialogue_score": 0.5,
		"cliches": [
			{"type": "dialogue", "text": "we need to talk", "explanation": "stock opener"},
			{"type": "weird-type", "text": "second", "explanation": "unknown type falls back"}
		],
		"issues": [
			{"category": "pacing", "severity": "warning", "message": "middle drags", "suggestion": "cut the recap"}
		],
		"summary": "Solid scene with a slow middle.",
		"strengths": ["distinct voices", "distinct voices"],
		"suggestions": ["tighten act two"]
	}`
	e := New(&stubInferencer{out: judgment}, "openai")

	ev := e.Evaluate(context.Background(), cleanScene, "context")
	require.NotNil(t, ev)

	// two cliches dock creativity by 0.2
	assert.InDelta(t, 0.7, ev.CreativityScore, 1e-9)
	assert.InDelta(t, (0.7+0.8+0.7+0.6+0.5)/5, ev.OverallScore, 1e-9)
	assert.True(t, ev.ClicheDetected)
	assert.Equal(t, "openai", ev.Evaluator)

	require.Len(t, ev.Cliches, 2)
	assert.Equal(t, schema.ClicheDialogue, ev.Cliches[1].Type)

	require.Len(t, ev.Issues, 1)
	assert.Equal(t, schema.IssuePacing, ev.Issues[0].Category)

	// duplicate strengths collapse
	assert.Equal(t, []string{"distinct voices"}, ev.Strengths)
}

func TestEvaluateUnionsStaticFindings(t *testing.T) {
	judgment := `{
		"creativity_score": 1.0,
		"consistency_score": 1.0,
		"emotion_score": 1.0,
		"pacing_score": 1.0,
		"dialogue_score": 1.0,
		"cliches": [{"type": "plot", "text": "from the judge"}],
		"issues": [],
		"summary": "s",
		"strengths": [],
		"suggestions": []
	}`
	e := New(&stubInferencer{out: judgment}, "openai")

	content := cleanScene + "\nTheo: We need to talk."
	ev := e.Evaluate(context.Background(), content, "")

	// one static cliche plus one from the judgment
	require.Len(t, ev.Cliches, 2)
	assert.Equal(t, "we need to talk", ev.Cliches[0].Text)
	assert.Equal(t, "from the judge", ev.Cliches[1].Text)

	// both docked from creativity
	assert.InDelta(t, 0.8, ev.CreativityScore, 1e-9)
}

func TestEvaluateClichePenaltyCap(t *testing.T) {
	judgment := `{
		"creativity_score": 1.0,
		"consistency_score": 1.0,
		"emotion_score": 1.0,
		"pacing_score": 1.0,
		"dialogue_score": 1.0,
		"cliches": [
			{"type": "plot", "text": "a"}, {"type": "plot", "text": "b"},
			{"type": "plot", "text": "c"}, {"type": "plot", "text": "d"},
			{"type": "plot", "text": "e"}
		],
		"issues": [],
		"summary": "s",
		"strengths": [],
		"suggestions": []
	}`
	e := New(&stubInferencer{out: judgment}, "openai")
	ev := e.Evaluate(context.Background(), cleanScene, "")
	// five cliches would dock 0.5, the cap holds it at 0.3
	assert.InDelta(t, 0.7, ev.CreativityScore, 1e-9)
}

func TestEvaluateDegradesToNeutral(t *testing.T) {
	cases := map[string]*Evaluator{
		"no capability": New(nil, ""),
		"call error":    New(&stubInferencer{err: errors.New("boom")}, "openai"),
		"not json":      New(&stubInferencer{out: "I refuse to answer in JSON."}, "openai"),
	}
	for name, e := range cases {
		t.Run(name, func(t *testing.T) {
			ev := e.Evaluate(context.Background(), cleanScene, "")
			assert.InDelta(t, 0.5, ev.OverallScore, 1e-9)
			assert.InDelta(t, 0.5, ev.CreativityScore, 1e-9)
			assert.Empty(t, ev.Cliches)
			assert.Empty(t, ev.Issues)
			assert.Equal(t, "auto", ev.Evaluator)
		})
	}
}

func TestCheckForbiddenActions(t *testing.T) {
	forbidden := []string{
		"Ava: break character on air",
		"Theo: mention the sponsor by name",
	}
	content := "Mid-monologue, Ava decides to Break Character on Air and grins at camera two."

	issues := CheckForbiddenActions(content, forbidden)
	require.Len(t, issues, 1)
	assert.Equal(t, schema.IssueConsistency, issues[0].Category)
	assert.Equal(t, schema.SeverityError, issues[0].Severity)
	assert.Contains(t, issues[0].Message, "Ava")

	assert.Empty(t, CheckForbiddenActions("A quiet scene.", forbidden))
}

func TestNeedsRevision(t *testing.T) {
	e := New(nil, "")
	assert.True(t, e.NeedsRevision(&schema.Evaluation{OverallScore: 0.59}))
	assert.False(t, e.NeedsRevision(&schema.Evaluation{OverallScore: 0.6}))

	withError := &schema.Evaluation{
		OverallScore: 0.9,
		Issues:       []schema.Issue{{Severity: schema.SeverityError, Message: "x"}},
	}
	assert.True(t, e.NeedsRevision(withError))
}
