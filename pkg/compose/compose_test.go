package compose

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenroom/pkg/schema"
	"greenroom/pkg/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *store.Store, worldSetting string) *schema.Project {
	t.Helper()
	p := &schema.Project{
		Title:        "Midnight Desk",
		Type:         schema.ProjectTalkShow,
		Status:       schema.StatusInProgress,
		WorldSetting: worldSetting,
	}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func seedEpisode(t *testing.T, s *store.Store, projectID string, number int) *schema.Episode {
	t.Helper()
	e := &schema.Episode{ProjectID: projectID, Number: number, Title: "Pilot", Status: schema.EpisodeDraft}
	require.NoError(t, s.CreateEpisode(context.Background(), e))
	return e
}

func seedScene(t *testing.T, s *store.Store, episodeID string, number int, content string) *schema.Scene {
	t.Helper()
	sc := &schema.Scene{
		EpisodeID:     episodeID,
		Number:        number,
		Type:          schema.SceneTalk,
		ConflictType:  schema.ConflictNone,
		DialogDensity: schema.DensityMedium,
		Content:       content,
	}
	require.NoError(t, s.CreateScene(context.Background(), sc))
	return sc
}

// longContent pads a line out so the scene clears the learnable bar.
func longContent(lines ...string) string {
	padding := "The studio hums under the lights while the crew resets between takes."
	return strings.Join(append(lines, padding), "\n")
}

func TestWorldRules(t *testing.T) {
	rules := WorldRules("# production notes\nThe studio never closes\n\n  Phones are props only  \n# another note")
	assert.Equal(t, []string{"The studio never closes", "Phones are props only"}, rules)

	assert.Empty(t, WorldRules(""))
	assert.Empty(t, WorldRules("# only comments\n# here"))
}

func TestSummarize(t *testing.T) {
	content := "INT. STUDIO - NIGHT\n\nAva settles behind the desk.\nThe band vamps.\nA fourth line that should not appear."
	got := Summarize(content)
	assert.Equal(t, "INT. STUDIO - NIGHT Ava settles behind the desk. The band vamps.", got)

	long := strings.Repeat("a", 200)
	assert.Equal(t, 153, len(Summarize(long))) // 150 runes plus ellipsis
}

func TestForbiddenActions(t *testing.T) {
	chars := []*schema.Character{
		{Name: "Ava", ForbiddenActions: []string{"break character on air", " "}},
		{Name: "Theo", ForbiddenActions: []string{"mention the sponsor by name"}},
	}
	got := ForbiddenActions(chars)
	assert.Equal(t, []string{
		"Ava: break character on air",
		"Theo: mention the sponsor by name",
	}, got)
}

func TestBuildBundle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "The studio never closes\n# internal note")
	ep := seedEpisode(t, s, p.ID, 1)

	ava := &schema.Character{
		ProjectID:        p.ID,
		Name:             "Ava",
		Role:             schema.RoleHost,
		ForbiddenActions: []string{"break character on air"},
	}
	require.NoError(t, s.CreateCharacter(ctx, ava))
	theo := &schema.Character{ProjectID: p.ID, Name: "Theo", Role: schema.RoleCoHost}
	require.NoError(t, s.CreateCharacter(ctx, theo))

	cb := &schema.Callback{ProjectID: p.ID, Content: "the red phone", Importance: schema.ImportanceHigh}
	require.NoError(t, s.CreateCallback(ctx, cb))

	for i := 1; i <= 7; i++ {
		seedScene(t, s, ep.ID, i, longContent("Scene body"))
	}
	target := &schema.Scene{
		EpisodeID:     ep.ID,
		Number:        8,
		Type:          schema.SceneTalk,
		ConflictType:  schema.ConflictNone,
		DialogDensity: schema.DensityMedium,
		CharacterIDs:  []string{ava.ID},
	}
	require.NoError(t, s.CreateScene(ctx, target))

	b := NewBuilder(s)
	bundle, err := b.Build(ctx, target)
	require.NoError(t, err)

	assert.Equal(t, p.ID, bundle.Project.ID)
	assert.Equal(t, ep.ID, bundle.Episode.ID)
	assert.Equal(t, []string{"The studio never closes"}, bundle.WorldRules)
	assert.Equal(t, []string{"Ava: break character on air"}, bundle.Forbidden)

	// only the named character, not the whole cast
	require.Len(t, bundle.Characters, 1)
	assert.Equal(t, "Ava", bundle.Characters[0].Name)

	// window of five, most recent first written, story order preserved
	require.Len(t, bundle.PriorScenes, 5)
	assert.Equal(t, "S01E01_SC03", bundle.PriorScenes[0].DisplayID)
	assert.Equal(t, "S01E01_SC07", bundle.PriorScenes[4].DisplayID)

	require.Len(t, bundle.Callbacks, 1)
	assert.Equal(t, "the red phone", bundle.Callbacks[0].Content)

	require.NotNil(t, bundle.Learning)
	assert.Equal(t, 7, bundle.Learning.SceneCount)
}

func TestLearningContextScores(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "")
	ep := seedEpisode(t, s, p.ID, 1)

	scores := []float64{0.9, 0.85, 0.6, 0.4}
	for i, score := range scores {
		sc := seedScene(t, s, ep.ID, i+1, longContent("Scene body"))
		require.NoError(t, s.ReplaceEvaluation(ctx, &schema.Evaluation{
			SceneID:      sc.ID,
			OverallScore: score,
			Strengths:    []string{"tight pacing", "sharp banter"},
			Suggestions:  []string{"vary sentence length", "trim the cold open", "a third never mined"},
		}))
	}
	// a fifth scene with no evaluation still counts toward the total
	seedScene(t, s, ep.ID, 5, longContent("Unevaluated"))

	lc, err := NewBuilder(s).BuildLearningContext(ctx, p.ID, "")
	require.NoError(t, err)

	assert.Equal(t, 5, lc.SceneCount)
	assert.Equal(t, 4, lc.EvaluatedScenes)
	assert.InDelta(t, 0.6875, lc.AvgScore, 1e-9)

	require.Len(t, lc.BestScenes, 3)
	assert.InDelta(t, 0.9, lc.BestScenes[0].Score, 1e-9)
	assert.InDelta(t, 0.85, lc.BestScenes[1].Score, 1e-9)
	assert.InDelta(t, 0.6, lc.BestScenes[2].Score, 1e-9)
	assert.Equal(t, schema.SceneTalk, lc.BestScenes[0].Type)

	assert.Equal(t, []string{"tight pacing", "sharp banter"}, lc.Strengths)

	// two suggestions per scene, deduped, capped at five
	assert.Equal(t, []string{"vary sentence length", "trim the cold open"}, lc.IssuesToAvoid)
}

func TestLearningContextShortScenesExcluded(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "")
	ep := seedEpisode(t, s, p.ID, 1)

	// 40 runes: below the learnable bar
	seedScene(t, s, ep.ID, 1, strings.Repeat("a", 40))
	// exactly 50 runes: still below, the bar is exclusive
	seedScene(t, s, ep.ID, 2, strings.Repeat("b", 50))
	// 51 runes: the first learnable scene
	seedScene(t, s, ep.ID, 3, strings.Repeat("c", 51))

	lc, err := NewBuilder(s).BuildLearningContext(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 1, lc.SceneCount)
}

func TestLearningContextExcludesTargetScene(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "")
	ep := seedEpisode(t, s, p.ID, 1)

	ava := &schema.Character{ProjectID: p.ID, Name: "Ava", Role: schema.RoleHost}
	require.NoError(t, s.CreateCharacter(ctx, ava))

	other := seedScene(t, s, ep.ID, 1, longContent("Ava: The cue cards survived another taping somehow."))
	require.NoError(t, s.ReplaceEvaluation(ctx, &schema.Evaluation{SceneID: other.ID, OverallScore: 0.6}))

	// the scene being rewritten scores highest; it must still stay out of
	// its own guidance
	target := seedScene(t, s, ep.ID, 2, longContent("Ava: I wrote this line and I refuse to imitate myself."))
	require.NoError(t, s.ReplaceEvaluation(ctx, &schema.Evaluation{SceneID: target.ID, OverallScore: 0.95}))

	bundle, err := NewBuilder(s).Build(ctx, target)
	require.NoError(t, err)

	lc := bundle.Learning
	require.NotNil(t, lc)
	assert.Equal(t, 1, lc.SceneCount)
	assert.Equal(t, 1, lc.EvaluatedScenes)
	require.Len(t, lc.BestScenes, 1)
	assert.Equal(t, other.DisplayID, lc.BestScenes[0].DisplayID)
	for _, line := range lc.CharacterExamples["Ava"] {
		assert.NotContains(t, line, "refuse to imitate myself")
	}

	// without an exclusion the same scene mines normally
	lc, err = NewBuilder(s).BuildLearningContext(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, 2, lc.SceneCount)
	assert.Equal(t, target.DisplayID, lc.BestScenes[0].DisplayID)
}

func TestLearningContextClicheIssues(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s, "")
	ep := seedEpisode(t, s, p.ID, 1)

	sc := seedScene(t, s, ep.ID, 1, longContent("Scene body"))
	require.NoError(t, s.ReplaceEvaluation(ctx, &schema.Evaluation{
		SceneID:        sc.ID,
		OverallScore:   0.5,
		ClicheDetected: true,
		Cliches: []schema.Cliche{
			{Type: schema.ClicheDialogue, Text: "it was all a dream", Explanation: "dream endings erase stakes"},
			{Type: schema.ClichePlot, Text: "love at first sight", Explanation: "instant romance skips the work"},
			{Type: schema.ClicheEnding, Text: "never mined", Explanation: "third cliche stays out"},
		},
	}))

	lc, err := NewBuilder(s).BuildLearningContext(ctx, p.ID, "")
	require.NoError(t, err)
	assert.Equal(t, []string{
		"avoid cliche: dream endings erase stakes",
		"avoid cliche: instant romance skips the work",
	}, lc.IssuesToAvoid)
}

func TestMineDialogue(t *testing.T) {
	chars := []*schema.Character{
		{Name: "Ava"},
		{Name: "Theo"},
	}
	scenes := []*schema.Scene{
		{Content: strings.Join([]string{
			"INT. STUDIO - NIGHT",
			"Ava: Welcome back to the only desk still lit in this building.",
			"Theo: short", // under the length bar
			"Ava: Welcome back to the only desk still lit in this building!", // near duplicate
			"Theo: I counted the cue cards twice and they still do not add up.",
			"Ava: I promised the producers exactly one more monologue tonight.",
			"Ava: A third distinct line that the per speaker cap drops.",
			"Stagehand: Not a known character, so not mined.",
		}, "\n")},
	}

	examples := mineDialogue(scenes, chars)
	require.Len(t, examples["Ava"], 2)
	assert.Equal(t, "Welcome back to the only desk still lit in this building.", examples["Ava"][0])
	assert.Equal(t, "I promised the producers exactly one more monologue tonight.", examples["Ava"][1])
	require.Len(t, examples["Theo"], 1)
	assert.NotContains(t, examples, "Stagehand")
}

func TestScriptRoundTrip(t *testing.T) {
	scenes := []*schema.Scene{
		{DisplayID: "S01E01_SC01", Content: "INT. STUDIO - NIGHT\n\nAva settles in.\n"},
		{DisplayID: "S01E01_SC02", Content: "Theo: The cue cards are gone."},
		{DisplayID: "S01E01_SC03", Content: ""},
	}

	script := AssembleScript(scenes)
	blocks := SplitScript(script)
	require.Len(t, blocks, 3)
	for i, block := range blocks {
		assert.Equal(t, scenes[i].DisplayID, block.DisplayID)
		assert.Equal(t, scenes[i].Content, block.Content)
	}
}
