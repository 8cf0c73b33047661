package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"greenroom/pkg/schema"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func seedProject(t *testing.T, s *Store) *schema.Project {
	t.Helper()
	p := &schema.Project{
		Title:  "Midnight Desk",
		Type:   schema.ProjectTalkShow,
		Status: schema.StatusDraft,
	}
	require.NoError(t, s.CreateProject(context.Background(), p))
	return p
}

func seedEpisode(t *testing.T, s *Store, projectID string, number int) *schema.Episode {
	t.Helper()
	e := &schema.Episode{
		ProjectID: projectID,
		Number:    number,
		Title:     "Pilot",
		Status:    schema.EpisodeOutline,
	}
	require.NoError(t, s.CreateEpisode(context.Background(), e))
	return e
}

func seedScene(t *testing.T, s *Store, episodeID string, number int, content string) *schema.Scene {
	t.Helper()
	sc := &schema.Scene{
		EpisodeID:     episodeID,
		Number:        number,
		Type:          schema.SceneDialogue,
		ConflictType:  schema.ConflictNone,
		DialogDensity: schema.DensityMedium,
		Content:       content,
	}
	require.NoError(t, s.CreateScene(context.Background(), sc))
	return sc
}

func TestProjectRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	p := &schema.Project{
		Title:        "Midnight Desk",
		Type:         schema.ProjectTalkShow,
		Status:       schema.StatusDraft,
		Genre:        "late night comedy",
		Language:     "English",
		WorldSetting: "# notes\nThe studio never closes",
	}
	require.NoError(t, s.CreateProject(ctx, p))
	require.NotEmpty(t, p.ID)

	got, err := s.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Title, got.Title)
	assert.Equal(t, p.WorldSetting, got.WorldSetting)
	assert.Equal(t, schema.ProjectTalkShow, got.Type)
	assert.False(t, got.CreatedAt.IsZero())

	got.Status = schema.StatusInProgress
	require.NoError(t, s.UpdateProject(ctx, got))
	again, err := s.Project(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, schema.StatusInProgress, again.Status)

	_, err = s.Project(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSceneDisplayID(t *testing.T) {
	s := openTestStore(t)
	p := seedProject(t, s)
	ep := seedEpisode(t, s, p.ID, 3)

	sc := seedScene(t, s, ep.ID, 2, "INT. STUDIO")
	assert.Equal(t, "S01E03_SC02", sc.DisplayID)

	dup := seedScene(t, s, ep.ID, 2, "INT. STUDIO, TAKE TWO")
	assert.Equal(t, "S01E03_SC02_1", dup.DisplayID)

	dup2 := seedScene(t, s, ep.ID, 2, "INT. STUDIO, TAKE THREE")
	assert.Equal(t, "S01E03_SC02_2", dup2.DisplayID)
}

func TestSceneWordCountIsRunes(t *testing.T) {
	s := openTestStore(t)
	p := seedProject(t, s)
	ep := seedEpisode(t, s, p.ID, 1)

	sc := seedScene(t, s, ep.ID, 1, "深夜のスタジオ")
	assert.Equal(t, 7, sc.WordCount)

	ctx := context.Background()
	updated, err := s.UpdateSceneContent(ctx, sc.ID, "hello")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.WordCount)
	assert.True(t, updated.HumanEdited)

	got, err := s.Scene(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.WordCount)
}

func TestCascadeDelete(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)
	ep := seedEpisode(t, s, p.ID, 1)
	sc := seedScene(t, s, ep.ID, 1, "content")

	require.NoError(t, s.ReplaceEvaluation(ctx, &schema.Evaluation{
		SceneID:      sc.ID,
		OverallScore: 0.8,
		Summary:      "fine",
	}))

	c := &schema.Character{ProjectID: p.ID, Name: "Ava", Role: schema.RoleHost}
	require.NoError(t, s.CreateCharacter(ctx, c))

	cb := &schema.Callback{ProjectID: p.ID, Content: "the red phone", Importance: schema.ImportanceHigh}
	require.NoError(t, s.CreateCallback(ctx, cb))

	require.NoError(t, s.DeleteProject(ctx, p.ID))

	_, err := s.Episode(ctx, ep.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Scene(ctx, sc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.EvaluationByScene(ctx, sc.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Character(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Callback(ctx, cb.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceEvaluation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)
	ep := seedEpisode(t, s, p.ID, 1)
	sc := seedScene(t, s, ep.ID, 1, "content")

	first := &schema.Evaluation{
		SceneID:      sc.ID,
		OverallScore: 0.5,
		Summary:      "first pass",
		Cliches: []schema.Cliche{
			{Type: schema.ClicheDialogue, Text: "it was all a dream"},
		},
		ClicheDetected: true,
	}
	require.NoError(t, s.ReplaceEvaluation(ctx, first))

	second := &schema.Evaluation{
		SceneID:      sc.ID,
		OverallScore: 0.9,
		Summary:      "second pass",
		Strengths:    []string{"sharp banter"},
	}
	require.NoError(t, s.ReplaceEvaluation(ctx, second))

	got, err := s.EvaluationByScene(ctx, sc.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, "second pass", got.Summary)
	assert.InDelta(t, 0.9, got.OverallScore, 1e-9)
	assert.Empty(t, got.Cliches)
	assert.Equal(t, []string{"sharp banter"}, got.Strengths)
}

func TestReplaceEvaluationMissingScene(t *testing.T) {
	s := openTestStore(t)
	err := s.ReplaceEvaluation(context.Background(), &schema.Evaluation{SceneID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCharacterStateAndUsage(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	c := &schema.Character{
		ProjectID:        p.ID,
		Name:             "Ava",
		Role:             schema.RoleHost,
		SpeechExamples:   []string{"Welcome back, night owls."},
		ForbiddenActions: []string{"break character on air"},
	}
	require.NoError(t, s.CreateCharacter(ctx, c))

	require.NoError(t, s.UpdateCharacterState(ctx, c.ID, "exhausted after the double taping"))
	require.NoError(t, s.BumpCharacterUsage(ctx, c.ID, 1, 4))

	got, err := s.Character(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "exhausted after the double taping", got.CurrentState)
	assert.Equal(t, 1, got.TotalAppearances)
	assert.Equal(t, 4, got.TotalDialogues)
	assert.Equal(t, c.SpeechExamples, got.SpeechExamples)
	assert.Equal(t, c.ForbiddenActions, got.ForbiddenActions)
}

func TestCallbackResolve(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)

	cb := &schema.Callback{
		ProjectID:    p.ID,
		Content:      "the red phone rings once",
		SetupEpisode: 1,
		Importance:   schema.ImportanceHigh,
	}
	require.NoError(t, s.CreateCallback(ctx, cb))

	unresolved := false
	open, err := s.CallbacksByProject(ctx, p.ID, &unresolved)
	require.NoError(t, err)
	require.Len(t, open, 1)

	resolved, err := s.ResolveCallback(ctx, cb.ID, "scene-x", 5)
	require.NoError(t, err)
	assert.True(t, resolved.Resolved)
	assert.Equal(t, "scene-x", resolved.PayoffSceneID)
	assert.Equal(t, 5, resolved.PayoffEpisode)

	open, err = s.CallbacksByProject(ctx, p.ID, &unresolved)
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestScenesByEpisodeOrder(t *testing.T) {
	s := openTestStore(t)
	p := seedProject(t, s)
	ep := seedEpisode(t, s, p.ID, 1)

	seedScene(t, s, ep.ID, 3, "third")
	seedScene(t, s, ep.ID, 1, "first")
	seedScene(t, s, ep.ID, 2, "second")

	scenes, err := s.ScenesByEpisode(context.Background(), ep.ID)
	require.NoError(t, err)
	require.Len(t, scenes, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{scenes[0].Number, scenes[1].Number, scenes[2].Number})
}

func TestStats(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := seedProject(t, s)
	ep := seedEpisode(t, s, p.ID, 1)

	sc1 := seedScene(t, s, ep.ID, 1, "abcde")
	seedScene(t, s, ep.ID, 2, "xyz")

	require.NoError(t, s.CreateCharacter(ctx, &schema.Character{
		ProjectID: p.ID, Name: "Ava", Role: schema.RoleHost,
	}))
	require.NoError(t, s.ReplaceEvaluation(ctx, &schema.Evaluation{
		SceneID: sc1.ID, OverallScore: 0.8,
	}))

	stats, err := s.Stats(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalEpisodes)
	assert.Equal(t, 2, stats.TotalScenes)
	assert.Equal(t, 8, stats.TotalWords)
	assert.Equal(t, 1, stats.TotalCharacters)
	assert.Equal(t, 1, stats.EvaluatedScenes)
	assert.InDelta(t, 0.8, stats.AvgOverallScore, 1e-9)
}
