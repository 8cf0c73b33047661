package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrictParsersDefaultOnEmpty(t *testing.T) {
	pt, err := ParseProjectType("")
	require.NoError(t, err)
	assert.Equal(t, ProjectTalkShow, pt)

	st, err := ParseSceneType("")
	require.NoError(t, err)
	assert.Equal(t, SceneDialogue, st)

	d, err := ParseDialogDensity("")
	require.NoError(t, err)
	assert.Equal(t, DensityMedium, d)

	r, err := ParseCharacterRole("")
	require.NoError(t, err)
	assert.Equal(t, RoleSupporting, r)

	imp, err := ParseImportance("")
	require.NoError(t, err)
	assert.Equal(t, ImportanceMedium, imp)
}

func TestStrictParsersRejectUnknown(t *testing.T) {
	_, err := ParseProjectType("sitcom")
	assert.Error(t, err)

	_, err = ParseSceneType("montage")
	assert.Error(t, err)

	_, err = ParseEmotionCurve("")
	assert.Error(t, err)

	_, err = ParseEmotionCurve("vibes")
	assert.Error(t, err)
}

func TestStrictParsersRoundTrip(t *testing.T) {
	for _, v := range []SceneType{
		SceneOpening, SceneTalk, SceneNewsSummary, SceneHighlight, SceneClosing,
		SceneTransition, SceneInterview, SceneNarration, SceneAction, SceneDialogue,
	} {
		got, err := ParseSceneType(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
	for _, v := range []EmotionCurve{
		EmotionCalm, EmotionRising, EmotionTension, EmotionClimax,
		EmotionFalling, EmotionResolution, EmotionExplosive, EmotionSilence,
	} {
		got, err := ParseEmotionCurve(string(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestLenientParsersNeverFail(t *testing.T) {
	assert.Equal(t, ClichePlot, ParseClicheType("plot"))
	assert.Equal(t, ClicheDialogue, ParseClicheType("nonsense"))
	assert.Equal(t, ClicheDialogue, ParseClicheType(""))

	assert.Equal(t, IssuePacing, ParseIssueCategory("pacing"))
	assert.Equal(t, IssueStructure, ParseIssueCategory("nonsense"))

	assert.Equal(t, SeverityError, ParseSeverity("error"))
	assert.Equal(t, SeverityWarning, ParseSeverity("nonsense"))
}
