package generate

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"greenroom/pkg/compose"
	"greenroom/pkg/schema"
)

func promptBundle() *compose.Bundle {
	return &compose.Bundle{
		Project: &schema.Project{Title: "Midnight Desk", Type: schema.ProjectTalkShow},
		Episode: &schema.Episode{Number: 1, Title: "Pilot"},
		Scene:   &schema.Scene{},
	}
}

func TestBuildPromptCapsCallbacks(t *testing.T) {
	bundle := promptBundle()
	for i := 1; i <= 7; i++ {
		bundle.Callbacks = append(bundle.Callbacks, &schema.Callback{
			Content: fmt.Sprintf("thread %d", i),
		})
	}

	prompt := buildPrompt(bundle, Instructions{Goal: "Keep the threads alive"})

	assert.Contains(t, prompt, "## Unresolved threads to keep alive")
	assert.Contains(t, prompt, "- thread 1")
	assert.Contains(t, prompt, "- thread 5")
	assert.NotContains(t, prompt, "thread 6")
	assert.NotContains(t, prompt, "thread 7")
	assert.Equal(t, 5, strings.Count(prompt, "- thread"))
}

func TestBuildPromptBestSceneType(t *testing.T) {
	bundle := promptBundle()
	bundle.Learning = &compose.LearningContext{
		SceneCount:      1,
		EvaluatedScenes: 1,
		AvgScore:        0.85,
		BestScenes: []compose.BestScene{{
			DisplayID: "S01E01_SC01",
			Type:      schema.SceneHighlight,
			Score:     0.85,
			Preview:   "Ava spins the chair and lets the silence stretch.",
		}},
	}

	prompt := buildPrompt(bundle, Instructions{Goal: "Top the last peak"})
	assert.Contains(t, prompt, "A highlight scene that worked (0.85):")
	assert.Contains(t, prompt, "Ava spins the chair")
}
