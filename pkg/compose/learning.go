package compose

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"greenroom/pkg/schema"
	"greenroom/pkg/utils"
)

const (
	// minSceneRunes is the exclusive bar a scene's content must clear to
	// count as learnable material.
	minSceneRunes = 50

	bestSceneCount = 3
	previewLimit   = 500
	maxStrengths   = 5
	maxIssues      = 5

	// Dialogue examples come from the most recent dialogueWindow
	// learnable scenes.
	dialogueWindow        = 5
	minDialogueRunes      = 10
	maxExamplesPerSpeaker = 2
	exampleLimit          = 100

	// similarSkip suppresses near-duplicate dialogue examples.
	similarSkip = 0.9
)

// BestScene is a high-scoring scene offered to the model as an exemplar.
type BestScene struct {
	DisplayID string           `json:"scene_id"`
	Title     string           `json:"title,omitempty"`
	Type      schema.SceneType `json:"scene_type"`
	Score     float64          `json:"score"`
	Preview   string           `json:"preview"`
}

// LearningContext is mined fresh from the project's written scenes on
// every generation request; it is never cached or persisted.
type LearningContext struct {
	SceneCount      int     `json:"scene_count"`
	EvaluatedScenes int     `json:"evaluated_scenes"`
	AvgScore        float64 `json:"avg_score"`

	BestScenes    []BestScene `json:"best_scenes,omitempty"`
	Strengths     []string    `json:"strengths,omitempty"`
	IssuesToAvoid []string    `json:"issues_to_avoid,omitempty"`

	// CharacterExamples maps character name to recent dialogue lines
	// lifted verbatim from written scenes.
	CharacterExamples map[string][]string `json:"character_examples,omitempty"`
}

// BuildLearningContext mines the project's scenes and their evaluations
// into guidance for the next generation. Scenes with trivially short
// content are skipped entirely; unevaluated scenes still count toward the
// scene count but contribute no scores. excludeSceneID keeps the scene
// being written out of its own guidance; empty excludes nothing.
func (b *Builder) BuildLearningContext(ctx context.Context, projectID, excludeSceneID string) (*LearningContext, error) {
	episodes, err := b.store.EpisodesByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load episodes: %w", err)
	}

	var scenes []*schema.Scene
	for _, ep := range episodes {
		epScenes, err := b.store.ScenesByEpisode(ctx, ep.ID)
		if err != nil {
			return nil, fmt.Errorf("load scenes: %w", err)
		}
		for _, sc := range epScenes {
			if sc.ID == excludeSceneID {
				continue
			}
			if utils.RuneLen(sc.Content) > minSceneRunes {
				scenes = append(scenes, sc)
			}
		}
	}

	lc := &LearningContext{SceneCount: len(scenes)}
	if len(scenes) == 0 {
		return lc, nil
	}

	ids := make([]string, len(scenes))
	for i, sc := range scenes {
		ids[i] = sc.ID
	}
	evals, err := b.store.EvaluationsByScenes(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load evaluations: %w", err)
	}

	type scored struct {
		scene *schema.Scene
		eval  *schema.Evaluation
	}
	var evaluated []scored
	var total float64
	for _, sc := range scenes {
		if e, ok := evals[sc.ID]; ok {
			evaluated = append(evaluated, scored{scene: sc, eval: e})
			total += e.OverallScore
		}
	}
	lc.EvaluatedScenes = len(evaluated)
	if len(evaluated) > 0 {
		lc.AvgScore = total / float64(len(evaluated))
	}

	sort.SliceStable(evaluated, func(i, j int) bool {
		return evaluated[i].eval.OverallScore > evaluated[j].eval.OverallScore
	})
	top := evaluated
	if len(top) > bestSceneCount {
		top = top[:bestSceneCount]
	}

	var strengths []string
	for _, s := range top {
		lc.BestScenes = append(lc.BestScenes, BestScene{
			DisplayID: s.scene.DisplayID,
			Title:     s.scene.Title,
			Type:      s.scene.Type,
			Score:     s.eval.OverallScore,
			Preview:   utils.LimitStr(s.scene.Content, previewLimit),
		})
		strengths = append(strengths, s.eval.Strengths...)
	}
	lc.Strengths = capList(utils.DedupeStrings(strengths), maxStrengths)

	var issues []string
	for _, s := range evaluated {
		for i, suggestion := range s.eval.Suggestions {
			if i == 2 {
				break
			}
			issues = append(issues, suggestion)
		}
		if s.eval.ClicheDetected {
			for i, cliche := range s.eval.Cliches {
				if i == 2 {
					break
				}
				if cliche.Explanation != "" {
					issues = append(issues, "avoid cliche: "+cliche.Explanation)
				}
			}
		}
	}
	lc.IssuesToAvoid = capList(utils.DedupeStrings(issues), maxIssues)

	characters, err := b.store.CharactersByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}
	lc.CharacterExamples = mineDialogue(scenes, characters)

	return lc, nil
}

func capList(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}

// mineDialogue lifts "Name: line" dialogue from the most recent scenes,
// a couple of examples per known character. Near-duplicate lines for the
// same speaker are skipped.
func mineDialogue(scenes []*schema.Scene, characters []*schema.Character) map[string][]string {
	known := make(map[string]bool, len(characters))
	for _, c := range characters {
		known[c.Name] = true
	}
	if len(known) == 0 {
		return nil
	}

	recent := scenes
	if len(recent) > dialogueWindow {
		recent = recent[len(recent)-dialogueWindow:]
	}

	examples := make(map[string][]string)
	for _, sc := range recent {
		for _, line := range strings.Split(sc.Content, "\n") {
			name, dialogue, ok := strings.Cut(line, ":")
			if !ok {
				continue
			}
			name = strings.TrimSpace(name)
			dialogue = strings.TrimSpace(dialogue)
			if !known[name] || utils.RuneLen(dialogue) < minDialogueRunes {
				continue
			}
			if len(examples[name]) >= maxExamplesPerSpeaker {
				continue
			}
			if tooSimilar(examples[name], dialogue) {
				continue
			}
			examples[name] = append(examples[name], utils.LimitStr(dialogue, exampleLimit))
		}
	}
	if len(examples) == 0 {
		return nil
	}
	return examples
}

func tooSimilar(existing []string, candidate string) bool {
	for _, line := range existing {
		if utils.Similarity(line, candidate) >= similarSkip {
			return true
		}
	}
	return false
}
