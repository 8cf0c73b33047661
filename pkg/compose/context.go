// Package compose assembles the narrative context that generation and
// evaluation prompts are built from. Nothing here talks to a model; it
// only reads the store and shapes text.
package compose

import (
	"context"
	"fmt"
	"strings"

	"greenroom/pkg/schema"
	"greenroom/pkg/store"
	"greenroom/pkg/utils"
)

const (
	// priorSceneWindow bounds how many preceding scenes feed the prompt.
	priorSceneWindow = 5
	// summaryLines and summaryLimit bound each prior scene summary.
	summaryLines = 3
	summaryLimit = 150
)

// Builder reads everything a generation prompt needs for one scene.
type Builder struct {
	store *store.Store
}

func NewBuilder(s *store.Store) *Builder {
	return &Builder{store: s}
}

// SceneSummary is a compressed view of an already written scene.
type SceneSummary struct {
	DisplayID string `json:"scene_id"`
	Title     string `json:"title,omitempty"`
	Summary   string `json:"summary"`
}

// Bundle is the full context for generating one scene.
type Bundle struct {
	Project    *schema.Project     `json:"project"`
	Episode    *schema.Episode     `json:"episode"`
	Scene      *schema.Scene       `json:"scene"`
	Characters []*schema.Character `json:"characters,omitempty"`

	// WorldRules is the project's world setting split into one rule per
	// line, comment lines dropped.
	WorldRules []string `json:"world_rules,omitempty"`

	// Forbidden is the name-qualified union of every involved
	// character's forbidden actions.
	Forbidden []string `json:"forbidden,omitempty"`

	PriorScenes []SceneSummary     `json:"prior_scenes,omitempty"`
	Callbacks   []*schema.Callback `json:"open_callbacks,omitempty"`

	Learning *LearningContext `json:"learning,omitempty"`
}

// Build gathers the bundle for the given scene, including the learning
// context mined fresh from the project's evaluated scenes.
func (b *Builder) Build(ctx context.Context, sc *schema.Scene) (*Bundle, error) {
	ep, err := b.store.Episode(ctx, sc.EpisodeID)
	if err != nil {
		return nil, fmt.Errorf("load episode: %w", err)
	}
	project, err := b.store.Project(ctx, ep.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("load project: %w", err)
	}

	characters, err := b.sceneCharacters(ctx, project.ID, sc)
	if err != nil {
		return nil, err
	}

	prior, err := b.priorScenes(ctx, sc)
	if err != nil {
		return nil, err
	}

	unresolved := false
	callbacks, err := b.store.CallbacksByProject(ctx, project.ID, &unresolved)
	if err != nil {
		return nil, fmt.Errorf("load callbacks: %w", err)
	}

	learning, err := b.BuildLearningContext(ctx, project.ID, sc.ID)
	if err != nil {
		return nil, err
	}

	return &Bundle{
		Project:     project,
		Episode:     ep,
		Scene:       sc,
		Characters:  characters,
		WorldRules:  WorldRules(project.WorldSetting),
		Forbidden:   ForbiddenActions(characters),
		PriorScenes: prior,
		Callbacks:   callbacks,
		Learning:    learning,
	}, nil
}

// sceneCharacters resolves the scene's character list, or the whole cast
// when the scene does not name anyone.
func (b *Builder) sceneCharacters(ctx context.Context, projectID string, sc *schema.Scene) ([]*schema.Character, error) {
	all, err := b.store.CharactersByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("load characters: %w", err)
	}
	if len(sc.CharacterIDs) == 0 {
		return all, nil
	}
	byID := make(map[string]*schema.Character, len(all))
	for _, c := range all {
		byID[c.ID] = c
	}
	var out []*schema.Character
	for _, id := range sc.CharacterIDs {
		if c, ok := byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

// priorScenes summarizes the scenes before this one in the same episode,
// most recent priorSceneWindow only, in story order.
func (b *Builder) priorScenes(ctx context.Context, sc *schema.Scene) ([]SceneSummary, error) {
	scenes, err := b.store.ScenesByEpisode(ctx, sc.EpisodeID)
	if err != nil {
		return nil, fmt.Errorf("load scenes: %w", err)
	}
	var before []*schema.Scene
	for _, other := range scenes {
		if other.Number < sc.Number && other.ID != sc.ID && other.Content != "" {
			before = append(before, other)
		}
	}
	if len(before) > priorSceneWindow {
		before = before[len(before)-priorSceneWindow:]
	}
	out := make([]SceneSummary, 0, len(before))
	for _, other := range before {
		out = append(out, SceneSummary{
			DisplayID: other.DisplayID,
			Title:     other.Title,
			Summary:   Summarize(other.Content),
		})
	}
	return out, nil
}

// Summarize compresses scene content to its first few lines, capped.
func Summarize(content string) string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) == summaryLines {
			break
		}
	}
	return utils.LimitStr(strings.Join(lines, " "), summaryLimit)
}

// WorldRules splits the free-text world setting into rules, one per
// non-empty line. Lines starting with '#' are author notes and stay out
// of prompts.
func WorldRules(worldSetting string) []string {
	var rules []string
	for _, line := range strings.Split(worldSetting, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	return rules
}

// ForbiddenActions collects every character's forbidden actions,
// qualified with the character's name.
func ForbiddenActions(characters []*schema.Character) []string {
	var out []string
	for _, c := range characters {
		for _, action := range c.ForbiddenActions {
			action = strings.TrimSpace(action)
			if action == "" {
				continue
			}
			out = append(out, fmt.Sprintf("%s: %s", c.Name, action))
		}
	}
	return out
}
