// Package generate orchestrates scene writing: it combines the composed
// context with explicit scene parameters into one prompt, dispatches to
// a configured model, falls back to fixed templates when it must, and
// persists the scene plus a fresh evaluation.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"greenroom/pkg/compose"
	"greenroom/pkg/evaluate"
	"greenroom/pkg/inference"
	"greenroom/pkg/schema"
	"greenroom/pkg/store"
	"greenroom/pkg/utils"
)

const (
	tempGenerate   = 0.8
	tempRegenerate = 0.85
	tempVariation  = 0.9

	maxTitleRunes = 50
)

// ErrEmptyGoal rejects generation requests without a scene goal.
var ErrEmptyGoal = errors.New("generate: scene goal is required")

// ErrNoCapability is returned by operations that cannot degrade to a
// template, when no provider is configured.
var ErrNoCapability = errors.New("generate: no generation capability configured")

// variationStyles are the fixed directives for variation mode.
var variationStyles = []string{"more humorous", "more tense", "more emotional"}

type Generator struct {
	store    *store.Store
	builder  *compose.Builder
	registry *inference.Registry
	params   evaluate.Params
}

func New(st *store.Store, reg *inference.Registry) *Generator {
	return &Generator{
		store:    st,
		builder:  compose.NewBuilder(st),
		registry: reg,
		params:   evaluate.DefaultParams(),
	}
}

// Request describes one scene to generate. SceneID targets an existing
// scene; otherwise EpisodeID plus SceneNumber create one.
type Request struct {
	SceneID     string `json:"scene_id,omitempty"`
	EpisodeID   string `json:"episode_id,omitempty"`
	SceneNumber int    `json:"scene_number,omitempty"`

	Title         string               `json:"title,omitempty"`
	Goal          string               `json:"goal"`
	SceneType     schema.SceneType     `json:"scene_type,omitempty"`
	ConflictType  schema.ConflictType  `json:"conflict_type,omitempty"`
	EmotionCurve  []schema.EmotionCurve `json:"emotion_curve,omitempty"`
	DialogDensity schema.DialogDensity `json:"dialog_density,omitempty"`
	CharacterIDs  []string             `json:"character_ids,omitempty"`

	TargetLength int    `json:"target_length,omitempty"`
	Instructions string `json:"instructions,omitempty"`
	Provider     string `json:"provider,omitempty"`
}

type Result struct {
	Scene         *schema.Scene      `json:"scene"`
	Evaluation    *schema.Evaluation `json:"evaluation"`
	NeedsRevision bool               `json:"needs_revision"`
	FromTemplate  bool               `json:"from_template"`
}

// Generate writes one scene end to end: resolve or create the scene row,
// compose context, dispatch, persist content, then evaluate and replace
// the scene's evaluation. Provider failures degrade to the template path;
// only NotFound and validation problems surface as errors.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	if strings.TrimSpace(req.Goal) == "" {
		return nil, ErrEmptyGoal
	}

	sc, err := g.resolveScene(ctx, req)
	if err != nil {
		return nil, err
	}

	bundle, err := g.builder.Build(ctx, sc)
	if err != nil {
		return nil, err
	}

	ins := Instructions{
		Goal:          req.Goal,
		SceneType:     sc.Type,
		ConflictType:  sc.ConflictType,
		EmotionCurve:  sc.EmotionCurve,
		DialogDensity: sc.DialogDensity,
		TargetLength:  req.TargetLength,
		Extra:         req.Instructions,
	}
	prompt := buildPrompt(bundle, ins)
	logPromptSize(prompt)

	inf, provider, err := g.provider(req.Provider)
	if err != nil {
		return nil, err
	}

	content, fromTemplate := g.dispatch(ctx, inf, prompt, tempGenerate, req.TargetLength)
	if fromTemplate {
		content = fallbackContent(sc.Type, req.Goal, characterNames(bundle.Characters))
	}

	sc.Content = content
	sc.Goal = req.Goal
	sc.AIGenerated = true
	sc.GenerationPrompt = prompt
	if sc.Title == "" {
		sc.Title = titleFromGoal(req.Goal)
	}
	if err := g.store.UpdateScene(ctx, sc); err != nil {
		return nil, err
	}

	ev := g.evaluateAndPersist(ctx, sc, bundle, inf, provider)
	g.bumpUsage(ctx, bundle.Characters, content)

	evaluator := &evaluate.Evaluator{Params: g.params}
	return &Result{
		Scene:         sc,
		Evaluation:    ev,
		NeedsRevision: evaluator.NeedsRevision(ev),
		FromTemplate:  fromTemplate,
	}, nil
}

// Evaluate re-runs the full evaluation for an existing scene and
// replaces its stored evaluation. Capability problems degrade to the
// neutral default, same as the generation path.
func (g *Generator) Evaluate(ctx context.Context, sceneID, provider string) (*Result, error) {
	sc, err := g.store.Scene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	bundle, err := g.builder.Build(ctx, sc)
	if err != nil {
		return nil, err
	}
	inf, providerName, err := g.provider(provider)
	if err != nil {
		return nil, err
	}
	ev := g.evaluateAndPersist(ctx, sc, bundle, inf, providerName)
	evaluator := &evaluate.Evaluator{Params: g.params}
	return &Result{
		Scene:         sc,
		Evaluation:    ev,
		NeedsRevision: evaluator.NeedsRevision(ev),
	}, nil
}

// RegenResult carries the rewritten scene plus a word diff against the
// previous content.
type RegenResult struct {
	Scene         *schema.Scene      `json:"scene"`
	Evaluation    *schema.Evaluation `json:"evaluation,omitempty"`
	NeedsRevision bool               `json:"needs_revision"`
	Diff          []utils.WordDelta  `json:"diff,omitempty"`
	Unchanged     bool               `json:"unchanged,omitempty"`
}

// Regenerate rewrites an existing scene holding its stored structure
// (goal, type, arc, density) constant and bumps the version. Without a
// usable provider the stored content is returned untouched rather than
// overwritten with a template.
func (g *Generator) Regenerate(ctx context.Context, sceneID, provider string) (*RegenResult, error) {
	sc, err := g.store.Scene(ctx, sceneID)
	if err != nil {
		return nil, err
	}

	bundle, err := g.builder.Build(ctx, sc)
	if err != nil {
		return nil, err
	}

	inf, providerName, err := g.provider(provider)
	if err != nil {
		return nil, err
	}
	if inf == nil {
		log.Warn("regeneration requested with no capability, keeping content", "scene", sc.DisplayID)
		return &RegenResult{Scene: sc, Unchanged: true}, nil
	}

	ins := Instructions{
		Goal:          sc.Goal,
		SceneType:     sc.Type,
		ConflictType:  sc.ConflictType,
		EmotionCurve:  sc.EmotionCurve,
		DialogDensity: sc.DialogDensity,
	}
	var sb strings.Builder
	sb.WriteString(buildPrompt(bundle, ins))
	sb.WriteString("\n## Revision pass\n")
	sb.WriteString("Rewrite the scene below into a stronger version. Keep the goal, structure, emotional arc and participating characters exactly as they are; improve the writing.\n\n")
	sb.WriteString(sc.Content)
	prompt := sb.String()
	logPromptSize(prompt)

	params := &openai.ChatCompletionNewParams{Temperature: openai.Float(tempRegenerate)}
	rewritten, err := inf.Edit(ctx, params, writerSystemPrompt, prompt)
	if err != nil || strings.TrimSpace(rewritten) == "" {
		log.Warn("regeneration call failed, keeping content", "scene", sc.DisplayID, "err", err)
		return &RegenResult{Scene: sc, Unchanged: true}, nil
	}

	previous := sc.Content
	sc.Content = rewritten
	sc.Version++
	if err := g.store.UpdateScene(ctx, sc); err != nil {
		return nil, err
	}

	ev := g.evaluateAndPersist(ctx, sc, bundle, inf, providerName)
	evaluator := &evaluate.Evaluator{Params: g.params}
	return &RegenResult{
		Scene:         sc,
		Evaluation:    ev,
		NeedsRevision: evaluator.NeedsRevision(ev),
		Diff:          utils.DiffWords(previous, rewritten),
	}, nil
}

// Variation is one alternative rendering of a scene; nothing is stored.
type Variation struct {
	Style   string `json:"style"`
	Content string `json:"content"`
}

// Variations produces up to n alternative stylistic renderings of an
// existing scene. This mode has no template fallback; it needs a real
// provider.
func (g *Generator) Variations(ctx context.Context, sceneID string, n int, provider string) ([]Variation, error) {
	sc, err := g.store.Scene(ctx, sceneID)
	if err != nil {
		return nil, err
	}
	inf, _, err := g.provider(provider)
	if err != nil {
		return nil, err
	}
	if inf == nil {
		return nil, ErrNoCapability
	}
	if n <= 0 || n > len(variationStyles) {
		n = len(variationStyles)
	}

	var out []Variation
	for _, style := range variationStyles[:n] {
		prompt := fmt.Sprintf("Rewrite the scene below %s. Keep the structure, characters and goal unchanged.\n\n%s", style, sc.Content)
		params := &openai.ChatCompletionNewParams{Temperature: openai.Float(tempVariation)}
		content, err := inf.Infer(ctx, params, writerSystemPrompt, prompt)
		if err != nil {
			log.Warn("variation call failed", "style", style, "err", err)
			continue
		}
		out = append(out, Variation{Style: style, Content: content})
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("generate: all variation calls failed")
	}
	return out, nil
}

// resolveScene loads the target scene or creates a fresh row from the
// request's parameters.
func (g *Generator) resolveScene(ctx context.Context, req Request) (*schema.Scene, error) {
	if req.SceneID != "" {
		sc, err := g.store.Scene(ctx, req.SceneID)
		if err != nil {
			return nil, err
		}
		applyRequest(sc, req)
		return sc, nil
	}
	if req.EpisodeID == "" {
		return nil, fmt.Errorf("generate: scene_id or episode_id is required")
	}
	sc := &schema.Scene{
		EpisodeID:     req.EpisodeID,
		Number:        req.SceneNumber,
		Title:         req.Title,
		Goal:          req.Goal,
		Type:          req.SceneType,
		ConflictType:  req.ConflictType,
		EmotionCurve:  req.EmotionCurve,
		DialogDensity: req.DialogDensity,
		CharacterIDs:  req.CharacterIDs,
	}
	if sc.Type == "" {
		sc.Type = schema.SceneDialogue
	}
	if sc.ConflictType == "" {
		sc.ConflictType = schema.ConflictNone
	}
	if sc.DialogDensity == "" {
		sc.DialogDensity = schema.DensityMedium
	}
	if err := g.store.CreateScene(ctx, sc); err != nil {
		return nil, err
	}
	return sc, nil
}

func applyRequest(sc *schema.Scene, req Request) {
	sc.Goal = req.Goal
	if req.Title != "" {
		sc.Title = req.Title
	}
	if req.SceneType != "" {
		sc.Type = req.SceneType
	}
	if req.ConflictType != "" {
		sc.ConflictType = req.ConflictType
	}
	if len(req.EmotionCurve) > 0 {
		sc.EmotionCurve = req.EmotionCurve
	}
	if req.DialogDensity != "" {
		sc.DialogDensity = req.DialogDensity
	}
	if len(req.CharacterIDs) > 0 {
		sc.CharacterIDs = req.CharacterIDs
	}
}

// provider resolves the named inferencer. A nil inferencer with nil
// error means no capability is configured at all.
func (g *Generator) provider(name string) (inference.Inferencer, string, error) {
	if g.registry == nil {
		return nil, "", nil
	}
	inf, err := g.registry.Get(name)
	if err != nil {
		return nil, "", err
	}
	if name == "" {
		name = g.registry.Default()
	}
	return inf, name, nil
}

// dispatch calls the model, reporting whether the caller must fall back
// to a template.
func (g *Generator) dispatch(ctx context.Context, inf inference.Inferencer, prompt string, temperature float64, targetLength int) (string, bool) {
	if inf == nil {
		log.Info("no generation capability configured, using template")
		return "", true
	}
	params := &openai.ChatCompletionNewParams{Temperature: openai.Float(temperature)}
	if targetLength > 0 {
		params.MaxCompletionTokens = openai.Int(int64(targetLength))
	}
	content, err := inf.Infer(ctx, params, writerSystemPrompt, prompt)
	if err != nil || strings.TrimSpace(content) == "" {
		log.Warn("generation call failed, using template", "err", err)
		return "", true
	}
	return content, false
}

// evaluateAndPersist runs the full evaluation over freshly written
// content and swaps it in as the scene's evaluation. The forbidden
// action check rides along as consistency issues.
func (g *Generator) evaluateAndPersist(ctx context.Context, sc *schema.Scene, bundle *compose.Bundle, inf inference.Inferencer, provider string) *schema.Evaluation {
	evaluator := &evaluate.Evaluator{Params: g.params, Inf: inf, Provider: provider}
	ev := evaluator.Evaluate(ctx, sc.Content, evalBackground(bundle))
	ev.Issues = append(ev.Issues, evaluate.CheckForbiddenActions(sc.Content, bundle.Forbidden)...)
	ev.SceneID = sc.ID
	if err := g.store.ReplaceEvaluation(ctx, ev); err != nil {
		log.Error("failed to persist evaluation", "scene", sc.DisplayID, "err", err)
	}
	return ev
}

// bumpUsage counts each involved character's appearance and the dialogue
// lines attributed to them in the new content.
func (g *Generator) bumpUsage(ctx context.Context, characters []*schema.Character, content string) {
	lines := strings.Split(content, "\n")
	for _, c := range characters {
		dialogues := 0
		for _, line := range lines {
			if strings.HasPrefix(strings.TrimSpace(line), c.Name+":") {
				dialogues++
			}
		}
		if err := g.store.BumpCharacterUsage(ctx, c.ID, 1, dialogues); err != nil {
			log.Error("failed to bump character usage", "character", c.Name, "err", err)
		}
	}
}

func evalBackground(bundle *compose.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Project: %s (%s)", bundle.Project.Title, bundle.Project.Type)
	if bundle.Project.Genre != "" {
		fmt.Fprintf(&sb, ", genre %s", bundle.Project.Genre)
	}
	sb.WriteString("\n")
	for _, c := range bundle.Characters {
		fmt.Fprintf(&sb, "Character %s (%s): %s\n", c.Name, c.Role, c.Description)
	}
	for _, rule := range bundle.WorldRules {
		fmt.Fprintf(&sb, "World rule: %s\n", rule)
	}
	return sb.String()
}

func characterNames(characters []*schema.Character) []string {
	names := make([]string, 0, len(characters))
	for _, c := range characters {
		names = append(names, c.Name)
	}
	return names
}

func titleFromGoal(goal string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(goal), "\n")
	return utils.LimitStr(first, maxTitleRunes)
}

func logPromptSize(prompt string) {
	tokens, err := utils.NumTokensFromMessages(prompt)
	if err != nil {
		log.Debug("token count unavailable", "err", err)
		return
	}
	log.Debug("assembled prompt", "tokens", tokens, "chars", utils.RuneLen(prompt))
}
