package generate

import (
	"fmt"
	"strings"

	"greenroom/pkg/compose"
	"greenroom/pkg/schema"
)

// Guidance strings are an explicit mapping, not inferred from the enum
// names; they are what the model actually reads.
var sceneTypeGuidance = map[schema.SceneType]string{
	schema.SceneOpening:     "Open the episode: establish place, mood and stakes fast, hook the audience in the first lines.",
	schema.SceneTalk:        "A conversation-driven segment: keep the exchange flowing, each speaker pursuing something.",
	schema.SceneNewsSummary: "Deliver a compact rundown of events with personality, not a dry list.",
	schema.SceneHighlight:   "The emotional or comedic peak: spend the accumulated tension, make it land.",
	schema.SceneClosing:     "Wind down and send the audience off: resolve the immediate thread, plant the next one.",
	schema.SceneTransition:  "A short bridge between beats: change place or time without losing momentum.",
	schema.SceneInterview:   "One voice probing another: questions escalate, answers reveal.",
	schema.SceneNarration:   "A narrated passage: one voice carries the audience through events.",
	schema.SceneAction:      "Physical events drive the scene: show movement and consequence, keep dialogue sparse.",
	schema.SceneDialogue:    "Dialogue carries the scene: distinct voices, subtext under every line.",
}

var conflictGuidance = map[schema.ConflictType]string{
	schema.ConflictRelationship: "Tension lives between the characters: history, loyalty, or attraction pulls against the surface exchange.",
	schema.ConflictInternal:     "The struggle is inside one character: show it leaking through choices and hesitation, not monologue.",
	schema.ConflictExternal:     "An outside force presses on everyone: deadline, threat, or circumstance none of them control.",
	schema.ConflictIdeological:  "Worldviews collide: both positions get their strongest honest argument.",
	schema.ConflictComedic:      "Friction played for laughs: misunderstanding and escalation over malice.",
	schema.ConflictNone:         "No central conflict: let texture, warmth or information carry the scene.",
}

var densityGuidance = map[schema.DialogDensity]string{
	schema.DensityHigh:   "Dialogue dominates: rapid exchanges, minimal description between lines.",
	schema.DensityMedium: "Balance dialogue with action and description.",
	schema.DensityLow:    "Sparse dialogue: let silence, action and description do most of the work.",
}

// callbackWindow bounds how many unresolved threads the prompt carries,
// oldest first as the store orders them.
const callbackWindow = 5

// Instructions are the per-request knobs layered over the bundle.
type Instructions struct {
	Goal          string
	SceneType     schema.SceneType
	ConflictType  schema.ConflictType
	EmotionCurve  []schema.EmotionCurve
	DialogDensity schema.DialogDensity
	TargetLength  int
	Extra         string
}

const writerSystemPrompt = `You are a professional staff writer on a serialized show.
Write the requested scene in screenplay style: scene heading, action lines, and dialogue as "Name: line".
Return only the scene text, no commentary.`

// buildPrompt renders the full generation prompt. Section order is fixed:
// header, world rules, characters, style guide, forbidden actions, prior
// scenes, open callbacks, learned guidance, scene instructions, and the
// standing authorial rules last so they are freshest in the model's
// attention.
func buildPrompt(bundle *compose.Bundle, ins Instructions) string {
	var sb strings.Builder

	p, ep := bundle.Project, bundle.Episode
	fmt.Fprintf(&sb, "# %s (%s)\n", p.Title, p.Type)
	if p.Genre != "" {
		fmt.Fprintf(&sb, "Genre: %s\n", p.Genre)
	}
	if p.Tone != "" {
		fmt.Fprintf(&sb, "Tone: %s\n", p.Tone)
	}
	if p.Audience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", p.Audience)
	}
	fmt.Fprintf(&sb, "Episode %d: %s\n", ep.Number, ep.Title)
	if ep.MainTopic != "" {
		fmt.Fprintf(&sb, "Episode topic: %s\n", ep.MainTopic)
	}
	if ep.Summary != "" {
		fmt.Fprintf(&sb, "Episode summary: %s\n", ep.Summary)
	}

	if len(bundle.WorldRules) > 0 {
		sb.WriteString("\n## World rules\n")
		for _, rule := range bundle.WorldRules {
			fmt.Fprintf(&sb, "- %s\n", rule)
		}
	}

	if len(bundle.Characters) > 0 {
		sb.WriteString("\n## Characters\n")
		for _, c := range bundle.Characters {
			writeCharacter(&sb, c, bundle.Learning)
		}
	}

	if p.StyleGuide != "" {
		sb.WriteString("\n## Style guide\n")
		sb.WriteString(p.StyleGuide)
		sb.WriteString("\n")
	}

	if len(bundle.Forbidden) > 0 {
		sb.WriteString("\n## Never\n")
		for _, f := range bundle.Forbidden {
			fmt.Fprintf(&sb, "- %s\n", f)
		}
	}

	if len(bundle.PriorScenes) > 0 {
		sb.WriteString("\n## Previously in this episode\n")
		for _, prior := range bundle.PriorScenes {
			fmt.Fprintf(&sb, "- [%s] %s\n", prior.DisplayID, prior.Summary)
		}
	}

	if len(bundle.Callbacks) > 0 {
		sb.WriteString("\n## Unresolved threads to keep alive\n")
		callbacks := bundle.Callbacks
		if len(callbacks) > callbackWindow {
			callbacks = callbacks[:callbackWindow]
		}
		for _, cb := range callbacks {
			fmt.Fprintf(&sb, "- %s\n", cb.Content)
		}
	}

	writeLearning(&sb, bundle.Learning)
	writeInstructions(&sb, ins)

	sb.WriteString("\n## Always\n")
	sb.WriteString("- Keep every character in their established voice.\n")
	sb.WriteString("- Obey the Never list without exception.\n")
	sb.WriteString("- Stay inside the world rules.\n")
	sb.WriteString("- Avoid stock phrases and predictable beats.\n")
	language := p.Language
	if language == "" {
		language = "the project's language"
	}
	fmt.Fprintf(&sb, "- Write in %s.\n", language)

	return sb.String()
}

// writeCharacter renders one profile. Recent mined dialogue from the
// learning bundle beats the static speech examples when both exist.
func writeCharacter(sb *strings.Builder, c *schema.Character, learning *compose.LearningContext) {
	fmt.Fprintf(sb, "### %s (%s)\n", c.Name, c.Role)
	if c.Description != "" {
		fmt.Fprintf(sb, "%s\n", c.Description)
	}
	if len(c.Traits) > 0 {
		fmt.Fprintf(sb, "Traits: %s\n", strings.Join(c.Traits, ", "))
	}
	if c.SpeechPattern != "" {
		fmt.Fprintf(sb, "Speech: %s\n", c.SpeechPattern)
	}
	if c.CurrentState != "" {
		fmt.Fprintf(sb, "Current state: %s\n", c.CurrentState)
	}

	examples := c.SpeechExamples
	if learning != nil {
		if mined, ok := learning.CharacterExamples[c.Name]; ok && len(mined) > 0 {
			examples = mined
		}
	}
	for _, ex := range examples {
		fmt.Fprintf(sb, "> %s: %s\n", c.Name, ex)
	}
}

func writeLearning(sb *strings.Builder, lc *compose.LearningContext) {
	if lc == nil || lc.SceneCount == 0 {
		return
	}
	sb.WriteString("\n## Learned from earlier scenes\n")
	fmt.Fprintf(sb, "%d scenes written so far", lc.SceneCount)
	if lc.EvaluatedScenes > 0 {
		fmt.Fprintf(sb, ", average score %.2f", lc.AvgScore)
	}
	sb.WriteString(".\n")
	if len(lc.Strengths) > 0 {
		sb.WriteString("Keep doing:\n")
		for _, s := range lc.Strengths {
			fmt.Fprintf(sb, "- %s\n", s)
		}
	}
	if len(lc.IssuesToAvoid) > 0 {
		sb.WriteString("Avoid:\n")
		for _, s := range lc.IssuesToAvoid {
			fmt.Fprintf(sb, "- %s\n", s)
		}
	}
	for _, best := range lc.BestScenes {
		fmt.Fprintf(sb, "A %s scene that worked (%.2f):\n%s\n", best.Type, best.Score, best.Preview)
	}
}

func writeInstructions(sb *strings.Builder, ins Instructions) {
	sb.WriteString("\n## Write this scene\n")
	fmt.Fprintf(sb, "Goal: %s\n", ins.Goal)
	if g, ok := sceneTypeGuidance[ins.SceneType]; ok {
		fmt.Fprintf(sb, "Scene type: %s\n", g)
	}
	if g, ok := conflictGuidance[ins.ConflictType]; ok {
		fmt.Fprintf(sb, "Conflict: %s\n", g)
	}
	if g, ok := densityGuidance[ins.DialogDensity]; ok {
		fmt.Fprintf(sb, "Dialogue: %s\n", g)
	}
	if len(ins.EmotionCurve) > 0 {
		stages := make([]string, len(ins.EmotionCurve))
		for i, st := range ins.EmotionCurve {
			stages[i] = string(st)
		}
		fmt.Fprintf(sb, "Emotional arc: %s\n", strings.Join(stages, " -> "))
	}
	if ins.TargetLength > 0 {
		fmt.Fprintf(sb, "Target length: about %d characters.\n", ins.TargetLength)
	}
	if ins.Extra != "" {
		fmt.Fprintf(sb, "Additional instructions: %s\n", ins.Extra)
	}
}
