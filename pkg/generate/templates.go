package generate

import (
	"fmt"
	"strings"

	"greenroom/pkg/schema"
)

// Fallback templates keep generation alive when no model is reachable.
// The output is placeholder scaffolding a writer replaces, but it is
// always non-empty and always keyed to the requested scene type.

const defaultTemplate = `INT. SET - DAY

[Placeholder scene. Goal: %s]

%s

The scene plays out toward its goal. Replace this draft with written material.`

var sceneTemplates = map[schema.SceneType]string{
	schema.SceneOpening: `INT. SET - NIGHT

The lights come up. %s take their places.

[Opening beat. Goal: %s]

The episode begins: the audience learns where they are, who is here, and why tonight matters.`,

	schema.SceneDialogue: `INT. SET - DAY

%s face each other.

[Dialogue scene. Goal: %s]

They talk. Each line pushes toward the goal; nobody says exactly what they mean.`,

	schema.SceneTalk: `INT. STUDIO - NIGHT

%s settle in around the desk.

[Talk segment. Goal: %s]

The conversation circles the topic, finds its hook, and lands a closing line.`,

	schema.SceneHighlight: `INT. SET - NIGHT

Everything built so far comes to a head for %s.

[Highlight beat. Goal: %s]

The peak moment plays out and spends the tension the earlier scenes earned.`,

	schema.SceneClosing: `INT. SET - NIGHT

%s wind down.

[Closing beat. Goal: %s]

The immediate thread resolves; one loose end is left deliberately open for next time.`,
}

// fallbackContent renders the template for the scene type. It never
// returns empty content.
func fallbackContent(sceneType schema.SceneType, goal string, characters []string) string {
	cast := strings.Join(characters, " and ")
	if cast == "" {
		cast = "The characters"
	}
	if goal == "" {
		goal = "advance the story"
	}
	if tmpl, ok := sceneTemplates[sceneType]; ok {
		return fmt.Sprintf(tmpl, cast, goal)
	}
	return fmt.Sprintf(defaultTemplate, goal, cast+" carry the scene.")
}
