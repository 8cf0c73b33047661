package schema

import (
	"github.com/invopop/jsonschema"
	"github.com/openai/openai-go/v3"
)

// Judgment is the JSON object the external evaluation capability is asked to
// return. Scores are floats in [0,1]; everything else is advisory text.
type Judgment struct {
	CreativityScore  float64 `json:"creativity_score" jsonschema_description:"Originality of expression and development, 0.0-1.0"`
	ConsistencyScore float64 `json:"consistency_score" jsonschema_description:"Character voice and personality consistency, 0.0-1.0"`
	EmotionScore     float64 `json:"emotion_score" jsonschema_description:"How effectively emotion comes across, 0.0-1.0"`
	PacingScore      float64 `json:"pacing_score" jsonschema_description:"Rhythm and tempo of the scene, 0.0-1.0"`
	DialogueScore    float64 `json:"dialogue_score" jsonschema_description:"Naturalness and distinctiveness of dialogue, 0.0-1.0"`

	Cliches []JudgmentCliche `json:"cliches" jsonschema_description:"Overused phrases or structures found in the scene"`
	Issues  []JudgmentIssue  `json:"issues" jsonschema_description:"Problems found during evaluation"`

	Summary     string   `json:"summary" jsonschema_description:"Two or three sentence overall assessment"`
	Strengths   []string `json:"strengths" jsonschema_description:"What the scene does well"`
	Suggestions []string `json:"suggestions" jsonschema_description:"Concrete improvement suggestions"`
}

type JudgmentCliche struct {
	Type         string   `json:"type" jsonschema:"enum=dialogue,enum=plot,enum=character,enum=ending,enum=transition" jsonschema_description:"Category of the cliche"`
	Text         string   `json:"text" jsonschema_description:"The text where the cliche appears"`
	Explanation  string   `json:"explanation" jsonschema_description:"Why this counts as a cliche"`
	Alternatives []string `json:"alternatives" jsonschema_description:"Fresher alternatives"`
}

type JudgmentIssue struct {
	Category   string `json:"category" jsonschema:"enum=creativity,enum=consistency,enum=emotion,enum=pacing,enum=dialogue,enum=structure" jsonschema_description:"Axis the issue belongs to"`
	Severity   string `json:"severity" jsonschema:"enum=info,enum=warning,enum=error" jsonschema_description:"How serious the issue is"`
	Message    string `json:"message" jsonschema_description:"Description of the issue"`
	Suggestion string `json:"suggestion,omitempty" jsonschema_description:"How to fix it"`
}

func generateSchema[T any]() any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return r.Reflect(v)
}

var JudgmentSchema = generateSchema[Judgment]()

// JudgmentResponseFormat pins the judgment call to the schema above for
// providers that support structured outputs.
func JudgmentResponseFormat() openai.ChatCompletionNewParamsResponseFormatUnion {
	p := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:        "scene_judgment",
		Description: openai.String("Five-axis quality judgment of a script scene"),
		Schema:      JudgmentSchema,
		Strict:      openai.Bool(true),
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: p},
	}
}
