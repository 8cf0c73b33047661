package schema

import "time"

type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Type        ProjectType   `json:"project_type"`
	Description string        `json:"description,omitempty"`
	Genre       string        `json:"genre,omitempty"`
	Audience    string        `json:"target_audience,omitempty"`
	Tone        string        `json:"tone,omitempty"`
	Language    string        `json:"language,omitempty"`
	Status      ProjectStatus `json:"status"`

	// WorldSetting is free text, one rule per line; lines starting with '#'
	// are comments and never reach a prompt.
	WorldSetting string `json:"world_setting,omitempty"`
	StyleGuide   string `json:"style_guide,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Episode struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Number    int           `json:"episode_number"`
	Title     string        `json:"title"`
	Summary   string        `json:"summary,omitempty"`
	Status    EpisodeStatus `json:"status"`

	MainTopic string   `json:"main_topic,omitempty"`
	SubTopics []string `json:"sub_topics,omitempty"`

	TargetRuntime int    `json:"target_runtime,omitempty"` // minutes
	ActualRuntime int    `json:"actual_runtime,omitempty"`
	Notes         string `json:"notes,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Scene struct {
	ID        string `json:"id"`
	EpisodeID string `json:"episode_id"`
	Number    int    `json:"scene_number"`

	// DisplayID is the human-facing identifier, e.g. "S01E03_SC02".
	// Unique store-wide; collisions get a numeric suffix.
	DisplayID string `json:"scene_id"`

	Type  SceneType `json:"scene_type"`
	Title string    `json:"title,omitempty"`
	Goal  string    `json:"goal,omitempty"`

	EmotionCurve  []EmotionCurve `json:"emotion_curve,omitempty"`
	ConflictType  ConflictType   `json:"conflict_type"`
	DialogDensity DialogDensity  `json:"dialog_density"`
	CharacterIDs  []string       `json:"character_ids,omitempty"`

	Content string `json:"content"`

	AIGenerated      bool   `json:"ai_generated"`
	HumanEdited      bool   `json:"human_edited"`
	GenerationPrompt string `json:"generation_prompt,omitempty"`
	WriterNotes      string `json:"writer_notes,omitempty"`

	// WordCount is derived from Content on every write; never set directly.
	WordCount int `json:"word_count"`

	Version       int    `json:"version"`
	ParentSceneID string `json:"parent_scene_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Character struct {
	ID        string        `json:"id"`
	ProjectID string        `json:"project_id"`
	Name      string        `json:"name"`
	Role      CharacterRole `json:"role"`

	Description string   `json:"description,omitempty"`
	Backstory   string   `json:"backstory,omitempty"`
	Traits      []string `json:"personality_traits,omitempty"`
	Personality string   `json:"personality_description,omitempty"`

	SpeechPattern  string   `json:"speech_pattern,omitempty"`
	SpeechExamples []string `json:"speech_examples,omitempty"`

	// CurrentState is a living status line, updated by generation side
	// effects independently of full-entity updates.
	CurrentState string `json:"current_state,omitempty"`

	ForbiddenActions []string `json:"forbidden_actions,omitempty"`

	TotalAppearances int `json:"total_appearances"`
	TotalDialogues   int `json:"total_dialogues"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Cliche struct {
	Type         ClicheType `json:"type"`
	Text         string     `json:"text"`
	Explanation  string     `json:"explanation,omitempty"`
	Alternatives []string   `json:"alternatives,omitempty"`
}

type Issue struct {
	Category   IssueCategory `json:"category"`
	Severity   Severity      `json:"severity"`
	Message    string        `json:"message"`
	Line       int           `json:"line,omitempty"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// Evaluation is attached 1:1 to a Scene and replaced wholesale on
// re-evaluation, never updated field by field.
type Evaluation struct {
	ID      string `json:"id"`
	SceneID string `json:"scene_id"`

	CreativityScore  float64 `json:"creativity_score"`
	ConsistencyScore float64 `json:"consistency_score"`
	EmotionScore     float64 `json:"emotion_score"`
	PacingScore      float64 `json:"pacing_score"`
	DialogueScore    float64 `json:"dialogue_score"`
	OverallScore     float64 `json:"overall_score"`

	ClicheDetected bool     `json:"cliche_detected"`
	Cliches        []Cliche `json:"cliches,omitempty"`
	Issues         []Issue  `json:"issues,omitempty"`

	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions,omitempty"`
	Strengths   []string `json:"strengths,omitempty"`

	Evaluator string `json:"evaluator_model,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// Callback is a planted plot thread (foreshadowing) expected to pay off
// later. It references scenes but is not owned by them.
type Callback struct {
	ID        string `json:"id"`
	ProjectID string `json:"project_id"`

	Content     string `json:"content"`
	Description string `json:"description,omitempty"`

	SetupSceneID  string `json:"setup_scene_id,omitempty"`
	SetupEpisode  int    `json:"setup_episode_number,omitempty"`
	PayoffSceneID string `json:"payoff_scene_id,omitempty"`
	PayoffEpisode int    `json:"payoff_episode_number,omitempty"`

	Resolved   bool       `json:"resolved"`
	Importance Importance `json:"importance"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ProjectStats struct {
	TotalEpisodes   int     `json:"total_episodes"`
	TotalScenes     int     `json:"total_scenes"`
	TotalWords      int     `json:"total_words"`
	TotalCharacters int     `json:"total_characters"`
	AvgOverallScore float64 `json:"avg_overall_score"`
	EvaluatedScenes int     `json:"evaluated_scenes"`
}
