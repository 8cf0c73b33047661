package schema

import "fmt"

// Enum values are validated at the store boundary; anything read back from
// persistence went through the matching Parse function exactly once.

type ProjectType string

const (
	ProjectTalkShow    ProjectType = "talk_show"
	ProjectDrama       ProjectType = "drama"
	ProjectMovie       ProjectType = "movie"
	ProjectWebDrama    ProjectType = "web_drama"
	ProjectVariety     ProjectType = "variety"
	ProjectDocumentary ProjectType = "documentary"
	ProjectOther       ProjectType = "other"
)

func ParseProjectType(s string) (ProjectType, error) {
	switch t := ProjectType(s); t {
	case ProjectTalkShow, ProjectDrama, ProjectMovie, ProjectWebDrama, ProjectVariety, ProjectDocumentary, ProjectOther:
		return t, nil
	case "":
		return ProjectTalkShow, nil
	}
	return "", fmt.Errorf("unknown project type %q", s)
}

type ProjectStatus string

const (
	StatusDraft      ProjectStatus = "draft"
	StatusInProgress ProjectStatus = "in_progress"
	StatusReview     ProjectStatus = "review"
	StatusCompleted  ProjectStatus = "completed"
	StatusArchived   ProjectStatus = "archived"
)

func ParseProjectStatus(s string) (ProjectStatus, error) {
	switch t := ProjectStatus(s); t {
	case StatusDraft, StatusInProgress, StatusReview, StatusCompleted, StatusArchived:
		return t, nil
	case "":
		return StatusDraft, nil
	}
	return "", fmt.Errorf("unknown project status %q", s)
}

type EpisodeStatus string

const (
	EpisodeOutline   EpisodeStatus = "outline"
	EpisodeDraft     EpisodeStatus = "draft"
	EpisodeFirstEdit EpisodeStatus = "first_edit"
	EpisodeFinal     EpisodeStatus = "final"
	EpisodeBroadcast EpisodeStatus = "broadcast"
)

func ParseEpisodeStatus(s string) (EpisodeStatus, error) {
	switch t := EpisodeStatus(s); t {
	case EpisodeOutline, EpisodeDraft, EpisodeFirstEdit, EpisodeFinal, EpisodeBroadcast:
		return t, nil
	case "":
		return EpisodeOutline, nil
	}
	return "", fmt.Errorf("unknown episode status %q", s)
}

type SceneType string

const (
	SceneOpening     SceneType = "opening"
	SceneTalk        SceneType = "talk"
	SceneNewsSummary SceneType = "news_summary"
	SceneHighlight   SceneType = "highlight"
	SceneClosing     SceneType = "closing"
	SceneTransition  SceneType = "transition"
	SceneInterview   SceneType = "interview"
	SceneNarration   SceneType = "narration"
	SceneAction      SceneType = "action"
	SceneDialogue    SceneType = "dialogue"
)

func ParseSceneType(s string) (SceneType, error) {
	switch t := SceneType(s); t {
	case SceneOpening, SceneTalk, SceneNewsSummary, SceneHighlight, SceneClosing,
		SceneTransition, SceneInterview, SceneNarration, SceneAction, SceneDialogue:
		return t, nil
	case "":
		return SceneDialogue, nil
	}
	return "", fmt.Errorf("unknown scene type %q", s)
}

type ConflictType string

const (
	ConflictRelationship ConflictType = "relationship"
	ConflictInternal     ConflictType = "internal"
	ConflictExternal     ConflictType = "external"
	ConflictIdeological  ConflictType = "ideological"
	ConflictComedic      ConflictType = "comedic"
	ConflictNone         ConflictType = "none"
)

func ParseConflictType(s string) (ConflictType, error) {
	switch t := ConflictType(s); t {
	case ConflictRelationship, ConflictInternal, ConflictExternal, ConflictIdeological, ConflictComedic, ConflictNone:
		return t, nil
	case "":
		return ConflictNone, nil
	}
	return "", fmt.Errorf("unknown conflict type %q", s)
}

// EmotionCurve is one stage of a scene's emotional arc; a Scene carries an
// ordered sequence of them.
type EmotionCurve string

const (
	EmotionCalm       EmotionCurve = "calm"
	EmotionRising     EmotionCurve = "rising"
	EmotionTension    EmotionCurve = "tension"
	EmotionClimax     EmotionCurve = "climax"
	EmotionFalling    EmotionCurve = "falling"
	EmotionResolution EmotionCurve = "resolution"
	EmotionExplosive  EmotionCurve = "explosive"
	EmotionSilence    EmotionCurve = "silence"
)

func ParseEmotionCurve(s string) (EmotionCurve, error) {
	switch t := EmotionCurve(s); t {
	case EmotionCalm, EmotionRising, EmotionTension, EmotionClimax,
		EmotionFalling, EmotionResolution, EmotionExplosive, EmotionSilence:
		return t, nil
	}
	return "", fmt.Errorf("unknown emotion curve stage %q", s)
}

type DialogDensity string

const (
	DensityHigh   DialogDensity = "high"
	DensityMedium DialogDensity = "medium"
	DensityLow    DialogDensity = "low"
)

func ParseDialogDensity(s string) (DialogDensity, error) {
	switch t := DialogDensity(s); t {
	case DensityHigh, DensityMedium, DensityLow:
		return t, nil
	case "":
		return DensityMedium, nil
	}
	return "", fmt.Errorf("unknown dialog density %q", s)
}

type CharacterRole string

const (
	RoleProtagonist CharacterRole = "protagonist"
	RoleAntagonist  CharacterRole = "antagonist"
	RoleSupporting  CharacterRole = "supporting"
	RoleHost        CharacterRole = "host"
	RoleCoHost      CharacterRole = "co_host"
	RoleGuest       CharacterRole = "guest"
	RoleNarrator    CharacterRole = "narrator"
	RoleExtra       CharacterRole = "extra"
)

func ParseCharacterRole(s string) (CharacterRole, error) {
	switch t := CharacterRole(s); t {
	case RoleProtagonist, RoleAntagonist, RoleSupporting, RoleHost, RoleCoHost, RoleGuest, RoleNarrator, RoleExtra:
		return t, nil
	case "":
		return RoleSupporting, nil
	}
	return "", fmt.Errorf("unknown character role %q", s)
}

type ClicheType string

const (
	ClicheDialogue   ClicheType = "dialogue"
	ClichePlot       ClicheType = "plot"
	ClicheCharacter  ClicheType = "character"
	ClicheEnding     ClicheType = "ending"
	ClicheTransition ClicheType = "transition"
)

// ParseClicheType never fails: judgment output is untrusted, so anything
// unrecognized is filed under dialogue rather than rejected.
func ParseClicheType(s string) ClicheType {
	switch t := ClicheType(s); t {
	case ClicheDialogue, ClichePlot, ClicheCharacter, ClicheEnding, ClicheTransition:
		return t
	}
	return ClicheDialogue
}

type IssueCategory string

const (
	IssueCreativity  IssueCategory = "creativity"
	IssueConsistency IssueCategory = "consistency"
	IssueEmotion     IssueCategory = "emotion"
	IssuePacing      IssueCategory = "pacing"
	IssueDialogue    IssueCategory = "dialogue"
	IssueStructure   IssueCategory = "structure"
	IssueOverall     IssueCategory = "overall"
)

// ParseIssueCategory is lenient for the same reason as ParseClicheType.
func ParseIssueCategory(s string) IssueCategory {
	switch t := IssueCategory(s); t {
	case IssueCreativity, IssueConsistency, IssueEmotion, IssuePacing, IssueDialogue, IssueStructure, IssueOverall:
		return t
	}
	return IssueStructure
}

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

func ParseSeverity(s string) Severity {
	switch t := Severity(s); t {
	case SeverityInfo, SeverityWarning, SeverityError:
		return t
	}
	return SeverityWarning
}

type Importance string

const (
	ImportanceLow    Importance = "low"
	ImportanceMedium Importance = "medium"
	ImportanceHigh   Importance = "high"
)

func ParseImportance(s string) (Importance, error) {
	switch t := Importance(s); t {
	case ImportanceLow, ImportanceMedium, ImportanceHigh:
		return t, nil
	case "":
		return ImportanceMedium, nil
	}
	return "", fmt.Errorf("unknown importance %q", s)
}
