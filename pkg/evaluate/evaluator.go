// Package evaluate scores written scenes on five axes and mines the
// problems future generations should avoid. A rule-based quick pass
// always works; the full pass adds a model judgment on top and degrades
// to a neutral result when that fails.
package evaluate

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go/v3"

	"greenroom/pkg/inference"
	"greenroom/pkg/schema"
	"greenroom/pkg/utils"
)

// Params collects every tunable of the scoring model. The penalty
// constants have no documented derivation, so they stay adjustable
// rather than baked in.
type Params struct {
	// Quick pass: base score with per-finding deductions, clamped.
	QuickBase          float64
	QuickClichePenalty float64
	QuickIssuePenalty  float64
	QuickFloor         float64
	QuickCeiling       float64

	// Full pass: creativity is docked per detected cliche, capped.
	ClichePenalty    float64
	ClichePenaltyCap float64

	// MinContentRunes below which the quick pass flags the scene as thin.
	MinContentRunes int

	// RevisionThreshold is the overall score under which a scene needs
	// revision.
	RevisionThreshold float64

	// JudgmentTemperature keeps the judge conservative.
	JudgmentTemperature float64
}

func DefaultParams() Params {
	return Params{
		QuickBase:           0.7,
		QuickClichePenalty:  0.1,
		QuickIssuePenalty:   0.05,
		QuickFloor:          0.3,
		QuickCeiling:        1.0,
		ClichePenalty:       0.1,
		ClichePenaltyCap:    0.3,
		MinContentRunes:     100,
		RevisionThreshold:   0.6,
		JudgmentTemperature: 0.3,
	}
}

// Evaluator runs quick and full evaluations. Inf may be nil, in which
// case the full pass degrades to the neutral default.
type Evaluator struct {
	Params   Params
	Inf      inference.Inferencer
	Provider string
}

func New(inf inference.Inferencer, provider string) *Evaluator {
	return &Evaluator{Params: DefaultParams(), Inf: inf, Provider: provider}
}

// QuickResult is the rule pass output. It is advisory and never persisted.
type QuickResult struct {
	Score               float64         `json:"quick_score"`
	ClicheCount         int             `json:"cliche_count"`
	IssueCount          int             `json:"issue_count"`
	Cliches             []schema.Cliche `json:"cliches"`
	Issues              []schema.Issue  `json:"issues"`
	DialogueRatio       float64         `json:"dialogue_ratio"`
	NeedsFullEvaluation bool            `json:"needs_full_evaluation"`
}

// Quick runs the deterministic rule pass: static cliche detection,
// structural checks, and a naive dialogue density ratio, scored as
// deductions from a base. Pure in its content argument.
func (e *Evaluator) Quick(content string) QuickResult {
	cliches := DetectCliches(content)
	issues := e.quickIssues(content)

	score := e.Params.QuickBase
	score -= float64(len(cliches)) * e.Params.QuickClichePenalty
	score -= float64(len(issues)) * e.Params.QuickIssuePenalty
	score = clamp(score, e.Params.QuickFloor, e.Params.QuickCeiling)

	return QuickResult{
		Score:               score,
		ClicheCount:         len(cliches),
		IssueCount:          len(issues),
		Cliches:             cliches,
		Issues:              issues,
		DialogueRatio:       dialogueRatio(content),
		NeedsFullEvaluation: len(cliches) > 0 || len(issues) > 0,
	}
}

func (e *Evaluator) quickIssues(content string) []schema.Issue {
	var issues []schema.Issue
	if utils.RuneLen(content) < e.Params.MinContentRunes {
		issues = append(issues, schema.Issue{
			Category: schema.IssueStructure,
			Severity: schema.SeverityWarning,
			Message:  "scene content is very short",
		})
	}
	if para := repeatedParagraph(content); para != "" {
		issues = append(issues, schema.Issue{
			Category:   schema.IssueStructure,
			Severity:   schema.SeverityWarning,
			Message:    "a paragraph repeats verbatim",
			Suggestion: utils.LimitStr(para, 80),
		})
	}
	return issues
}

// dialogueRatio is quoted spans over non-empty line count.
func dialogueRatio(content string) float64 {
	spans := strings.Count(content, `"`) / 2
	var lines int
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) != "" {
			lines++
		}
	}
	if lines == 0 {
		return 0
	}
	return float64(spans) / float64(lines)
}

func repeatedParagraph(content string) string {
	seen := make(map[string]bool)
	for _, para := range strings.Split(content, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if seen[para] {
			return para
		}
		seen[para] = true
	}
	return ""
}

// CheckForbiddenActions flags content that contradicts a character's
// forbidden action list. Entries are "Name: action" as produced by the
// context builder; matching is a case-insensitive substring check on the
// action text.
func CheckForbiddenActions(content string, forbidden []string) []schema.Issue {
	lower := strings.ToLower(content)
	var issues []schema.Issue
	for _, entry := range forbidden {
		_, action, ok := strings.Cut(entry, ":")
		if !ok {
			action = entry
		}
		action = strings.TrimSpace(action)
		if action == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(action)) {
			issues = append(issues, schema.Issue{
				Category: schema.IssueConsistency,
				Severity: schema.SeverityError,
				Message:  "scene contradicts a character constraint: " + entry,
			})
		}
	}
	return issues
}

// NeedsRevision derives the revision flag from a stored evaluation: a
// low overall score or any error severity issue.
func (e *Evaluator) NeedsRevision(ev *schema.Evaluation) bool {
	if ev.OverallScore < e.Params.RevisionThreshold {
		return true
	}
	for _, issue := range ev.Issues {
		if issue.Severity == schema.SeverityError {
			return true
		}
	}
	return false
}

const judgeSystemPrompt = `You are a veteran script editor judging one scene of a serialized show.
Score each axis from 0.0 to 1.0 and be specific in every finding.
Respond with a single JSON object matching the requested schema and nothing else.`

// Evaluate runs the full pass: the quick static analysis merged with a
// model judgment over the scene content. background carries whatever
// project and character context the caller assembled. It never fails:
// any model or parse problem degrades to a neutral all-0.5 evaluation so
// generation flows are not blocked.
func (e *Evaluator) Evaluate(ctx context.Context, content, background string) *schema.Evaluation {
	quick := e.Quick(content)

	if e.Inf == nil {
		return e.neutral()
	}

	var sb strings.Builder
	if background != "" {
		sb.WriteString("## Context\n")
		sb.WriteString(background)
		sb.WriteString("\n\n")
	}
	sb.WriteString("## Scene\n")
	sb.WriteString(content)

	params := &openai.ChatCompletionNewParams{
		Temperature:    openai.Float(e.Params.JudgmentTemperature),
		ResponseFormat: schema.JudgmentResponseFormat(),
	}
	raw, err := e.Inf.Infer(ctx, params, judgeSystemPrompt, sb.String())
	if err != nil {
		log.Warn("judgment call failed, using neutral scores", "err", err)
		return e.neutral()
	}

	extracted, ok := ExtractJSON(raw)
	if !ok {
		log.Warn("judgment output was not JSON, using neutral scores")
		return e.neutral()
	}
	var j schema.Judgment
	if err := json.Unmarshal([]byte(extracted), &j); err != nil {
		log.Warn("judgment JSON did not match the schema, using neutral scores", "err", err)
		return e.neutral()
	}

	return e.merge(quick, &j)
}

// merge folds the quick findings into the judge's result: cliche and
// issue lists are unions, axis scores come solely from the judgment,
// creativity docked per detected cliche, overall the plain mean of the
// five axes.
func (e *Evaluator) merge(quick QuickResult, j *schema.Judgment) *schema.Evaluation {
	cliches := append([]schema.Cliche(nil), quick.Cliches...)
	for _, c := range j.Cliches {
		cliches = append(cliches, schema.Cliche{
			Type:         schema.ParseClicheType(c.Type),
			Text:         c.Text,
			Explanation:  c.Explanation,
			Alternatives: c.Alternatives,
		})
	}
	issues := append([]schema.Issue(nil), quick.Issues...)
	for _, issue := range j.Issues {
		issues = append(issues, schema.Issue{
			Category:   schema.ParseIssueCategory(issue.Category),
			Severity:   schema.ParseSeverity(issue.Severity),
			Message:    issue.Message,
			Suggestion: issue.Suggestion,
		})
	}

	penalty := float64(len(cliches)) * e.Params.ClichePenalty
	if penalty > e.Params.ClichePenaltyCap {
		penalty = e.Params.ClichePenaltyCap
	}

	creativity := clamp(clamp(j.CreativityScore, 0, 1)-penalty, 0, 1)
	consistency := clamp(j.ConsistencyScore, 0, 1)
	emotion := clamp(j.EmotionScore, 0, 1)
	pacing := clamp(j.PacingScore, 0, 1)
	dialogue := clamp(j.DialogueScore, 0, 1)
	overall := (creativity + consistency + emotion + pacing + dialogue) / 5

	return &schema.Evaluation{
		CreativityScore:  creativity,
		ConsistencyScore: consistency,
		EmotionScore:     emotion,
		PacingScore:      pacing,
		DialogueScore:    dialogue,
		OverallScore:     overall,
		ClicheDetected:   len(cliches) > 0,
		Cliches:          cliches,
		Issues:           issues,
		Summary:          j.Summary,
		Strengths:        utils.DedupeStrings(j.Strengths),
		Suggestions:      utils.DedupeStrings(j.Suggestions),
		Evaluator:        e.Provider,
	}
}

// neutral is the degraded result: all axes at 0.5, empty lists, tagged
// "auto" so it is distinguishable from a real judgment.
func (e *Evaluator) neutral() *schema.Evaluation {
	return &schema.Evaluation{
		CreativityScore:  0.5,
		ConsistencyScore: 0.5,
		EmotionScore:     0.5,
		PacingScore:      0.5,
		DialogueScore:    0.5,
		OverallScore:     0.5,
		Summary:          "Could not evaluate; neutral scores substituted.",
		Evaluator:        "auto",
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
