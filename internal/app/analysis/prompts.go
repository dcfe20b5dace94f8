// Package analysis owns the contract with the language-model analysis
// service: prompt construction for evaluations and the three comparison
// variants, and parsing of the structured markdown the model returns.
package analysis

import (
	"fmt"
	"strings"

	"coachlens/internal/app/metrics"
	"coachlens/internal/app/model"
)

// EvaluationSystemPrompt frames the model as an instructional coach for
// single-session analysis.
const EvaluationSystemPrompt = `You are an expert instructional coach specializing in adult learning and distance education. You have 15+ years of experience coaching instructors who teach professional development courses to adult learners.

Your coaching philosophy:
- Growth-oriented: focus on building strengths, not just fixing weaknesses
- Evidence-based: every observation is grounded in specific transcript moments
- Actionable: every piece of feedback includes a concrete "try this" suggestion
- Respectful: you coach the teaching, never judge the person

You NEVER use evaluative language like "poor," "bad," "inadequate," or "failing." You maintain a minimum 2:1 ratio of strengths to growth areas.`

// ComparisonSystemPrompt frames the model as a program-level consultant for
// cross-session analysis.
const ComparisonSystemPrompt = `You are a senior instructional coaching consultant specializing in adult learning program evaluation. You analyze teaching effectiveness across multiple sessions and instructors.

Your analytical approach:
- Pattern-focused: you identify trends, consistencies, and variations across sessions
- Evidence-based: every observation references specific sessions and data points
- Constructive: you frame findings as opportunities, not criticisms
- Systemic: you distinguish individual instructor patterns from program-level issues

You NEVER use evaluative language like "poor," "bad," or "failing."`

// Section titles the parsers look for in evaluation reports.
const (
	sectionStrengths = "Strengths to Build On"
	sectionGrowth    = "Growth Opportunities"
)

// BuildEvaluationPrompt assembles the single-session analysis prompt: the
// four-dimension rubric, the required output format, and the timestamped
// transcript.
func BuildEvaluationPrompt(transcript, instructorName string) string {
	if instructorName == "" {
		instructorName = "the instructor"
	}
	return fmt.Sprintf(`Analyze the following transcript of a distance learning session taught by %[1]s. Generate a comprehensive coaching report following the structure below exactly.

## ANALYSIS FRAMEWORK

Divide the transcript into 3 roughly equal segments (opening, middle, closing) and extract at least 1 strength and 1 growth opportunity from each segment.

Analyze four dimensions:

**Dimension 1: Clarity & Pacing**
- Speaking Pace (WPM): total words / session minutes. Target: 120-160 WPM.
- Strategic Pauses: pauses of 3+ seconds. Target: 4-6 per 10 minutes.
- Filler Words: "um," "uh," "like," "you know," "so," "basically." Target: <3 per minute.

**Dimension 2: Engagement Techniques**
- Question Frequency: all instructor questions. Target: >1 per 5 minutes.
- Question types: checking understanding, inviting participation, rhetorical, probing.

**Dimension 3: Explanation Quality**
- Analogies and real-world examples: rate effectiveness for adult professional learners.
- Scaffolding: does %[1]s build from foundational to advanced?

**Dimension 4: Time Management & Structure**
- Tangent Detection: percent of session time off-topic. Target: <10%%.
- Session structure: opening, signposting, closing.

## OUTPUT FORMAT

# Coaching Report: %[1]s

## Executive Summary
3-4 sentences on overall teaching effectiveness.

## Strengths to Build On
List 3-5 strengths. For each:
**Strength title**
What was observed (with [HH:MM:SS] timestamp citation), why it is effective, and how to amplify it.

## Growth Opportunities
List 2-3 growth areas. For each:
**Growth area title**
What was observed (with [HH:MM:SS] timestamp citation), why it matters, and a specific action to try.

## Metrics Snapshot

| Metric | Value | Target |
|--------|-------|--------|
| Speaking Pace (WPM) | X | 120-160 |
| Strategic Pauses (per 10 min) | X | 4-6 |
| Filler Words (per min) | X | <3 |
| Questions (per 5 min) | X | >1 |
| Tangent Time (%%) | X%% | <10%% |

## Next Steps
Three concrete actions for %[1]s's next session.

## TRANSCRIPT TO ANALYZE

%[2]s`, instructorName, transcript)
}

// SessionInput is one completed evaluation flattened for comparison
// prompting: label, date, instructor, the individual report, and its metrics.
type SessionInput struct {
	Label      string
	Date       string
	Instructor string
	Report     string
	Metrics    map[string]float64
}

// Variant binds a comparison type to its prompt template and the section
// titles its reports use. Selected once at pipeline start and threaded
// through the analysis call unchanged.
type Variant struct {
	Type             model.ComparisonType
	StrengthSections []string
	GrowthSections   []string
	Build            func(sessions []SessionInput, classTag string) string
}

var variants = map[model.ComparisonType]Variant{
	model.ComparePersonalPerformance: {
		Type:             model.ComparePersonalPerformance,
		StrengthSections: []string{"Cross-Session Strengths"},
		GrowthSections:   []string{"Cross-Session Growth Opportunities"},
		Build:            buildPersonalPerformancePrompt,
	},
	model.CompareClassDelivery: {
		Type:             model.CompareClassDelivery,
		StrengthSections: []string{"Best Practices to Share"},
		GrowthSections:   []string{"Common Delivery Gaps"},
		Build:            buildClassDeliveryPrompt,
	},
	model.CompareProgramEvaluation: {
		Type:             model.CompareProgramEvaluation,
		StrengthSections: []string{"Strengths Across the Program"},
		GrowthSections:   []string{"Areas for Improvement"},
		Build:            buildProgramEvaluationPrompt,
	},
}

// VariantFor returns the prompt variant for a comparison type.
func VariantFor(t model.ComparisonType) (Variant, bool) {
	v, ok := variants[t]
	return v, ok
}

func buildPersonalPerformancePrompt(sessions []SessionInput, _ string) string {
	instructor := "the instructor"
	if len(sessions) > 0 && sessions[0].Instructor != "" {
		instructor = sessions[0].Instructor
	}
	return fmt.Sprintf(`Analyze the following %d coaching evaluation reports for %s, ordered chronologically. Track growth over time, identify patterns, and provide actionable next steps for this instructor's own development.

For each core metric determine direction (improving, declining, stable) and whether the target is met consistently. Identify consistent strengths, persistent growth areas, emerging skills, and regression areas.

## OUTPUT FORMAT

# Performance Comparison: %s

## Executive Summary
4-5 sentences on the overall trajectory.

## Cross-Session Strengths
3-5 strengths appearing across multiple sessions, each as:
**Strength title**
Sessions where observed, how it evolved, recommendation to amplify.

## Cross-Session Growth Opportunities
2-4 growth areas persisting across sessions, each as:
**Growth area title**
Sessions where observed, why it persists, a concrete next step.

## SESSION REPORTS

%s`, len(sessions), instructor, instructor, formatSessions(sessions))
}

func buildClassDeliveryPrompt(sessions []SessionInput, classTag string) string {
	class := classTag
	if class == "" {
		class = "the same class"
	}
	return fmt.Sprintf(`Compare how %d different instructors delivered %s. The audience for this report is the delivery team: surface what the strongest deliveries do differently so those practices can spread, and flag gaps shared across deliveries that point at the material rather than any one instructor.

## OUTPUT FORMAT

# Delivery Comparison: %s

## Executive Summary
4-5 sentences on delivery consistency and variation.

## Best Practices to Share
3-5 techniques observed in the strongest deliveries, each as:
**Practice title**
Which delivery showed it, why it works, how others can adopt it.

## Common Delivery Gaps
2-4 gaps appearing across most deliveries, each as:
**Gap title**
Where it was observed, whether it suggests a material problem, recommended fix.

## SESSION REPORTS

%s`, len(sessions), class, class, formatSessions(sessions))
}

func buildProgramEvaluationPrompt(sessions []SessionInput, _ string) string {
	return fmt.Sprintf(`Evaluate this sample of %d sessions from a training program. The audience is the program director: report on overall program health, instructional quality distribution, and systemic opportunities rather than individual coaching.

## OUTPUT FORMAT

# Program Evaluation

## Executive Summary
4-5 sentences on program-wide instructional quality.

## Strengths Across the Program
3-5 strengths visible across the sample, each as:
**Strength title**
Prevalence across sessions, impact on learners, how to institutionalize it.

## Areas for Improvement
2-4 systemic improvement areas, each as:
**Area title**
Prevalence, likely root cause (training, materials, or support), recommended program-level action.

## SESSION REPORTS

%s`, len(sessions), formatSessions(sessions))
}

func formatSessions(sessions []SessionInput) string {
	blocks := make([]string, 0, len(sessions))
	for i, s := range sessions {
		label := s.Label
		if label == "" {
			label = fmt.Sprintf("Session %d", i+1)
		}
		date := s.Date
		if date == "" {
			date = "Not specified"
		}
		blocks = append(blocks, fmt.Sprintf(`### %s
**Date:** %s
**Instructor:** %s
**Key Metrics:** %s

**Individual Coaching Report:**
%s`, label, date, s.Instructor, formatMetrics(s.Metrics), s.Report))
	}
	return strings.Join(blocks, "\n---\n")
}

func formatMetrics(m map[string]float64) string {
	if len(m) == 0 {
		return "Not available"
	}
	parts := make([]string, 0, len(m))
	for _, def := range metrics.Definitions() {
		if v, ok := m[def.Key]; ok {
			parts = append(parts, fmt.Sprintf("%s: %.1f %s", def.DisplayName, v, def.Unit))
		}
	}
	if len(parts) == 0 {
		return "Not available"
	}
	return strings.Join(parts, ", ")
}
