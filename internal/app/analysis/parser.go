package analysis

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"coachlens/internal/app/model"
)

// ParseError reports analysis output that does not match the expected report
// schema. Raw carries the full model response so a failed job can still be
// diagnosed.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("analysis response does not match expected schema: %s", e.Reason)
}

// Findings is the structured result of one analysis call.
type Findings struct {
	ReportText  string
	Strengths   []model.FindingItem
	GrowthAreas []model.FindingItem
	Metrics     map[string]float64
}

// Metric rows in the snapshot table are matched by row label, not by
// position, so reordered tables still parse.
var metricPatterns = map[string]*regexp.Regexp{
	"wpm":                  regexp.MustCompile(`Speaking Pace.*?\|\s*(\d+(?:\.\d+)?)`),
	"pauses_per_10min":     regexp.MustCompile(`Strategic Pauses.*?\|\s*(\d+(?:\.\d+)?)`),
	"filler_words_per_min": regexp.MustCompile(`Filler Words.*?\|\s*(\d+(?:\.\d+)?)`),
	"questions_per_5min":   regexp.MustCompile(`Questions.*?\|\s*(\d+(?:\.\d+)?)`),
	"tangent_percentage":   regexp.MustCompile(`Tangent.*?\|\s*(\d+(?:\.\d+)?)%?`),
}

var (
	itemHeadingRe = regexp.MustCompile(`(?m)^\s*(?:- )?\*\*(.+?)\*\*\s*$`)
	timestampRe   = regexp.MustCompile(`\[(\d{2}:\d{2}:\d{2})\]`)
)

const maxItemDescription = 500

// ParseEvaluation parses a single-session coaching report. The report text
// is kept verbatim; strengths, growth areas, and the metrics snapshot are
// extracted from their fixed sections.
func ParseEvaluation(raw string) (*Findings, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Reason: "empty response", Raw: raw}
	}
	strengths := ExtractSection(raw, sectionStrengths)
	growth := ExtractSection(raw, sectionGrowth)
	if len(strengths) == 0 && len(growth) == 0 {
		return nil, &ParseError{
			Reason: fmt.Sprintf("no %q or %q section found", sectionStrengths, sectionGrowth),
			Raw:    raw,
		}
	}
	return &Findings{
		ReportText:  raw,
		Strengths:   strengths,
		GrowthAreas: growth,
		Metrics:     ExtractMetrics(raw),
	}, nil
}

// ParseComparison parses a cross-session report using the section titles of
// the selected prompt variant, falling back across all known variant titles
// because models occasionally pick a sibling heading.
func ParseComparison(raw string, v Variant) (*Findings, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, &ParseError{Reason: "empty response", Raw: raw}
	}
	strengths := extractFirst(raw, v.StrengthSections, allStrengthSections())
	growth := extractFirst(raw, v.GrowthSections, allGrowthSections())
	if len(strengths) == 0 && len(growth) == 0 {
		return nil, &ParseError{
			Reason: fmt.Sprintf("no recognizable sections for %s variant", v.Type),
			Raw:    raw,
		}
	}
	return &Findings{
		ReportText:  raw,
		Strengths:   strengths,
		GrowthAreas: growth,
	}, nil
}

// ExtractSection pulls the titled "## ..." section and splits it into bold
// heading items, each with the text up to the next heading as description.
func ExtractSection(report, title string) []model.FindingItem {
	sectionRe := regexp.MustCompile(`(?s)## ` + regexp.QuoteMeta(title) + `\s*\n(.*?)(?:\n## |$)`)
	m := sectionRe.FindStringSubmatch(report)
	if m == nil {
		return nil
	}
	section := m[1]

	heads := itemHeadingRe.FindAllStringSubmatchIndex(section, -1)
	items := make([]model.FindingItem, 0, len(heads))
	for i, head := range heads {
		title := strings.TrimSpace(section[head[2]:head[3]])
		bodyStart := head[1]
		bodyEnd := len(section)
		if i+1 < len(heads) {
			bodyEnd = heads[i+1][0]
		}
		body := strings.TrimSpace(section[bodyStart:bodyEnd])
		body = truncateRunes(body, maxItemDescription)
		item := model.FindingItem{Title: title, Description: body}
		if ts := timestampRe.FindStringSubmatch(body); ts != nil {
			item.Timestamp = ts[1]
		}
		items = append(items, item)
	}
	return items
}

// truncateRunes caps s at max bytes without splitting a multi-byte rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// ExtractMetrics parses the metrics snapshot table, best effort: a row the
// model formatted differently is simply absent, the full report text remains
// the fallback.
func ExtractMetrics(report string) map[string]float64 {
	out := make(map[string]float64)
	for key, re := range metricPatterns {
		if m := re.FindStringSubmatch(report); m != nil {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				out[key] = v
			}
		}
	}
	return out
}

func extractFirst(report string, titles, fallbacks []string) []model.FindingItem {
	for _, t := range titles {
		if items := ExtractSection(report, t); len(items) > 0 {
			return items
		}
	}
	for _, t := range fallbacks {
		if items := ExtractSection(report, t); len(items) > 0 {
			return items
		}
	}
	return nil
}

func allStrengthSections() []string {
	var out []string
	for _, v := range variants {
		out = append(out, v.StrengthSections...)
	}
	return out
}

func allGrowthSections() []string {
	var out []string
	for _, v := range variants {
		out = append(out, v.GrowthSections...)
	}
	return out
}
