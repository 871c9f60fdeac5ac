package ai

import (
	"strings"
)

// Category is the verdict on a chat message.
type Category string

const (
	CategoryLegit   Category = "legit"
	CategoryInsult  Category = "insult"
	CategoryTempBan Category = "temp_ban"
	CategoryPerma   Category = "perma"
	CategoryUnknown Category = "unknown"
)

// categoryOrder is the order in which model output is matched by substring.
var categoryOrder = []Category{CategoryLegit, CategoryInsult, CategoryTempBan, CategoryPerma}

// markdownMarkers are trimmed from both sides of a label and its value.
const markdownMarkers = "*_` \t"

// Severity grades an insult.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityTempBan Severity = "temp_ban"
	SeverityPerma   Severity = "perma"
)

// Classification is the parsed model verdict.
type Classification struct {
	Category    Category
	Severity    Severity
	Reason      string
	Explanation string
}

// Unknown is returned whenever the model cannot be asked or understood.
func Unknown() Classification {
	return Classification{Category: CategoryUnknown, Severity: SeverityWarning}
}

// ParseClassification reads CATEGORY, SEVERITY, REASON and EXPLANATION lines.
// Unlabelled lines are ignored. Unrecognised categories become unknown and
// unrecognised severities become warning.
func ParseClassification(output string) Classification {
	result := Unknown()

	for line := range strings.Lines(output) {
		label, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		if !ok {
			continue
		}

		value = strings.Trim(value, markdownMarkers)

		switch strings.ToLower(strings.Trim(label, markdownMarkers)) {
		case "category":
			result.Category = parseCategory(value)
		case "severity":
			result.Severity = parseSeverity(value)
		case "reason":
			result.Reason = value
		case "explanation":
			result.Explanation = value
		}
	}

	return result
}

// parseCategory maps free text to a category by substring containment.
func parseCategory(value string) Category {
	value = strings.ToLower(value)
	for _, category := range categoryOrder {
		if strings.Contains(value, string(category)) {
			return category
		}
	}

	return CategoryUnknown
}

// parseSeverity accepts only the exact severity names.
func parseSeverity(value string) Severity {
	switch severity := Severity(strings.ToLower(strings.TrimSpace(value))); severity {
	case SeverityWarning, SeverityTempBan, SeverityPerma:
		return severity
	default:
		return SeverityWarning
	}
}
