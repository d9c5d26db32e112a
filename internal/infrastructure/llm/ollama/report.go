package ollama

import (
	"encoding/json"
	"strings"

	"github.com/kirillkom/lab-assistant/internal/core/domain"
)

const (
	noJSONNotice        = "Model did not return JSON."
	malformedJSONNotice = "Malformed JSON."
)

// parseReport reads the model reply. A reply without a JSON object, or with
// one that does not decode, is returned as the procedure with a notice in
// the other two sections.
func parseReport(raw string) domain.Report {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end < 0 {
		return domain.Report{Procedure: raw, Theory: noJSONNotice, Safety: noJSONNotice}
	}
	if end < start {
		return domain.Report{Procedure: raw, Theory: malformedJSONNotice, Safety: malformedJSONNotice}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw[start:end+1]), &fields); err != nil {
		return domain.Report{Procedure: raw, Theory: malformedJSONNotice, Safety: malformedJSONNotice}
	}
	return domain.Report{
		Procedure: fieldText(fields["procedure"]),
		Theory:    fieldText(fields["theory"]),
		Safety:    fieldText(fields["safety"]),
	}
}

// fieldText flattens a JSON value into display text. Models sometimes
// answer with a list of steps instead of a string.
func fieldText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return strings.Join(list, "\n")
	}
	return string(raw)
}
