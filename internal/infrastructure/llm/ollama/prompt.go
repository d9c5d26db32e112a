package ollama

const maxExperimentChars = 12000

func buildReportPrompt(experimentText string) string {
	snippet := []rune(experimentText)
	if len(snippet) > maxExperimentChars {
		snippet = snippet[:maxExperimentChars]
	}

	return `Extract procedure, theory, and safety from the lab experiment below.
Return strict JSON object with keys:
procedure (string), theory (string), safety (string).
No markdown, no extra keys.

Experiment:
"""
` + string(snippet) + `
"""
`
}
