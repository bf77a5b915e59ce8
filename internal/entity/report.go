package entity

import "strings"

const (
	passMarker = "✅"
	failMarker = "❌"
)

type ReportLine struct {
	Passed bool   `json:"passed"`
	Text   string `json:"text"`
}

type DiagnosticReport struct {
	Lines       []ReportLine `json:"lines"`
	HasFailures bool         `json:"has_failures"`
}

// ParseReport quebra o texto do diagnóstico em linhas de sucesso/falha.
func ParseReport(results string) DiagnosticReport {
	report := DiagnosticReport{Lines: []ReportLine{}}
	if !HasResult(results) {
		return report
	}

	for _, raw := range strings.Split(results, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		failed := strings.Contains(line, failMarker)
		text := strings.Replace(line, failMarker+" ", "", 1)
		text = strings.Replace(text, passMarker+" ", "", 1)

		report.Lines = append(report.Lines, ReportLine{Passed: !failed, Text: text})
		if failed {
			report.HasFailures = true
		}
	}

	return report
}
