package prompt

// PromptIDs contains all known prompt identifiers
var PromptIDs = struct {
	SummarizeFiling string
}{
	SummarizeFiling: "summarization.sec_filing",
}

// Used when resources/prompts is missing or does not override the prompt.
const summarizeFilingUserTmpl = `Summarize the SEC filing at the following URL: {{.URL}}
{{if .Content}}
The extracted text of the filing follows. Tables are delimited by TABLE START and TABLE END lines.

{{.Content}}
{{end}}`

const summarizeFilingSystem = `You are a financial analyst who summarizes SEC filings for investors.
Be factual and concise. Cover the filing type, the company, the reporting period,
key financial figures, material events and risk factors.
Use Markdown headings and bullet points. Do not speculate.`

func builtins() []*PromptTemplate {
	return []*PromptTemplate{
		{
			ID:             PromptIDs.SummarizeFiling,
			Name:           "SEC Filing Summary",
			Category:       "summarization",
			Description:    "One-shot summary of a single SEC filing.",
			SystemPrompt:   summarizeFilingSystem,
			UserPromptTmpl: summarizeFilingUserTmpl,
			Variables: []PromptVariable{
				{Name: "URL", Type: "string", Description: "Filing URL", Required: true},
				{Name: "Content", Type: "string", Description: "Extracted filing text"},
			},
			Version: "builtin",
		},
	}
}
