package mcq

import "github.com/tmc/langchaingo/prompts"

// Template inputs
const (
	inputArticle  = "article"
	inputGlossary = "glossary"
	inputQuestion = "question"
)

const glossaryTemplate = `Extract all technical terms and their definitions from this excerpt. Respond in JSON:
{{.article}}`

const generationTemplate = `
You are a university professor creating academic MCQs.

Glossary:
{{.glossary}}

Excerpt:
{{.article}}

Respond with only a single valid JSON object. Do not include explanations or multiple blocks. Format:
{
  "reasoning": "...",
  "statement": "...",
  "options": ["a) ...", "b) ...", "c) ...", "d) ...", "e) ..."],
  "answer": "c"
}
`

func newTemplate(tmpl string, inputs ...string) prompts.PromptTemplate {
	return prompts.PromptTemplate{
		Template:       tmpl,
		InputVariables: inputs,
		TemplateFormat: prompts.TemplateFormatGoTemplate,
	}
}
