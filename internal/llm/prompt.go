package llm

import "strings"

const promptRole = "You are a QA engineer. Based on the following requirement document, generate test cases."

const promptFormat = `ONLY return the test cases in the following format:
<Actual test description> || <Steps to be followed> || <Expected Results>

Each line must have exactly three fields separated by ||.
Do NOT use labels like 'Test Case 1'. Just plain rows with || separator.
No headers, no markdown, no numbering, no explanations. Only valid data rows.`

// BuildPrompt composes the single user message sent to the model. Both the document
// context and the instruction are embedded verbatim.
func BuildPrompt(instruction, context string) string {
	var b strings.Builder
	b.WriteString(promptRole)
	b.WriteString("\n\nContext:\n")
	b.WriteString(context)
	b.WriteString("\n\nInstruction:\n")
	b.WriteString(instruction)
	b.WriteString("\n\nOutput format:\n")
	b.WriteString(promptFormat)
	b.WriteString("\n")
	return b.String()
}
