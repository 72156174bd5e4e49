package inference

import (
	"fmt"
	"strings"
)

const summarySystemPrompt = `You summarize document excerpts. Respond with ONLY the summary text: no preamble, no headings, no bullet points.`

const answerSystemPrompt = `You answer questions about a document by extracting the answer from the provided context.

Rules:
- Copy the shortest span of the context that answers the question, verbatim.
- Do not explain, rephrase, or add information that is not in the context.
- If the context does not contain the answer, respond with an empty message.

Respond with ONLY the answer span.`

// buildSummaryPrompt asks a chat model for a summary within the length
// bounds a seq2seq summarizer would receive.
func buildSummaryPrompt(text string, opts SummaryOptions) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Summarize the following text in at most %d words", opts.MaxLength))
	if opts.MinLength > 0 {
		sb.WriteString(fmt.Sprintf(" and at least %d words", opts.MinLength))
	}
	sb.WriteString(".\n\n---\n")
	sb.WriteString(text)
	return sb.String()
}

func buildAnswerPrompt(question, passage string) string {
	var sb strings.Builder
	sb.WriteString("Context:\n---\n")
	sb.WriteString(passage)
	sb.WriteString("\n---\n\nQuestion: ")
	sb.WriteString(question)
	return sb.String()
}

// maxTokensFor converts a word budget into a generous completion token cap.
func maxTokensFor(words int) int {
	if words <= 0 {
		words = 50
	}
	return words*2 + 16
}

// answerMaxTokens caps extractive answers.
const answerMaxTokens = 512
