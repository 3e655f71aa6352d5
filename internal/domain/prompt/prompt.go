// Package prompt assembles the generation prompt from retrieved chunks and
// conversation history under a token budget.
package prompt

import (
	"strings"

	"github.com/kailas-cloud/ragdex/internal/domain"
)

// maxHistoryTurns bounds how many trailing conversation turns are included.
const maxHistoryTurns = 5

const preamble = `You are a helpful AI assistant. Use the following context to answer the user's question.
If the answer cannot be found in the context, say so clearly.`

// BuildContext greedily selects chunks in the relevance order given and
// formats them as attributed source blocks. Cost is approximated as the
// whitespace-delimited word count of the formatted block; selection stops at
// the first chunk that would push the running total past maxTokens. Later,
// possibly smaller, chunks are never considered.
func BuildContext(chunks []domain.RetrievedChunk, maxTokens int) string {
	var parts []string
	total := 0

	for _, rc := range chunks {
		block := "Source: " + rc.Chunk.Metadata[domain.MetaTitle] + "\n" + rc.Chunk.Content + "\n"
		cost := len(strings.Fields(block))
		if total+cost > maxTokens {
			break
		}
		parts = append(parts, block)
		total += cost
	}

	return strings.Join(parts, "\n---\n")
}

// BuildHistory renders the last turns as a labelled history section.
// History is not counted against the token budget.
func BuildHistory(history []domain.Turn) string {
	if len(history) == 0 {
		return ""
	}
	turns := history
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}

	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		role := "Assistant"
		if t.Role == "user" {
			role = "User"
		}
		lines = append(lines, role+": "+t.Content)
	}
	return "\nConversation History:\n" + strings.Join(lines, "\n") + "\n"
}

// Build concatenates the full generation prompt: fixed preamble, knowledge
// base context, optional history, the user question, and the answer cue.
func Build(question string, chunks []domain.RetrievedChunk, history []domain.Turn, maxTokens int) string {
	var b strings.Builder
	b.WriteString(preamble)
	b.WriteString("\n\nContext from knowledge base:\n")
	b.WriteString(BuildContext(chunks, maxTokens))
	b.WriteString("\n")
	b.WriteString(BuildHistory(history))
	b.WriteString("\nUser Question: ")
	b.WriteString(question)
	b.WriteString("\n\nAnswer:")
	return b.String()
}
