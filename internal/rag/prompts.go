package rag

import (
	"fmt"
	"strings"
)

// NotFoundAnswer is the reply the model is told to give when the context
// does not contain the answer. It is also returned without calling the
// model when retrieval finds nothing.
const NotFoundAnswer = "I cannot find this information in the provided document."

const promptTemplate = `You are a helpful assistant answering questions based on the provided context.
Use ONLY the information from the context below to answer the question.
If the answer cannot be found in the context, say "%s"

Context:
%s

Question: %s

Answer:`

// BuildPrompt numbers the contexts in the order given and embeds them with
// the question into the answering instructions.
func BuildPrompt(question string, contexts []string) string {
	blocks := make([]string, len(contexts))
	for i, c := range contexts {
		blocks[i] = fmt.Sprintf("Context %d:\n%s", i+1, c)
	}
	return fmt.Sprintf(promptTemplate, NotFoundAnswer, strings.Join(blocks, "\n\n"), question)
}
