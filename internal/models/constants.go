package models

const (
	FragmentSeparator = "\n"

	// NoContextAnswer is returned when retrieval finds nothing relevant,
	// without calling the generation model.
	NoContextAnswer = "No relevant information found in the documentation for your question."
)

var (
	AnswerPromptTemplate = `You are an expert assistant that answers questions based ONLY on the provided context.

Relevant context:
%s

User question: %s

Instructions:
1. Answer ONLY with information from the provided context
2. If the context doesn't contain the information, clearly state that it's not available in the documentation
3. Be concise but complete
4. Do not make up information
5. Respond in English

Answer:`
)
