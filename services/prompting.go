package services

import (
	"fmt"
	"strings"
	"unicode"

	"rag-edu-backend/models"
)

// QuestionType tags a question so the prompt can ask for the right
// answer shape.
type QuestionType string

const (
	QuestionList       QuestionType = "list"
	QuestionDefinition QuestionType = "definition"
	QuestionComparison QuestionType = "comparison"
	QuestionHow        QuestionType = "how"
	QuestionWhy        QuestionType = "why"
	QuestionWhat       QuestionType = "what"
	QuestionGeneral    QuestionType = "general"
)

var (
	listCues       = []string{"list", "enumerate", "give me", "what are", "name", "mention", "pointers", "points"}
	definitionCues = []string{"what is", "define", "definition", "meaning of", "explain what"}
	comparisonCues = []string{"compare", "difference", "versus", "vs", "between", "contrast"}
)

// ClassifyQuestion tags a question by scanning cue phrases in priority
// order: list, definition, comparison, then how/why/what prefixes, and
// finally general.
func ClassifyQuestion(question string) QuestionType {
	q := strings.ToLower(question)

	for _, cue := range listCues {
		if strings.Contains(q, cue) {
			return QuestionList
		}
	}
	for _, cue := range definitionCues {
		if strings.Contains(q, cue) {
			return QuestionDefinition
		}
	}
	for _, cue := range comparisonCues {
		if strings.Contains(q, cue) {
			return QuestionComparison
		}
	}
	switch {
	case strings.HasPrefix(q, "how"):
		return QuestionHow
	case strings.HasPrefix(q, "why"):
		return QuestionWhy
	case strings.HasPrefix(q, "what"):
		return QuestionWhat
	}
	return QuestionGeneral
}

// instructions per question type, appended after the shared header.
var typeInstructions = map[QuestionType]string{
	QuestionList: `Instructions:
1. Identify all key points, items, or concepts related to the question.
2. Present them as a clear list: a bold item name, then a one or two sentence explanation.
3. Put a blank line between items; never answer as one continuous paragraph.
4. Include examples from the sources under the relevant items.
5. Every item must come from the sources provided.`,
	QuestionDefinition: `Instructions:
1. Start with a clear, concise definition of one or two sentences on its own line.
2. Follow with key characteristics as a bulleted list, then how it works, then examples from the sources.
3. Separate sections with blank lines; never answer as one continuous paragraph.
4. Support the definition directly from the sources provided.`,
	QuestionComparison: `Instructions:
1. Identify the items being compared.
2. Present similarities first, then differences, each as a bulleted list under a bold heading.
3. Separate the sections with a blank line and reference specific details from the sources.
4. Never answer as one continuous paragraph.`,
	QuestionHow: `Instructions:
1. Answer as numbered steps, each step on its own line with a blank line between steps.
2. Explain each step using specific details from the sources.
3. Reference examples from the sources under the relevant steps.
4. Never answer as one continuous paragraph.`,
	QuestionWhy: `Instructions:
1. Present the reasons found in the sources, most important first, each under a bold heading.
2. Explain the cause and effect relationships clearly.
3. Separate reasons with blank lines; never answer as one continuous paragraph.`,
	QuestionWhat:    generalInstructions,
	QuestionGeneral: generalInstructions,
}

const generalInstructions = `Instructions:
1. Start with a brief direct answer of one or two sentences.
2. Follow with a detailed explanation, then key points as a bulleted list, then examples from the sources.
3. Separate sections with blank lines; never answer as one continuous paragraph.
4. Every claim must come from the sources provided.`

// BuildAnswerPrompt assembles the grounded QA prompt: role, retrieved
// sources with provenance markers, the question, and per-type
// formatting instructions.
func BuildAnswerPrompt(question string, qt QuestionType, chunks []models.RetrievedChunk) string {
	var b strings.Builder
	b.WriteString("You are an expert educational assistant helping students understand material from uploaded documents.\n\n")
	b.WriteString("Context Information from Document:\n")
	for i, chunk := range chunks {
		if i > 0 {
			b.WriteString("\n---\n\n")
		}
		fmt.Fprintf(&b, "[Source: %s, p. %d]\n%s\n", chunk.Filename, chunk.PageNumber, chunk.Text)
	}
	fmt.Fprintf(&b, "\nUser Question: %s\n\n", question)
	b.WriteString(typeInstructions[qt])
	b.WriteString("\n\nAnswer:")
	return b.String()
}

// BuildFallbackPrompt asks for a general-knowledge answer that opens
// with a declaration that the material does not cover the question.
func BuildFallbackPrompt(question string) string {
	return fmt.Sprintf(`The user asked: %q

IMPORTANT: The information requested is NOT available in the uploaded document/material.
Answer the question using your general knowledge, but clearly state at the beginning
that this information is not found in the provided materials.

Format your response as:
"This information is not available in the provided materials. However, based on general knowledge: [your answer]"

Answer:`, question)
}

// Leading phrases the model tends to prepend despite instructions.
var boilerplatePrefixes = []string{
	"based on the provided context information,",
	"according to the context information,",
	"based on the provided context,",
	"according to the context,",
	"based on the context,",
}

// PostProcessAnswer cleans up a raw completion: strips leading
// boilerplate, removes markdown bold markers, collapses excess blank
// lines and capitalizes the first rune.
func PostProcessAnswer(answer string) string {
	processed := strings.TrimSpace(answer)

	lower := strings.ToLower(processed)
	for _, prefix := range boilerplatePrefixes {
		if strings.HasPrefix(lower, prefix) {
			processed = strings.TrimSpace(processed[len(prefix):])
			break
		}
	}

	processed = strings.ReplaceAll(processed, "**", "")
	processed = multiNewline.ReplaceAllString(processed, "\n\n")
	processed = strings.TrimSpace(processed)

	runes := []rune(processed)
	if len(runes) > 0 {
		runes[0] = unicode.ToUpper(runes[0])
		processed = string(runes)
	}
	return processed
}

// Phrases whose presence marks an answer as not grounded in the
// document, checked case-insensitively.
var noInfoPhrases = []string{
	"provided context information does not include",
	"not available in the provided",
	"not found in the provided",
	"not mentioned in the",
	"not in the provided",
	"does not contain",
	"no information about",
	"no details about",
	"i'm sorry, but",
	"i cannot find",
	"unable to find",
	"the context does not contain",
}

// IndicatesNoInfo reports whether the answer text declares that the
// material lacks the requested information.
func IndicatesNoInfo(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range noInfoPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
