package services

import (
	"fmt"
	"strings"
)

func buildQuizPrompt(contextText string, numQuestions int, questionTypes []string) string {
	return fmt.Sprintf(`Generate a comprehensive quiz based on the following educational content.

Content:
%s

Requirements:
- Generate exactly %d questions
- Include a mix of question types: %s
- For multiple choice questions, provide 4 options (A, B, C, D) with exactly one correct answer
- For short answer questions, provide a clear, concise answer
- Questions should cover different topics from the content
- Questions should test understanding, not just recall

CRITICAL: Each question MUST include sufficient context so the question is self-contained and understandable without referring back to the document.

For each question:
1. Include relevant context from the content that makes the question clear
2. Reference specific examples, scenarios, or concepts mentioned in the content
3. Make sure someone reading just the question understands what is being asked
4. For multiple choice, ensure the question and options together provide enough context

IMPORTANT - Hint Generation:
- The hint MUST be specific to the correct answer and guide the user toward it
- The hint should reference key concepts, context, or characteristics related to the answer
- The hint should NOT directly state the answer, but should make it easier to identify

Format the response as a JSON object with the following structure:
{
  "quiz_title": "Title of the quiz",
  "questions": [
    {
      "question_number": 1,
      "question_type": "multiple_choice" or "short_answer",
      "question": "Contextual question text that includes relevant background information",
      "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"] (only for multiple_choice),
      "correct_answer": "Correct answer or option letter",
      "hint": "A specific hint that guides toward the correct answer",
      "explanation": "Brief explanation of the answer with reference to the content"
    }
  ]
}

Return only valid JSON, no additional text.`, contextText, numQuestions, strings.Join(questionTypes, ", "))
}

func buildBankPrompt(contextText, topic string, n int) string {
	lowCount := (n + 2) / 3
	mediumCount := (n + 1) / 3
	hardCount := n - lowCount - mediumCount

	source := "Content:\n" + contextText
	if contextText == "" {
		source = fmt.Sprintf("Topic: %s\n\nGenerate the questions from your knowledge of this topic.", topic)
	}

	return fmt.Sprintf(`Generate a comprehensive question bank for a competitive adaptive quiz based on the following educational content.

%s

Requirements:
- Generate exactly %d multiple choice questions (MCQ)
- Each question must have exactly 4 options (A, B, C, D) with exactly one correct answer
- Questions should cover diverse topics from the content
- Questions should test understanding, not just recall
- Each question MUST be self-contained with sufficient context

Difficulty Distribution:
- %d questions should be LOW difficulty (basic concepts, definitions, straightforward facts)
- %d questions should be MEDIUM difficulty (application of concepts, moderate complexity)
- %d questions should be HARD difficulty (complex analysis, synthesis, advanced concepts)

IMPORTANT - Hint Generation:
- Each question MUST include a hint field
- The hint should guide the user toward the correct answer without directly revealing it
- The hint should reference key concepts, context, or characteristics related to the correct answer

Format the response as a JSON object with the following structure:
{
  "questions": [
    {
      "question_id": "q1",
      "difficulty": "low" or "medium" or "hard",
      "question": "Contextual question text with sufficient background information",
      "options": ["A) Option 1", "B) Option 2", "C) Option 3", "D) Option 4"],
      "correct_answer": "A" (or B, C, D),
      "hint": "A specific hint that guides toward the correct answer",
      "explanation": "Brief explanation of why this answer is correct"
    }
  ]
}

Return only valid JSON, no additional text.`, source, n, lowCount, mediumCount, hardCount)
}

var summaryLengthGuidance = map[string]string{
	"short":  "2-3 paragraphs (approximately 150-200 words)",
	"medium": "4-6 paragraphs (approximately 300-400 words)",
	"long":   "8-10 paragraphs (approximately 600-800 words)",
}

func buildSummaryPrompt(contextText, length string) string {
	target, ok := summaryLengthGuidance[length]
	if !ok {
		target = summaryLengthGuidance["medium"]
	}

	return fmt.Sprintf(`Generate a comprehensive summary of the following educational content.

Content:
%s

Requirements:
- Create a well-structured summary that captures the main ideas and key concepts
- Target length: %s
- Organize the summary with clear sections if appropriate
- Include important details while maintaining conciseness
- Use clear, academic language

Format the response as a JSON object with the following structure:
{
  "summary_title": "Title of the summary",
  "summary": "The summary text here",
  "key_topics": ["topic1", "topic2", "topic3"],
  "word_count": approximate word count
}

Return only valid JSON, no additional text.`, contextText, target)
}

func buildFlashcardsPrompt(contextText string, n int) string {
	return fmt.Sprintf(`Generate educational flashcards based on the following content.

Content:
%s

Requirements:
- Generate exactly %d flashcards
- Each flashcard should have a clear front (question/term) and back (answer/definition)
- Cover important concepts, definitions, facts, and key information
- Front side should be concise (1-2 sentences or a term)
- Back side should provide a clear, informative answer (2-4 sentences)

Format the response as a JSON object with the following structure:
{
  "flashcard_set_title": "Title of the flashcard set",
  "flashcards": [
    {
      "card_number": 1,
      "front": "Question or term",
      "back": "Answer or definition",
      "category": "Category (e.g., 'definition', 'concept', 'fact')"
    }
  ]
}

Return only valid JSON, no additional text.`, contextText, n)
}

func buildEvaluationPrompt(userAnswer, correctAnswer, question string) string {
	return fmt.Sprintf(`Evaluate if the user's answer is correct for the following question.

Question: %s

Correct Answer: %s

User's Answer: %s

Instructions:
- Compare the user's answer with the correct answer
- Consider semantic similarity, key concepts, and meaning (not just exact word matching)
- The answer can be correct even if worded differently, as long as it conveys the same meaning
- Be lenient with minor spelling/grammar differences, but ensure the core concept is correct
- Return ONLY a JSON object with this exact structure:
{
  "is_correct": true or false,
  "feedback": "Brief explanation of why the answer is correct or incorrect"
}

Return only valid JSON, no additional text.`, question, correctAnswer, userAnswer)
}
