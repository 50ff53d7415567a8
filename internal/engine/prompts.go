package engine

import (
	"fmt"

	"aigist/internal/domain"
)

const qaSystemPrompt = "You are a helpful assistant that answers questions based only on the provided context."

func qaPrompt(contextBlock, question string) string {
	return fmt.Sprintf(`Based on the following context, answer the question. If the answer is not in the context, say so clearly.

Context:
%s

Question: %s

Answer:`, contextBlock, question)
}

// summarySettings bounds input and output per detail level. Input caps are
// in characters, roughly four characters per token.
type summarySettings struct {
	maxInput  int
	maxTokens int
	prompt    func(text string) string
}

func settingsFor(level domain.SummaryLevel) summarySettings {
	switch level {
	case domain.SummaryQuick:
		return summarySettings{
			maxInput:  8000,
			maxTokens: 300,
			prompt: func(text string) string {
				return fmt.Sprintf(`Provide a concise summary of the following text in 2-3 key bullet points. Focus only on the most essential information and main conclusions.

Text:
%s

Quick Summary (2-3 bullet points):`, text)
			},
		}
	case domain.SummaryDetailed:
		return summarySettings{
			maxInput:  16000,
			maxTokens: 1200,
			prompt: func(text string) string {
				return fmt.Sprintf(`Provide a comprehensive and detailed summary of the following text. Cover the main topic and context, the key themes, specific facts or figures mentioned, and the main takeaways. Stay well-organized and capture nuance.

Text:
%s

Detailed Summary:`, text)
			},
		}
	default: // standard
		return summarySettings{
			maxInput:  12000,
			maxTokens: 600,
			prompt: func(text string) string {
				return fmt.Sprintf(`Provide a well-structured summary of the following text that covers the main points comprehensively but concisely: the main topic, the key themes as bullet points, relevant facts or examples, and the main takeaways.

Text:
%s

Summary:`, text)
			},
		}
	}
}
