// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package generate produces abstractive summaries and answers via an
// external text-generation API. Every call is a single attempt with a
// bounded timeout; failures come back as typed errors which the caller
// decides how to persist.
package generate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/preprintlab/preprintd/pkg/types"
)

// Backend abstracts the generation API so tests can supply a mock.
type Backend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// ErrUnavailable reports that the backend has no usable credential.
var ErrUnavailable = errors.New("generation api unavailable")

// defaultQuestionContextChars caps the paper text attached to a
// question when the config does not set a budget. Summaries always send
// the full text.
const defaultQuestionContextChars = 2000

const shortPrompt = "Write a very short summary of the following scientific paper text in %s. " +
	"Focus only on the main contribution and the key result, in a single paragraph of 2-3 sentences. " +
	"Use readable plain prose without bold formatting.\n\n%s"

const ordinaryPrompt = "Write a standard summary of the following scientific paper text in %s. " +
	"Present it in 1-3 paragraphs covering these aspects:\n" +
	"1. The main problem\n2. Methods\n3. Results and conclusions\n" +
	"Use readable plain prose without bold formatting.\n\n%s"

const detailedPrompt = "Write a detailed summary of the following scientific paper text in %s, " +
	"structured into these sections:\n" +
	"1. Problem/Gap\n2. Methodology\n3. Key results\n4. Contribution/Significance\n5. Limitations\n6. Future work\n" +
	"Present each section as its own paragraph starting with the number and heading, without bold formatting. " +
	"Use readable plain prose.\n\n%s"

const questionPrompt = "Answer the following question about the provided scientific paper text in %s. " +
	"Ensure the answer is concise, accurate, and relevant to the question. " +
	"Prioritize answering from the paper text provided; if the question is not answerable from the text, " +
	"you may answer from general knowledge.\n" +
	"Use readable text without bold formatting.\n\n" +
	"Question: %s\n\nPaper Text:\n%s"

const translatePrompt = "Translate the following text to English. Be specific about the terms. " +
	"Return only the translated version of '%s'. " +
	"If the text is already in English or an acronym, return it as is."

// languageDirectives maps short language codes to the human-readable
// directive sent to the generator. Scripts are spelled out where a bare
// language name would be ambiguous.
var languageDirectives = map[string]string{
	"en": "English",
	"ru": "Russian (Cyrillic script)",
	"uz": "Uzbek (Latin script)",
	"de": "German",
	"es": "Spanish",
	"fr": "French",
	"it": "Italian",
	"kk": "Kazakh (Cyrillic script)",
	"pt": "Portuguese",
	"tr": "Turkish",
	"zh": "Chinese (Simplified)",
}

// LanguageDirective expands a language code into the generator
// directive. Unknown codes pass through unchanged.
func LanguageDirective(code string) string {
	if name, ok := languageDirectives[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return code
}

// Summarize generates a summary of text in the target language using
// the structural template selected by summaryType. The full extracted
// text is sent.
func Summarize(ctx context.Context, b Backend, text, language string, summaryType types.SummaryType) (string, error) {
	directive := LanguageDirective(language)

	var prompt string
	switch summaryType {
	case types.SummaryShort:
		prompt = fmt.Sprintf(shortPrompt, directive, text)
	case types.SummaryDetailed:
		prompt = fmt.Sprintf(detailedPrompt, directive, text)
	default:
		prompt = fmt.Sprintf(ordinaryPrompt, directive, text)
	}

	return b.Generate(ctx, prompt)
}

// Answer generates an answer to question about text in the target
// language. The paper text is truncated to the configured character
// budget to bound cost and latency.
func Answer(ctx context.Context, b Backend, cfg types.GeneratorConfig, text, question, language string) (string, error) {
	limit := cfg.QuestionContextChars
	if limit <= 0 {
		limit = defaultQuestionContextChars
	}
	if len(text) > limit {
		cut := limit
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}

	prompt := fmt.Sprintf(questionPrompt, LanguageDirective(language), question, text)
	return b.Generate(ctx, prompt)
}

// TranslateQuery renders a search query into English for the upstream
// index. Queries already in English come back unchanged by contract of
// the prompt, not by local detection.
func TranslateQuery(ctx context.Context, b Backend, query string) (string, error) {
	out, err := b.Generate(ctx, fmt.Sprintf(translatePrompt, query))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// FailureText renders a generation error as the user-visible string the
// pipeline caches in place of generated content.
func FailureText(err error) string {
	if errors.Is(err, ErrUnavailable) {
		return "Error: could not connect to the generation API. Check the API key."
	}
	return fmt.Sprintf("Error generating text: %v", err)
}
