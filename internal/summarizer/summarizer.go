package summarizer

import "context"

// Summary is the per-article result of the summarization step: a Japanese
// title and exactly four fact-only bullet points.
type Summary struct {
	TitleJA string
	Bullets []string
}

// Summarizer produces a structured Japanese summary for one article.
type Summarizer interface {
	// Summarize returns the translated title and four bullets for a
	// (title, abstract) pair. Malformed model output is repaired locally;
	// only a transport failure is an error.
	Summarize(ctx context.Context, title, abstract string) (Summary, error)

	// TranslateTitle is the title-only path for articles without an
	// abstract, and the fallback when Summarize yields no usable title.
	TranslateTitle(ctx context.Context, title string) (string, error)
}
