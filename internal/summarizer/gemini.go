package summarizer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com"

// maxAbstractRunes caps the abstract portion of the prompt. This is a
// cost/latency guard against pathologically long abstracts, not a
// correctness rule.
const maxAbstractRunes = 7000

// GeminiSummarizer obtains the title-plus-bullets summary from the Gemini
// generateContent API, one request per article.
type GeminiSummarizer struct {
	client      *http.Client
	baseURL     string
	model       string
	apiKey      string
	temperature float64
	sanitize    bool
}

var _ Summarizer = (*GeminiSummarizer)(nil)

func NewGeminiSummarizer(apiKey, model string, temperature float64, sanitizeFacts bool) *GeminiSummarizer {
	return &GeminiSummarizer{
		client:      &http.Client{Timeout: 120 * time.Second},
		baseURL:     defaultBaseURL,
		model:       model,
		apiKey:      apiKey,
		temperature: temperature,
		sanitize:    sanitizeFacts,
	}
}

const summarizePrompt = `あなたは医学論文の要約編集者です。
臨床医向けに、英語タイトルとアブストラクトから、以下を**日本語**で出力してください。
1) "title_ja": タイトルの自然な邦題（30〜45字・1行・名詞止め・冗長な副題は圧縮）
2) "bullets": 重要ポイント**4点**（各60〜120字・事実ベース・過度な推測禁止・記号不要）
専門略語や単位（OS, PFS, HR, CI, Gy など）は原文のまま残し、それ以外の一般語は日本語に翻訳してください。

**出力はJSONのみ**。フォーマットは正確に次の通り：
{
  "title_ja": "ここに邦題",
  "bullets": ["ポイント1", "ポイント2", "ポイント3", "ポイント4"]
}

英語タイトル:
%s

アブストラクト:
%s
`

const translateTitlePrompt = `あなたは医学論文の翻訳者です。
次の英語タイトルの自然な邦題（30〜45字・1行・名詞止め）だけを出力してください。引用符や説明は不要です。

英語タイトル:
%s
`

// summaryJSON is the object the model is instructed to return.
type summaryJSON struct {
	TitleJA string   `json:"title_ja"`
	Bullets []string `json:"bullets"`
}

// Summarize asks the model for the translated title and four bullets, then
// enforces the output contract on whatever came back. A transport failure
// is returned as an error; every malformed-reply case degrades to
// placeholder content instead.
func (s *GeminiSummarizer) Summarize(ctx context.Context, title, abstract string) (Summary, error) {
	abstract = strings.TrimSpace(abstract)
	if r := []rune(abstract); len(r) > maxAbstractRunes {
		abstract = string(r[:maxAbstractRunes])
	}

	text, err := s.generate(ctx, fmt.Sprintf(summarizePrompt, title, abstract))
	if err != nil {
		return Summary{}, err
	}

	var data summaryJSON
	decodeObject(text, &data)

	bullets := FormatBullets(data.Bullets)
	if s.sanitize {
		bullets = SanitizeBullets(bullets, abstract)
	}

	titleJA := CleanTitle(data.TitleJA)
	if titleJA == "" {
		titleJA, err = s.TranslateTitle(ctx, title)
		if err != nil {
			log.Printf("summarizer: title-only translation failed: %v", err)
			titleJA = ""
		}
		if titleJA == "" {
			titleJA = TitleFallback
		}
	}

	return Summary{TitleJA: titleJA, Bullets: bullets}, nil
}

// TranslateTitle returns the cleaned Japanese title for a bare English
// title, or an empty string when the model reply was unusable.
func (s *GeminiSummarizer) TranslateTitle(ctx context.Context, title string) (string, error) {
	text, err := s.generate(ctx, fmt.Sprintf(translateTitlePrompt, title))
	if err != nil {
		return "", err
	}
	if line, _, found := strings.Cut(strings.TrimSpace(text), "\n"); found {
		text = line
	}
	return CleanTitle(text), nil
}

// decodeObject locates the outermost JSON object in free text (the model
// tends to wrap it in prose or fences) and decodes it into v. Anything
// unusable leaves v untouched.
func decodeObject(text string, v any) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return
	}
	raw := text[start : end+1]
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		log.Printf("summarizer: model reply is not valid JSON: %v", err)
	}
}

// Gemini generateContent request/response types

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenConfig struct {
	Temperature float64 `json:"temperature"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *geminiError `json:"error,omitempty"`
}

type geminiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (s *GeminiSummarizer) generate(ctx context.Context, prompt string) (string, error) {
	reqBody := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: prompt}}},
		},
		GenerationConfig: geminiGenConfig{Temperature: s.temperature},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to marshal request: %w", err)
	}

	reqURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(jsonData))
	if err != nil {
		return "", fmt.Errorf("gemini: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini: failed to read response: %w", err)
	}

	var apiResp geminiResponse
	if err := json.Unmarshal(respBody, &apiResp); err != nil {
		return "", fmt.Errorf("gemini: failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("gemini: API error %d: %s", apiResp.Error.Code, apiResp.Error.Message)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}

	var parts []string
	for _, c := range apiResp.Candidates {
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("gemini: empty response")
	}
	return strings.Join(parts, "\n"), nil
}
