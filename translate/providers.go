package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/minios-linux/draftkit/langmeta"
)

// ---------------------------------------------------------------------------
// Provider IDs
// ---------------------------------------------------------------------------

const (
	ProviderGoogleTranslate = "google-translate"
	ProviderGoogle          = "google"
	ProviderGroq            = "groq"
	ProviderOllama          = "ollama"
	ProviderCustomOpenAI    = "custom-openai"
)

// DefaultProvider is used when nothing is configured. It needs no API key.
const DefaultProvider = ProviderGoogleTranslate

// ---------------------------------------------------------------------------
// Provider configuration
// ---------------------------------------------------------------------------

// Provider holds the configuration for a translation service.
type Provider struct {
	// ID is the provider identifier (google-translate, google, groq, etc.).
	ID string
	// Name is the display name.
	Name string
	// BaseURL is the API base URL.
	BaseURL string
	// APIKey is the authentication key (empty for keyless services).
	APIKey string
	// Model is the model identifier (AI providers only).
	Model string
	// Proxy is an optional HTTP/HTTPS proxy URL.
	Proxy string
	// Timeout is the request timeout.
	Timeout time.Duration
}

// DefaultProviders returns the pre-configured provider definitions.
func DefaultProviders() map[string]Provider {
	return map[string]Provider{
		ProviderGoogleTranslate: {
			ID:      ProviderGoogleTranslate,
			Name:    "Google Translate",
			BaseURL: "https://translate.googleapis.com",
			Timeout: 30 * time.Second,
		},
		ProviderGoogle: {
			ID:      ProviderGoogle,
			Name:    "Google AI (Gemini)",
			BaseURL: "https://generativelanguage.googleapis.com",
			Model:   "gemini-2.0-flash",
			Timeout: 120 * time.Second,
		},
		ProviderGroq: {
			ID:      ProviderGroq,
			Name:    "Groq",
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.3-70b-versatile",
			Timeout: 60 * time.Second,
		},
		ProviderOllama: {
			ID:      ProviderOllama,
			Name:    "Ollama",
			BaseURL: "http://localhost:11434/v1",
			Model:   "llama3.1",
			Timeout: 120 * time.Second,
		},
		ProviderCustomOpenAI: {
			ID:      ProviderCustomOpenAI,
			Name:    "Custom OpenAI",
			Timeout: 60 * time.Second,
		},
	}
}

// ProviderIDs returns the known provider IDs, sorted.
func ProviderIDs() []string {
	ids := make([]string, 0, len(DefaultProviders()))
	for id := range DefaultProviders() {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// NewBackend builds the backend for prov.
func NewBackend(prov Provider) (Backend, error) {
	if prov.Timeout <= 0 {
		prov.Timeout = 60 * time.Second
	}
	client := makeHTTPClient(prov.Proxy, prov.Timeout)

	switch prov.ID {
	case ProviderGoogleTranslate:
		return &GoogleBackend{BaseURL: prov.BaseURL, Client: client}, nil
	case ProviderGoogle:
		if prov.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", prov.ID)
		}
		return &LLMBackend{Provider: prov, Format: FormatGeminiNative, Client: client}, nil
	case ProviderGroq, ProviderCustomOpenAI, ProviderOllama:
		if prov.BaseURL == "" {
			return nil, fmt.Errorf("provider %s requires a base URL", prov.ID)
		}
		if prov.Model == "" {
			return nil, fmt.Errorf("provider %s requires a model", prov.ID)
		}
		if prov.ID == ProviderGroq && prov.APIKey == "" {
			return nil, fmt.Errorf("provider %s requires an API key", prov.ID)
		}
		return &LLMBackend{Provider: prov, Format: FormatOpenAIChat, Client: client}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (known: %s)", prov.ID, strings.Join(ProviderIDs(), ", "))
	}
}

// ---------------------------------------------------------------------------
// HTTP client with real proxy support
// ---------------------------------------------------------------------------

func makeHTTPClient(proxyURL string, timeout time.Duration) *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Support both --proxy and HTTP_PROXY/HTTPS_PROXY env vars
	if proxyURL != "" {
		parsed, err := url.Parse(proxyURL)
		if err == nil {
			transport.Proxy = http.ProxyURL(parsed)
		}
	} else {
		transport.Proxy = http.ProxyFromEnvironment
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// doRequest sends req once and returns the body of a 200 response.
func doRequest(client *http.Client, req *http.Request) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(body), 500))
	}
	return body, nil
}

// ---------------------------------------------------------------------------
// Google Translate (translate_a/single, client=gtx)
// ---------------------------------------------------------------------------

// GoogleBackend calls the keyless Google Translate web endpoint.
type GoogleBackend struct {
	BaseURL string
	Client  *http.Client
}

// Translate implements Backend.
func (g *GoogleBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", langmeta.Base(source))
	q.Set("tl", langmeta.Base(target))
	q.Set("dt", "t")
	q.Set("q", text)
	endpoint := strings.TrimRight(g.BaseURL, "/") + "/translate_a/single?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	body, err := doRequest(g.Client, req)
	if err != nil {
		return "", err
	}
	return parseGoogleResponse(body)
}

// parseGoogleResponse joins the translated segments of a gtx response:
// [[["Hello.","안녕하세요.",null,null,10],["This is a test.","이것은 테스트입니다.",...]],null,"ko"]
func parseGoogleResponse(body []byte) (string, error) {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}
	if len(raw) == 0 {
		return "", fmt.Errorf("empty response")
	}
	segments, ok := raw[0].([]any)
	if !ok {
		return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
	}

	var b strings.Builder
	for _, s := range segments {
		seg, ok := s.([]any)
		if !ok || len(seg) == 0 {
			continue
		}
		if part, ok := seg[0].(string); ok {
			b.WriteString(part)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
	}
	return b.String(), nil
}

// ---------------------------------------------------------------------------
// AI providers
// ---------------------------------------------------------------------------

// APIFormat selects the request/response shape of an AI provider.
type APIFormat int

const (
	FormatOpenAIChat   APIFormat = iota // OpenAI chat/completions
	FormatGeminiNative                  // Google Gemini generateContent
)

// SystemPrompt instructs AI providers to behave like a translation API.
const SystemPrompt = `You are a professional translator. Translate the user's message from {{sourceLang}} to {{targetLang}}.

Rules:
- Reply with the translation only: no quotes, notes, or explanations.
- Keep Markdown links of the form [path](path) exactly as written.
- Keep code, file names, and identifiers unchanged.
- If the text is already in {{targetLang}}, return it unchanged.`

// LLMBackend translates through a chat-style AI API.
type LLMBackend struct {
	Provider Provider
	Format   APIFormat
	Client   *http.Client
}

// Translate implements Backend.
func (l *LLMBackend) Translate(ctx context.Context, text, source, target string) (string, error) {
	systemPrompt := strings.NewReplacer(
		"{{sourceLang}}", langmeta.Name(source),
		"{{targetLang}}", langmeta.Name(target),
	).Replace(SystemPrompt)

	endpoint, headers, body, err := buildHTTPRequest(l.Provider, systemPrompt, text, l.Format)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	respBody, err := doRequest(l.Client, req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", l.Provider.Name, err)
	}
	out, err := extractResponseText(respBody)
	if err != nil {
		return "", err
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%s returned an empty translation", l.Provider.Name)
	}
	return out, nil
}

func buildOpenAIChatRequest(model, systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type msg struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	req := struct {
		Model       string  `json:"model"`
		Messages    []msg   `json:"messages"`
		Temperature float64 `json:"temperature"`
		Stream      bool    `json:"stream"`
	}{
		Model: model,
		Messages: []msg{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: temperature,
	}
	return json.Marshal(req)
}

func buildGeminiRequest(systemPrompt, userPrompt string, temperature float64) ([]byte, error) {
	type part struct {
		Text string `json:"text"`
	}
	type content struct {
		Role  string `json:"role,omitempty"`
		Parts []part `json:"parts"`
	}
	type genConfig struct {
		Temperature float64 `json:"temperature"`
	}
	req := struct {
		Contents          []content `json:"contents"`
		GenerationConfig  genConfig `json:"generationConfig"`
		SystemInstruction *content  `json:"systemInstruction,omitempty"`
	}{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: userPrompt}}},
		},
		GenerationConfig: genConfig{Temperature: temperature},
	}
	if systemPrompt != "" {
		req.SystemInstruction = &content{Parts: []part{{Text: systemPrompt}}}
	}
	return json.Marshal(req)
}

// buildHTTPRequest constructs the endpoint, headers, and body for an AI provider.
func buildHTTPRequest(prov Provider, systemPrompt, userPrompt string, format APIFormat) (string, map[string]string, []byte, error) {
	headers := map[string]string{
		"Content-Type": "application/json",
	}

	var endpoint string
	var body []byte
	var err error

	switch format {
	case FormatGeminiNative:
		// Google AI: POST /v1beta/models/{model}:generateContent
		endpoint = fmt.Sprintf("%s/v1beta/models/%s:generateContent",
			strings.TrimRight(prov.BaseURL, "/"), prov.Model)
		if prov.APIKey != "" {
			headers["x-goog-api-key"] = prov.APIKey
		}
		body, err = buildGeminiRequest(systemPrompt, userPrompt, 0.2)

	default: // FormatOpenAIChat
		baseURL := strings.TrimRight(prov.BaseURL, "/")
		if !strings.HasSuffix(baseURL, "/chat/completions") {
			endpoint = baseURL + "/chat/completions"
		} else {
			endpoint = baseURL
		}
		if prov.APIKey != "" {
			headers["Authorization"] = "Bearer " + prov.APIKey
		}
		body, err = buildOpenAIChatRequest(prov.Model, systemPrompt, userPrompt, 0.2)
	}

	if err != nil {
		return "", nil, nil, err
	}
	return endpoint, headers, body, nil
}

// extractResponseText tries the known response formats and returns the text.
func extractResponseText(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("invalid JSON response: %w", err)
	}

	// Check for API error
	if errObj, ok := raw["error"]; ok {
		if errMap, ok := errObj.(map[string]any); ok {
			if msg, ok := errMap["message"].(string); ok {
				return "", fmt.Errorf("API error: %s", msg)
			}
		}
		return "", fmt.Errorf("API error: %v", errObj)
	}

	// 1. OpenAI chat format: choices[0].message.content
	if choices, ok := raw["choices"].([]any); ok && len(choices) > 0 {
		if choice, ok := choices[0].(map[string]any); ok {
			if message, ok := choice["message"].(map[string]any); ok {
				if content, ok := message["content"].(string); ok {
					return content, nil
				}
			}
		}
	}

	// 2. Gemini format: candidates[0].content.parts[0].text
	if candidates, ok := raw["candidates"].([]any); ok && len(candidates) > 0 {
		if candidate, ok := candidates[0].(map[string]any); ok {
			if content, ok := candidate["content"].(map[string]any); ok {
				if parts, ok := content["parts"].([]any); ok && len(parts) > 0 {
					if part, ok := parts[0].(map[string]any); ok {
						if text, ok := part["text"].(string); ok {
							return text, nil
						}
					}
				}
			}
		}
	}

	// 3. Simple response field (Ollama native)
	if resp, ok := raw["response"].(string); ok {
		return resp, nil
	}

	return "", fmt.Errorf("could not extract text from response: %s", truncate(string(body), 500))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
