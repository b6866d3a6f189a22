package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/timmy/tubevault/internal/config"
	"github.com/timmy/tubevault/internal/domain"
)

const (
	jinaEndpoint = "https://api.jina.ai/v1/embeddings"
)

// EmbeddingProvider turns text into fixed-size vectors. Transcripts and
// search queries must go through the same provider.
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedQuery(ctx context.Context, query string) ([]float32, error)
	GetModel() string
	Dimensions() int
}

// NewEmbeddingProvider builds the provider selected by cfg.Provider.
func NewEmbeddingProvider(cfg *config.EmbeddingConfig) (EmbeddingProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}

	switch cfg.Provider {
	case config.ProviderTEI:
		return &teiEmbedder{client: newEmbeddingClient(cfg.BaseURL, cfg.APIKey, timeout), model: cfg.Model, dimensions: cfg.Dimensions}, nil
	case config.ProviderOllama:
		return &ollamaEmbedder{client: newEmbeddingClient(cfg.BaseURL, "", timeout), model: cfg.Model, dimensions: cfg.Dimensions}, nil
	case config.ProviderJina:
		endpoint := jinaEndpoint
		if cfg.BaseURL != "" {
			endpoint = strings.TrimRight(cfg.BaseURL, "/") + "/embeddings"
		}
		return &jinaEmbedder{client: newEmbeddingClient("", cfg.APIKey, timeout), endpoint: endpoint, model: cfg.Model, dimensions: cfg.Dimensions}, nil
	case config.ProviderOpenAICompatible:
		opts := []option.RequestOption{
			option.WithAPIKey(cfg.APIKey),
			option.WithRequestTimeout(timeout),
			option.WithMaxRetries(0),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}
		client := openai.NewClient(opts...)
		return &openAIEmbedder{client: &client, model: cfg.Model, dimensions: cfg.Dimensions}, nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider %q", cfg.Provider)
	}
}

func newEmbeddingClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")
	if baseURL != "" {
		client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	}
	if apiKey != "" {
		client.SetAuthToken(apiKey)
	}
	return client
}

// checkVector rejects vectors the index cannot store.
func checkVector(vec []float32, dimensions int) ([]float32, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrUpstream)
	}
	if len(vec) != dimensions {
		return nil, fmt.Errorf("%w: embedding has %d dimensions, expected %d", domain.ErrUpstream, len(vec), dimensions)
	}
	return vec, nil
}

// teiEmbedder calls a HuggingFace text-embeddings-inference server.
type teiEmbedder struct {
	client     *resty.Client
	model      string
	dimensions int
}

type teiRequest struct {
	Inputs    []string `json:"inputs"`
	Truncate  bool     `json:"truncate"`
	Normalize bool     `json:"normalize"`
}

func (e *teiEmbedder) GetModel() string { return e.model }
func (e *teiEmbedder) Dimensions() int  { return e.dimensions }

func (e *teiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out [][]float32
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(teiRequest{Inputs: []string{text}, Truncate: true, Normalize: true}).
		SetResult(&out).
		Post("/embed")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call embedding server: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: embedding server error: status %d: %s", domain.ErrUpstream, resp.StatusCode(), resp.String())
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrUpstream)
	}
	return checkVector(out[0], e.dimensions)
}

// EmbedQuery is symmetric for sentence-transformers models.
func (e *teiEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.Embed(ctx, query)
}

// ollamaEmbedder calls a local Ollama server.
type ollamaEmbedder struct {
	client     *resty.Client
	model      string
	dimensions int
}

type ollamaRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type ollamaResponse struct {
	Embeddings [][]float32 `json:"embeddings"`
	Error      string      `json:"error,omitempty"`
}

func (e *ollamaEmbedder) GetModel() string { return e.model }
func (e *ollamaEmbedder) Dimensions() int  { return e.dimensions }

func (e *ollamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	var out ollamaResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(ollamaRequest{Model: e.model, Input: []string{text}}).
		SetResult(&out).
		SetError(&out).
		Post("/api/embed")
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call Ollama: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: Ollama error: status %d: %s", domain.ErrUpstream, resp.StatusCode(), out.Error)
	}
	if len(out.Embeddings) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrUpstream)
	}
	return checkVector(out.Embeddings[0], e.dimensions)
}

func (e *ollamaEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.Embed(ctx, query)
}

// jinaEmbedder calls the Jina embeddings API, which distinguishes passage
// and query tasks.
type jinaEmbedder struct {
	client     *resty.Client
	endpoint   string
	model      string
	dimensions int
}

type jinaRequest struct {
	Model         string   `json:"model"`
	Task          string   `json:"task,omitempty"`
	Dimensions    int      `json:"dimensions,omitempty"`
	Input         []string `json:"input"`
	EmbeddingType string   `json:"embedding_type,omitempty"`
}

type jinaResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
	Detail string `json:"detail,omitempty"`
}

func (e *jinaEmbedder) GetModel() string { return e.model }
func (e *jinaEmbedder) Dimensions() int  { return e.dimensions }

func (e *jinaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.embed(ctx, text, "retrieval.passage")
}

func (e *jinaEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.embed(ctx, query, "retrieval.query")
}

func (e *jinaEmbedder) embed(ctx context.Context, text, task string) ([]float32, error) {
	req := jinaRequest{
		Model:         e.model,
		Task:          task,
		Dimensions:    e.dimensions,
		Input:         []string{text},
		EmbeddingType: "float",
	}

	var out jinaResponse
	resp, err := e.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(e.endpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to call Jina API: %v", domain.ErrUpstream, err)
	}
	if resp.StatusCode() != http.StatusOK {
		if out.Detail != "" {
			return nil, fmt.Errorf("%w: Jina API error: %s", domain.ErrUpstream, out.Detail)
		}
		return nil, fmt.Errorf("%w: Jina API error: status %d", domain.ErrUpstream, resp.StatusCode())
	}
	if len(out.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrUpstream)
	}
	return checkVector(out.Data[0].Embedding, e.dimensions)
}

// openAIEmbedder calls any OpenAI-compatible /embeddings endpoint.
type openAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
}

func (e *openAIEmbedder) GetModel() string { return e.model }
func (e *openAIEmbedder) Dimensions() int  { return e.dimensions }

func (e *openAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(e.model),
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: []string{text},
		},
		Dimensions: openai.Int(int64(e.dimensions)),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embeddings request failed: %v", domain.ErrUpstream, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", domain.ErrUpstream)
	}

	vec := make([]float32, len(resp.Data[0].Embedding))
	for i, v := range resp.Data[0].Embedding {
		vec[i] = float32(v)
	}
	return checkVector(vec, e.dimensions)
}

func (e *openAIEmbedder) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	return e.Embed(ctx, query)
}
