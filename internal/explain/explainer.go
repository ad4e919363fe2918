package explain

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	oai "github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/juparave/workbench/internal/config"
	"github.com/juparave/workbench/internal/diff"
	"github.com/juparave/workbench/internal/domain"
	"github.com/openai/openai-go/option"
)

// ErrNothingToExplain is returned when the request carries no change
var ErrNothingToExplain = errors.New("line has no recorded change to explain")

// Request describes one annotated line and the commit that last changed it
type Request struct {
	Path     string
	Line     int // 1-based
	Revision domain.FileRevision
	Message  string
	Details  *diff.Details
	Changes  *domain.ChangeList // Optional, adds the files changed alongside
}

// Explainer asks an LLM why a line changed
type Explainer struct {
	config  config.ExplainConfig
	logger  *log.Logger
	genkit  *genkit.Genkit
	modelID string
}

// NewExplainer creates a new Explainer
func NewExplainer(ctx context.Context, cfg config.ExplainConfig, logger *log.Logger) (*Explainer, error) {
	var g *genkit.Genkit
	var modelID string

	switch cfg.Provider {
	case "openai":
		// OpenAI-compatible API (Zhipu AI, etc.)
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("ZHIPU_API_KEY")
			if apiKey == "" {
				apiKey = os.Getenv("OPENAI_API_KEY")
			}
		}

		var opts []option.RequestOption
		if cfg.BaseURL != "" {
			opts = append(opts, option.WithBaseURL(cfg.BaseURL))
		}

		modelID = qualifiedModel("openai", cfg.Model, "gpt-4o-mini")
		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&oai.OpenAI{
				APIKey: apiKey,
				Opts:   opts,
			}),
		)

	case "googleai", "":
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				apiKey = os.Getenv("GOOGLE_API_KEY")
			}
		}

		modelID = qualifiedModel("googleai", cfg.Model, "gemini-2.0-flash")
		g = genkit.Init(ctx,
			genkit.WithDefaultModel(modelID),
			genkit.WithPlugins(&googlegenai.GoogleAI{
				APIKey: apiKey,
			}),
		)

	default:
		return nil, fmt.Errorf("unsupported explain provider: %s", cfg.Provider)
	}

	return &Explainer{
		config:  cfg,
		logger:  logger,
		genkit:  g,
		modelID: modelID,
	}, nil
}

// qualifiedModel prefixes model with the genkit provider namespace
func qualifiedModel(provider, model, fallback string) string {
	if model == "" {
		model = fallback
	}
	if !strings.Contains(model, "/") {
		model = provider + "/" + model
	}
	return model
}

// Explain returns a short plain-text explanation of the line's last change
func (e *Explainer) Explain(ctx context.Context, req Request) (string, error) {
	if req.Revision.Hash == "" || domain.IsUncommitted(req.Revision.Hash) {
		return "", ErrNothingToExplain
	}

	prompt := BuildPrompt(req)
	e.logger.Printf("Asking %s about %s:%d at %s", e.modelID, req.Path, req.Line, req.Revision.ShortHash())

	answer, err := genkit.GenerateText(ctx, e.genkit,
		ai.WithModelName(e.modelID),
		ai.WithPrompt(prompt),
	)
	if err != nil {
		return "", fmt.Errorf("generating explanation: %w", err)
	}

	return cleanResponse(answer), nil
}

// cleanResponse strips a surrounding markdown code fence
func cleanResponse(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if nl := strings.IndexByte(text, '\n'); nl != -1 {
			text = text[nl+1:] // drop the language tag
		}
		if idx := strings.LastIndex(text, "```"); idx != -1 {
			text = text[:idx]
		}
	}
	return strings.TrimSpace(text)
}
