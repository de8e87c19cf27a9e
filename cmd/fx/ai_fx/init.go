package ai_fx

import (
	"context"
	"os"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"careerkit/pkg/utils"
)

var Module = fx.Provide(
	provideGenerationClient,
	provideEmbeddingClient,
)

// provideGenerationClient picks the text-generation backend. OpenAI is the
// default; AI_PROVIDER=gemini switches to Google's models. Embeddings always
// come from OpenAI since the listing schema is fixed at 1536 dimensions.
func provideGenerationClient(logger *zap.Logger) utils.GenerationClient {
	if os.Getenv("AI_PROVIDER") == "gemini" {
		client, err := utils.NewGeminiClient(context.Background(), os.Getenv("GEMINI_API_KEY"), os.Getenv("GEMINI_MODEL"))
		if err == nil {
			return client
		}
		logger.Error("failed to initialize gemini client, falling back to openai", zap.Error(err))
	}
	return utils.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
}

func provideEmbeddingClient() utils.EmbeddingClient {
	return utils.NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), os.Getenv("OPENAI_MODEL"))
}
