package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"roadmap-agent/handler"
	"roadmap-agent/internal/integrations/openai"
	"roadmap-agent/internal/integrations/paramstore"
	"roadmap-agent/internal/repository"
	"roadmap-agent/internal/roadmap"
	"roadmap-agent/internal/usecase"
)

func main() {
	ctx := context.Background()

	// ---- Configuration (read only here) ----
	stateTable := mustEnv("STATE_TABLE")
	paramPrefix := mustEnv("PARAM_PREFIX")
	model := envStr("OPENAI_MODEL", "gpt-4o-mini")
	contextLength := envInt("CONTEXT_LENGTH", roadmap.DefaultConfig().ContextLength)
	messageLimitChars := envInt("MESSAGE_LIMIT_CHARS", roadmap.DefaultConfig().MessageLimitChars)
	maxContextItems := envInt("MAX_CONTEXT_ITEMS", 20)
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", 300)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmStore, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM store", "err", err)
		os.Exit(1)
	}
	dynamoClient := awsdynamodb.NewFromConfig(cfg)
	stateClient, err := repository.New(dynamoClient, stateTable)
	if err != nil {
		slog.Error("failed to create state client", "err", err)
		os.Exit(1)
	}

	openaiClient, err := openai.NewClient(ssmStore, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	roadmapService, err := roadmap.NewService(openaiClient, model, roadmap.Config{
		ContextLength:     contextLength,
		MessageLimitChars: messageLimitChars,
	})
	if err != nil {
		slog.Error("failed to create roadmap service", "err", err)
		os.Exit(1)
	}

	requestService, err := usecase.NewRoadmapService(roadmapService, openaiClient, stateClient, maxContextItems, maxMessageLen)
	if err != nil {
		slog.Error("failed to create request service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(requestService)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envStr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
