package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"roadmap-agent/internal/integrations/openai"
	"roadmap-agent/internal/roadmap"
)

// staticGetter serves the OpenAI token from the environment in the JSON
// shape the client otherwise reads from Parameter Store.
type staticGetter struct {
	token string
}

func (g *staticGetter) GetParameter(_ context.Context, _ string) (string, error) {
	if strings.TrimSpace(g.token) == "" {
		return "", errors.New("OPENAI_API_KEY is not set")
	}
	payload, err := json.Marshal(map[string]string{"token": g.token})
	if err != nil {
		return "", err
	}
	return string(payload), nil
}

// stringList collects a repeatable flag value in the order given.
type stringList []string

func (l *stringList) String() string { return strings.Join(*l, ", ") }

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

func main() {
	_ = godotenv.Load()

	var contextLines stringList
	message := flag.String("message", "", "message to classify")
	create := flag.Bool("create", false, "generate a roadmap even when classification says no")
	model := flag.String("model", "gpt-4o-mini", "completion model")
	baseURL := flag.String("base-url", "", "override the completions base URL")
	flag.Var(&contextLines, "context", "prior conversation line, repeatable, most recent first")
	flag.Parse()

	if strings.TrimSpace(*message) == "" {
		slog.Error("-message is required")
		flag.Usage()
		os.Exit(2)
	}

	opts := []openai.Option{}
	if *baseURL != "" {
		opts = append(opts, openai.WithBaseURL(*baseURL))
	}
	client, err := openai.NewClient(&staticGetter{token: os.Getenv("OPENAI_API_KEY")}, "/roadmap-agent", opts...)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	svc, err := roadmap.NewService(client, *model, roadmap.DefaultConfig())
	if err != nil {
		slog.Error("failed to create roadmap service", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	judgment, err := svc.Classify(ctx, *message, contextLines)
	if err != nil {
		slog.Error("classification failed", "err", err)
		os.Exit(1)
	}
	fmt.Printf("is_roadmap: %t\nreason:     %s\n", judgment.IsRoadmap, judgment.Reason)

	if !judgment.IsRoadmap && !*create {
		return
	}

	result, err := svc.Generate(ctx, *message, contextLines)
	if err != nil {
		slog.Error("generation failed", "err", err)
		os.Exit(1)
	}
	fmt.Println()
	fmt.Println(result.Content)
}
