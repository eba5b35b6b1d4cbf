package roadmap

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"roadmap-agent/internal/domain"
)

// Completer submits an ordered message sequence to a chat-completion service
// and returns its candidate replies in order. Implementations must be safe
// for concurrent use.
type Completer interface {
	Complete(ctx context.Context, model string, messages []domain.ChatMessage) ([]domain.CompletionChoice, error)
}

// IntentJudgment is the classifier's verdict on one message.
type IntentJudgment struct {
	Reason    string `json:"reason"`
	IsRoadmap bool   `json:"is_roadmap"`
}

// Roadmap is the generated artifact, taken verbatim from the service reply.
type Roadmap struct {
	Content string `json:"roadmap"`
}

// Service classifies roadmap requests and generates roadmaps. Every field is
// read-only after construction, so concurrent calls need no coordination;
// each call suspends only on the upstream request and honors ctx
// cancellation through it.
type Service struct {
	completer Completer
	model     string
	cfg       Config
}

func NewService(completer Completer, model string, cfg Config) (*Service, error) {
	if completer == nil {
		return nil, errors.New("roadmap: completer must not be nil")
	}
	if strings.TrimSpace(model) == "" {
		return nil, errors.New("roadmap: model must not be empty")
	}
	if cfg.ContextLength < 0 || cfg.MessageLimitChars < 0 {
		return nil, errors.New("roadmap: window bounds must not be negative")
	}
	return &Service{completer: completer, model: model, cfg: cfg}, nil
}

// Classify asks the completion service whether message requests a roadmap.
// Context entries are prior conversation strings, most recent first.
func (s *Service) Classify(ctx context.Context, message string, context []string) (IntentJudgment, error) {
	reply, err := s.complete(ctx, s.buildMessages(message, context, detectionMessage()))
	if err != nil {
		return IntentJudgment{}, err
	}
	judgment, err := parseJudgment(reply)
	if err != nil {
		return IntentJudgment{}, newError(ErrorMalformed, "judgment_parse_failed", err)
	}
	return judgment, nil
}

// Generate asks the completion service for a roadmap answering message. The
// reply text is returned verbatim, without trimming or parsing.
func (s *Service) Generate(ctx context.Context, message string, context []string) (Roadmap, error) {
	reply, err := s.complete(ctx, s.buildMessages(message, context, creationMessage()))
	if err != nil {
		return Roadmap{}, err
	}
	return Roadmap{Content: reply}, nil
}

// complete submits the message set and extracts the first choice's text.
func (s *Service) complete(ctx context.Context, messages []domain.ChatMessage) (string, error) {
	choices, err := s.completer.Complete(ctx, s.model, messages)
	if err != nil {
		return "", newError(ErrorUpstream, "completion_failed", err)
	}
	if len(choices) == 0 {
		return "", newError(ErrorEmptyReply, "no_choices", nil)
	}
	if choices[0].Content == nil {
		return "", newError(ErrorEmptyReply, "no_content", nil)
	}
	return *choices[0].Content, nil
}

// parseJudgment decodes a detection reply. The reply must be a single JSON
// object carrying both required fields; extra fields are tolerated.
func parseJudgment(raw string) (IntentJudgment, error) {
	var probe struct {
		Reason    *string `json:"reason"`
		IsRoadmap *bool   `json:"is_roadmap"`
	}
	dec := json.NewDecoder(bytes.NewBufferString(strings.TrimSpace(raw)))
	if err := dec.Decode(&probe); err != nil {
		return IntentJudgment{}, fmt.Errorf("roadmap: decode judgment: %w", err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return IntentJudgment{}, errors.New("roadmap: decode judgment: multiple JSON values")
		}
		return IntentJudgment{}, fmt.Errorf("roadmap: decode judgment trailing data: %w", err)
	}
	if probe.Reason == nil {
		return IntentJudgment{}, errors.New("roadmap: judgment missing reason")
	}
	if probe.IsRoadmap == nil {
		return IntentJudgment{}, errors.New("roadmap: judgment missing is_roadmap")
	}
	return IntentJudgment{Reason: *probe.Reason, IsRoadmap: *probe.IsRoadmap}, nil
}
