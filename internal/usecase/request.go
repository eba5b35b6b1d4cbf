package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"roadmap-agent/internal/domain"
	"roadmap-agent/internal/roadmap"
)

const (
	defaultMaxContext = 20
	defaultMaxMessage = 300
	maxRoadmapTurns   = 10
)

// RoadmapClient classifies a message's intent and generates roadmaps.
// *roadmap.Service satisfies this interface.
type RoadmapClient interface {
	Classify(ctx context.Context, message string, context []string) (roadmap.IntentJudgment, error)
	Generate(ctx context.Context, message string, context []string) (roadmap.Roadmap, error)
}

type Moderator interface {
	Moderate(ctx context.Context, input string) (bool, error)
}

type StateReadWriter interface {
	GetRoadmapCount(ctx context.Context, conversationID string) (int, error)
	GetRecentMessages(ctx context.Context, conversationID string, limit int) ([]domain.Message, error)
	SaveRoadmapTurn(ctx context.Context, conversationID, message, roadmap string, turns int) error
	SaveNotedMessage(ctx context.Context, conversationID, message, reason string) error
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type RoadmapService struct {
	roadmaps        RoadmapClient
	moderator       Moderator
	state           StateReadWriter
	maxContextItems int
	maxMessageLen   int
}

type RequestInput struct {
	Message        string
	ConversationID string
}

// RequestOutput reports what happened to the message. Requested=false with a
// Reason is a successful outcome: the message was heard and noted, just not
// answered with a roadmap.
type RequestOutput struct {
	ConversationID string
	Requested      bool
	Reason         string
	Roadmap        string
}

func NewRoadmapService(rm RoadmapClient, mod Moderator, s StateReadWriter, maxContextItems, maxMessageLen int) (*RoadmapService, error) {
	if rm == nil {
		return nil, errors.New("usecase: roadmap client must not be nil")
	}
	if mod == nil {
		return nil, errors.New("usecase: moderator must not be nil")
	}
	if s == nil {
		return nil, errors.New("usecase: state store must not be nil")
	}
	if maxContextItems <= 0 {
		maxContextItems = defaultMaxContext
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessage
	}
	return &RoadmapService{
		roadmaps:        rm,
		moderator:       mod,
		state:           s,
		maxContextItems: maxContextItems,
		maxMessageLen:   maxMessageLen,
	}, nil
}

func (s *RoadmapService) Request(ctx context.Context, in RequestInput) (RequestOutput, error) {
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return RequestOutput{}, newError(ErrorInvalidInput, "empty_message", nil)
	}
	if len(message) > s.maxMessageLen {
		return RequestOutput{}, newError(ErrorInvalidInput, "message_too_long", nil)
	}
	convID := strings.TrimSpace(in.ConversationID)
	if convID == "" {
		convID = newUUID()
	}

	existingTurns := 0
	if strings.TrimSpace(in.ConversationID) != "" {
		turnCount, err := s.state.GetRoadmapCount(ctx, convID)
		if err != nil {
			return RequestOutput{}, newError(ErrorInternal, "dynamodb_turn_count_error", err)
		}
		existingTurns = turnCount
		if existingTurns >= maxRoadmapTurns {
			return RequestOutput{}, newError(ErrorInvalidInput, "conversation_turn_limit", nil)
		}
	}

	flagged, err := s.moderator.Moderate(ctx, message)
	if err != nil {
		if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
			return RequestOutput{}, newError(ErrorRateLimited, "moderation_rate_limited", err)
		}
		return RequestOutput{}, newError(ErrorUpstream, "moderation_error", err)
	}
	if flagged {
		return RequestOutput{}, newError(ErrorInvalidQuestion, "moderation_flagged", nil)
	}

	recent, err := s.state.GetRecentMessages(ctx, convID, s.maxContextItems)
	if err != nil {
		return RequestOutput{}, newError(ErrorInternal, "dynamodb_history_error", err)
	}
	contextEntries := contextTexts(recent)

	judgment, err := s.roadmaps.Classify(ctx, message, contextEntries)
	if err != nil {
		return RequestOutput{}, translateRoadmapError(err)
	}

	if !judgment.IsRoadmap {
		if err := s.state.SaveNotedMessage(ctx, convID, message, judgment.Reason); err != nil {
			return RequestOutput{}, newError(ErrorInternal, "dynamodb_write_error", err)
		}
		return RequestOutput{
			ConversationID: convID,
			Requested:      false,
			Reason:         judgment.Reason,
		}, nil
	}

	result, err := s.roadmaps.Generate(ctx, message, contextEntries)
	if err != nil {
		return RequestOutput{}, translateRoadmapError(err)
	}

	if err := s.state.SaveRoadmapTurn(ctx, convID, message, result.Content, existingTurns+1); err != nil {
		return RequestOutput{}, newError(ErrorInternal, "dynamodb_write_error", err)
	}

	return RequestOutput{
		ConversationID: convID,
		Requested:      true,
		Reason:         judgment.Reason,
		Roadmap:        result.Content,
	}, nil
}

// contextTexts flattens stored messages into the context strings handed to
// the classifier. Order is preserved: the store returns newest first and the
// window assembly expects exactly that.
func contextTexts(history []domain.Message) []string {
	texts := make([]string, 0, len(history))
	for _, m := range history {
		text := strings.TrimSpace(m.Text)
		if text == "" {
			continue
		}
		texts = append(texts, text)
	}
	return texts
}

// translateRoadmapError maps roadmap core failures onto the service error
// vocabulary. Rate limiting is detected through the wrapped transport error.
func translateRoadmapError(err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return newError(ErrorRateLimited, "openai_rate_limited", err)
	}
	var coreErr *roadmap.Error
	if errors.As(err, &coreErr) {
		switch coreErr.Code {
		case roadmap.ErrorEmptyReply:
			return newError(ErrorUpstream, "openai_empty_reply", err)
		case roadmap.ErrorMalformed:
			return newError(ErrorUpstream, "openai_malformed_response", err)
		}
	}
	return newError(ErrorUpstream, "openai_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}

var newUUID = func() string {
	return uuid.NewString()
}
