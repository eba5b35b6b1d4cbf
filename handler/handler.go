package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"roadmap-agent/internal/usecase"
)

// RoadmapRequester is the single use case operation the handler drives.
type RoadmapRequester interface {
	Request(ctx context.Context, in usecase.RequestInput) (usecase.RequestOutput, error)
}

type Response struct {
	StatusCode int               `json:"statusCode"`
	Headers    map[string]string `json:"headers"`
	Body       string            `json:"body"`
}

type roadmapRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

// roadmapResponse is the success body. Roadmap is omitted when the message
// was noted rather than answered.
type roadmapResponse struct {
	ConversationID string `json:"conversationId"`
	Requested      bool   `json:"requested"`
	Reason         string `json:"reason"`
	Roadmap        string `json:"roadmap,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	roadmaps RoadmapRequester
}

func NewHandler(rm RoadmapRequester) (*Handler, error) {
	if rm == nil {
		return nil, errors.New("handler: roadmap requester must not be nil")
	}
	return &Handler{roadmaps: rm}, nil
}

// Handle adapts an API Gateway request to the use case and maps its error
// vocabulary onto HTTP statuses. The returned error is always nil; failures
// become response bodies.
func (h *Handler) Handle(ctx context.Context, req events.APIGatewayProxyRequest) (Response, error) {
	headers := map[string]string{
		"Content-Type":     "application/json",
		"X-Correlation-Id": correlationID(req.Headers),
	}

	var body roadmapRequest
	if err := json.Unmarshal([]byte(req.Body), &body); err != nil {
		return respond(http.StatusBadRequest, headers, errorResponse{Error: string(usecase.ErrorInvalidInput)}), nil
	}

	out, err := h.roadmaps.Request(ctx, usecase.RequestInput{
		Message:        body.Message,
		ConversationID: body.ConversationID,
	})
	if err != nil {
		status, code := mapError(err)
		return respond(status, headers, errorResponse{Error: code}), nil
	}

	return respond(http.StatusOK, headers, roadmapResponse{
		ConversationID: out.ConversationID,
		Requested:      out.Requested,
		Reason:         out.Reason,
		Roadmap:        out.Roadmap,
	}), nil
}

// mapError translates a use case error into an HTTP status and a stable
// error code string. Anything unrecognized is an internal error.
func mapError(err error) (int, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput, usecase.ErrorInvalidQuestion:
		return http.StatusBadRequest, string(ucErr.Code)
	case usecase.ErrorRateLimited:
		return http.StatusTooManyRequests, string(ucErr.Code)
	case usecase.ErrorUpstream:
		return http.StatusBadGateway, string(ucErr.Code)
	case usecase.ErrorInternal:
		return http.StatusInternalServerError, string(ucErr.Code)
	default:
		return http.StatusInternalServerError, string(usecase.ErrorInternal)
	}
}

// correlationID returns the caller-supplied correlation id, matched
// case-insensitively, or mints one.
func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, "X-Correlation-Id") && strings.TrimSpace(v) != "" {
			return v
		}
	}
	return uuid.NewString()
}

func respond(status int, headers map[string]string, payload any) Response {
	body, err := json.Marshal(payload)
	if err != nil {
		return Response{
			StatusCode: http.StatusInternalServerError,
			Headers:    headers,
			Body:       `{"error":"INTERNAL_ERROR"}`,
		}
	}
	return Response{
		StatusCode: status,
		Headers:    headers,
		Body:       string(body),
	}
}
