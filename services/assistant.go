package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"
)

const (
	chatSystemPrompt = "You are CareSync's wellness assistant. Answer general health and wellness questions " +
		"clearly and briefly. You do not diagnose conditions or prescribe medication; suggest booking " +
		"an appointment with a doctor when symptoms need clinical attention."
	improveSystemPrompt = "Rewrite the clinical note you are given so it is clear, concise and grammatically " +
		"correct. Keep every medical fact, value and medication exactly as written. Reply with the rewritten text only."
)

type ChatTurn struct {
	Role    string `json:"role" binding:"required,oneof=user assistant"`
	Content string `json:"content" binding:"required"`
}

// ChatModel is the generative-language backend behind the assistant.
type ChatModel interface {
	Chat(ctx context.Context, system string, history []ChatTurn, message string) (string, error)
}

// GeminiClient implements ChatModel on Google's Gemini API.
type GeminiClient struct {
	client  *genai.Client
	modelID string
}

func NewGeminiClient(ctx context.Context, apiKey, modelID string) (*GeminiClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if strings.TrimSpace(modelID) == "" {
		modelID = "gemini-2.5-flash"
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiClient{client: client, modelID: modelID}, nil
}

func (g *GeminiClient) Chat(ctx context.Context, system string, history []ChatTurn, message string) (string, error) {
	model := g.client.GenerativeModel(g.modelID)
	if system != "" {
		model.SystemInstruction = genai.NewUserContent(genai.Text(system))
	}
	cs := model.StartChat()
	for _, turn := range history {
		content := strings.TrimSpace(turn.Content)
		if content == "" {
			continue
		}
		speaker := "user"
		if turn.Role == "assistant" {
			speaker = "model"
		}
		cs.History = append(cs.History, &genai.Content{Role: speaker, Parts: []genai.Part{genai.Text(content)}})
	}

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", fmt.Errorf("gemini chat: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}
	var out strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	return strings.TrimSpace(out.String()), nil
}

func (g *GeminiClient) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// AssistantService proxies wellness chat and note rewriting. A nil model disables it.
type AssistantService struct {
	model   ChatModel
	timeout time.Duration
}

func NewAssistantService(model ChatModel, timeout time.Duration) *AssistantService {
	return &AssistantService{model: model, timeout: timeout}
}

func (s *AssistantService) Chat(ctx context.Context, message string, history []ChatTurn) (string, error) {
	if err := requireField(message, util.MESSAGE_REQUIRED); err != nil {
		return "", err
	}
	return s.ask(ctx, chatSystemPrompt, history, trimmed(message))
}

func (s *AssistantService) ImproveText(ctx context.Context, text string) (string, error) {
	if err := requireField(text, util.TEXT_REQUIRED); err != nil {
		return "", err
	}
	return s.ask(ctx, improveSystemPrompt, nil, trimmed(text))
}

func (s *AssistantService) ask(ctx context.Context, system string, history []ChatTurn, message string) (string, error) {
	if s == nil || s.model == nil {
		return "", util.Unavailable(util.ASSISTANT_DISABLED)
	}
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	reply, err := s.model.Chat(ctx, system, history, message)
	if err != nil {
		log.Error().Err(err).Msg("Error from assistant model")
		return "", util.Internal(err)
	}
	if reply == "" {
		return "", util.Internal(errors.New(util.EMPTY_ASSISTANT))
	}
	return reply, nil
}
