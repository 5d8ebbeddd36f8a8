// Package ai generates assistant replies through the Gemini API. Callers get
// a reply string back in every case: any failure (missing key, network,
// blocked response) degrades to a fixed localized apology instead of an
// error, so the webhook flow never breaks on the model's account.
package ai

import (
	"context"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog/log"
	"google.golang.org/api/option"

	"github.com/bcmerchant/line-bot-backend/internal/domain"
)

const (
	// DefaultModel is used when no model name is configured.
	DefaultModel = "gemini-1.5-flash"

	// Apology is the fallback reply for any generation failure.
	Apology = "ขออภัย เกิดข้อผิดพลาดในการเชื่อมต่อ AI"

	systemPrompt = "คุณเป็นผู้ช่วย AI ที่เป็นมิตรและช่วยเหลือผู้ใช้ได้ดี " +
		"ตอบคำถามเป็นภาษาไทยอย่างสุภาพและเป็นกันเอง " +
		"ถ้าไม่แน่ใจในคำตอบ ให้บอกตรงๆ ว่าไม่แน่ใจ"

	requestTimeout  = 30 * time.Second
	maxOutputTokens = 1024
	temperature     = 0.7
)

// Generator produces a reply for a new user message given ordered prior
// turns (oldest first). Implementations never return an error; they fall
// back to a safe localized string.
type Generator interface {
	Reply(ctx context.Context, message string, history []domain.Turn) string
}

// Gemini is the production Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

var _ Generator = (*Gemini)(nil)

// NewGemini builds the client. An empty model falls back to DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

// Close releases the underlying API client.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

// Reply implements Generator. History roles map user→"user" and
// assistant→"model"; the new message is sent as the final user part.
func (g *Gemini) Reply(ctx context.Context, message string, history []domain.Turn) string {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	model := g.client.GenerativeModel(g.model)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}
	model.SetMaxOutputTokens(maxOutputTokens)
	model.SetTemperature(temperature)

	session := model.StartChat()
	session.History = historyContents(history)

	resp, err := session.SendMessage(ctx, genai.Text(message))
	if err != nil {
		log.Error().Err(err).Str("model", g.model).Msg("gemini request failed")
		return Apology
	}

	text := extractText(resp)
	if text == "" {
		log.Warn().Str("model", g.model).Msg("gemini returned no usable candidates")
		return Apology
	}
	return text
}

// historyContents converts stored turns into chat history for the session.
func historyContents(history []domain.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(history))
	for _, t := range history {
		role := "user"
		if t.Role == domain.RoleAssistant {
			role = "model"
		}
		out = append(out, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(t.Content)},
		})
	}
	return out
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
