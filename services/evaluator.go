package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/talentgrid/backend/models"

	"google.golang.org/genai"
)

const (
	EvaluatorModelName = "gemini-2.5-flash"
	evaluationTimeout  = 30 * time.Second
)

// EvaluatorService scores free-form question responses with Gemini. Scores
// are advisory: they only ever fill empty ai_score fields and reviewers can
// override them afterwards.
type EvaluatorService struct {
	genaiClient *genai.Client
}

func NewEvaluatorService(apiKey string) *EvaluatorService {
	genaiClient, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		slog.Error("Failed to create genai client", "error", err)
		return nil
	}

	return &EvaluatorService{genaiClient: genaiClient}
}

type evaluationResult struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// CanScore reports whether a response's input type is scoreable by the
// evaluator. Audio answers need transcription first and option-type answers
// are scored deterministically elsewhere, so both are skipped.
func (e *EvaluatorService) CanScore(inputType string) bool {
	switch inputType {
	case models.InputTypeText, models.InputTypeEssay, models.InputTypeCoding:
		return true
	}
	return false
}

// ScoreAnswer asks the model to grade one answer against its question on a
// 0..maxScore scale. The result is clamped into bounds before returning.
func (e *EvaluatorService) ScoreAnswer(ctx context.Context, question, answer string, maxScore float64) (float64, error) {
	if e == nil || e.genaiClient == nil {
		return 0, fmt.Errorf("genai client not initialized")
	}

	ctx, cancel := context.WithTimeout(ctx, evaluationTimeout)
	defer cancel()

	prompt := fmt.Sprintf(`Evaluate the following candidate answer.

Question:
%s

Answer:
%s

Score the answer from 0 to %.1f based on correctness, completeness and clarity.
Respond with ONLY a JSON object in this exact format:
{"score": <number>, "reasoning": "<one sentence>"}`, question, answer, maxScore)

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(
			"You are a strict but fair recruitment assessor. You always respond with valid JSON and nothing else.",
			genai.RoleUser,
		),
	}

	result, err := e.genaiClient.Models.GenerateContent(
		ctx,
		EvaluatorModelName,
		genai.Text(prompt),
		config,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to generate evaluation: %w", err)
	}

	score, err := parseEvaluation(result.Text(), maxScore)
	if err != nil {
		return 0, err
	}

	slog.Info("Answer evaluated", "score", score, "max_score", maxScore)
	return score, nil
}

// parseEvaluation extracts the score from the model response, tolerating
// markdown fences around the JSON, and clamps it into [0, maxScore].
func parseEvaluation(text string, maxScore float64) (float64, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var parsed evaluationResult
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return 0, fmt.Errorf("failed to parse evaluation response: %w", err)
	}

	score := parsed.Score
	if score < 0 {
		score = 0
	}
	if score > maxScore {
		score = maxScore
	}
	return score, nil
}
