package recognizer

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/cloudwego/eino-ext/components/model/openai"

	"homework-transcriber/internal/logger"
	"homework-transcriber/internal/types"
)

const (
	// BaseRetryDelay is the base delay between retries
	BaseRetryDelay = 2 * time.Second
	// visionTemperature keeps transcription near-deterministic
	visionTemperature = float32(0.1)
)

// transcriptionPrompt instructs the model on the exact output structure the
// pipeline expects. The examples mirror real homework pages.
const transcriptionPrompt = `Transcribe this handwritten math homework into Markdown.
STRICTLY FOLLOW this structure and these rules:

1. **Structure Hierarchy**:
   - Use '# Problem X' for main problems.
   - Use '## a)', '## b)' for parts.
   - Use '### i)', '### ii)' for subparts.
   - DO NOT hallucinate headers (like '## Proof 7') unless clearly written.

2. **Math Formatting (CRITICAL)**:
   - ALL math MUST be in LaTeX delimiters: $...$ for inline, $$...$$ for display.
   - NEVER output raw Unicode math symbols (e.g. use '\mathbb{N}' NOT the Unicode glyph).

3. **Bullet Points**:
   - Use '> ' for bullet points (representing handwritten arrows/bullets).
   - Leave 2 blank lines between bullet items.

4. **Visual Recognition Rules (CRITICAL)**:
   - **Subscripts**: $a_n$ is extremely common. Transcribe as $a_n$.
   - **Definition (:=)**: If you see a colon followed by equals, you MUST write ':='.
   - **Modulo (%)**: Literally transcribe as '%'. (e.g. $40 % 3 = 1$).
   - **Q.E.D.**: If you see a square box, write '\blacksquare'.

5. **Formatting & Linearity (MANDATORY)**:
   - **STRICT LINEARITY**: If multiple equations appear together on the same line, MERGE them into a single line separated by commas. Example: '$x^2-4=0, (x-2)(x+2)=0, x=2, -2$'.
   - **NO BLOCK MATH**: Avoid '$$ ... $$' for simple or medium steps; stick to inline '$ ... $'.
   - **No Conversational Text**: Do not add 'End.', 'Done', or 'Solution'.

6. **EXACT FORMAT EXAMPLE**:
# Problem 1

## a)
Proof:

> $a \geq 0, b \in \mathbb{N}$


> $0 \in \mathbb{N} \implies a \in \mathbb{N}$ $\blacksquare$

## b)
$x^2 - 2x - 8 = 0, (x-4)(x+2)=0, x=4, -2$`

// VisionEngine transcribes pages through a vision-language model behind an
// OpenAI-compatible chat completion API.
type VisionEngine struct {
	model      *openai.ChatModel
	modelName  string
	maxRetries int
}

// NewVisionEngine creates a VisionEngine from the application config.
func NewVisionEngine(cfg *types.Config) (*VisionEngine, error) {
	if cfg.APIKey == "" {
		return nil, types.NewAppError(types.ErrConfig,
			"vision engine requires an API key", nil)
	}

	chatModelConfig := &openai.ChatModelConfig{
		Model:  cfg.Model,
		APIKey: cfg.APIKey,
	}
	if cfg.BaseURL != "" {
		chatModelConfig.BaseURL = cfg.BaseURL
	}
	temperature := visionTemperature
	chatModelConfig.Temperature = &temperature

	chatModel, err := openai.NewChatModel(context.Background(), chatModelConfig)
	if err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to create vision chat model", err)
	}

	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 2
	}

	logger.Info("vision engine initialized",
		logger.String("model", cfg.Model),
		logger.String("baseURL", cfg.BaseURL))
	return &VisionEngine{
		model:      chatModel,
		modelName:  cfg.Model,
		maxRetries: maxRetries,
	}, nil
}

func (e *VisionEngine) Name() string { return "vision" }

// RecognizePage sends one JPEG page image to the model and returns the
// cleaned transcript. Transient API errors are retried with linear backoff.
func (e *VisionEngine) RecognizePage(ctx context.Context, image []byte, page int) (string, error) {
	msg := &schema.Message{
		Role: schema.User,
		MultiContent: []schema.ChatMessagePart{
			{
				Type: schema.ChatMessagePartTypeText,
				Text: transcriptionPrompt,
			},
			{
				Type: schema.ChatMessagePartTypeImageURL,
				ImageURL: &schema.ChatMessageImageURL{
					URL: "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image),
				},
			},
		},
	}

	var lastErr error
	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		logger.Debug("transcribing page",
			logger.Int("page", page),
			logger.Int("attempt", attempt),
			logger.String("model", e.modelName))

		response, err := e.model.Generate(ctx, []*schema.Message{msg})
		if err == nil {
			return Clean(response.Content), nil
		}
		lastErr = err

		if !isRetryableAPIError(err) {
			logger.Error("non-retryable recognition error", err, logger.Int("page", page))
			break
		}
		if attempt < e.maxRetries {
			delay := BaseRetryDelay * time.Duration(attempt)
			logger.Debug("retrying after delay", logger.String("delay", delay.String()))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", types.NewAppError(types.ErrRecognition, "recognition cancelled", ctx.Err())
			}
		}
	}

	logger.Error("recognition failed after all retries", lastErr,
		logger.Int("page", page), logger.Int("maxRetries", e.maxRetries))
	return "", types.NewAppErrorWithDetails(types.ErrRecognition,
		"vision model recognition failed",
		fmt.Sprintf("page %d, attempted %d times", page, e.maxRetries), lastErr)
}

// isRetryableAPIError determines if an error should trigger a retry.
func isRetryableAPIError(err error) bool {
	if err == nil {
		return false
	}
	if appErr, ok := err.(*types.AppError); ok {
		return appErr.Code == types.ErrAPIRateLimit
	}
	msg := err.Error()
	if strings.Contains(msg, "status code: 429") || strings.Contains(msg, "rate limit") {
		return true
	}
	// Server-side errors are worth one more try; client errors are not.
	return strings.Contains(msg, "status code: 5")
}
