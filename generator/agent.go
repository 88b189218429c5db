package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Agent 负责根据 Request 生成菜谱。
type Agent struct {
	llm      LLMClient
	validate *validator.Validate
	logger   *zap.Logger
}

func NewAgent(llm LLMClient, logger *zap.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{llm: llm, validate: validator.New(), logger: logger}, nil
}

// Validate checks the request fields. Generate does not call it; callers
// check the request first.
func (a *Agent) Validate(req Request) error {
	if err := a.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid request: %s failed %q", verrs[0].Field(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// Generate sends one prompt to the model and normalizes the answer.
// There is no retry: a malformed answer fails the request.
func (a *Agent) Generate(ctx context.Context, req Request) (Draft, error) {
	raw, err := a.llm.Complete(ctx, BuildRecipePrompt(req))
	if err != nil {
		return Draft{}, fmt.Errorf("llm complete: %w", err)
	}

	draft, err := Normalize(raw)
	if err != nil {
		var ferr *FormatError
		if errors.As(err, &ferr) {
			a.logger.Warn("[llm] unusable model response",
				zap.Strings("missing", ferr.Missing),
				zap.String("text", ferr.Text),
				zap.Error(ferr.Err))
		}
		return Draft{}, err
	}
	draft.Mood = req.Mood
	return draft, nil
}
