//go:build !linux

package engine

import (
	"context"

	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/spec"
	appErr "codearena/pkg/errors"
)

type stubEngine struct{}

func NewEngine(cfg Config) (Engine, error) {
	return &stubEngine{}, nil
}

func (s *stubEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	return result.RunResult{}, appErr.New(appErr.JudgeSystemError).WithMessage("sandbox engine is only supported on linux")
}
