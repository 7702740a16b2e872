package runner

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"codearena/internal/judge/sandbox/engine"
	"codearena/internal/judge/sandbox/profile"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/spec"
	appErr "codearena/pkg/errors"
)

// DefaultRunner implements compile/run workflows on the local engine.
type DefaultRunner struct {
	eng engine.Engine
}

// NewRunner creates a new runner backed by the sandbox engine.
func NewRunner(eng engine.Engine) *DefaultRunner {
	return &DefaultRunner{eng: eng}
}

func (r *DefaultRunner) Compile(ctx context.Context, req CompileRequest) (result.CompileResult, error) {
	if err := validateCompileRequest(req); err != nil {
		return result.CompileResult{}, err
	}
	if err := prepareWorkDir(req.WorkDir); err != nil {
		return result.CompileResult{}, err
	}
	if err := writeSourceFile(req.WorkDir, req.Source, req.Language.SourceFile); err != nil {
		return result.CompileResult{}, err
	}
	if !req.Language.CompileEnabled {
		return result.CompileResult{OK: true}, nil
	}

	cmd, err := buildCommand(req.Language.CompileCmdTpl, req.WorkDir, req.Language)
	if err != nil {
		return result.CompileResult{}, err
	}

	timeoutMs := req.Language.CompileTimeoutMs
	if timeoutMs <= 0 {
		timeoutMs = 10000
	}
	runRes, err := r.eng.Run(ctx, spec.RunSpec{
		WorkDir: req.WorkDir,
		Cmd:     cmd,
		Env:     compileEnv(req.Language),
		Limits:  spec.ResourceLimit{WallTimeMs: timeoutMs},
	})
	if err != nil {
		return result.CompileResult{}, err
	}

	compileRes := result.CompileResult{
		OK:       runRes.ExitCode == 0 && !runRes.TimedOut,
		ExitCode: runRes.ExitCode,
		TimeMs:   runRes.TimeMs,
	}
	if runRes.TimedOut {
		compileRes.Error = "compilation timed out"
	} else if runRes.ExitCode != 0 {
		compileRes.Error = runRes.Stderr
	}
	return compileRes, nil
}

func (r *DefaultRunner) Run(ctx context.Context, req RunRequest) (result.RunResult, error) {
	if err := validateRunRequest(req); err != nil {
		return result.RunResult{}, err
	}
	if err := prepareWorkDir(req.WorkDir); err != nil {
		return result.RunResult{}, err
	}
	if err := copyArtifact(req.ArtifactDir, req.WorkDir, req.Language); err != nil {
		return result.RunResult{}, err
	}

	cmd, err := buildCommand(req.Language.RunCmdTpl, req.WorkDir, req.Language)
	if err != nil {
		return result.RunResult{}, err
	}

	return r.eng.Run(ctx, spec.RunSpec{
		WorkDir: req.WorkDir,
		Cmd:     cmd,
		Env:     req.Language.Env,
		Stdin:   req.Stdin,
		Limits:  spec.ResourceLimit{WallTimeMs: effectiveWallMs(req)},
	})
}

func validateCompileRequest(req CompileRequest) error {
	if req.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if req.WorkDir == "" {
		return appErr.ValidationError("work_dir", "required")
	}
	if req.Source == "" {
		return appErr.ValidationError("source", "required")
	}
	if req.Language.ID == "" {
		return appErr.ValidationError("language", "required")
	}
	if req.Language.SourceFile == "" {
		return appErr.ValidationError("source_file", "required")
	}
	return nil
}

func validateRunRequest(req RunRequest) error {
	if req.SubmissionID == "" {
		return appErr.ValidationError("submission_id", "required")
	}
	if req.WorkDir == "" {
		return appErr.ValidationError("work_dir", "required")
	}
	if req.ArtifactDir == "" {
		return appErr.ValidationError("artifact_dir", "required")
	}
	if req.Language.ID == "" {
		return appErr.ValidationError("language", "required")
	}
	return nil
}

// effectiveWallMs resolves the per-test wall-clock limit: explicit override,
// else the language default, scaled by the language time multiplier.
func effectiveWallMs(req RunRequest) int64 {
	wallMs := req.WallTimeMs
	if wallMs <= 0 {
		wallMs = req.Language.RunTimeoutMs
	}
	if wallMs <= 0 {
		wallMs = 5000
	}
	return scaleLimit(wallMs, req.Language.TimeMultiplier)
}

func scaleLimit(value int64, multiplier float64) int64 {
	if value <= 0 {
		return 0
	}
	if multiplier <= 0 {
		return value
	}
	return int64(math.Ceil(float64(value) * multiplier))
}

func buildCommand(tpl, workDir string, lang profile.LanguageSpec) ([]string, error) {
	if strings.TrimSpace(tpl) == "" {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command template is required")
	}
	expanded := tpl
	expanded = strings.ReplaceAll(expanded, "{src}", filepath.Join(workDir, lang.SourceFile))
	if lang.BinaryFile != "" {
		expanded = strings.ReplaceAll(expanded, "{bin}", filepath.Join(workDir, lang.BinaryFile))
	}
	fields, err := shlex.Split(expanded)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.InvalidParams, "parse command template failed")
	}
	if len(fields) == 0 {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("command is empty after expansion")
	}
	return fields, nil
}

// compileEnv gives compilers the ambient environment; user code runs with
// the explicit language env only.
func compileEnv(lang profile.LanguageSpec) []string {
	if len(lang.Env) > 0 {
		return append(os.Environ(), lang.Env...)
	}
	return os.Environ()
}

// copyArtifact places the runnable artifact in the per-test workdir: the
// binary for compiled languages, the source file for interpreted ones. Java
// compiles to one class file per class, so all of them are carried over.
func copyArtifact(artifactDir, workDir string, lang profile.LanguageSpec) error {
	if lang.ID == "java" {
		entries, err := os.ReadDir(artifactDir)
		if err != nil {
			return appErr.Wrapf(err, appErr.JudgeSystemError, "read artifact dir failed")
		}
		copied := false
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".class") {
				continue
			}
			if err := copyFile(filepath.Join(artifactDir, e.Name()), filepath.Join(workDir, e.Name()), 0644); err != nil {
				return err
			}
			copied = true
		}
		if !copied {
			return appErr.New(appErr.JudgeSystemError).WithMessage("no class files produced by compilation")
		}
		return nil
	}

	name := lang.SourceFile
	mode := os.FileMode(0644)
	if lang.CompileEnabled && lang.BinaryFile != "" {
		name = lang.BinaryFile
		mode = 0755
	}
	return copyFile(filepath.Join(artifactDir, name), filepath.Join(workDir, name), mode)
}

func copyFile(src, dst string, mode os.FileMode) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return appErr.Wrapf(err, appErr.JudgeSystemError, "read artifact failed")
	}
	if err := os.WriteFile(dst, content, mode); err != nil {
		return appErr.Wrapf(err, appErr.JudgeSystemError, "write artifact failed")
	}
	return nil
}

func prepareWorkDir(workDir string) error {
	if err := os.MkdirAll(workDir, 0755); err != nil {
		return appErr.Wrapf(err, appErr.JudgeSystemError, "create work dir failed")
	}
	return nil
}

func writeSourceFile(workDir, source, targetName string) error {
	if targetName == "" {
		return appErr.ValidationError("source_file", "required")
	}
	targetPath := filepath.Join(workDir, targetName)
	if err := os.WriteFile(targetPath, []byte(source), 0644); err != nil {
		return appErr.Wrapf(err, appErr.JudgeSystemError, "write source failed")
	}
	return nil
}

var _ Runner = (*DefaultRunner)(nil)
