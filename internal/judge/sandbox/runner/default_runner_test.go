package runner_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"codearena/internal/judge/sandbox/profile"
	"codearena/internal/judge/sandbox/result"
	"codearena/internal/judge/sandbox/runner"
	"codearena/internal/judge/sandbox/spec"
	appErr "codearena/pkg/errors"
)

type fakeEngine struct {
	res   result.RunResult
	err   error
	specs []spec.RunSpec
}

func (f *fakeEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.RunResult, error) {
	f.specs = append(f.specs, runSpec)
	return f.res, f.err
}

func pythonLang() profile.LanguageSpec {
	return profile.LanguageSpec{
		ID:           "python",
		SourceFile:   "main.py",
		RunCmdTpl:    "python3 {src}",
		RunTimeoutMs: 5000,
	}
}

func cppLang() profile.LanguageSpec {
	return profile.LanguageSpec{
		ID:               "cpp",
		SourceFile:       "main.cpp",
		BinaryFile:       "main",
		CompileEnabled:   true,
		CompileCmdTpl:    "g++ -O2 -std=c++17 {src} -o {bin}",
		RunCmdTpl:        "{bin}",
		CompileTimeoutMs: 10000,
		RunTimeoutMs:     2000,
	}
}

func TestCompileInterpretedSkipsEngine(t *testing.T) {
	t.Parallel()
	eng := &fakeEngine{}
	r := runner.NewRunner(eng)
	workDir := filepath.Join(t.TempDir(), "compile")

	res, err := r.Compile(context.Background(), runner.CompileRequest{
		SubmissionID: "sub-1",
		WorkDir:      workDir,
		Source:       "print(input())",
		Language:     pythonLang(),
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK for interpreted language")
	}
	if len(eng.specs) != 0 {
		t.Fatalf("interpreted compile must not invoke the engine")
	}

	data, err := os.ReadFile(filepath.Join(workDir, "main.py"))
	if err != nil {
		t.Fatalf("source not written: %v", err)
	}
	if string(data) != "print(input())" {
		t.Fatalf("source content mismatch: %q", data)
	}
}

func TestCompileExpandsCommandTemplate(t *testing.T) {
	t.Parallel()
	eng := &fakeEngine{res: result.RunResult{ExitCode: 0}}
	r := runner.NewRunner(eng)
	workDir := filepath.Join(t.TempDir(), "compile")

	res, err := r.Compile(context.Background(), runner.CompileRequest{
		SubmissionID: "sub-1",
		WorkDir:      workDir,
		Source:       "int main() { return 0; }",
		Language:     cppLang(),
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected OK, got %+v", res)
	}
	if len(eng.specs) != 1 {
		t.Fatalf("expected 1 engine run, got %d", len(eng.specs))
	}
	cmd := eng.specs[0].Cmd
	if cmd[0] != "g++" {
		t.Fatalf("unexpected compiler: %v", cmd)
	}
	wantSrc := filepath.Join(workDir, "main.cpp")
	wantBin := filepath.Join(workDir, "main")
	var foundSrc, foundBin bool
	for _, tok := range cmd {
		if tok == wantSrc {
			foundSrc = true
		}
		if tok == wantBin {
			foundBin = true
		}
	}
	if !foundSrc || !foundBin {
		t.Fatalf("placeholders not expanded: %v", cmd)
	}
}

func TestCompileFailureCarriesStderr(t *testing.T) {
	t.Parallel()
	eng := &fakeEngine{res: result.RunResult{ExitCode: 1, Stderr: "main.cpp:1: error"}}
	r := runner.NewRunner(eng)

	res, err := r.Compile(context.Background(), runner.CompileRequest{
		SubmissionID: "sub-1",
		WorkDir:      filepath.Join(t.TempDir(), "compile"),
		Source:       "int main() {",
		Language:     cppLang(),
	})
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if res.OK {
		t.Fatalf("expected compile failure")
	}
	if res.Error != "main.cpp:1: error" {
		t.Fatalf("compiler diagnostics lost: %q", res.Error)
	}
}

func TestRunCopiesArtifactAndAppliesLimits(t *testing.T) {
	t.Parallel()
	artifactDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(artifactDir, "main"), []byte("binary"), 0755); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	eng := &fakeEngine{res: result.RunResult{ExitCode: 0, Stdout: "42\n"}}
	r := runner.NewRunner(eng)
	workDir := filepath.Join(t.TempDir(), "t1")

	_, err := r.Run(context.Background(), runner.RunRequest{
		SubmissionID: "sub-1",
		TestID:       1,
		WorkDir:      workDir,
		ArtifactDir:  artifactDir,
		Language:     cppLang(),
		Stdin:        "40 2\n",
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(workDir, "main")); err != nil {
		t.Fatalf("binary not copied: %v", err)
	}
	got := eng.specs[0]
	if got.Stdin != "40 2\n" {
		t.Fatalf("stdin not forwarded: %q", got.Stdin)
	}
	if got.Limits.WallTimeMs != 2000 {
		t.Fatalf("expected language default limit 2000, got %d", got.Limits.WallTimeMs)
	}
}

func TestRunWallTimeOverrideAndMultiplier(t *testing.T) {
	t.Parallel()
	artifactDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(artifactDir, "main.py"), []byte("src"), 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}

	lang := pythonLang()
	lang.TimeMultiplier = 2

	eng := &fakeEngine{}
	r := runner.NewRunner(eng)

	_, err := r.Run(context.Background(), runner.RunRequest{
		SubmissionID: "sub-1",
		TestID:       1,
		WorkDir:      filepath.Join(t.TempDir(), "t1"),
		ArtifactDir:  artifactDir,
		Language:     lang,
		WallTimeMs:   1500,
	})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if got := eng.specs[0].Limits.WallTimeMs; got != 3000 {
		t.Fatalf("expected override 1500 scaled by 2 = 3000, got %d", got)
	}
}

func TestRunValidatesRequest(t *testing.T) {
	t.Parallel()
	r := runner.NewRunner(&fakeEngine{})

	_, err := r.Run(context.Background(), runner.RunRequest{})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	if got := appErr.GetCode(err); got != appErr.ValidationFailed {
		t.Fatalf("expected ValidationFailed, got %v", got)
	}
}
