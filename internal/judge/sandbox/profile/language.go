// Package profile defines per-language execution settings.
package profile

// LanguageSpec describes how one language's submissions are compiled and
// run. Command templates use {src} and {bin} placeholders expanded against
// the working directory before tokenization.
type LanguageSpec struct {
	ID             string   `yaml:"id"`
	Name           string   `yaml:"name"`
	SourceFile     string   `yaml:"sourceFile"`
	BinaryFile     string   `yaml:"binaryFile"`
	CompileEnabled bool     `yaml:"compileEnabled"`
	CompileCmdTpl  string   `yaml:"compileCmd"`
	RunCmdTpl      string   `yaml:"runCmd"`
	Env            []string `yaml:"env"`

	// CompileTimeoutMs bounds the compile step.
	CompileTimeoutMs int64 `yaml:"compileTimeoutMs"`
	// RunTimeoutMs is the default per-test wall-clock limit, overridable per
	// judge message.
	RunTimeoutMs int64 `yaml:"runTimeoutMs"`
	// TimeMultiplier scales wall-clock limits for slower runtimes.
	TimeMultiplier float64 `yaml:"timeMultiplier"`
}
