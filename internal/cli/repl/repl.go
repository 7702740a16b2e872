// Package repl implements the interactive judge CLI session.
package repl

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"codearena/internal/cli/config"
	httpclient "codearena/internal/cli/http"
	"codearena/internal/common/mq"
	"codearena/internal/common/storage"

	"github.com/chzyer/readline"
	"github.com/google/shlex"
)

// Session holds REPL state.
type Session struct {
	client       *httpclient.Client
	storage      storage.ObjectStorage
	producer     mq.Producer
	bucket       string
	topic        string
	prettyJSON   bool
	historyFile  string
	outputWriter *bufio.Writer
}

// New creates a session. The storage and producer are only needed by the
// submit command; status/template/watch work with just the HTTP client.
func New(client *httpclient.Client, objStorage storage.ObjectStorage, producer mq.Producer, cfg config.Config) *Session {
	return &Session{
		client:       client,
		storage:      objStorage,
		producer:     producer,
		bucket:       cfg.MinIO.Bucket,
		topic:        cfg.Kafka.Topic,
		prettyJSON:   cfg.PrettyJSON != nil && *cfg.PrettyJSON,
		historyFile:  cfg.HistoryFile,
		outputWriter: bufio.NewWriter(os.Stdout),
	}
}

func completer() readline.AutoCompleter {
	return readline.NewPrefixCompleter(
		readline.PcItem("submit"),
		readline.PcItem("status"),
		readline.PcItem("watch"),
		readline.PcItem("template"),
		readline.PcItem("languages"),
		readline.PcItem("set", readline.PcItem("base"), readline.PcItem("timeout")),
		readline.PcItem("help"),
		readline.PcItem("exit"),
	)
}

// Run reads commands until EOF or exit.
func (s *Session) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "codearena> ",
		HistoryFile:     s.historyFile,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline failed: %w", err)
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			s.printLine("bye")
			return nil
		}
		if line == "help" {
			s.printHelp()
			continue
		}
		if err := s.handleCommand(ctx, line); err != nil {
			s.printLine("error: %v", err)
		}
	}
}

func (s *Session) handleCommand(ctx context.Context, line string) error {
	tokens, err := shlex.Split(line)
	if err != nil {
		return fmt.Errorf("parse command failed: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	params := map[string]string{}
	for _, token := range tokens[1:] {
		parts := strings.SplitN(token, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid param: %s (expected key=value)", token)
		}
		params[parts[0]] = parts[1]
	}

	switch tokens[0] {
	case "submit":
		return s.cmdSubmit(ctx, params)
	case "status":
		return s.cmdStatus(ctx, params)
	case "watch":
		return s.cmdWatch(ctx, params)
	case "template":
		return s.cmdTemplate(ctx, params)
	case "languages":
		return s.cmdLanguages(ctx)
	case "set":
		return s.cmdSet(tokens[1:])
	default:
		return fmt.Errorf("unknown command: %s", tokens[0])
	}
}

func (s *Session) cmdSet(args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: set base <url> | set timeout <duration>")
	}
	switch args[0] {
	case "base":
		s.client.SetBaseURL(args[1])
		s.printLine("base set to %s", args[1])
	case "timeout":
		dur, err := time.ParseDuration(args[1])
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		s.client.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	default:
		return fmt.Errorf("unknown set target: %s", args[0])
	}
	return nil
}

func (s *Session) renderResponse(resp httpclient.ResponseInfo) {
	s.printLine("HTTP %d (%s)", resp.StatusCode, resp.Duration)
	if len(resp.Body) == 0 {
		return
	}
	s.printJSON(resp.Body)
}

func (s *Session) printJSON(body []byte) {
	if s.prettyJSON {
		var raw interface{}
		if err := json.Unmarshal(body, &raw); err == nil {
			formatted, _ := json.MarshalIndent(raw, "", "  ")
			s.printLine("%s", string(formatted))
			return
		}
	}
	s.printLine("%s", string(body))
}

func (s *Session) printHelp() {
	s.printLine("commands:")
	s.printLine("  submit file=./main.py problem_id=1 language=python mode=submit [timeout_ms=2000]")
	s.printLine("  status id=<submission_id>")
	s.printLine("  watch id=<submission_id>")
	s.printLine("  template problem_id=1 language=python")
	s.printLine("  languages")
	s.printLine("  set base <url> | set timeout <duration>")
	s.printLine("  help | exit")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.outputWriter, format+"\n", args...)
	_ = s.outputWriter.Flush()
}
