package repl

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"codearena/internal/common/mq"
	"codearena/internal/judge/model"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

func (s *Session) cmdSubmit(ctx context.Context, params map[string]string) error {
	if s.storage == nil || s.producer == nil {
		return fmt.Errorf("submit requires minio and kafka settings in the config")
	}
	file := params["file"]
	if file == "" {
		return fmt.Errorf("file is required")
	}
	problemID, err := strconv.ParseInt(params["problem_id"], 10, 64)
	if err != nil || problemID <= 0 {
		return fmt.Errorf("problem_id must be a positive integer")
	}
	language := params["language"]
	if language == "" {
		return fmt.Errorf("language is required")
	}
	mode := model.EvalMode(params["mode"])
	if mode == "" {
		mode = model.ModeSubmit
	}
	if !mode.Valid() {
		return fmt.Errorf("mode must be run or submit")
	}
	var timeoutMs int64
	if raw := params["timeout_ms"]; raw != "" {
		timeoutMs, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || timeoutMs < 0 {
			return fmt.Errorf("timeout_ms must be a non-negative integer")
		}
	}

	source, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read source file failed: %w", err)
	}
	sum := sha256.Sum256(source)

	submissionID := uuid.NewString()
	sourceKey := "sources/" + submissionID
	if err := s.storage.PutObject(ctx, s.bucket, sourceKey, bytes.NewReader(source), int64(len(source)), "text/plain"); err != nil {
		return fmt.Errorf("upload source failed: %w", err)
	}

	task := model.JudgeMessage{
		SubmissionID:     submissionID,
		ProblemID:        problemID,
		Language:         language,
		Mode:             mode,
		SourceKey:        sourceKey,
		SourceHash:       hex.EncodeToString(sum[:]),
		PerTestTimeoutMs: timeoutMs,
	}
	payload, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal judge task failed: %w", err)
	}
	message := mq.NewMessage(payload)
	message.ID = submissionID
	if err := s.producer.Publish(ctx, s.topic, message); err != nil {
		return fmt.Errorf("publish judge task failed: %w", err)
	}

	s.printLine("submitted: %s", submissionID)
	return nil
}

func (s *Session) cmdStatus(ctx context.Context, params map[string]string) error {
	id := params["id"]
	if id == "" {
		return fmt.Errorf("id is required")
	}
	resp, err := s.client.Get(ctx, "/api/v1/judge/submissions/"+url.PathEscape(id)+"/status")
	if err != nil {
		return err
	}
	s.renderResponse(resp)
	return nil
}

func (s *Session) cmdTemplate(ctx context.Context, params map[string]string) error {
	problemID := params["problem_id"]
	language := params["language"]
	if problemID == "" || language == "" {
		return fmt.Errorf("problem_id and language are required")
	}
	path := "/api/v1/judge/problems/" + url.PathEscape(problemID) + "/template?language=" + url.QueryEscape(language)
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		return err
	}
	s.renderResponse(resp)
	return nil
}

func (s *Session) cmdLanguages(ctx context.Context) error {
	resp, err := s.client.Get(ctx, "/api/v1/judge/languages")
	if err != nil {
		return err
	}
	s.renderResponse(resp)
	return nil
}

// cmdWatch streams status snapshots over the websocket endpoint until the
// submission reaches a terminal state.
func (s *Session) cmdWatch(ctx context.Context, params map[string]string) error {
	id := params["id"]
	if id == "" {
		return fmt.Errorf("id is required")
	}
	wsURL, err := websocketURL(s.client.BaseURL(), "/api/v1/judge/submissions/"+url.PathEscape(id)+"/stream")
	if err != nil {
		return err
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("dial stream failed: %w", err)
	}
	defer conn.Close()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			return fmt.Errorf("read stream failed: %w", err)
		}
		s.printJSON(payload)
	}
}

func websocketURL(base, path string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	default:
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	return u.String(), nil
}
