package service

import (
	"context"
	"time"

	"codearena/internal/judge/model"
)

type specEntry struct {
	spec      model.FunctionSpec
	expiresAt time.Time
}

// getFunctionSpec loads a problem's function spec through a small in-process
// TTL cache. Specs are immutable once published, so a short TTL only bounds
// memory, not staleness.
func (s *Service) getFunctionSpec(ctx context.Context, problemID int64) (model.FunctionSpec, error) {
	now := time.Now()
	if s.specTTL > 0 {
		s.specMu.Lock()
		entry, ok := s.specCache[problemID]
		if ok && now.Before(entry.expiresAt) {
			spec := entry.spec
			s.specMu.Unlock()
			return spec, nil
		}
		s.specMu.Unlock()
	}

	ctxDB, cancel := s.scopedContext(ctx, s.problemTimeout)
	defer cancel()
	spec, err := s.problems.GetFunctionSpec(ctxDB, problemID)
	if err != nil {
		return model.FunctionSpec{}, err
	}
	if s.specTTL > 0 {
		s.specMu.Lock()
		s.specCache[problemID] = specEntry{spec: spec, expiresAt: now.Add(s.specTTL)}
		s.specMu.Unlock()
	}
	return spec, nil
}
