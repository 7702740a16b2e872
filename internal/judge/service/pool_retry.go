package service

import (
	"context"
	"strconv"
	"time"

	"codearena/internal/common/mq"
	appErr "codearena/pkg/errors"
	"codearena/pkg/utils/logger"

	"go.uber.org/zap"
)

const poolRetryHeader = "x-pool-retry"

func (s *Service) acquireSlot(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.poolWait):
		return appErr.New(appErr.JudgeQueueFull).WithMessage("worker pool is full")
	}
}

func (s *Service) releaseSlot() {
	select {
	case <-s.sem:
	default:
	}
}

func (s *Service) requeueForPoolFull(ctx context.Context, msg *mq.Message) error {
	if s.queue == nil || s.retryTopic == "" {
		return appErr.New(appErr.JudgeQueueFull).WithMessage("worker pool is full")
	}
	return RequeueForPoolFull(ctx, s.queue, s.retryTopic, s.deadLetter, s.poolRetryMax, s.poolRetryBase, s.poolRetryMaxD, msg)
}

// ParsePoolRetryCount reads the pool retry counter off message headers.
func ParsePoolRetryCount(headers map[string]string) int {
	if headers == nil {
		return 0
	}
	raw, ok := headers[poolRetryHeader]
	if !ok {
		return 0
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val < 0 {
		return 0
	}
	return val
}

// CloneMessageForRetry copies a message for republication with an updated
// pool retry counter. The broker-level retry counter resets: pool pressure is
// not a processing failure.
func CloneMessageForRetry(msg *mq.Message, retryCount int) *mq.Message {
	if msg == nil {
		return mq.NewMessage(nil)
	}
	out := &mq.Message{
		ID:         msg.ID,
		Body:       msg.Body,
		Headers:    make(map[string]string, len(msg.Headers)+1),
		Timestamp:  time.Now(),
		RetryCount: 0,
		MaxRetries: msg.MaxRetries,
	}
	for k, v := range msg.Headers {
		out.Headers[k] = v
	}
	out.Headers[poolRetryHeader] = strconv.Itoa(retryCount)
	return out
}

// ComputePoolBackoff returns the exponential backoff delay for a retry count,
// capped at max.
func ComputePoolBackoff(retryCount int, base, max time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if retryCount <= 0 {
		if max > 0 && base > max {
			return max
		}
		return base
	}
	delay := base
	for i := 0; i < retryCount; i++ {
		if max > 0 && delay >= max {
			return max
		}
		if max > 0 && delay > max/2 {
			delay = max
			break
		}
		delay *= 2
	}
	if max > 0 && delay > max {
		return max
	}
	return delay
}

// RequeueForPoolFull republishes a message when the worker pool is full,
// backing off exponentially and diverting to the dead letter topic once the
// retry budget is exhausted.
func RequeueForPoolFull(ctx context.Context, queue mq.MessageQueue, retryTopic, deadLetter string, maxRetry int, baseDelay, maxDelay time.Duration, msg *mq.Message) error {
	if queue == nil || retryTopic == "" {
		return appErr.New(appErr.ServiceUnavailable).WithMessage("retry queue is not configured")
	}
	if msg == nil {
		return appErr.New(appErr.InvalidParams).WithMessage("message is nil")
	}
	retryCount := ParsePoolRetryCount(msg.Headers)
	if maxRetry > 0 && retryCount >= maxRetry {
		if deadLetter == "" {
			logger.Warn(ctx, "worker pool retry exhausted without dead letter", zap.Int("retry_count", retryCount), zap.String("message_id", msg.ID))
			return appErr.New(appErr.JudgeQueueFull).WithMessage("worker pool is full")
		}
		dead := CloneMessageForRetry(msg, retryCount)
		logger.Warn(ctx, "worker pool retry exhausted, sending to dead letter", zap.Int("retry_count", retryCount), zap.String("message_id", msg.ID), zap.String("topic", deadLetter))
		return queue.Publish(ctx, deadLetter, dead)
	}
	delay := ComputePoolBackoff(retryCount, baseDelay, maxDelay)
	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	logger.Info(ctx, "worker pool requeue", zap.Int("retry_count", retryCount+1), zap.String("message_id", msg.ID), zap.Duration("delay", delay), zap.String("topic", retryTopic))
	requeued := CloneMessageForRetry(msg, retryCount+1)
	return queue.Publish(ctx, retryTopic, requeued)
}
