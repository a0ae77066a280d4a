package mqhandler

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"taskportal/contracts/mq"
	"taskportal/internal/model"
	"taskportal/pkg/logger"
	"taskportal/pkg/metrics"
	pkgmq "taskportal/pkg/mq"
	"taskportal/pkg/trace"
	"taskportal/pkg/util"
)

const handlerName = "activity"

// ActivityRecorder persists audit entries. Insert reports false for an event
// id that was already stored.
type ActivityRecorder interface {
	Insert(ctx context.Context, a *model.Activity) (bool, error)
}

// Deduper is satisfied by *util.Deduper.
type Deduper interface {
	AcquireOnce(ctx context.Context, handler, key string) bool
	Release(ctx context.Context, handler, key string)
}

// RetryCounter is satisfied by *util.RetryCounter.
type RetryCounter interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// ActivityHandler turns portal events into audit trail entries.
type ActivityHandler struct {
	repo       ActivityRecorder
	deduper    Deduper
	retries    RetryCounter
	maxRetries int64
	logger     *zap.Logger
}

// NewActivityHandler builds the handler. deduper and retries may be nil when
// redis is not configured: the unique event id in storage still keeps entries
// unique, and failed messages are requeued without a limit.
func NewActivityHandler(repo ActivityRecorder, deduper Deduper, retries RetryCounter, maxRetries int, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		repo:       repo,
		deduper:    deduper,
		retries:    retries,
		maxRetries: int64(maxRetries),
		logger:     logger,
	}
}

// Handle is an mq.MessageHandler. Undecodable or unknown events are dropped
// after logging; only storage failures are returned so the message is
// redelivered.
func (h *ActivityHandler) Handle(ctx context.Context, routingKey string, body []byte) error {
	a, err := decodeActivity(routingKey, body)
	if err != nil {
		metrics.IncrementEventConsumed(routingKey, "dropped")
		h.logger.Error("Dropping undecodable portal event",
			zap.String("routing_key", routingKey),
			zap.Error(err),
		)
		return nil
	}

	ctx = trace.WithContext(ctx, a.TraceID)
	log := logger.WithTrace(ctx, h.logger)

	if h.deduper != nil && !h.deduper.AcquireOnce(ctx, handlerName, a.EventID) {
		metrics.IncrementEventConsumed(routingKey, "duplicate")
		return nil
	}

	inserted, err := h.repo.Insert(ctx, &a)
	if err != nil {
		return h.failed(ctx, log, routingKey, a.EventID, err)
	}
	h.resetRetries(ctx, a.EventID)
	if !inserted {
		metrics.IncrementEventConsumed(routingKey, "duplicate")
		log.Info("Activity already recorded", zap.String("event_id", a.EventID))
		return nil
	}

	metrics.IncrementEventConsumed(routingKey, "recorded")
	log.Info("Activity recorded",
		zap.String("routing_key", routingKey),
		zap.Int("entity_id", a.EntityID),
		zap.String("summary", a.Summary),
	)
	return nil
}

// failed undoes the dedup claim so the redelivery is processed, and turns the
// error into a dead letter once the event has failed maxRetries times.
func (h *ActivityHandler) failed(ctx context.Context, log *zap.Logger, routingKey, eventID string, err error) error {
	if h.deduper != nil {
		h.deduper.Release(ctx, handlerName, eventID)
	}

	var attempt int64
	if h.retries != nil {
		n, cerr := h.retries.IncrementAndGet(ctx, util.FormatRetryKey(handlerName, eventID))
		if cerr != nil {
			// Redis 错误不影响重试
			log.Warn("Failed to count retry", zap.String("event_id", eventID), zap.Error(cerr))
		} else {
			attempt = n
		}
	}

	log.Error("Failed to record activity",
		zap.String("event_id", eventID),
		zap.String("routing_key", routingKey),
		zap.Int64("attempt", attempt),
		zap.Error(err),
	)

	if h.maxRetries > 0 && attempt >= h.maxRetries {
		h.resetRetries(ctx, eventID)
		metrics.IncrementEventConsumed(routingKey, "dead_lettered")
		return fmt.Errorf("%w: event %s failed %d times: %v", pkgmq.ErrDeadLetter, eventID, attempt, err)
	}
	metrics.IncrementEventConsumed(routingKey, "failed")
	return err
}

func (h *ActivityHandler) resetRetries(ctx context.Context, eventID string) {
	if h.retries == nil {
		return
	}
	if err := h.retries.Reset(ctx, util.FormatRetryKey(handlerName, eventID)); err != nil {
		h.logger.Warn("Failed to reset retry count", zap.String("event_id", eventID), zap.Error(err))
	}
}

func decodeActivity(routingKey string, body []byte) (model.Activity, error) {
	entity, action, ok := strings.Cut(routingKey, ".")
	if !ok || action == "" {
		return model.Activity{}, fmt.Errorf("unexpected routing key %q", routingKey)
	}

	a := model.Activity{RoutingKey: routingKey, Entity: entity}
	switch entity {
	case mq.EntityEmployee:
		var ev mq.EmployeeEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return a, err
		}
		a.EventID, a.EntityID, a.TraceID, a.OccurredAt = ev.EventID, ev.EmployeeID, ev.TraceID, ev.OccurredAt
		a.Summary = employeeSummary(action, ev)
	case mq.EntityTask:
		var ev mq.TaskEvent
		if err := json.Unmarshal(body, &ev); err != nil {
			return a, err
		}
		a.EventID, a.EntityID, a.TraceID, a.OccurredAt = ev.EventID, ev.TaskID, ev.TraceID, ev.OccurredAt
		a.Summary = taskSummary(action, ev)
	default:
		return a, fmt.Errorf("unknown entity %q", entity)
	}

	if a.EventID == "" {
		a.EventID = uuid.NewString()
	}
	if a.OccurredAt.IsZero() {
		a.OccurredAt = time.Now().UTC()
	}
	return a, nil
}

func employeeSummary(action string, ev mq.EmployeeEvent) string {
	switch action {
	case "deleted":
		return fmt.Sprintf("employee %d deleted, %d task(s) removed", ev.EmployeeID, ev.TasksRemoved)
	default:
		return fmt.Sprintf("employee %d %s (%s, %s)", ev.EmployeeID, action, ev.Email, ev.Role)
	}
}

func taskSummary(action string, ev mq.TaskEvent) string {
	switch {
	case action == "updated" && ev.PreviousStatus != "" && ev.PreviousStatus != ev.Status:
		return fmt.Sprintf("task %d updated: %s -> %s", ev.TaskID, ev.PreviousStatus, ev.Status)
	case action == "deleted":
		return fmt.Sprintf("task %d deleted", ev.TaskID)
	default:
		return fmt.Sprintf("task %d %s (%s)", ev.TaskID, action, ev.Status)
	}
}
