package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// DefaultTaskTimeout bounds one background check run.
const DefaultTaskTimeout = 10 * time.Minute

// TaskService runs full check runs as background tasks and tracks their
// lifecycle. One worker goroutine owns each task; Status hands out snapshot
// copies so callers never observe a half-updated task.
type TaskService struct {
	checkSvc    *CheckService
	accountSvc  *AccountService
	source      driven.CredentialSource
	reportStore driven.ReportStore
	scanStore   driven.ScanStore
	timeout     time.Duration
	logger      *slog.Logger

	mu    sync.Mutex
	tasks map[string]*model.CheckTask
}

// NewTaskService creates a TaskService. timeout <= 0 selects
// DefaultTaskTimeout. scanStore may be nil when no scan index is configured.
func NewTaskService(
	checkSvc *CheckService,
	accountSvc *AccountService,
	source driven.CredentialSource,
	reportStore driven.ReportStore,
	scanStore driven.ScanStore,
	timeout time.Duration,
	logger *slog.Logger,
) *TaskService {
	if timeout <= 0 {
		timeout = DefaultTaskTimeout
	}
	return &TaskService{
		checkSvc:    checkSvc,
		accountSvc:  accountSvc,
		source:      source,
		reportStore: reportStore,
		scanStore:   scanStore,
		timeout:     timeout,
		logger:      logger,
		tasks:       make(map[string]*model.CheckTask),
	}
}

// Start registers a new pending task and launches its worker. ctx scopes the
// whole service, not one request: the worker must outlive the HTTP request
// that started it, and stops with the service or on its own timeout.
func (s *TaskService) Start(ctx context.Context, accounts []string) string {
	id := uuid.NewString()[:8]
	task := &model.CheckTask{
		ID:        id,
		Status:    model.TaskPending,
		StartedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.tasks[id] = task
	s.mu.Unlock()

	go s.run(ctx, id, accounts)

	s.logger.Info("check task started", "task_id", id, "accounts", len(accounts))
	return id
}

// Status returns a snapshot of the task, or false if the id is unknown.
func (s *TaskService) Status(id string) (model.CheckTask, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	task, ok := s.tasks[id]
	if !ok {
		return model.CheckTask{}, false
	}
	return *task, true
}

// run is the worker for one task. It owns all mutations of the task record.
func (s *TaskService) run(ctx context.Context, id string, accounts []string) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	s.update(id, func(t *model.CheckTask) {
		t.Status = model.TaskRunning
	})

	report, err := s.execute(ctx, id, accounts)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("check timed out after %s", s.timeout)
		}
		s.logger.Error("check task failed", "task_id", id, "error", err)
		s.update(id, func(t *model.CheckTask) {
			t.Status = model.TaskFailed
			t.Error = err.Error()
			t.CompletedAt = time.Now().UTC()
		})
		return
	}

	filename, err := s.reportStore.Save(*report)
	if err != nil {
		s.logger.Error("report save failed", "task_id", id, "error", err)
		s.update(id, func(t *model.CheckTask) {
			t.Status = model.TaskFailed
			t.Error = fmt.Sprintf("save report: %v", err)
			t.CompletedAt = time.Now().UTC()
		})
		return
	}

	s.recordScan(ctx, filename, report)

	s.update(id, func(t *model.CheckTask) {
		t.Status = model.TaskCompleted
		t.Progress = 100
		t.CurrentItem = ""
		t.Result = report
		t.ReportFile = filename
		t.CompletedAt = time.Now().UTC()
	})
	s.logger.Info("check task completed",
		"task_id", id,
		"report", filename,
		"compromised", report.Summary.Compromised,
	)
}

// execute fetches credentials and runs the password and account checks.
func (s *TaskService) execute(ctx context.Context, id string, accounts []string) (*model.Report, error) {
	creds, err := s.source.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch credentials: %w", err)
	}

	progress := func(index, total int, label string) {
		s.update(id, func(t *model.CheckTask) {
			t.TotalItems = total
			t.CurrentItem = label
			if total > 0 {
				t.Progress = index * 100 / total
			}
		})
	}

	report, err := s.checkSvc.Run(ctx, creds, CheckOptions{Progress: progress})
	if err != nil {
		return nil, err
	}

	if len(accounts) > 0 {
		findings, err := s.accountSvc.CheckAccounts(ctx, accounts)
		if err != nil {
			return nil, err
		}
		combined := model.Aggregate(report.Items, findings)
		report = &combined
	}

	return report, nil
}

// recordScan indexes the saved report for dashboard statistics. Indexing is
// best-effort; a failure never fails the task.
func (s *TaskService) recordScan(ctx context.Context, filename string, report *model.Report) {
	if s.scanStore == nil {
		return
	}

	scan := model.ScanRecord{
		Filename:    filename,
		GeneratedAt: report.GeneratedAt,
		Total:       report.Summary.Total,
		Safe:        report.Summary.Safe,
		Compromised: report.Summary.Compromised,
		Errors:      report.Summary.Errors,
		Critical:    report.Summary.CriticalCount,
		High:        report.Summary.HighCount,
		Severity:    report.Severity(),
	}
	if err := s.scanStore.Record(ctx, scan); err != nil {
		s.logger.Warn("scan index update failed", "filename", filename, "error", err)
	}
}

// update applies fn to the task under the lock.
func (s *TaskService) update(id string, fn func(*model.CheckTask)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task, ok := s.tasks[id]; ok {
		fn(task)
	}
}
