package application

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

type fakeSource struct {
	creds []model.Credential
	err   error
}

var _ driven.CredentialSource = (*fakeSource)(nil)

func (f *fakeSource) Fetch(context.Context) ([]model.Credential, error) { return f.creds, f.err }
func (f *fakeSource) Verify(context.Context) error                      { return f.err }

type fakeReportStore struct {
	mu    sync.Mutex
	saved []model.Report
	err   error
}

var _ driven.ReportStore = (*fakeReportStore)(nil)

func (f *fakeReportStore) Save(r model.Report) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.saved = append(f.saved, r)
	return "hibp_report_20260314_092653.json", nil
}

func (f *fakeReportStore) List() ([]model.ReportMeta, error) { return nil, nil }
func (f *fakeReportStore) Get(string) (*model.Report, error) { return nil, driven.ErrNotFound }

type fakeScanStore struct {
	mu    sync.Mutex
	scans []model.ScanRecord
}

var _ driven.ScanStore = (*fakeScanStore)(nil)

func (f *fakeScanStore) Record(_ context.Context, scan model.ScanRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans = append(f.scans, scan)
	return nil
}

func (f *fakeScanStore) Recent(context.Context, int) ([]model.ScanRecord, error) { return nil, nil }
func (f *fakeScanStore) Count(context.Context) (int, error)                      { return 0, nil }

func newTaskService(api driven.BreachAPI, source driven.CredentialSource, reports driven.ReportStore, scans driven.ScanStore) *TaskService {
	logger := slog.Default()
	return NewTaskService(
		NewCheckService(api, -1, logger),
		NewAccountService(api, logger),
		source,
		reports,
		scans,
		time.Minute,
		logger,
	)
}

func waitForTerminal(t *testing.T, svc *TaskService, id string) model.CheckTask {
	t.Helper()

	var task model.CheckTask
	require.Eventually(t, func() bool {
		var ok bool
		task, ok = svc.Status(id)
		require.True(t, ok)
		return task.Status == model.TaskCompleted || task.Status == model.TaskFailed
	}, 5*time.Second, 10*time.Millisecond)
	return task
}

func TestTaskLifecycleCompleted(t *testing.T) {
	prefix, suffix := splitFor("hunter2")
	api := &fakeBreachAPI{
		ranges: map[string][]model.RangeEntry{prefix: {{Suffix: suffix, Count: 17000}}},
	}
	source := &fakeSource{creds: []model.Credential{
		{Label: "Email", Secret: "hunter2"},
		{Label: "Bank", Secret: "uncompromised"},
	}}
	reports := &fakeReportStore{}
	scans := &fakeScanStore{}

	svc := newTaskService(api, source, reports, scans)
	id := svc.Start(context.Background(), nil)
	assert.Len(t, id, 8)

	task := waitForTerminal(t, svc, id)
	assert.Equal(t, model.TaskCompleted, task.Status)
	assert.Equal(t, 100, task.Progress)
	assert.Equal(t, "hibp_report_20260314_092653.json", task.ReportFile)
	assert.Empty(t, task.Error)
	assert.False(t, task.CompletedAt.IsZero())
	require.NotNil(t, task.Result)
	assert.Equal(t, 1, task.Result.Summary.Compromised)
	assert.Equal(t, model.RiskCritical, task.Result.Items[0].Risk)

	require.Len(t, reports.saved, 1)
	require.Len(t, scans.scans, 1)
	assert.Equal(t, "hibp_report_20260314_092653.json", scans.scans[0].Filename)
	assert.Equal(t, model.SeverityCritical, scans.scans[0].Severity)
}

func TestTaskIncludesAccountFindings(t *testing.T) {
	api := &fakeBreachAPI{
		breaches: map[string][]model.BreachRecord{
			"alice@example.com": {{Name: "Adobe", Title: "Adobe", DataClasses: []string{"Passwords"}}},
		},
	}
	svc := newTaskService(api, &fakeSource{}, &fakeReportStore{}, nil)

	id := svc.Start(context.Background(), []string{"alice@example.com"})
	task := waitForTerminal(t, svc, id)

	require.Equal(t, model.TaskCompleted, task.Status)
	require.NotNil(t, task.Result)
	require.Len(t, task.Result.Accounts, 1)
	assert.Equal(t, 1, task.Result.Summary.TotalBreaches)
	assert.Equal(t, 1, task.Result.Summary.PasswordExposures)
}

func TestTaskFailsWhenSourceFails(t *testing.T) {
	source := &fakeSource{err: errors.New("vault is locked")}
	svc := newTaskService(&fakeBreachAPI{}, source, &fakeReportStore{}, nil)

	id := svc.Start(context.Background(), nil)
	task := waitForTerminal(t, svc, id)

	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Contains(t, task.Error, "vault is locked")
	assert.Nil(t, task.Result)
}

func TestTaskFailsWhenSaveFails(t *testing.T) {
	reports := &fakeReportStore{err: errors.New("disk full")}
	svc := newTaskService(&fakeBreachAPI{}, &fakeSource{creds: []model.Credential{{Label: "A", Secret: "x"}}}, reports, nil)

	id := svc.Start(context.Background(), nil)
	task := waitForTerminal(t, svc, id)

	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Contains(t, task.Error, "disk full")
}

func TestTaskTimeout(t *testing.T) {
	logger := slog.Default()
	svc := NewTaskService(
		NewCheckService(&fakeBreachAPI{}, 50*time.Millisecond, logger),
		NewAccountService(&fakeBreachAPI{}, logger),
		&fakeSource{creds: []model.Credential{
			{Label: "A", Secret: "a"},
			{Label: "B", Secret: "b"},
			{Label: "C", Secret: "c"},
		}},
		&fakeReportStore{},
		nil,
		10*time.Millisecond,
		logger,
	)

	id := svc.Start(context.Background(), nil)
	task := waitForTerminal(t, svc, id)

	assert.Equal(t, model.TaskFailed, task.Status)
	assert.Contains(t, task.Error, "timed out")
}

func TestStatusUnknownTask(t *testing.T) {
	svc := newTaskService(&fakeBreachAPI{}, &fakeSource{}, &fakeReportStore{}, nil)

	_, ok := svc.Status("deadbeef")
	assert.False(t, ok)
}
