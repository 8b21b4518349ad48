package testutil

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/livinlefevreloca/netprep/internal/cct"
)

// MockBackend provides a controllable analysis backend for testing
type MockBackend struct {
	mu    sync.Mutex
	calls []string

	driver   *cct.DriverParams
	receiver *cct.ReceiverParams

	reports    []cct.DriverReport
	reportPath string

	configureDriverErr   error
	configureReceiverErr error
	scanErr              error
	runErr               error
	reportErr            error

	scanGate  chan struct{}
	scanBegun bool
	panicIn   string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{
		calls: make([]string, 0),
	}
}

func (m *MockBackend) SetReports(reports []cct.DriverReport) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports = reports
}

func (m *MockBackend) SetReportPath(path string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportPath = path
}

func (m *MockBackend) SetConfigureDriverError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configureDriverErr = err
}

func (m *MockBackend) SetConfigureReceiverError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.configureReceiverErr = err
}

func (m *MockBackend) SetScanError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanErr = err
}

func (m *MockBackend) SetRunError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runErr = err
}

func (m *MockBackend) SetReportError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reportErr = err
}

// SetPanic makes the named method panic when called
func (m *MockBackend) SetPanic(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.panicIn = method
}

// GateScan makes Scan block until the returned release function is called
func (m *MockBackend) GateScan() func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.scanGate = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// ScanBegun reports whether a Scan call has started, including one that
// is currently blocked on the gate
func (m *MockBackend) ScanBegun() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scanBegun
}

func (m *MockBackend) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.calls))
	copy(result, m.calls)
	return result
}

func (m *MockBackend) DriverConfig() (cct.DriverParams, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.driver == nil {
		return cct.DriverParams{}, false
	}
	return *m.driver, true
}

func (m *MockBackend) ReceiverConfig() (cct.ReceiverParams, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.receiver == nil {
		return cct.ReceiverParams{}, false
	}
	return *m.receiver, true
}

func (m *MockBackend) ConfigureDriver(p cct.DriverParams) error {
	m.mu.Lock()
	m.calls = append(m.calls, "ConfigureDriver")
	m.driver = &p
	err := m.configureDriverErr
	doPanic := m.panicIn == "ConfigureDriver"
	m.mu.Unlock()

	if doPanic {
		panic("mock backend: ConfigureDriver")
	}
	return err
}

func (m *MockBackend) ConfigureReceiver(p cct.ReceiverParams) error {
	m.mu.Lock()
	m.calls = append(m.calls, "ConfigureReceiver")
	m.receiver = &p
	err := m.configureReceiverErr
	doPanic := m.panicIn == "ConfigureReceiver"
	m.mu.Unlock()

	if doPanic {
		panic("mock backend: ConfigureReceiver")
	}
	return err
}

func (m *MockBackend) Scan() ([]cct.DriverReport, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "Scan")
	m.scanBegun = true
	gate := m.scanGate
	err := m.scanErr
	reports := m.reports
	doPanic := m.panicIn == "Scan"
	m.mu.Unlock()

	if doPanic {
		panic("mock backend: Scan")
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return reports, nil
}

func (m *MockBackend) Run(tstepSeconds, tstopSeconds float64) error {
	m.mu.Lock()
	m.calls = append(m.calls, fmt.Sprintf("Run(%g,%g)", tstepSeconds, tstopSeconds))
	err := m.runErr
	doPanic := m.panicIn == "Run"
	m.mu.Unlock()

	if doPanic {
		panic("mock backend: Run")
	}
	return err
}

func (m *MockBackend) GenerateReport(outputPath string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, "GenerateReport")
	err := m.reportErr
	path := m.reportPath
	m.mu.Unlock()

	if err != nil {
		return "", err
	}
	if path == "" {
		path = outputPath
	}
	return path, nil
}

// TestLogger provides a logger that captures logs for testing
type TestLogger struct {
	mu      sync.Mutex
	entries []LogEntry
}

type LogEntry struct {
	Level   string
	Message string
	Fields  map[string]interface{}
}

func NewTestLogger() *TestLogger {
	return &TestLogger{
		entries: make([]LogEntry, 0),
	}
}

func (l *TestLogger) log(level, msg string, fields ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry := LogEntry{
		Level:   level,
		Message: msg,
		Fields:  make(map[string]interface{}),
	}

	for i := 0; i+1 < len(fields); i += 2 {
		key := fmt.Sprintf("%v", fields[i])
		entry.Fields[key] = fields[i+1]
	}

	l.entries = append(l.entries, entry)
}

func (l *TestLogger) GetEntries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, len(l.entries))
	copy(result, l.entries)
	return result
}

func (l *TestLogger) GetEntriesByLevel(level string) []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	result := make([]LogEntry, 0)
	for _, entry := range l.entries {
		if entry.Level == level {
			result = append(result, entry)
		}
	}
	return result
}

func (l *TestLogger) HasError() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, entry := range l.entries {
		if entry.Level == "ERROR" {
			return true
		}
	}
	return false
}

// Logger returns a *slog.Logger that writes to this TestLogger
func (l *TestLogger) Logger() *slog.Logger {
	return slog.New(&testLogHandler{logger: l})
}

// testLogHandler implements slog.Handler for TestLogger
type testLogHandler struct {
	logger *TestLogger
	attrs  []slog.Attr
	groups []string
}

func (h *testLogHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

func (h *testLogHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]interface{}, 0, r.NumAttrs()*2)
	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, a.Key, a.Value.Any())
		return true
	})

	for _, attr := range h.attrs {
		fields = append(fields, attr.Key, attr.Value.Any())
	}

	h.logger.log(r.Level.String(), r.Message, fields...)
	return nil
}

func (h *testLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	copy(newAttrs[len(h.attrs):], attrs)
	return &testLogHandler{
		logger: h.logger,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *testLogHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups[len(h.groups)] = name
	return &testLogHandler{
		logger: h.logger,
		attrs:  h.attrs,
		groups: newGroups,
	}
}

// WaitFor waits for a condition to be true with timeout
func WaitFor(t TestingT, condition func() bool, timeout time.Duration, msgAndArgs ...interface{}) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		if condition() {
			return true
		}

		<-ticker.C
		if time.Now().After(deadline) {
			t.Errorf("timeout waiting for condition: %v", msgAndArgs)
			return false
		}
	}
}

// TestingT is a minimal interface for testing
type TestingT interface {
	Errorf(format string, args ...interface{})
	Fatalf(format string, args ...interface{})
}
