package client_test

import (
	"context"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/greenscreen/internal/testutils"
	"github.com/aretw0/greenscreen/pkg/catalog"
	"github.com/aretw0/greenscreen/pkg/client"
	"github.com/aretw0/greenscreen/pkg/datastream"
	"github.com/aretw0/greenscreen/pkg/domain"
	"github.com/aretw0/greenscreen/pkg/host"
	"github.com/aretw0/greenscreen/pkg/screen"
)

const navigationYAML = `
initial_screen: sign_on
credentials:
  - {user_id: ALICE, password: SECRET1}
entities:
  loan:
    key: loan_number
    records:
      "0012345678": {borrower_name: JANE Q BORROWER, principal_balance: "182450.17"}
rules:
  - from: sign_on
    key: ENTER
    requires: [user_id, password]
    validation: credentials
    to: loan_inquiry
  - from: loan_inquiry
    key: ENTER
    requires: [loan_number]
    conditions:
      - {field: loan_number, op: matches, value: '^\d{10}$'}
    validation: loan_lookup
    to: loan_details
  - from: loan_details
    key: PF3
    to: loan_inquiry
`

func testCatalog(t *testing.T) *domain.Catalog {
	t.Helper()
	cat, err := catalog.NewBuilder().
		Screen("sign_on").Identifier(1, 2, "SIGN ON").
		Input("user_id", 10, 30, 8).
		Input("password", 12, 30, 8, domain.AttrHidden).
		Screen("loan_inquiry").Identifier(1, 2, "LOAN INQUIRY").
		Input("loan_number", 6, 30, 10, domain.AttrNumeric).
		Screen("loan_details").Identifier(1, 2, "LOAN DETAILS").
		Display("borrower_name", 5, 35, 30).
		Display("principal_balance", 6, 35, 15).
		Build()
	require.NoError(t, err)
	return cat
}

func startHost(t *testing.T, cat *domain.Catalog) domain.ConnectionParams {
	t.Helper()
	nav, err := catalog.ParseNavigation([]byte(navigationYAML), "test", cat)
	require.NoError(t, err)
	addr := testutils.ServeLoopback(t, host.NewServer(host.NewNavigator(cat, nav)))

	return domain.ConnectionParams{
		Host:            "{{ host }}",
		Port:            addr.Port,
		ConnectTimeout:  2 * time.Second,
		ResponseTimeout: 3 * time.Second,
		DeviceName:      "LU01",
	}
}

func loanWorkflow(conn domain.ConnectionParams) *domain.Workflow {
	return &domain.Workflow{
		Name:       "loan-balance",
		Connection: conn,
		Steps: []domain.WorkflowStep{
			{Name: "sign-on", Navigate: &domain.NavigateStep{
				Fields: map[string]string{"user_id": "{{ user }}", "password": "{{ password }}"},
				Key:    "ENTER",
				Expect: "loan_inquiry",
			}},
			{Name: "lookup", Retries: 2, RetryDelay: 10 * time.Millisecond, Navigate: &domain.NavigateStep{
				Fields: map[string]string{"loan_number": "{{ loan_number }}"},
				Key:    "ENTER",
				Expect: "loan_details",
			}},
			{Name: "read-details", Scrape: &domain.ScrapeStep{Fields: []string{"borrower_name", "principal_balance"}}},
			{Name: "check", Assert: &domain.AssertStep{
				Screen:  "loan_details",
				NoError: &domain.ErrorCheck{Row: 24},
				Fields: []domain.FieldAssertion{
					{Field: "borrower_name", Op: domain.CompareEquals, Value: "{{ borrower_name }}"},
					{Field: "principal_balance", Op: domain.CompareStartsWith, Value: "1824"},
				},
			}},
		},
	}
}

func vars(loan string) map[string]string {
	return map[string]string{"host": "127.0.0.1", "user": "alice", "password": "SECRET1", "loan_number": loan}
}

func TestEngine_LoanBalance(t *testing.T) {
	cat := testCatalog(t)
	wf := loanWorkflow(startHost(t, cat))

	var mu sync.Mutex
	var steps []string
	engine := client.NewEngine(cat, client.WithHooks(domain.ClientHooks{
		OnStepFinish: func(_ context.Context, ev *domain.StepEvent) {
			mu.Lock()
			defer mu.Unlock()
			steps = append(steps, ev.Step)
		},
	}))

	res := engine.Run(context.Background(), wf, vars("0012345678"))
	require.True(t, res.Success, res.Message)
	assert.Equal(t, domain.CodeOK, res.Code)
	assert.Empty(t, res.FailedStep)
	assert.NotEmpty(t, res.RunID)
	assert.Equal(t, "JANE Q BORROWER", res.Data["borrower_name"])
	assert.Equal(t, "182450.17", res.Data["principal_balance"])
	assert.Equal(t, []string{"sign-on", "lookup", "read-details", "check"}, steps)
	assert.NotEmpty(t, res.Log)
	assert.False(t, res.Finished.Before(res.Started))
}

func TestEngine_RetriesThenReportsHostError(t *testing.T) {
	cat := testCatalog(t)
	wf := loanWorkflow(startHost(t, cat))

	attempts := 0
	engine := client.NewEngine(cat, client.WithHooks(domain.ClientHooks{
		OnStepStart: func(_ context.Context, ev *domain.StepEvent) {
			if ev.Step == "lookup" {
				attempts++
			}
		},
	}))

	res := engine.Run(context.Background(), wf, vars("9999999999"))
	assert.False(t, res.Success)
	assert.Equal(t, domain.CodeScreenMismatch, res.Code)
	assert.Equal(t, "lookup", res.FailedStep)
	assert.Contains(t, res.Message, "LOAN NOT FOUND")
	assert.Equal(t, 3, attempts)
	assert.Empty(t, res.Data)

	var dumped bool
	for _, entry := range res.Log {
		if entry.Severity == domain.SeverityDebug && entry.Step == "lookup" {
			dumped = true
			assert.Contains(t, entry.Message, "LOAN INQUIRY")
		}
	}
	assert.True(t, dumped, "failure should log the screen")
}

func TestEngine_ScrapeUndefinedFields(t *testing.T) {
	cat := testCatalog(t)
	wf := loanWorkflow(startHost(t, cat))
	wf.Steps = wf.Steps[:3]
	wf.Steps[2].Scrape.Fields = []string{"borrower_name", "escrow_balance", "late_fee"}

	res := client.NewEngine(cat).Run(context.Background(), wf, vars("0012345678"))
	assert.False(t, res.Success)
	assert.Equal(t, domain.CodeFieldNotFound, res.Code)
	assert.Equal(t, "read-details", res.FailedStep)
	assert.Contains(t, res.Message, "escrow_balance, late_fee")
	assert.Equal(t, map[string]string{"borrower_name": "JANE Q BORROWER"}, res.Data)
}

func TestEngine_UnresolvedPlaceholderIsNotRetried(t *testing.T) {
	cat := testCatalog(t)
	wf := loanWorkflow(startHost(t, cat))

	v := vars("0012345678")
	delete(v, "loan_number")
	attempts := 0
	engine := client.NewEngine(cat, client.WithHooks(domain.ClientHooks{
		OnStepStart: func(_ context.Context, ev *domain.StepEvent) {
			if ev.Step == "lookup" {
				attempts++
			}
		},
	}))

	res := engine.Run(context.Background(), wf, v)
	assert.Equal(t, domain.CodeUnresolvedPlaceholder, res.Code)
	assert.Equal(t, "lookup", res.FailedStep)
	assert.Equal(t, 1, attempts)
}

func TestEngine_ConnectFailure(t *testing.T) {
	cat := testCatalog(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	wf := loanWorkflow(domain.ConnectionParams{Host: "127.0.0.1", Port: port, ConnectTimeout: time.Second})
	res := client.NewEngine(cat).Run(context.Background(), wf, nil)
	assert.False(t, res.Success)
	assert.Equal(t, "connect", res.FailedStep)
	assert.Equal(t, domain.CodeIOError, res.Code)
}

func TestEngine_UnresolvedHost(t *testing.T) {
	cat := testCatalog(t)
	wf := loanWorkflow(domain.ConnectionParams{Host: "{{ host }}", Port: 23})
	res := client.NewEngine(cat).Run(context.Background(), wf, nil)
	assert.Equal(t, domain.CodeUnresolvedPlaceholder, res.Code)
	assert.Equal(t, "connect", res.FailedStep)
}

// fakeTerminal replays prepared screens and records what was submitted.
type fakeTerminal struct {
	buf     *screen.Buffer
	next    []*screen.Buffer
	submits [][]datastream.FieldWrite
}

func paint(t *testing.T, cat *domain.Catalog, id string, values map[string]string, errText string) *screen.Buffer {
	t.Helper()
	def, ok := cat.Screen(id)
	require.True(t, ok)
	buf, err := datastream.DecodeScreen(datastream.WriteScreen(def, values, errText), nil)
	require.NoError(t, err)
	return buf
}

func (f *fakeTerminal) Screen() *screen.Buffer { return f.buf }

func (f *fakeTerminal) Submit(_ context.Context, _ byte, writes []datastream.FieldWrite) error {
	f.submits = append(f.submits, writes)
	if len(f.next) > 0 {
		f.buf, f.next = f.next[0], f.next[1:]
	}
	return nil
}

func (f *fakeTerminal) Close() error { return nil }

func TestEngine_NavigateFillsExactFieldLength(t *testing.T) {
	cat := testCatalog(t)
	term := &fakeTerminal{buf: paint(t, cat, "sign_on", nil, "")}
	wf := &domain.Workflow{Name: "pad", Steps: []domain.WorkflowStep{
		{Name: "sign-on", Navigate: &domain.NavigateStep{
			Fields: map[string]string{"user_id": "BOB", "password": "AVERYLONGPASSWORD"},
			Key:    "ENTER",
		}},
	}}

	res := client.NewEngine(cat).Execute(context.Background(), term, wf, nil)
	require.True(t, res.Success, res.Message)
	require.Len(t, term.submits, 1)
	writes := term.submits[0]
	require.Len(t, writes, 2)

	// Ordered by screen position.
	assert.Equal(t, domain.Address(10, 30), writes[0].Address)
	assert.Equal(t, "BOB     ", writes[0].Value)
	assert.Equal(t, domain.Address(12, 30), writes[1].Address)
	assert.Equal(t, "AVERYLON", writes[1].Value)
	assert.Equal(t, "BOB     ", term.buf.Read(10, 30, 8))
}

func TestEngine_AssertErrorLine(t *testing.T) {
	cat := testCatalog(t)
	term := &fakeTerminal{buf: paint(t, cat, "loan_inquiry", nil, "LOAN NOT FOUND")}

	wf := &domain.Workflow{Name: "errors", Steps: []domain.WorkflowStep{
		{Name: "clean", Assert: &domain.AssertStep{NoError: &domain.ErrorCheck{Row: 24, Text: "not found"}}},
	}}
	res := client.NewEngine(cat).Execute(context.Background(), term, wf, nil)
	assert.Equal(t, domain.CodeErrorTextDetected, res.Code)
	assert.Contains(t, res.Message, "LOAN NOT FOUND")

	wf.Steps[0].Assert.NoError.Text = "INVALID"
	res = client.NewEngine(cat).Execute(context.Background(), term, wf, nil)
	assert.True(t, res.Success, res.Message)
}

func TestEngine_AssertScreenMismatch(t *testing.T) {
	cat := testCatalog(t)
	term := &fakeTerminal{buf: paint(t, cat, "loan_inquiry", nil, "")}

	wf := &domain.Workflow{Name: "where", Steps: []domain.WorkflowStep{
		{Name: "on-details", Assert: &domain.AssertStep{Screen: "loan_details"}},
	}}
	res := client.NewEngine(cat, client.WithScreenDumps(false)).Execute(context.Background(), term, wf, nil)
	assert.Equal(t, domain.CodeScreenMismatch, res.Code)
	assert.Contains(t, res.Message, `showing screen "loan_inquiry"`)
	for _, entry := range res.Log {
		assert.NotEqual(t, domain.SeverityDebug, entry.Severity)
	}
}

func TestEngine_UnknownScreen(t *testing.T) {
	cat := testCatalog(t)
	term := &fakeTerminal{buf: screen.NewBuffer()}
	wf := &domain.Workflow{Name: "blank", Steps: []domain.WorkflowStep{
		{Name: "press", Navigate: &domain.NavigateStep{Key: "CLEAR"}},
	}}
	res := client.NewEngine(cat).Execute(context.Background(), term, wf, nil)
	assert.Equal(t, domain.CodeUnknownScreen, res.Code)
	assert.Empty(t, term.submits)
}

func TestEngine_CancelDuringRetryDelay(t *testing.T) {
	cat := testCatalog(t)
	term := &fakeTerminal{buf: paint(t, cat, "loan_inquiry", nil, "")}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	engine := client.NewEngine(cat, client.WithHooks(domain.ClientHooks{
		OnStepFinish: func(context.Context, *domain.StepEvent) { cancel() },
	}))
	wf := &domain.Workflow{Name: "wait", Steps: []domain.WorkflowStep{
		{Name: "on-details", Retries: 5, RetryDelay: time.Hour, Assert: &domain.AssertStep{Screen: "loan_details"}},
	}}

	done := make(chan *domain.Result, 1)
	go func() { done <- engine.Execute(ctx, term, wf, nil) }()
	select {
	case res := <-done:
		assert.Equal(t, domain.CodeCancelled, res.Code)
		assert.Equal(t, "on-details", res.FailedStep)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not stop on cancellation")
	}
}
