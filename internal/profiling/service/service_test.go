package service_test

//go:generate mockgen -source=service.go -destination=mocks/submitter_mock.go -package=mocks Submitter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"offsite/internal/audit"
	"offsite/internal/platform/config"
	"offsite/internal/platform/logger"
	"offsite/internal/platform/metrics"
	"offsite/internal/profiling/draft"
	"offsite/internal/profiling/ingest"
	"offsite/internal/profiling/models"
	"offsite/internal/profiling/service"
	"offsite/internal/profiling/service/mocks"
	"offsite/internal/profiling/validation"
	dErrors "offsite/pkg/domain-errors"
	"offsite/pkg/platform/sentinel"
)

const validCompanyID = "a3f2c1d4-1b2a-4e3d-8a9b-123456789abc"

// promauto metrics register globally; one instance serves the whole binary.
var testMetrics = metrics.New()

type WizardServiceSuite struct {
	suite.Suite
	ctx       context.Context
	ctrl      *gomock.Controller
	submitter *mocks.MockSubmitter
	drafts    *draft.InMemoryStore
	trail     *audit.MemoryPublisher
	svc       *service.Service
}

func TestWizardServiceSuite(t *testing.T) {
	suite.Run(t, new(WizardServiceSuite))
}

func (s *WizardServiceSuite) SetupTest() {
	s.reset()
}

// SetupSubTest rebuilds the fixture for every s.Run so drafts and audit
// events written by one subtest never leak into the next.
func (s *WizardServiceSuite) SetupSubTest() {
	s.reset()
}

func (s *WizardServiceSuite) reset() {
	s.ctx = context.Background()
	s.ctrl = gomock.NewController(s.T())
	s.submitter = mocks.NewMockSubmitter(s.ctrl)
	s.drafts = draft.NewInMemoryStore()
	s.trail = audit.NewMemoryPublisher()
	s.svc = service.NewService(s.drafts, s.submitter, s.trail, testMetrics, logger.New())
}

// completeRecord satisfies every step's rules.
func completeRecord() *models.ProfilingRecord {
	r := models.NewRecord()
	r.CompanyID = validCompanyID
	r.ReportingPeriod = models.ReportingPeriod{Start: "2024-01-01", End: "2024-12-31"}
	r.BoardMembers = append(r.BoardMembers, models.BoardMember{FullName: "Ada Okafor", Role: "Chair", AppointedOn: "2020-06-15"})
	r.Committees = append(r.Committees, models.Committee{Name: "Audit", Chair: "Ada Okafor", MemberCount: 3})
	r.Products = append(r.Products, models.Product{Name: "Brokerage", Category: "dealing"})
	r.Clients = append(r.Clients, models.ClientSegment{Segment: "retail", Count: 240})
	r.FinancialStatement.PeriodStart = "2024-01-01"
	r.FinancialStatement.PeriodEnd = "2024-12-31"
	r.FinancialStatement.TotalRevenue = 200000
	r.FinancialStatement.OperatingCosts = 150000
	r.FinancialStatement.ProfitBeforeTax = 30000
	r.FinancialStatement.IncomeItems = append(r.FinancialStatement.IncomeItems, models.IncomeItem{Source: "commissions", Amount: 120000})
	r.BalanceSheet.PeriodEnd = "2024-12-31"
	r.BalanceSheet.CurrentAssets = 150000
	r.BalanceSheet.CurrentLiabilities = 90000
	r.BalanceSheet.Assets = append(r.BalanceSheet.Assets, models.BalanceLine{Description: "cash", Amount: 90000})
	r.BalanceSheet.Liabilities = append(r.BalanceSheet.Liabilities, models.BalanceLine{Description: "payables", Amount: 20000})
	r.ClientAssets = append(r.ClientAssets, models.ClientAsset{AssetType: "securities", Value: 500000})
	r.CapitalPosition.CalculationDate = "2024-12-31"
	r.CapitalPosition.NetCapital = 120
	r.CapitalPosition.RequiredCapital = 100
	return r
}

// startAtFinalStep creates a session holding a complete record and walks it
// to the terminal review step. Returns the session id.
func (s *WizardServiceSuite) startAtFinalStep(record *models.ProfilingRecord) string {
	st, err := s.svc.Start(s.ctx, record)
	s.Require().NoError(err)
	for i := validation.FirstStep; i < validation.LastStep; i++ {
		st, err = s.svc.Advance(st.SessionID)
		s.Require().NoError(err)
		s.Require().Empty(st.FieldErrors, "step %d should advance cleanly", i)
	}
	s.Require().Equal(validation.LastStep, st.Step)
	return st.SessionID
}

func (s *WizardServiceSuite) TestStart() {
	s.Run("caller seed wins over stored draft", func() {
		stored := models.NewRecord()
		stored.CompanyID = "b4e3d2c5-2c3b-4f4e-9bac-23456789abcd"
		s.Require().NoError(s.drafts.SaveDraft(s.ctx, stored))

		st, err := s.svc.Start(s.ctx, completeRecord())
		s.Require().NoError(err)
		s.Equal(validCompanyID, st.Record.CompanyID)
	})

	s.Run("stored draft restores when no seed given", func() {
		stored := completeRecord()
		s.Require().NoError(s.drafts.SaveDraft(s.ctx, stored))

		st, err := s.svc.Start(s.ctx, nil)
		s.Require().NoError(err)
		s.Equal(stored, st.Record)
	})

	s.Run("empty skeleton when neither exists", func() {
		st, err := s.svc.Start(s.ctx, nil)
		s.Require().NoError(err)
		s.Equal(validation.FirstStep, st.Step)
		s.Empty(st.Record.CompanyID)
		s.Empty(st.Record.BoardMembers)
	})

	s.Run("remembered company id pre-fills a blank record", func() {
		s.Require().NoError(s.drafts.SaveCompanyID(s.ctx, validCompanyID))

		st, err := s.svc.Start(s.ctx, nil)
		s.Require().NoError(err)
		s.Equal(validCompanyID, st.Record.CompanyID)
	})

	s.Run("emits a session started audit event", func() {
		_, err := s.svc.Start(s.ctx, nil)
		s.Require().NoError(err)
		events := s.trail.Events()
		s.Require().NotEmpty(events)
		s.Equal(audit.EventSessionStarted, events[len(events)-1].Type)
	})
}

func (s *WizardServiceSuite) TestAdvance() {
	s.Run("blocks on the first failing rule and exposes field errors", func() {
		record := completeRecord()
		record.BoardMembers = nil
		st, err := s.svc.Start(s.ctx, record)
		s.Require().NoError(err)

		st, err = s.svc.Advance(st.SessionID)
		s.Require().NoError(err)
		s.Equal(validation.FirstStep, st.Step)
		s.Contains(st.FieldErrors, "boardMembers")
	})

	s.Run("advances and clears errors once data is fixed", func() {
		record := completeRecord()
		record.BoardMembers = nil
		st, err := s.svc.Start(s.ctx, record)
		s.Require().NoError(err)
		sid := st.SessionID
		_, err = s.svc.Advance(sid)
		s.Require().NoError(err)

		_, err = s.svc.UpdateRecord(sid, completeRecord())
		s.Require().NoError(err)

		st, err = s.svc.Advance(sid)
		s.Require().NoError(err)
		s.Equal(validation.FirstStep+1, st.Step)
		s.Empty(st.FieldErrors)
	})

	s.Run("step is capped at the final step", func() {
		sid := s.startAtFinalStep(completeRecord())
		st, err := s.svc.Advance(sid)
		s.Require().NoError(err)
		s.Equal(validation.LastStep, st.Step)
	})
}

func (s *WizardServiceSuite) TestRetreat() {
	s.Run("always succeeds and never validates", func() {
		st, err := s.svc.Start(s.ctx, completeRecord())
		s.Require().NoError(err)
		sid := st.SessionID
		_, err = s.svc.Advance(sid)
		s.Require().NoError(err)

		// Break the record; retreat must still work.
		_, err = s.svc.UpdateRecord(sid, models.NewRecord())
		s.Require().NoError(err)

		st, err = s.svc.Retreat(sid)
		s.Require().NoError(err)
		s.Equal(validation.FirstStep, st.Step)
	})

	s.Run("step is floored at the first step", func() {
		st, err := s.svc.Start(s.ctx, nil)
		s.Require().NoError(err)
		st, err = s.svc.Retreat(st.SessionID)
		s.Require().NoError(err)
		s.Equal(validation.FirstStep, st.Step)
	})
}

func (s *WizardServiceSuite) TestSubmit() {
	s.Run("happy path discards the record and deletes the draft", func() {
		s.Require().NoError(s.drafts.SaveDraft(s.ctx, completeRecord()))
		sid := s.startAtFinalStep(completeRecord())

		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(map[string]any{"id": "sub-1"}, nil)

		res, err := s.svc.Submit(s.ctx, sid)
		s.Require().NoError(err)
		s.Equal("sub-1", res.Response["id"])

		st, err := s.svc.SessionState(sid)
		s.Require().NoError(err)
		s.True(st.Completed)
		s.Nil(st.Record)

		_, err = s.drafts.LoadDraft(s.ctx)
		s.Require().Error(err)

		events := s.trail.Events()
		s.Equal(audit.EventSubmissionAccepted, events[len(events)-1].Type)
	})

	s.Run("recomputes derived ratios into the outgoing payload", func() {
		sid := s.startAtFinalStep(completeRecord())

		var sent map[string]any
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, payload map[string]any) (map[string]any, error) {
				sent = payload
				return map[string]any{}, nil
			})

		_, err := s.svc.Submit(s.ctx, sid)
		s.Require().NoError(err)

		bs := sent["balanceSheet"].(map[string]any)
		s.Equal(60000.0, bs["workingCapital"])
		cp := sent["capitalPosition"].(map[string]any)
		s.InDelta(1.2, cp["capitalAdequacyRatio"], 1e-9)
		s.Equal(true, cp["isCompliant"])
		fs := sent["financialStatement"].(map[string]any)
		s.InDelta(0.25, fs["grossMargin"], 1e-9)
		s.InDelta(0.15, fs["profitMargin"], 1e-9)
	})

	s.Run("rejects before any network call when company id is invalid", func() {
		sid := s.startAtFinalStep(completeRecord())

		// Corrupt the id after navigation: the submit-time gate must still
		// fail closed.
		broken := completeRecord()
		broken.CompanyID = "not-a-uuid"
		_, err := s.svc.UpdateRecord(sid, broken)
		s.Require().NoError(err)

		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)

		_, err = s.svc.Submit(s.ctx, sid)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidIdentifier))
	})

	s.Run("not reachable before the final step", func() {
		record := completeRecord()
		record.BoardMembers = nil // empty governance list pins the wizard to step 1
		st, err := s.svc.Start(s.ctx, record)
		s.Require().NoError(err)
		sid := st.SessionID

		st, err = s.svc.Advance(sid)
		s.Require().NoError(err)
		s.Equal(validation.FirstStep, st.Step)

		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Times(0)

		_, err = s.svc.Submit(s.ctx, sid)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("failure keeps the record and captures diagnostics", func() {
		sid := s.startAtFinalStep(completeRecord())

		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, &ingest.SubmitError{
				Status:  500,
				Message: "Internal Server Error",
				Payload: "Internal Server Error",
				Raw:     "Internal Server Error",
			})

		_, err := s.svc.Submit(s.ctx, sid)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeUpstream))

		st, err := s.svc.SessionState(sid)
		s.Require().NoError(err)
		s.False(st.Completed)
		s.NotNil(st.Record, "a failed submission must not destroy the record")

		diags, err := s.svc.SessionDiagnostics(sid)
		s.Require().NoError(err)
		s.NotNil(diags.LastRequest)
		s.Equal(validCompanyID, diags.LastRequest["companyId"])
		s.Equal("Internal Server Error", diags.LastResponse)
		s.Equal("Internal Server Error", diags.LastError)

		events := s.trail.Events()
		s.Equal(audit.EventSubmissionRejected, events[len(events)-1].Type)
	})

	s.Run("transport failure emits a failed audit event", func() {
		sid := s.startAtFinalStep(completeRecord())

		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			Return(nil, &ingest.SubmitError{Message: "connection refused"})

		_, err := s.svc.Submit(s.ctx, sid)
		s.Require().Error(err)

		events := s.trail.Events()
		s.Equal(audit.EventSubmissionFailed, events[len(events)-1].Type)
	})

	s.Run("user can resubmit after a failure", func() {
		sid := s.startAtFinalStep(completeRecord())

		gomock.InOrder(
			s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
				Return(nil, &ingest.SubmitError{Status: 502, Message: "backend unavailable"}),
			s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
				Return(map[string]any{"id": "sub-2"}, nil),
		)

		_, err := s.svc.Submit(s.ctx, sid)
		s.Require().Error(err)

		res, err := s.svc.Submit(s.ctx, sid)
		s.Require().NoError(err)
		s.Equal("sub-2", res.Response["id"])
	})

	s.Run("second submit is rejected while one is in flight", func() {
		sid := s.startAtFinalStep(completeRecord())

		entered := make(chan struct{})
		release := make(chan struct{})
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, map[string]any) (map[string]any, error) {
				close(entered)
				<-release
				return map[string]any{}, nil
			})

		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.svc.Submit(s.ctx, sid)
			s.NoError(err)
		}()

		<-entered
		_, err := s.svc.Submit(s.ctx, sid)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))

		close(release)
		wg.Wait()
	})

	s.Run("completed session rejects further operations", func() {
		sid := s.startAtFinalStep(completeRecord())
		s.submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).Return(map[string]any{}, nil)
		_, err := s.svc.Submit(s.ctx, sid)
		s.Require().NoError(err)

		_, err = s.svc.Advance(sid)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
		_, err = s.svc.Submit(s.ctx, sid)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func (s *WizardServiceSuite) TestSaveDraft() {
	s.Run("persists the record verbatim and remembers the company id", func() {
		record := completeRecord()
		st, err := s.svc.Start(s.ctx, record)
		s.Require().NoError(err)

		s.Require().NoError(s.svc.SaveDraft(s.ctx, st.SessionID))

		stored, err := s.drafts.LoadDraft(s.ctx)
		s.Require().NoError(err)
		s.Equal(record, stored)

		companyID, err := s.drafts.LoadCompanyID(s.ctx)
		s.Require().NoError(err)
		s.Equal(validCompanyID, companyID)

		events := s.trail.Events()
		s.Equal(audit.EventDraftSaved, events[len(events)-1].Type)
	})

	s.Run("does not remember a malformed company id", func() {
		record := models.NewRecord()
		record.CompanyID = "not-a-uuid"
		st, err := s.svc.Start(s.ctx, record)
		s.Require().NoError(err)

		s.Require().NoError(s.svc.SaveDraft(s.ctx, st.SessionID))

		_, err = s.drafts.LoadCompanyID(s.ctx)
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *WizardServiceSuite) TestUnknownSession() {
	_, err := s.svc.SessionState("unknown")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = s.svc.SessionDiagnostics("unknown")
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

// TestSubmit_RawTextResponseEndToEnd drives the real ingest client against a
// backend answering with plain text, proving the raw body survives all the
// way into the wizard diagnostics.
func TestSubmit_RawTextResponseEndToEnd(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("Internal Server Error"))
	}))
	defer backend.Close()

	client := ingest.New(config.IngestConfig{URL: backend.URL, SubmitTimeout: 5 * time.Second})
	svc := service.NewService(draft.NewInMemoryStore(), client, audit.NewMemoryPublisher(), testMetrics, logger.New())

	ctx := context.Background()
	st, err := svc.Start(ctx, completeRecord())
	require.NoError(t, err)
	sid := st.SessionID
	for i := validation.FirstStep; i < validation.LastStep; i++ {
		_, err := svc.Advance(sid)
		require.NoError(t, err)
	}

	_, err = svc.Submit(ctx, sid)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeUpstream))

	diags, err := svc.SessionDiagnostics(sid)
	require.NoError(t, err)
	require.Equal(t, "Internal Server Error", diags.LastResponse)
	require.Equal(t, "Internal Server Error", diags.LastError)
}

// submitDurationSum reads the running sample sum of the submit latency
// histogram. The metrics instance is package-global, so tests assert on the
// delta around their own observation.
func submitDurationSum(t *testing.T) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, testMetrics.SubmitDuration.Write(m))
	return m.GetHistogram().GetSampleSum()
}

// TestSubmitLatencyFollowsInjectedClock pins the latency measurement to the
// injected clock: both ends of the interval must come from the same source,
// or a test clock would produce a nonsense reading.
func TestSubmitLatencyFollowsInjectedClock(t *testing.T) {
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := service.NewService(draft.NewInMemoryStore(), submitter, audit.NewMemoryPublisher(), testMetrics, logger.New(),
		service.WithClock(func() time.Time { return now }))

	ctx := context.Background()
	st, err := svc.Start(ctx, completeRecord())
	require.NoError(t, err)
	sid := st.SessionID
	for i := validation.FirstStep; i < validation.LastStep; i++ {
		_, err := svc.Advance(sid)
		require.NoError(t, err)
	}

	submitter.EXPECT().Submit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, map[string]any) (map[string]any, error) {
			now = now.Add(150 * time.Millisecond)
			return map[string]any{}, nil
		})

	before := submitDurationSum(t)
	_, err = svc.Submit(ctx, sid)
	require.NoError(t, err)

	require.InDelta(t, 0.150, submitDurationSum(t)-before, 1e-9)
}

// TestIdleSessionsExpireWithoutNewTraffic verifies the idle TTL is enforced
// on plain lookups: a session left untouched disappears even when no new
// sessions ever start.
func TestIdleSessionsExpireWithoutNewTraffic(t *testing.T) {
	ctrl := gomock.NewController(t)
	submitter := mocks.NewMockSubmitter(ctrl)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	svc := service.NewService(draft.NewInMemoryStore(), submitter, audit.NewMemoryPublisher(), testMetrics, logger.New(),
		service.WithClock(func() time.Time { return now }),
		service.WithIdleTTL(30*time.Minute))

	ctx := context.Background()
	st, err := svc.Start(ctx, completeRecord())
	require.NoError(t, err)
	sid := st.SessionID

	// Activity refreshes the deadline.
	now = now.Add(20 * time.Minute)
	_, err = svc.Advance(sid)
	require.NoError(t, err)

	now = now.Add(20 * time.Minute)
	_, err = svc.SessionState(sid)
	require.NoError(t, err, "a session within its TTL must survive")

	now = now.Add(31 * time.Minute)
	_, err = svc.SessionState(sid)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
