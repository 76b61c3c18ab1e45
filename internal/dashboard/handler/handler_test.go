package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"opsdesk/internal/briefs"
	"opsdesk/internal/dashboard/handler/mocks"
	"opsdesk/internal/heuristics"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/requestcontext"
	"opsdesk/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/dashboard-mocks.go -package=mocks Service

type DashboardHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  *chi.Mux
	at      time.Time
}

func TestDashboardHandlerSuite(t *testing.T) {
	suite.Run(t, new(DashboardHandlerSuite))
}

func (s *DashboardHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = testutil.NewRouter(New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register)
	s.at = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func (s *DashboardHandlerSuite) TestShipmentRisk() {
	id := domain.NewShipmentID()
	s.service.EXPECT().ShipmentRisk(gomock.Any(), id).Return(heuristics.RiskScore{
		ShipmentID: id,
		Score:      72,
		Level:      heuristics.RiskHigh,
		DelayDays:  4,
		Factors:    []heuristics.Factor{{Code: "delay", Impact: 32, Detail: "4 day(s) behind promise"}},
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+id.String()+"/risk"))

	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{
		"shipmentId":"`+id.String()+`",
		"score":72,
		"level":"high",
		"delayDays":4,
		"factors":[{"code":"delay","impact":32,"detail":"4 day(s) behind promise"}]
	}`, rr.Body.String())
}

func (s *DashboardHandlerSuite) TestShipmentRiskInvalidID() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/nope/risk"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *DashboardHandlerSuite) TestShipmentRiskNotFound() {
	s.service.EXPECT().ShipmentRisk(gomock.Any(), gomock.Any()).
		Return(heuristics.RiskScore{}, dErrors.New(dErrors.CodeNotFound, "shipment not found"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+domain.NewShipmentID().String()+"/risk"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *DashboardHandlerSuite) TestDealScore() {
	id := domain.NewDealID()
	s.service.EXPECT().DealScore(gomock.Any(), id).Return(heuristics.WinScore{DealID: id, Score: 60}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/deals/"+id.String()+"/score"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "score", float64(60))
}

func (s *DashboardHandlerSuite) TestListNotifications() {
	s.Run("defaults to unacknowledged", func() {
		s.service.EXPECT().Notifications(gomock.Any(), false).Return(nil, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/notifications"))

		testutil.AssertStatusOK(s.T(), rr)
		s.JSONEq(`{"notifications":[]}`, rr.Body.String())
	})

	s.Run("includes acknowledged on request", func() {
		n := heuristics.Notification{
			ID:           domain.NotificationIDFor("stale_deal", "deal:1"),
			Kind:         heuristics.KindStaleDeal,
			Severity:     heuristics.SeverityInfo,
			SubjectType:  heuristics.SubjectDeal,
			SubjectID:    "1",
			Message:      "Deal Acme was last contacted 9 days ago",
			CreatedAt:    s.at,
			Acknowledged: true,
		}
		s.service.EXPECT().Notifications(gomock.Any(), true).Return([]heuristics.Notification{n}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/notifications?includeAcknowledged=true"))

		testutil.AssertStatusOK(s.T(), rr)
		resp := testutil.UnmarshalResponse[NotificationList](s.T(), rr)
		s.Require().Len(resp.Notifications, 1)
		s.Equal(n, resp.Notifications[0])
	})

	s.Run("rejects a malformed flag", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/notifications?includeAcknowledged=maybe"))
		testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
	})
}

func (s *DashboardHandlerSuite) TestAcknowledge() {
	id := domain.NotificationIDFor("cx_risk", "shipment:1")
	asOperator := gomock.Cond(func(ctx context.Context) bool {
		return requestcontext.Operator(ctx) == "ops-test"
	})
	s.service.EXPECT().Acknowledge(asOperator, id).Return(heuristics.Notification{
		ID: id, Kind: heuristics.KindCXRisk, Acknowledged: true,
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/notifications/"+id.String()+"/ack"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "acknowledged", true)
}

func (s *DashboardHandlerSuite) TestAcknowledgeUnknown() {
	s.service.EXPECT().Acknowledge(gomock.Any(), gomock.Any()).
		Return(heuristics.Notification{}, dErrors.New(dErrors.CodeNotFound, "notification not found"))

	id := domain.NotificationIDFor("cx_risk", "shipment:gone")
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/notifications/"+id.String()+"/ack"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *DashboardHandlerSuite) TestDailyBrief() {
	s.service.EXPECT().DailyBrief(gomock.Any()).Return(briefs.Brief{
		Title:       "Daily operations brief 2024-03-15",
		Summary:     "All quiet.",
		Highlights:  []string{"Nothing needs attention."},
		GeneratedAt: s.at,
		Markdown:    "# Daily operations brief 2024-03-15\n",
	}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/briefs/daily"))

	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{
		"title":"Daily operations brief 2024-03-15",
		"summary":"All quiet.",
		"highlights":["Nothing needs attention."],
		"generatedAt":"2024-03-15T12:00:00Z",
		"markdown":"# Daily operations brief 2024-03-15\n"
	}`, rr.Body.String())
}

func (s *DashboardHandlerSuite) TestDailyBriefInternalErrorIsOpaque() {
	s.service.EXPECT().DailyBrief(gomock.Any()).
		Return(briefs.Brief{}, dErrors.Wrap(errors.New("redis: connection refused"), dErrors.CodeInternal, "failed to load acknowledgements"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/briefs/daily"))

	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, "internal_error")
	s.NotContains(rr.Body.String(), "redis")
}

func (s *DashboardHandlerSuite) TestShipmentBrief() {
	id := domain.NewShipmentID()
	s.service.EXPECT().ShipmentBrief(gomock.Any(), id).Return(briefs.Brief{Title: "Shipment SH-1"}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+id.String()+"/brief"))

	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "title", "Shipment SH-1")
}

func (s *DashboardHandlerSuite) TestSettings() {
	s.service.EXPECT().Settings().Return(heuristics.DefaultSettings())

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/settings"))

	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[heuristics.Settings](s.T(), rr)
	s.Equal(heuristics.DefaultSettings(), *resp)
}
