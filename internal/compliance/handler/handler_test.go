package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"opsdesk/internal/compliance"
	"opsdesk/internal/compliance/handler/mocks"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/compliance-mocks.go -package=mocks Service

type ComplianceHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  *chi.Mux
	at      time.Time
}

func TestComplianceHandlerSuite(t *testing.T) {
	suite.Run(t, new(ComplianceHandlerSuite))
}

func (s *ComplianceHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	s.router = testutil.NewRouter(New(s.service, slog.New(slog.NewTextHandler(io.Discard, nil))).Register)
	s.at = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
}

func (s *ComplianceHandlerSuite) post(path, body string) *http.Request {
	req := testutil.NewRequest(s.T(), http.MethodPost, path)
	req.Body = io.NopCloser(strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func (s *ComplianceHandlerSuite) TestCheckReturnsResultShape() {
	s.service.EXPECT().Check(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sh compliance.Shipment) (compliance.Result, error) {
			s.Equal(compliance.Text("8471"), sh.HSCode)
			s.Equal([]string{"ISF"}, sh.DocumentList())
			return compliance.BuildResult([]compliance.Finding{
				{RuleID: compliance.RuleMissingShipper, Message: "Missing shipper information"},
			}, s.at), nil
		})

	rr := testutil.DoRequest(s.router, s.post("/compliance/check", `{"hsCode":8471,"documents":["ISF"]}`))

	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{
		"status":"flagged",
		"findings":["Missing shipper information"],
		"rules":["missing_shipper"],
		"checkedAt":"2024-03-15T12:00:00.000Z"
	}`, rr.Body.String())
}

func (s *ComplianceHandlerSuite) TestCheckRejectsNonRecords() {
	for _, body := range []string{`[]`, `"LAX"`, `42`, `null`} {
		s.Run(body, func() {
			rr := testutil.DoRequest(s.router, s.post("/compliance/check", body))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
		})
	}
}

func (s *ComplianceHandlerSuite) TestCheckEmptyBody() {
	rr := testutil.DoRequest(s.router, s.post("/compliance/check", ``))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "bad_request")
}

func (s *ComplianceHandlerSuite) TestCheckServiceFailureHidesDetail() {
	s.service.EXPECT().Check(gomock.Any(), gomock.Any()).
		Return(compliance.Result{}, dErrors.New(dErrors.CodeInternal, "failed to record compliance check"))

	rr := testutil.DoRequest(s.router, s.post("/compliance/check", `{}`))
	testutil.AssertStatus(s.T(), rr, http.StatusInternalServerError)
	s.JSONEq(`{"error":"internal_error"}`, rr.Body.String())
}

func (s *ComplianceHandlerSuite) TestCheckBatch() {
	s.service.EXPECT().CheckBatch(gomock.Any(), gomock.Len(2)).
		Return([]compliance.Result{
			compliance.BuildResult(nil, s.at),
			compliance.BuildResult([]compliance.Finding{{RuleID: compliance.RuleMissingETA, Message: "Missing ETA or arrival date"}}, s.at),
		}, nil)

	rr := testutil.DoRequest(s.router, s.post("/compliance/check/batch", `{"shipments":[{"port":"Oslo"},{}]}`))
	testutil.AssertStatusOK(s.T(), rr)

	resp := testutil.UnmarshalResponse[BatchCheckResponse](s.T(), rr)
	s.Require().Len(resp.Results, 2)
	s.Equal(compliance.StatusCleared, resp.Results[0].Status)
	s.Equal(compliance.StatusFlagged, resp.Results[1].Status)
}

func (s *ComplianceHandlerSuite) TestCheckBatchNamesBadEntry() {
	rr := testutil.DoRequest(s.router, s.post("/compliance/check/batch", `{"shipments":[{},"nope"]}`))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *ComplianceHandlerSuite) TestCheckBatchRequiresShipments() {
	rr := testutil.DoRequest(s.router, s.post("/compliance/check/batch", `{}`))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *ComplianceHandlerSuite) TestCheckStored() {
	id := domain.NewShipmentID()
	s.service.EXPECT().CheckStored(gomock.Any(), id).Return(compliance.BuildResult(nil, s.at), nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+id.String()+"/compliance"))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "status", "cleared")
}

func (s *ComplianceHandlerSuite) TestCheckStoredNotFound() {
	id := domain.NewShipmentID()
	s.service.EXPECT().CheckStored(gomock.Any(), id).Return(compliance.Result{}, dErrors.New(dErrors.CodeNotFound, "shipment not found"))

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+id.String()+"/compliance"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}
