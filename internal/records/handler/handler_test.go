package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"opsdesk/internal/compliance"
	"opsdesk/internal/records"
	"opsdesk/internal/records/handler/mocks"
	"opsdesk/pkg/domain"
	dErrors "opsdesk/pkg/domain-errors"
	"opsdesk/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/records-mocks.go -package=mocks Service

type RecordsHandlerSuite struct {
	suite.Suite
	service *mocks.MockService
	router  *chi.Mux
}

func TestRecordsHandlerSuite(t *testing.T) {
	suite.Run(t, new(RecordsHandlerSuite))
}

func (s *RecordsHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s.router = testutil.NewRouter(New(s.service, logger).Register)
}

func (s *RecordsHandlerSuite) TestCreateShipmentDecodesLenientFields() {
	created := &records.Shipment{ID: domain.NewShipmentID(), Reference: "SHP-7"}
	s.service.EXPECT().CreateShipment(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, sh *records.Shipment) (*records.Shipment, error) {
			s.Equal("SHP-7", sh.Reference)
			s.Equal(compliance.Text("8471"), sh.HSCode)
			w, ok := sh.Weight.Get()
			s.True(ok)
			s.InDelta(26000, w, 0.001)
			s.True(bool(sh.ISFFiled))
			return created, nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/shipments", map[string]any{
		"reference": " SHP-7 ",
		"hsCode":    8471,
		"weight":    "26000",
		"isfFiled":  "yes",
	})
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "id", created.ID.String())
}

func (s *RecordsHandlerSuite) TestCreateShipmentRejectsNegativeWeight() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/shipments", map[string]any{"weight": -1})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "validation_error")
}

func (s *RecordsHandlerSuite) TestGetShipment() {
	id := domain.NewShipmentID()
	s.service.EXPECT().GetShipment(gomock.Any(), id).Return(&records.Shipment{ID: id, Reference: "R"}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+id.String()))
	testutil.AssertStatusOK(s.T(), rr)
	testutil.AssertJSONContains(s.T(), rr, "reference", "R")
}

func (s *RecordsHandlerSuite) TestGetShipmentStatusMapping() {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", dErrors.New(dErrors.CodeNotFound, "shipment not found"), http.StatusNotFound, "not_found"},
		{"internal", dErrors.New(dErrors.CodeInternal, "db down"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			id := domain.NewShipmentID()
			s.service.EXPECT().GetShipment(gomock.Any(), id).Return(nil, tt.err)
			rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/"+id.String()))
			testutil.AssertStatusAndError(s.T(), rr, tt.status, tt.code)
		})
	}
}

func (s *RecordsHandlerSuite) TestGetShipmentInvalidID() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments/not-a-uuid"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}

func (s *RecordsHandlerSuite) TestListShipmentsEmptyIsArray() {
	s.service.EXPECT().ListShipments(gomock.Any()).Return(nil, nil)
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/shipments"))
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{"shipments":[]}`, rr.Body.String())
}

func (s *RecordsHandlerSuite) TestCreateDeal() {
	s.service.EXPECT().CreateDeal(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, d *records.Deal) (*records.Deal, error) {
			s.Equal(domain.DealStageNegotiation, d.Stage)
			s.Equal("EUR", d.Currency)
			d.ID = domain.NewDealID()
			return d, nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/deals", map[string]any{
		"name":     "Reefer lane",
		"stage":    "Negotiation",
		"currency": "eur",
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
	testutil.AssertJSONContains(s.T(), rr, "stage", "negotiation")
}

func (s *RecordsHandlerSuite) TestCreateDealValidation() {
	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"missing name", map[string]any{"stage": "won"}, "validation_error"},
		{"unknown stage", map[string]any{"name": "x", "stage": "closing"}, "invalid_input"},
		{"negative value", map[string]any{"name": "x", "value": -5}, "validation_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/deals", tt.body))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, tt.code)
		})
	}
}

func (s *RecordsHandlerSuite) TestGetDealNotFound() {
	id := domain.NewDealID()
	s.service.EXPECT().GetDeal(gomock.Any(), id).Return(nil, dErrors.New(dErrors.CodeNotFound, "deal not found"))
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/deals/"+id.String()))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, "not_found")
}

func (s *RecordsHandlerSuite) TestListDeals() {
	s.service.EXPECT().ListDeals(gomock.Any()).Return([]*records.Deal{{ID: domain.NewDealID(), Name: "a"}}, nil)
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/deals"))
	testutil.AssertStatusOK(s.T(), rr)
	resp := testutil.UnmarshalResponse[DealList](s.T(), rr)
	s.Len(resp.Deals, 1)
}

func (s *RecordsHandlerSuite) TestCreateCommunication() {
	shipmentID := domain.NewShipmentID()
	sentAt := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	s.service.EXPECT().CreateCommunication(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, c *records.Communication) (*records.Communication, error) {
			s.Require().NotNil(c.ShipmentID)
			s.Equal(shipmentID, *c.ShipmentID)
			s.Equal(records.DirectionInbound, c.Direction)
			s.Equal(records.ChannelEmail, c.Channel)
			s.Equal(sentAt, c.SentAt)
			c.ID = domain.NewCommunicationID()
			return c, nil
		})

	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/communications", map[string]any{
		"shipmentId": shipmentID.String(),
		"direction":  "INBOUND",
		"channel":    "email",
		"subject":    "Container damaged",
		"sentAt":     sentAt,
	})
	rr := testutil.DoRequest(s.router, req)
	testutil.AssertStatus(s.T(), rr, http.StatusCreated)
}

func (s *RecordsHandlerSuite) TestCreateCommunicationValidation() {
	tests := []struct {
		name string
		body map[string]any
		code string
	}{
		{"bad direction", map[string]any{"direction": "up", "channel": "email"}, "validation_error"},
		{"bad channel", map[string]any{"direction": "inbound", "channel": "fax"}, "validation_error"},
		{"bad shipment id", map[string]any{"direction": "inbound", "channel": "chat", "shipmentId": "nope"}, "invalid_input"},
		{"reply before send", map[string]any{
			"direction":   "inbound",
			"channel":     "chat",
			"sentAt":      "2024-03-14T10:00:00Z",
			"respondedAt": "2024-03-14T09:00:00Z",
		}, "validation_error"},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/communications", tt.body))
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, tt.code)
		})
	}
}

func (s *RecordsHandlerSuite) TestListCommunicationsFilter() {
	dealID := domain.NewDealID()
	s.service.EXPECT().
		ListCommunications(gomock.Any(), records.CommunicationFilter{DealID: &dealID}).
		Return([]*records.Communication{}, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/communications?dealId="+dealID.String()))
	testutil.AssertStatusOK(s.T(), rr)
	s.JSONEq(`{"communications":[]}`, rr.Body.String())
}

func (s *RecordsHandlerSuite) TestListCommunicationsInvalidFilter() {
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/communications?shipmentId=x"))
	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, "invalid_input")
}
