package get_availability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	getAvailability "github.com/m04kA/SMC-CourtBooking/internal/usecase/get_availability"
	"github.com/m04kA/SMC-CourtBooking/pkg/logger"
)

type stubUseCase struct {
	req  *getAvailability.Request
	resp *getAvailability.Response
	err  error
}

func (s *stubUseCase) Execute(_ context.Context, req *getAvailability.Request) (*getAvailability.Response, error) {
	s.req = req
	return s.resp, s.err
}

func serve(uc GetAvailabilityUseCase, target string) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/venues/{venueId}/availability", NewHandler(uc, logger.NewNop()).Handle)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestHandle_Grid(t *testing.T) {
	price := int64(100000)
	date := time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)
	uc := &stubUseCase{resp: &getAvailability.Response{
		VenueID:    3,
		Date:       date,
		CourtCount: 1,
		Version:    5,
		Courts: []getAvailability.Court{{Number: 1, Cells: []getAvailability.Cell{
			{Hour: 7, State: getAvailability.CellFree, UnitPrice: &price},
			{Hour: 8, State: getAvailability.CellBooked, UnitPrice: &price},
		}}},
	}}

	rec := serve(uc, "/venues/3/availability?date=2026-10-20")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(3), uc.req.VenueID)
	assert.Equal(t, date, uc.req.Date)

	var resp AvailabilityResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Courts, 1)
	assert.Equal(t, "free", resp.Courts[0].Cells[0].State)
	assert.Equal(t, "booked", resp.Courts[0].Cells[1].State)
	assert.Equal(t, "08:00", resp.Courts[0].Cells[1].Time)
	assert.Equal(t, uint64(5), resp.Version)
}

func TestHandle_Errors(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, "/venues/abc/availability?date=2026-10-20").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, "/venues/3/availability").Code)
	assert.Equal(t, http.StatusBadRequest, serve(&stubUseCase{}, "/venues/3/availability?date=tomorrow").Code)
	assert.Equal(t, http.StatusNotFound,
		serve(&stubUseCase{err: getAvailability.ErrVenueNotFound}, "/venues/3/availability?date=2026-10-20").Code)
	assert.Equal(t, http.StatusBadRequest,
		serve(&stubUseCase{err: getAvailability.ErrInvalidDate}, "/venues/3/availability?date=2020-01-01").Code)
}
