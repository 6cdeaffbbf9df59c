package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

const (
	msgInternalError = "внутренняя ошибка сервера"
	maxBodyBytes     = 1 << 20
)

// ErrorResponse модель ответа с ошибкой
type ErrorResponse struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Slots   []SlotResponse `json:"slots,omitempty"` // проигравшие слоты при конфликте
}

// SlotResponse ячейка сетки в ответе API
type SlotResponse struct {
	Court int `json:"court"`
	Hour  int `json:"hour"`
}

// SlotRequest ячейка сетки в запросе API
type SlotRequest struct {
	Court int `json:"court"`
	Hour  int `json:"hour"`
}

// ToDomainSlots конвертирует слоты запроса в domain модель
func ToDomainSlots(slots []SlotRequest) []domain.Slot {
	out := make([]domain.Slot, len(slots))
	for i, s := range slots {
		out[i] = domain.Slot{Court: s.Court, Hour: s.Hour}
	}
	return out
}

// DecodeJSON декодирует тело запроса, отклоняя неизвестные поля
func DecodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return errors.New("empty request body")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}

// RespondJSON отправляет JSON ответ
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// RespondError отправляет ответ с ошибкой
func RespondError(w http.ResponseWriter, status int, message string) {
	RespondJSON(w, status, ErrorResponse{Code: status, Message: message})
}

func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusBadRequest, message)
}

func RespondUnauthorized(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusUnauthorized, message)
}

func RespondForbidden(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusForbidden, message)
}

func RespondNotFound(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusNotFound, message)
}

func RespondTooManyRequests(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusTooManyRequests, message)
}

func RespondServiceUnavailable(w http.ResponseWriter, message string) {
	RespondError(w, http.StatusServiceUnavailable, message)
}

func RespondInternalError(w http.ResponseWriter) {
	RespondError(w, http.StatusInternalServerError, msgInternalError)
}

// RespondConflict отправляет 409 со списком слотов, из-за которых выбор не прошёл
func RespondConflict(w http.ResponseWriter, message string, slots []domain.Slot) {
	resp := ErrorResponse{Code: http.StatusConflict, Message: message}
	for _, s := range slots {
		resp.Slots = append(resp.Slots, SlotResponse{Court: s.Court, Hour: s.Hour})
	}
	RespondJSON(w, http.StatusConflict, resp)
}

// ConflictSlots извлекает проигравшие слоты из цепочки ошибки
func ConflictSlots(err error) []domain.Slot {
	var conflict *domain.SlotConflictError
	if errors.As(err, &conflict) {
		return conflict.Slots
	}
	return nil
}

// ParseDate разбирает дату формата YYYY-MM-DD
func ParseDate(value string) (time.Time, error) {
	return time.Parse(domain.DateFormat, value)
}
