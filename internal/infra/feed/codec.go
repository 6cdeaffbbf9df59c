package feed

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-CourtBooking/internal/domain"
)

// channelPrefix префикс имени канала. Имя канала - валидный идентификатор PostgreSQL (до 63 символов)
const channelPrefix = "court_reservations"

// Channel возвращает имя канала ленты для площадки и даты
func Channel(venueID int64, date time.Time) string {
	return fmt.Sprintf("%s_%d_%s", channelPrefix, venueID, domain.DateOnly(date).Format("20060102"))
}

// message формат события на проводе
type message struct {
	Kind        string     `json:"kind"`
	ID          int64      `json:"id"`
	Transaction uuid.UUID  `json:"transactionId"`
	VenueID     int64      `json:"venueId"`
	UserID      int64      `json:"userId"`
	Date        string     `json:"date"`
	Court       int        `json:"court"`
	Hour        int        `json:"hour"`
	TotalPrice  int64      `json:"totalPrice"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"createdAt"`
	CancelledAt *time.Time `json:"cancelledAt,omitempty"`
}

// Encode сериализует событие для публикации
func Encode(change domain.ReservationChange) ([]byte, error) {
	r := change.Reservation
	payload, err := json.Marshal(message{
		Kind:        string(change.Kind),
		ID:          r.ID,
		Transaction: r.TransactionID,
		VenueID:     r.VenueID,
		UserID:      r.UserID,
		Date:        r.Date.Format(domain.DateFormat),
		Court:       r.Court,
		Hour:        r.Hour,
		TotalPrice:  r.TotalPrice,
		Status:      string(r.Status),
		CreatedAt:   r.CreatedAt,
		CancelledAt: r.CancelledAt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncode, err)
	}
	return payload, nil
}

// Decode разбирает событие из ленты
func Decode(payload []byte) (domain.ReservationChange, error) {
	var msg message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return domain.ReservationChange{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	kind := domain.ChangeKind(msg.Kind)
	if kind != domain.ChangeCreated && kind != domain.ChangeCancelled {
		return domain.ReservationChange{}, fmt.Errorf("%w: unknown kind %q", ErrDecode, msg.Kind)
	}

	date, err := time.Parse(domain.DateFormat, msg.Date)
	if err != nil {
		return domain.ReservationChange{}, fmt.Errorf("%w: date %q: %v", ErrDecode, msg.Date, err)
	}

	return domain.ReservationChange{
		Kind: kind,
		Reservation: domain.Reservation{
			ID:            msg.ID,
			TransactionID: msg.Transaction,
			VenueID:       msg.VenueID,
			UserID:        msg.UserID,
			Date:          date,
			Court:         msg.Court,
			Hour:          msg.Hour,
			TotalPrice:    msg.TotalPrice,
			Status:        domain.ReservationStatus(msg.Status),
			CreatedAt:     msg.CreatedAt,
			CancelledAt:   msg.CancelledAt,
		},
	}, nil
}
