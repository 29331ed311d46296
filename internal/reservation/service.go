package reservation

import (
	"context"
	"fmt"
	"time"

	"burza/internal/events"
	"burza/internal/models"
	"burza/internal/store"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// SubmitRequest carries the public booking form.
type SubmitRequest struct {
	TableIDs  []string `json:"tableIds"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Phone     string   `json:"phone"`
	Email     string   `json:"email"`
}

// Service drives the reservation lifecycle. Every status change writes the
// reservation document first and mirrors the change onto the referenced
// tables second; a failure between the two surfaces as ErrPartiallyApplied.
type Service struct {
	tables       store.TableStore
	reservations store.ReservationStore
	bus          *events.Bus
	validate     *validator.Validate
	logger       *zerolog.Logger
	now          func() time.Time
}

func NewService(tables store.TableStore, reservations store.ReservationStore, bus *events.Bus, logger *zerolog.Logger) *Service {
	return &Service{
		tables:       tables,
		reservations: reservations,
		bus:          bus,
		validate:     validator.New(),
		logger:       logger,
		now:          time.Now,
	}
}

// Submit stores a new pending reservation and links the selected tables to
// it. Table statuses are not changed until an admin decides.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Reservation, error) {
	if len(req.TableIDs) == 0 {
		return nil, ErrNoTablesSelected
	}

	now := s.now().UTC()
	reservation := &models.Reservation{
		ID:        models.NewReservationID(now),
		TableIDs:  req.TableIDs,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Email:     req.Email,
		Status:    models.ReservationPending,
	}
	if err := s.validate.Struct(reservation); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReservation, err)
	}

	if err := s.reservations.CreateReservation(ctx, reservation); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}

	patch := models.TablePatch{ReservationID: reservation.ID}
	if err := s.tables.UpdateTables(ctx, req.TableIDs, patch); err != nil {
		return nil, fmt.Errorf("%w: link tables: %v", ErrPartiallyApplied, err)
	}

	s.logger.Info().
		Str("reservation_id", reservation.ID).
		Int("tables", len(reservation.TableIDs)).
		Msg("reservation submitted")

	s.publish(events.EventReservationCreated, reservation)
	return reservation, nil
}

// Approve marks the reservation approved and its tables reserved. Without
// force the reservation must still be pending; with force the transition is
// applied unconditionally and the notification fires again.
func (s *Service) Approve(ctx context.Context, id string, force bool) (*models.Reservation, error) {
	return s.decide(ctx, id, force, models.ReservationApproved, events.EventReservationApproved,
		models.TablePatch{Status: models.TableReserved, ReservationID: id})
}

// Reject marks the reservation rejected, blocks its tables, and unlinks them.
func (s *Service) Reject(ctx context.Context, id string, force bool) (*models.Reservation, error) {
	return s.decide(ctx, id, force, models.ReservationRejected, events.EventReservationRejected,
		models.TablePatch{Status: models.TableBlocked, ClearReservationID: true})
}

func (s *Service) decide(ctx context.Context, id string, force bool, status, eventType string, patch models.TablePatch) (*models.Reservation, error) {
	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return nil, err
	}
	if !force && reservation.Status != models.ReservationPending {
		return nil, fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, id, reservation.Status)
	}

	if err := s.reservations.UpdateReservationStatus(ctx, id, status); err != nil {
		return nil, fmt.Errorf("update reservation status: %w", err)
	}
	reservation.Status = status

	if err := s.tables.UpdateTables(ctx, reservation.TableIDs, patch); err != nil {
		return reservation, fmt.Errorf("%w: update tables: %v", ErrPartiallyApplied, err)
	}

	s.logger.Info().
		Str("reservation_id", id).
		Str("status", status).
		Bool("force", force).
		Msg("reservation decided")

	s.publish(eventType, reservation)
	return reservation, nil
}

// Delete removes the reservation and frees its tables. Revoking an approved
// reservation fires the cancellation notice first, before the record goes.
func (s *Service) Delete(ctx context.Context, id string) error {
	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return err
	}

	if reservation.Status == models.ReservationApproved {
		s.publish(events.EventReservationCancelled, reservation)
	}

	if err := s.reservations.DeleteReservation(ctx, id); err != nil {
		return fmt.Errorf("delete reservation: %w", err)
	}

	patch := models.TablePatch{Status: models.TableAvailable, ClearReservationID: true}
	if err := s.tables.UpdateTables(ctx, reservation.TableIDs, patch); err != nil {
		return fmt.Errorf("%w: free tables: %v", ErrPartiallyApplied, err)
	}

	s.logger.Info().
		Str("reservation_id", id).
		Str("status", reservation.Status).
		Msg("reservation deleted")

	return nil
}

// DeleteAll wipes every reservation and frees every table they referenced.
// No individual notifications are sent.
func (s *Service) DeleteAll(ctx context.Context) (int64, error) {
	reservations, err := s.reservations.ListReservations(ctx)
	if err != nil {
		return 0, err
	}

	patch := models.TablePatch{Status: models.TableAvailable, ClearReservationID: true}
	for _, reservation := range reservations {
		if err := s.tables.UpdateTables(ctx, reservation.TableIDs, patch); err != nil {
			s.logger.Error().Err(err).
				Str("reservation_id", reservation.ID).
				Msg("failed to free tables during wipe")
		}
	}

	count, err := s.reservations.DeleteAllReservations(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete all reservations: %w", err)
	}

	s.logger.Info().Int64("count", count).Msg("all reservations deleted")
	return count, nil
}

// List returns every reservation, newest first.
func (s *Service) List(ctx context.Context) ([]models.Reservation, error) {
	return s.reservations.ListReservations(ctx)
}

// Get returns one reservation by id.
func (s *Service) Get(ctx context.Context, id string) (*models.Reservation, error) {
	return s.reservations.GetReservation(ctx, id)
}

// publish is best effort: a failed side effect is logged, never rolled back.
func (s *Service) publish(eventType string, reservation *models.Reservation) {
	payload := events.ReservationEventPayload{
		ReservationID: reservation.ID,
		FirstName:     reservation.FirstName,
		LastName:      reservation.LastName,
		Email:         reservation.Email,
		TableIDs:      reservation.TableIDs,
		Status:        reservation.Status,
	}
	if err := s.bus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).
			Str("event", eventType).
			Str("reservation_id", reservation.ID).
			Msg("failed to publish reservation event")
	}
}
