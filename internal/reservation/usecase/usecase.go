package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/availability"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/order"
	"github.com/fekuna/prun-market-service/internal/reservation"
	"github.com/fekuna/prun-market-service/internal/reservation/dto"
	"github.com/fekuna/prun-market-service/internal/settings"
	"github.com/fekuna/prun-market-service/pkg/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type reservationUseCase struct {
	repo         reservation.Repository
	orders       order.Repository
	availability availability.UseCase
	settings     settings.UseCase
	publisher    reservation.EventPublisher
	logger       logger.ZapLogger
	now          func() time.Time
}

func NewReservationUseCase(
	repo reservation.Repository,
	orders order.Repository,
	avail availability.UseCase,
	st settings.UseCase,
	publisher reservation.EventPublisher,
	log logger.ZapLogger,
) reservation.UseCase {
	return &reservationUseCase{
		repo:         repo,
		orders:       orders,
		availability: avail,
		settings:     st,
		publisher:    publisher,
		logger:       log,
		now:          time.Now,
	}
}

func (uc *reservationUseCase) CreateReservation(ctx context.Context, input *dto.CreateReservationInput) (*model.Reservation, error) {
	if input.ActorID == "" {
		return nil, apperr.Forbidden("an identified user is required")
	}
	sellID := strings.TrimSpace(input.SellOrderID)
	buyID := strings.TrimSpace(input.BuyOrderID)
	if (sellID == "") == (buyID == "") {
		return nil, apperr.Validation("exactly one of sell order or buy order must be given")
	}
	if input.Quantity <= 0 {
		return nil, apperr.Validation("quantity must be greater than zero")
	}

	now := uc.now()
	res := &model.Reservation{
		BaseModel:      model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		CounterpartyID: input.ActorID,
		Quantity:       input.Quantity,
		Status:         model.ReservationPending,
		Notes:          strings.TrimSpace(input.Notes),
	}

	if sellID != "" {
		o, err := uc.orders.FindSellOrderByID(ctx, sellID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, apperr.NotFoundf("sell order %s not found", sellID)
		}
		if o.OwnerID == input.ActorID {
			return nil, apperr.Forbidden("cannot reserve your own order")
		}

		// Point-in-time check; concurrent creations may still over-reserve.
		if err := uc.checkRemaining(ctx, o, input.Quantity); err != nil {
			return nil, err
		}
		res.SellOrderID = &o.ID
		res.OwnerID = o.OwnerID
	} else {
		o, err := uc.orders.FindBuyOrderByID(ctx, buyID)
		if err != nil {
			return nil, err
		}
		if o == nil {
			return nil, apperr.NotFoundf("buy order %s not found", buyID)
		}
		if o.OwnerID == input.ActorID {
			return nil, apperr.Forbidden("cannot reserve your own order")
		}
		res.BuyOrderID = &o.ID
		res.OwnerID = o.OwnerID
	}

	expiresAt, err := uc.expiry(ctx, input, now)
	if err != nil {
		return nil, err
	}
	res.ExpiresAt = expiresAt

	if err := uc.repo.Create(ctx, res); err != nil {
		return nil, err
	}

	uc.logger.Info("reservation created",
		zap.String("reservation_id", res.ID),
		zap.String("order_kind", string(res.OrderKind())),
		zap.String("order_id", res.OrderID()),
		zap.String("counterparty_id", res.CounterpartyID),
		zap.Int("quantity", res.Quantity),
	)
	uc.publish(ctx, reservation.EventReservationCreated, res, input.ActorID, "")
	return res, nil
}

// expiry returns the explicit expiry or one derived from the
// reservation_expiry_hours setting. Zero hours means no expiry.
func (uc *reservationUseCase) expiry(ctx context.Context, input *dto.CreateReservationInput, now time.Time) (*time.Time, error) {
	if input.ExpiresAt != nil {
		if !input.ExpiresAt.After(now) {
			return nil, apperr.Validation("expiry must be in the future")
		}
		t := *input.ExpiresAt
		return &t, nil
	}

	resolved, err := uc.settings.Effective(ctx, &settings.ResolveInput{UserID: input.ActorID, ChannelID: input.ChannelID})
	if err != nil {
		return nil, err
	}
	hours := resolved.Int(settings.KeyReservationExpiryHours)
	if hours <= 0 {
		return nil, nil
	}
	t := now.Add(time.Duration(hours) * time.Hour)
	return &t, nil
}

func (uc *reservationUseCase) UpdateReservationStatus(ctx context.Context, input *dto.UpdateStatusInput) (*model.Reservation, error) {
	if !input.Status.IsValid() {
		return nil, apperr.Validationf("unknown status %q", input.Status)
	}

	res, err := uc.repo.FindByID(ctx, input.ReservationID)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFoundf("reservation %s not found", input.ReservationID)
	}

	role, err := reservation.RoleFor(res, input.ActorID)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	current := res.EffectiveStatus(now)
	if current != res.Status {
		uc.persistExpiry(ctx, res, now)
	}

	if err := reservation.CheckTransition(current, input.Status, role); err != nil {
		return nil, err
	}
	if current == model.ReservationCancelled && res.ExpiresAt != nil && !now.Before(*res.ExpiresAt) {
		return nil, apperr.InvalidTransitionf("reservation expired at %s and cannot be reopened", res.ExpiresAt.Format(time.RFC3339))
	}
	if current == model.ReservationCancelled && input.Status == model.ReservationPending && res.SellOrderID != nil {
		if err := uc.checkReopen(ctx, res); err != nil {
			return nil, err
		}
	}

	ok, err := uc.repo.UpdateStatus(ctx, res.ID, current, input.Status, input.Notes, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		latest, err := uc.repo.FindByID(ctx, res.ID)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, apperr.NotFoundf("reservation %s not found", res.ID)
		}
		return nil, apperr.InvalidTransitionf("reservation is now %s, cannot move from %s to %s", latest.Status, current, input.Status)
	}

	previous := current
	res.Status = input.Status
	res.UpdatedAt = now
	if input.Notes != nil {
		res.Notes = *input.Notes
	}

	uc.logger.Info("reservation status changed",
		zap.String("reservation_id", res.ID),
		zap.String("from", previous.String()),
		zap.String("to", res.Status.String()),
		zap.String("actor_id", input.ActorID),
		zap.String("role", string(role)),
	)
	uc.publish(ctx, reservation.EventReservationStatusChanged, res, input.ActorID, previous)
	return res, nil
}

// checkRemaining rejects a quantity the sell order can no longer cover.
func (uc *reservationUseCase) checkRemaining(ctx context.Context, o *model.SellOrder, quantity int) error {
	avail, err := uc.availability.GetSellAvailability(ctx, o)
	if err != nil {
		return err
	}
	if quantity > avail.RemainingQuantity {
		return apperr.Validationf("requested %d but only %d remaining", quantity, avail.RemainingQuantity)
	}
	return nil
}

// checkReopen puts a cancelled reservation back through the creation check.
// Cancelled rows hold nothing, so remaining already excludes this one.
func (uc *reservationUseCase) checkReopen(ctx context.Context, res *model.Reservation) error {
	o, err := uc.orders.FindSellOrderByID(ctx, *res.SellOrderID)
	if err != nil {
		return err
	}
	if o == nil {
		return apperr.NotFoundf("sell order %s not found", *res.SellOrderID)
	}
	return uc.checkRemaining(ctx, o, res.Quantity)
}

// persistExpiry records a lazily detected expiry. Losing the race to another
// writer is fine: the next read sees whatever won.
func (uc *reservationUseCase) persistExpiry(ctx context.Context, res *model.Reservation, now time.Time) {
	ok, err := uc.repo.UpdateStatus(ctx, res.ID, res.Status, model.ReservationExpired, nil, now)
	if err != nil {
		uc.logger.Warn("failed to persist reservation expiry", zap.String("reservation_id", res.ID), zap.Error(err))
		return
	}
	if ok {
		uc.publish(ctx, reservation.EventReservationStatusChanged, &model.Reservation{
			BaseModel:      res.BaseModel,
			SellOrderID:    res.SellOrderID,
			BuyOrderID:     res.BuyOrderID,
			OwnerID:        res.OwnerID,
			CounterpartyID: res.CounterpartyID,
			Quantity:       res.Quantity,
			Status:         model.ReservationExpired,
		}, "", res.Status)
	}
}

func (uc *reservationUseCase) GetReservation(ctx context.Context, id, actorID string) (*model.Reservation, error) {
	res, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, apperr.NotFoundf("reservation %s not found", id)
	}
	if _, err := reservation.RoleFor(res, actorID); err != nil {
		return nil, err
	}
	res.Status = res.EffectiveStatus(uc.now())
	return res, nil
}

func (uc *reservationUseCase) ListForUser(ctx context.Context, filters *dto.ReservationFilters) ([]model.Reservation, int, error) {
	if filters.UserID == "" {
		return nil, 0, apperr.Forbidden("an identified user is required")
	}
	for _, s := range filters.Statuses {
		if !s.IsValid() {
			return nil, 0, apperr.Validationf("unknown status %q", s)
		}
	}

	now := uc.now()
	scoped := *filters
	scoped.Now = now
	items, total, err := uc.repo.ListByParticipant(ctx, &scoped)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Status = items[i].EffectiveStatus(now)
	}
	return items, total, nil
}

func (uc *reservationUseCase) ExpireStale(ctx context.Context) (int64, error) {
	n, err := uc.repo.ExpireStale(ctx, uc.now())
	if err != nil {
		return 0, err
	}
	uc.logger.Info("expired stale reservations", zap.Int64("count", n))
	return n, nil
}

// publish never fails the calling mutation.
func (uc *reservationUseCase) publish(ctx context.Context, eventType string, res *model.Reservation, actorID string, previous model.ReservationStatus) {
	if uc.publisher == nil {
		return
	}
	event := &reservation.Event{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Timestamp: uc.now(),
		Payload: reservation.EventPayload{
			ReservationID:  res.ID,
			OrderKind:      res.OrderKind(),
			OrderID:        res.OrderID(),
			OwnerID:        res.OwnerID,
			CounterpartyID: res.CounterpartyID,
			ActorID:        actorID,
			Quantity:       res.Quantity,
			Status:         res.Status,
			PreviousStatus: previous,
		},
	}
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("failed to publish reservation event",
			zap.String("event_type", eventType),
			zap.String("reservation_id", res.ID),
			zap.Error(err),
		)
	}
}
