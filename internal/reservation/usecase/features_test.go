package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/availability"
	"github.com/fekuna/prun-market-service/internal/model"
	"github.com/fekuna/prun-market-service/internal/reservation/dto"
	"github.com/shopspring/decimal"
)

type marketTestContext struct {
	h      *harness
	last   *model.Reservation
	err    error
	errs   []error
	seeded int
}

func (c *marketTestContext) reset() {
	c.h = buildHarness()
	c.last = nil
	c.err = nil
	c.errs = nil
	c.seeded = 0
}

// Given steps

func (c *marketTestContext) aSellOrder(id, owner, ticker, location, mode string, limit int) error {
	o := &model.SellOrder{
		BaseModel:       model.BaseModel{ID: id, CreatedAt: c.h.now, UpdatedAt: c.h.now},
		OwnerID:         owner,
		CommodityTicker: ticker,
		LocationID:      location,
		Price:           decimal.NewFromInt(40),
		Currency:        "AIC",
		OrderType:       model.OrderTypeInternal,
		LimitMode:       model.LimitMode(mode),
	}
	if o.LimitMode != model.LimitModeNone {
		o.LimitQuantity = intPtr(limit)
	}
	return c.h.orders.CreateSellOrder(context.Background(), o)
}

func (c *marketTestContext) aBuyOrder(id, owner string, quantity int, ticker, location string) error {
	return c.h.orders.CreateBuyOrder(context.Background(), &model.BuyOrder{
		BaseModel:       model.BaseModel{ID: id, CreatedAt: c.h.now, UpdatedAt: c.h.now},
		OwnerID:         owner,
		CommodityTicker: ticker,
		LocationID:      location,
		Quantity:        quantity,
		Price:           decimal.NewFromInt(12),
		Currency:        "AIC",
		OrderType:       model.OrderTypeInternal,
	})
}

func (c *marketTestContext) holds(owner string, quantity int, ticker, location string) error {
	return c.h.inventory.UpsertSnapshots(context.Background(), []model.InventorySnapshot{
		{OwnerID: owner, CommodityTicker: ticker, LocationID: location, Quantity: quantity, LastSyncedAt: c.h.now},
	})
}

func (c *marketTestContext) aSeededReservation(status string, quantity int, kind, orderID string) error {
	ctx := context.Background()
	c.seeded++
	r := model.Reservation{
		BaseModel:      model.BaseModel{ID: fmt.Sprintf("seed-%d", c.seeded), CreatedAt: c.h.now, UpdatedAt: c.h.now},
		CounterpartyID: "someone",
		Quantity:       quantity,
		Status:         model.ReservationStatus(status),
	}
	switch kind {
	case "sell":
		o, err := c.h.orders.FindSellOrderByID(ctx, orderID)
		if err != nil || o == nil {
			return fmt.Errorf("sell order %s not found", orderID)
		}
		r.SellOrderID = &o.ID
		r.OwnerID = o.OwnerID
	default:
		o, err := c.h.orders.FindBuyOrderByID(ctx, orderID)
		if err != nil || o == nil {
			return fmt.Errorf("buy order %s not found", orderID)
		}
		r.BuyOrderID = &o.ID
		r.OwnerID = o.OwnerID
	}
	c.h.reservations.Put(r)
	return nil
}

func (c *marketTestContext) hasReserved(actor string, quantity int, orderID string) error {
	if err := c.reserves(actor, quantity, orderID); err != nil {
		return err
	}
	return c.err
}

func (c *marketTestContext) hasReservedExpiring(actor string, quantity int, orderID string, hours int) error {
	expiresAt := c.h.now.Add(time.Duration(hours) * time.Hour)
	c.last, c.err = c.h.uc.CreateReservation(context.Background(), &dto.CreateReservationInput{
		ActorID: actor, SellOrderID: orderID, Quantity: quantity, ExpiresAt: &expiresAt,
	})
	return c.err
}

// alsoReserves books stock for someone else and keeps the tracked reservation.
func (c *marketTestContext) alsoReserves(actor string, quantity int, orderID string) error {
	_, err := c.h.uc.CreateReservation(context.Background(), &dto.CreateReservationInput{
		ActorID: actor, SellOrderID: orderID, Quantity: quantity,
	})
	return err
}

func (c *marketTestContext) hasMoved(actor, status string) error {
	if err := c.moves(actor, status); err != nil {
		return err
	}
	return c.err
}

func (c *marketTestContext) forcedTo(status string) error {
	if c.last == nil {
		return errors.New("no reservation")
	}
	r := *c.last
	r.Status = model.ReservationStatus(status)
	c.h.reservations.Put(r)
	c.last = &r
	return nil
}

// When steps

func (c *marketTestContext) reserves(actor string, quantity int, orderID string) error {
	res, err := c.h.uc.CreateReservation(context.Background(), &dto.CreateReservationInput{
		ActorID: actor, SellOrderID: orderID, Quantity: quantity,
	})
	c.err = err
	if err == nil {
		c.last = res
	}
	return nil
}

func (c *marketTestContext) moves(actor, status string) error {
	if c.last == nil {
		return errors.New("no reservation")
	}
	res, err := c.h.uc.UpdateReservationStatus(context.Background(), &dto.UpdateStatusInput{
		ReservationID: c.last.ID, ActorID: actor, Status: model.ReservationStatus(status),
	})
	c.err = err
	if err == nil {
		c.last = res
	}
	return nil
}

func (c *marketTestContext) hoursPass(hours int) error {
	c.h.now = c.h.now.Add(time.Duration(hours) * time.Hour)
	return nil
}

// reserveTogether replays the same availability read for both requests, as
// two requests racing on one order would both observe.
func (c *marketTestContext) reserveTogether(first, second string, quantity int, orderID string) error {
	ctx := context.Background()
	o, err := c.h.orders.FindSellOrderByID(ctx, orderID)
	if err != nil || o == nil {
		return fmt.Errorf("sell order %s not found", orderID)
	}
	before, err := c.h.avail.GetSellAvailability(ctx, o)
	if err != nil {
		return err
	}

	c.h.uc.availability = staleAvailability{UseCase: c.h.avail, snapshot: before}
	defer func() { c.h.uc.availability = c.h.avail }()

	c.errs = nil
	for _, actor := range []string{first, second} {
		_, err := c.h.uc.CreateReservation(ctx, &dto.CreateReservationInput{
			ActorID: actor, SellOrderID: orderID, Quantity: quantity,
		})
		c.errs = append(c.errs, err)
	}
	return nil
}

// Then steps

func (c *marketTestContext) requestSucceeds() error {
	if c.err != nil {
		return fmt.Errorf("expected success, got %v", c.err)
	}
	return nil
}

func (c *marketTestContext) bothSucceed() error {
	if len(c.errs) != 2 {
		return fmt.Errorf("expected 2 results, got %d", len(c.errs))
	}
	for i, err := range c.errs {
		if err != nil {
			return fmt.Errorf("request %d failed: %v", i+1, err)
		}
	}
	return nil
}

func (c *marketTestContext) requestFailsWith(kind string) error {
	if c.err == nil {
		return fmt.Errorf("expected %s, got success", kind)
	}
	if got := apperr.KindOf(c.err).String(); got != kind {
		return fmt.Errorf("expected %s, got %s (%v)", kind, got, c.err)
	}
	return nil
}

func (c *marketTestContext) outcomeIs(outcome string) error {
	if outcome == "OK" {
		return c.requestSucceeds()
	}
	return c.requestFailsWith(outcome)
}

func (c *marketTestContext) reservationIs(status string) error {
	if c.last == nil {
		return errors.New("no reservation")
	}
	res, err := c.h.uc.GetReservation(context.Background(), c.last.ID, c.last.CounterpartyID)
	if err != nil {
		return err
	}
	if string(res.Status) != status {
		return fmt.Errorf("expected status %s, got %s", status, res.Status)
	}
	return nil
}

func (c *marketTestContext) sellAvailability(orderID string) (availability.Result, error) {
	ctx := context.Background()
	o, err := c.h.orders.FindSellOrderByID(ctx, orderID)
	if err != nil || o == nil {
		return availability.Result{}, fmt.Errorf("sell order %s not found", orderID)
	}
	return c.h.avail.GetSellAvailability(ctx, o)
}

func (c *marketTestContext) sellHas(orderID string, available, remaining int) error {
	res, err := c.sellAvailability(orderID)
	if err != nil {
		return err
	}
	if res.AvailableQuantity != available || res.RemainingQuantity != remaining {
		return fmt.Errorf("expected available %d remaining %d, got %d and %d",
			available, remaining, res.AvailableQuantity, res.RemainingQuantity)
	}
	return nil
}

func (c *marketTestContext) sellHasReserved(orderID string, reserved, remaining int) error {
	res, err := c.sellAvailability(orderID)
	if err != nil {
		return err
	}
	if res.ReservedQuantity != reserved || res.RemainingQuantity != remaining {
		return fmt.Errorf("expected reserved %d remaining %d, got %d and %d",
			reserved, remaining, res.ReservedQuantity, res.RemainingQuantity)
	}
	return nil
}

func (c *marketTestContext) sellHasNoInventory(orderID string) error {
	res, err := c.sellAvailability(orderID)
	if err != nil {
		return err
	}
	if res.FIOQuantity != 0 || res.LastSyncedAt != nil {
		return fmt.Errorf("expected no synced inventory, got %d synced at %v", res.FIOQuantity, res.LastSyncedAt)
	}
	return nil
}

func (c *marketTestContext) buyHasRemaining(orderID string, remaining int) error {
	ctx := context.Background()
	o, err := c.h.orders.FindBuyOrderByID(ctx, orderID)
	if err != nil || o == nil {
		return fmt.Errorf("buy order %s not found", orderID)
	}
	res, err := c.h.avail.GetBuyRemaining(ctx, o)
	if err != nil {
		return err
	}
	if res.RemainingQuantity != remaining {
		return fmt.Errorf("expected remaining %d, got %d", remaining, res.RemainingQuantity)
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &marketTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^a sell order "([^"]*)" owned by "([^"]*)" for "([^"]*)" at "([^"]*)" with limit mode "([^"]*)" and limit (\d+)$`, tc.aSellOrder)
	ctx.Step(`^a buy order "([^"]*)" owned by "([^"]*)" for (\d+) "([^"]*)" at "([^"]*)"$`, tc.aBuyOrder)
	ctx.Step(`^"([^"]*)" holds (\d+) "([^"]*)" at "([^"]*)"$`, tc.holds)
	ctx.Step(`^an? "([^"]*)" reservation of (\d+) against (sell|buy) order "([^"]*)"$`, tc.aSeededReservation)
	ctx.Step(`^"([^"]*)" has reserved (\d+) of sell order "([^"]*)"$`, tc.hasReserved)
	ctx.Step(`^"([^"]*)" has reserved (\d+) of sell order "([^"]*)" expiring in (\d+) hours$`, tc.hasReservedExpiring)
	ctx.Step(`^"([^"]*)" has also reserved (\d+) of sell order "([^"]*)"$`, tc.alsoReserves)
	ctx.Step(`^"([^"]*)" has moved the reservation to "([^"]*)"$`, tc.hasMoved)
	ctx.Step(`^the reservation is forced to "([^"]*)"$`, tc.forcedTo)

	// When steps
	ctx.Step(`^"([^"]*)" reserves (-?\d+) of sell order "([^"]*)"$`, tc.reserves)
	ctx.Step(`^"([^"]*)" moves the reservation to "([^"]*)"$`, tc.moves)
	ctx.Step(`^(\d+) hours pass$`, tc.hoursPass)
	ctx.Step(`^"([^"]*)" and "([^"]*)" each reserve (\d+) of sell order "([^"]*)" at the same time$`, tc.reserveTogether)

	// Then steps
	ctx.Step(`^the request succeeds$`, tc.requestSucceeds)
	ctx.Step(`^both requests succeed$`, tc.bothSucceed)
	ctx.Step(`^the request fails with "([^"]*)"$`, tc.requestFailsWith)
	ctx.Step(`^the outcome is "([^"]*)"$`, tc.outcomeIs)
	ctx.Step(`^the reservation is "([^"]*)"$`, tc.reservationIs)
	ctx.Step(`^sell order "([^"]*)" has available (\d+) and remaining (\d+)$`, tc.sellHas)
	ctx.Step(`^sell order "([^"]*)" has reserved (\d+) and remaining (\d+)$`, tc.sellHasReserved)
	ctx.Step(`^sell order "([^"]*)" has no synced inventory$`, tc.sellHasNoInventory)
	ctx.Step(`^buy order "([^"]*)" has remaining (\d+)$`, tc.buyHasRemaining)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../../../features"},
			TestingT: t,
			Strict:   true,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
