package reservation

import (
	"github.com/fekuna/prun-market-service/internal/apperr"
	"github.com/fekuna/prun-market-service/internal/model"
)

// Role is the actor's relationship to a reservation.
type Role string

const (
	RoleOwner        Role = "owner"
	RoleCounterparty Role = "counterparty"
)

type edge struct {
	from model.ReservationStatus
	to   model.ReservationStatus
}

var transitions = map[edge][]Role{
	{model.ReservationPending, model.ReservationConfirmed}:   {RoleOwner},
	{model.ReservationPending, model.ReservationRejected}:    {RoleOwner},
	{model.ReservationPending, model.ReservationCancelled}:   {RoleCounterparty},
	{model.ReservationConfirmed, model.ReservationFulfilled}: {RoleOwner, RoleCounterparty},
	{model.ReservationConfirmed, model.ReservationCancelled}: {RoleOwner, RoleCounterparty},
	{model.ReservationCancelled, model.ReservationPending}:   {RoleCounterparty},
}

// Transition describes one permitted status change.
type Transition struct {
	From  model.ReservationStatus
	To    model.ReservationStatus
	Roles []Role
}

// Transitions returns a copy of the transition table.
func Transitions() []Transition {
	out := make([]Transition, 0, len(transitions))
	for e, roles := range transitions {
		out = append(out, Transition{From: e.from, To: e.to, Roles: append([]Role(nil), roles...)})
	}
	return out
}

// CheckTransition reports whether role may move a reservation from one status
// to another. Pairs missing from the table are invalid transitions; pairs in
// the table invoked by the wrong role are forbidden.
func CheckTransition(from, to model.ReservationStatus, role Role) error {
	roles, ok := transitions[edge{from, to}]
	if !ok {
		return apperr.InvalidTransitionf("cannot move reservation from %s to %s", from, to)
	}
	for _, r := range roles {
		if r == role {
			return nil
		}
	}
	return apperr.Forbiddenf("%s may not move reservation from %s to %s", role, from, to)
}

// RoleFor resolves the actor's role on the reservation.
func RoleFor(r *model.Reservation, actorID string) (Role, error) {
	switch {
	case actorID == "":
		return "", apperr.Forbidden("actor is required")
	case actorID == r.OwnerID:
		return RoleOwner, nil
	case actorID == r.CounterpartyID:
		return RoleCounterparty, nil
	}
	return "", apperr.Forbidden("actor is not a party to this reservation")
}
