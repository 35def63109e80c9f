// File: internal/trade/transitions.go
package trade

import (
	"barter_backend/internal/common"

	"github.com/google/uuid"
)

// Role identifies which side of a trade an actor is on.
type Role int

const (
	RoleNone Role = iota
	RoleInitiator
	RoleResponder
)

// Action is a status-changing operation on a trade.
type Action string

const (
	ActionAcceptWithOffer Action = "accept_with_offer"
	ActionAcceptPurchase  Action = "accept_purchase"
	ActionReject          Action = "reject"
	ActionComplete        Action = "complete"
)

type transitionKey struct {
	from   string
	action Action
}

type transitionRule struct {
	to    string
	roles map[Role]bool
}

var (
	responderOnly = map[Role]bool{RoleResponder: true}
	eitherParty   = map[Role]bool{RoleInitiator: true, RoleResponder: true}
)

// transitions is the single source of truth for trade status changes.
// Anything absent here is not a legal move.
var transitions = map[transitionKey]transitionRule{
	{StatusPending, ActionAcceptWithOffer}: {to: StatusAccepted, roles: responderOnly},
	{StatusPending, ActionAcceptPurchase}:  {to: StatusAccepted, roles: responderOnly},
	{StatusPending, ActionReject}:          {to: StatusRejected, roles: responderOnly},
	{StatusAccepted, ActionComplete}:       {to: StatusCompleted, roles: eitherParty},
}

// RoleOf returns the actor's side of the trade, or RoleNone for outsiders.
func (t *Trade) RoleOf(actorID uuid.UUID) Role {
	switch actorID {
	case t.InitiatorID:
		return RoleInitiator
	case t.ResponderID:
		return RoleResponder
	default:
		return RoleNone
	}
}

// OtherParty returns the counterparty of the given actor. The caller must
// have verified the actor is a party to the trade.
func (t *Trade) OtherParty(actorID uuid.UUID) uuid.UUID {
	if actorID == t.InitiatorID {
		return t.ResponderID
	}
	return t.InitiatorID
}

// NextStatus resolves an action against the transition table. Role
// violations surface as authorization failures; state violations surface as
// conflicts so a losing concurrent caller sees the same error as a stale
// one.
func NextStatus(current string, action Action, role Role) (string, error) {
	if role == RoleNone {
		return "", common.ErrForbidden.WithDetails("You are not a party to this trade.")
	}

	rule, ok := transitions[transitionKey{from: current, action: action}]
	if !ok {
		return "", common.ErrConflict.WithDetails(
			"This trade is in status '" + current + "' and cannot be " + describe(action) + ".")
	}
	if !rule.roles[role] {
		return "", common.ErrForbidden.WithDetails("You are not allowed to perform this action on the trade.")
	}
	return rule.to, nil
}

func describe(action Action) string {
	switch action {
	case ActionAcceptWithOffer, ActionAcceptPurchase:
		return "accepted"
	case ActionReject:
		return "rejected"
	case ActionComplete:
		return "completed"
	default:
		return string(action)
	}
}
