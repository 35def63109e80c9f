// File: internal/trade/transitions_test.go
package trade

import (
	"testing"

	"barter_backend/internal/common"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		name       string
		current    string
		action     Action
		role       Role
		wantStatus string
		wantErr    int // expected HTTP status of the error, 0 for success
	}{
		{"responder accepts pending with offer", StatusPending, ActionAcceptWithOffer, RoleResponder, StatusAccepted, 0},
		{"responder accepts pending as purchase", StatusPending, ActionAcceptPurchase, RoleResponder, StatusAccepted, 0},
		{"responder rejects pending", StatusPending, ActionReject, RoleResponder, StatusRejected, 0},
		{"initiator completes accepted", StatusAccepted, ActionComplete, RoleInitiator, StatusCompleted, 0},
		{"responder completes accepted", StatusAccepted, ActionComplete, RoleResponder, StatusCompleted, 0},

		{"initiator cannot accept own proposal", StatusPending, ActionAcceptWithOffer, RoleInitiator, "", 403},
		{"initiator cannot reject own proposal", StatusPending, ActionReject, RoleInitiator, "", 403},
		{"outsider cannot act", StatusPending, ActionReject, RoleNone, "", 403},

		{"cannot complete pending", StatusPending, ActionComplete, RoleInitiator, "", 409},
		{"cannot accept accepted again", StatusAccepted, ActionAcceptWithOffer, RoleResponder, "", 409},
		{"cannot reject accepted", StatusAccepted, ActionReject, RoleResponder, "", 409},
		{"cannot complete completed again", StatusCompleted, ActionComplete, RoleResponder, "", 409},
		{"cannot complete rejected", StatusRejected, ActionComplete, RoleInitiator, "", 409},
		{"cannot accept rejected", StatusRejected, ActionAcceptPurchase, RoleResponder, "", 409},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextStatus(tt.current, tt.action, tt.role)
			if tt.wantErr == 0 {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantStatus, got)
				return
			}
			assert.Error(t, err)
			apiErr, ok := common.IsAPIError(err)
			assert.True(t, ok, "expected an API error")
			assert.Equal(t, tt.wantErr, apiErr.StatusCode)
		})
	}
}

func TestTradeRoleOf(t *testing.T) {
	initiatorID := uuid.New()
	responderID := uuid.New()
	tr := &Trade{InitiatorID: initiatorID, ResponderID: responderID}

	assert.Equal(t, RoleInitiator, tr.RoleOf(initiatorID))
	assert.Equal(t, RoleResponder, tr.RoleOf(responderID))
	assert.Equal(t, RoleNone, tr.RoleOf(uuid.New()))
}

func TestTradeOtherParty(t *testing.T) {
	initiatorID := uuid.New()
	responderID := uuid.New()
	tr := &Trade{InitiatorID: initiatorID, ResponderID: responderID}

	assert.Equal(t, responderID, tr.OtherParty(initiatorID))
	assert.Equal(t, initiatorID, tr.OtherParty(responderID))
}
