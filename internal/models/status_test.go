package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionStatusTransitions(t *testing.T) {
	tests := []struct {
		from TransactionStatus
		to   TransactionStatus
		want bool
	}{
		{TransactionPending, TransactionCompleted, true},
		{TransactionPending, TransactionFailed, true},
		{TransactionFailed, TransactionPending, true},
		{TransactionCompleted, TransactionRefunded, true},
		{TransactionCompleted, TransactionPending, false},
		{TransactionCompleted, TransactionFailed, false},
		{TransactionRefunded, TransactionPending, false},
		{TransactionRefunded, TransactionFailed, false},
		{TransactionPending, TransactionStatus("LOST"), false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestEscrowStatus(t *testing.T) {
	assert.True(t, EscrowHeld.Settleable())
	assert.True(t, EscrowDisputed.Settleable())
	assert.False(t, EscrowReleased.Settleable())
	assert.False(t, EscrowRefunded.Settleable())

	assert.True(t, EscrowReleased.Terminal())
	assert.False(t, EscrowDisputed.Terminal())
}

func TestUserRoleAndPermissions(t *testing.T) {
	staff := &User{IsStaff: true, IsClient: true}
	assert.Equal(t, RoleStaff, staff.Role())

	claims := &UserClaims{Permissions: GetDefaultPermissions(staff.Role())}
	assert.True(t, claims.HasPermission(PermissionDisputeResolve))

	freelancer := &User{IsFreelancer: true}
	claims = &UserClaims{Permissions: GetDefaultPermissions(freelancer.Role())}
	assert.False(t, claims.HasPermission(PermissionDisputeResolve))
	assert.False(t, claims.HasPermission(PermissionTransactionWrite))
	assert.True(t, claims.HasPermission(PermissionEscrowWrite))
}
