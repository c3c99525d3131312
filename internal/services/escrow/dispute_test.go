package escrow

import (
	"testing"

	apperrors "freelink/internal/errors"
	"freelink/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDisputeOpens(t *testing.T) {
	f := newFixture(t, nil)
	e, d := f.disputedEscrow(t, "100")

	assert.Equal(t, models.DisputeOpen, d.Status)
	assert.Equal(t, f.freelancer.ID, d.RaisedByID)
	assert.Equal(t, e.ID, d.EscrowID)
	assert.Equal(t, models.EscrowDisputed, f.escrowStatus(t, e.ID))
}

func TestDisputeRejections(t *testing.T) {
	f := newFixture(t, nil)
	e := f.heldEscrow(t, "20")

	_, err := f.svc.Dispute(f.ctx, f.client.ID, e.ID, "   ")
	assert.ErrorIs(t, err, apperrors.ErrDisputeReasonRequired)

	_, err = f.svc.Dispute(f.ctx, f.outsider.ID, e.ID, "not mine")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	// Staff are not a party to the transaction.
	_, err = f.svc.Dispute(f.ctx, f.staff.ID, e.ID, "looks wrong")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.Dispute(f.ctx, f.client.ID, 999, "missing")
	assert.ErrorIs(t, err, apperrors.ErrEscrowNotFound)

	_, err = f.svc.Dispute(f.ctx, f.client.ID, e.ID, "work not delivered")
	require.NoError(t, err)

	_, err = f.svc.Dispute(f.ctx, f.freelancer.ID, e.ID, "second opinion")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEscrowState)

	all, err := f.svc.ListDisputes(f.ctx, f.staff.ID, "")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestDisputeOnlyFromHeld(t *testing.T) {
	f := newFixture(t, nil)
	e := f.heldEscrow(t, "20")
	_, err := f.svc.Release(f.ctx, f.client.ID, e.ID)
	require.NoError(t, err)

	_, err = f.svc.Dispute(f.ctx, f.freelancer.ID, e.ID, "too late")
	assert.ErrorIs(t, err, apperrors.ErrInvalidEscrowState)
}

func TestResolveRefund(t *testing.T) {
	f := newFixture(t, nil)
	e, d := f.disputedEscrow(t, "100")
	before := f.wallet(t, f.client.ID)

	resolved, err := f.svc.ResolveDispute(f.ctx, f.staff.ID, d.ID, models.ResolutionRefund, " client wins ")
	require.NoError(t, err)

	assert.Equal(t, models.DisputeResolved, resolved.Status)
	assert.Equal(t, models.ResolutionRefund, resolved.Resolution)
	require.NotNil(t, resolved.ResolvedByID)
	assert.Equal(t, f.staff.ID, *resolved.ResolvedByID)
	assert.NotNil(t, resolved.ResolvedAt)
	assert.Equal(t, "client wins", resolved.Notes)

	after := f.wallet(t, f.client.ID)
	assert.True(t, after.Balance.Equal(before.Balance.Add(e.Amount)))
	assert.True(t, after.Held.IsZero())
	assert.Equal(t, models.EscrowRefunded, f.escrowStatus(t, e.ID))
	assert.Equal(t, models.TransactionRefunded, f.transaction(t, e.TransactionID).Status)
}

func TestResolveRelease(t *testing.T) {
	f := newFixture(t, nil)
	e, d := f.disputedEscrow(t, "100")

	_, err := f.svc.ResolveDispute(f.ctx, f.staff.ID, d.ID, models.ResolutionRelease, "")
	require.NoError(t, err)

	assert.Equal(t, models.EscrowReleased, f.escrowStatus(t, e.ID))
	assert.True(t, f.wallet(t, f.freelancer.ID).Balance.Equal(dec("100")))
	assert.True(t, f.wallet(t, f.client.ID).Total().Equal(dec("50")))
	assert.Equal(t, models.TransactionCompleted, f.transaction(t, e.TransactionID).Status)
}

func TestResolveRejections(t *testing.T) {
	f := newFixture(t, nil)
	e, d := f.disputedEscrow(t, "100")

	_, err := f.svc.ResolveDispute(f.ctx, f.client.ID, d.ID, models.ResolutionRelease, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.ResolveDispute(f.ctx, f.staff.ID, d.ID, models.Resolution("SPLIT"), "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidResolution)

	_, err = f.svc.ResolveDispute(f.ctx, f.staff.ID, 999, models.ResolutionRefund, "")
	assert.ErrorIs(t, err, apperrors.ErrDisputeNotFound)

	_, err = f.svc.ResolveDispute(f.ctx, f.staff.ID, d.ID, models.ResolutionRefund, "")
	require.NoError(t, err)

	_, err = f.svc.ResolveDispute(f.ctx, f.staff.ID, d.ID, models.ResolutionRelease, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDisputeState)
	assert.Equal(t, models.EscrowRefunded, f.escrowStatus(t, e.ID))
	assert.True(t, f.wallet(t, f.freelancer.ID).Balance.IsZero())
}

func TestCancelDispute(t *testing.T) {
	f := newFixture(t, nil)
	e, d := f.disputedEscrow(t, "100")

	_, err := f.svc.CancelDispute(f.ctx, f.client.ID, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.CancelDispute(f.ctx, f.staff.ID, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	cancelled, err := f.svc.CancelDispute(f.ctx, f.freelancer.ID, d.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DisputeCancelled, cancelled.Status)
	assert.Equal(t, models.EscrowHeld, f.escrowStatus(t, e.ID))
	assert.True(t, f.wallet(t, f.client.ID).Held.Equal(dec("100")))

	_, err = f.svc.CancelDispute(f.ctx, f.freelancer.ID, d.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidDisputeState)

	_, err = f.svc.ResolveDispute(f.ctx, f.staff.ID, d.ID, models.ResolutionRefund, "")
	assert.ErrorIs(t, err, apperrors.ErrInvalidDisputeState)

	// Back on HELD, the escrow can be disputed again and settled directly.
	again, err := f.svc.Dispute(f.ctx, f.client.ID, e.ID, "second try")
	require.NoError(t, err)
	_, err = f.svc.CancelDispute(f.ctx, f.client.ID, again.ID)
	require.NoError(t, err)
	_, err = f.svc.Release(f.ctx, f.client.ID, e.ID)
	require.NoError(t, err)
}

func TestGetAndListDisputes(t *testing.T) {
	f := newFixture(t, nil)
	_, open := f.disputedEscrow(t, "10")
	_, other := f.disputedEscrow(t, "10")
	_, err := f.svc.ResolveDispute(f.ctx, f.staff.ID, other.ID, models.ResolutionRelease, "")
	require.NoError(t, err)

	got, err := f.svc.GetDispute(f.ctx, f.client.ID, open.ID)
	require.NoError(t, err)
	assert.Equal(t, open.ID, got.ID)
	_, err = f.svc.GetDispute(f.ctx, f.outsider.ID, open.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.svc.ListDisputes(f.ctx, f.client.ID, "")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	openOnly, err := f.svc.ListDisputes(f.ctx, f.staff.ID, models.DisputeOpen)
	require.NoError(t, err)
	require.Len(t, openOnly, 1)
	assert.Equal(t, open.ID, openOnly[0].ID)

	resolved, err := f.svc.ListDisputes(f.ctx, f.staff.ID, models.DisputeResolved)
	require.NoError(t, err)
	assert.Len(t, resolved, 1)

	_, err = f.svc.ListDisputes(f.ctx, f.staff.ID, models.DisputeStatus("LOST"))
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestEscrowDisputeHistory(t *testing.T) {
	f := newFixture(t, nil)
	e, first := f.disputedEscrow(t, "40")
	_, err := f.svc.CancelDispute(f.ctx, f.freelancer.ID, first.ID)
	require.NoError(t, err)
	second, err := f.svc.Dispute(f.ctx, f.client.ID, e.ID, "deliverable incomplete")
	require.NoError(t, err)
	f.heldEscrow(t, "10")

	history, err := f.svc.EscrowDisputes(f.ctx, f.client.ID, e.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, models.DisputeOpen, history[0].Status)
	assert.Equal(t, first.ID, history[1].ID)
	assert.Equal(t, models.DisputeCancelled, history[1].Status)

	staffView, err := f.svc.EscrowDisputes(f.ctx, f.staff.ID, e.ID)
	require.NoError(t, err)
	assert.Len(t, staffView, 2)

	_, err = f.svc.EscrowDisputes(f.ctx, f.outsider.ID, e.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = f.svc.EscrowDisputes(f.ctx, f.client.ID, 999)
	assert.ErrorIs(t, err, apperrors.ErrEscrowNotFound)
}
