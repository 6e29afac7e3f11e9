package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/gateway"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

func TestCreateOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	rec, err := f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)

	assert.Equal(t, models.PaymentCreated, rec.Status)
	assert.Equal(t, app.ID, rec.ApplicationID)
	assert.NotEmpty(t, rec.OrderID)
	assert.NotEmpty(t, rec.Receipt)
	// Amount comes from the application's fee snapshot, not the caller.
	assert.Equal(t, int64(10000), rec.Amount)
	assert.Equal(t, "INR", rec.Currency)

	// The record is persisted before the order id is returned.
	stored, err := f.payments.GetByOrderID(ctx, rec.OrderID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, stored.ID)
}

func TestCreateOrder_ReusesOutstandingOrder(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	first, err := f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)

	second, err := f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)
	assert.Equal(t, first.OrderID, second.OrderID)
}

func TestCreateOrder_RejectsAlreadyPaid(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	rec, err := f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)

	f.gw.setDetails("pay_001", &gateway.PaymentDetails{
		PaymentID: "pay_001", Amount: 10000, Currency: "INR", Method: "upi",
	})
	_, err = f.verifier.Verify(ctx, rec.OrderID, "pay_001", gateway.Sign(testSecret, rec.OrderID, "pay_001"))
	require.NoError(t, err)

	_, err = f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeInvalidState))
}

func TestCreateOrder_OwnershipChecked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	_, err = f.paySvc.CreateOrder(ctx, "user-2", app.ID)
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeNotFound))
}

func TestInitiateRefund(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	rec, err := f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)

	// Refunding an unpaid record is rejected.
	_, err = f.paySvc.InitiateRefund(ctx, rec.ID, 10000, "requested by student")
	require.Error(t, err)
	assert.True(t, common.Is(err, common.CodeInvalidState))

	f.gw.setDetails("pay_001", &gateway.PaymentDetails{
		PaymentID: "pay_001", Amount: 10000, Currency: "INR", Method: "upi",
	})
	_, err = f.verifier.Verify(ctx, rec.OrderID, "pay_001", gateway.Sign(testSecret, rec.OrderID, "pay_001"))
	require.NoError(t, err)

	_, err = f.paySvc.InitiateRefund(ctx, rec.ID, 0, "zero")
	assert.True(t, common.Is(err, common.CodeValidation))
	_, err = f.paySvc.InitiateRefund(ctx, rec.ID, 10001, "too much")
	assert.True(t, common.Is(err, common.CodeValidation))

	refunded, err := f.paySvc.InitiateRefund(ctx, rec.ID, 10000, "requested by student")
	require.NoError(t, err)
	assert.Equal(t, models.PaymentRefunded, refunded.Status)
	require.NotNil(t, refunded.RefundAmount)
	assert.Equal(t, int64(10000), *refunded.RefundAmount)
	assert.Equal(t, "requested by student", refunded.RefundReason)
	assert.NotNil(t, refunded.RefundedAt)
	assert.Equal(t, 1, f.notifier.countByTitle("Payment refunded"))

	// A second refund attempt fails, the record is no longer paid.
	_, err = f.paySvc.InitiateRefund(ctx, rec.ID, 10000, "again")
	assert.True(t, common.Is(err, common.CodeInvalidState))
}

func TestInitiateRefund_DoesNotRevertSubmission(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	f.docs.types[app.ID] = []string{"transcript", "sop"}
	_, err = f.docSvc.Complete(ctx, "user-1", app.ID)
	require.NoError(t, err)

	rec, err := f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)

	f.gw.setDetails("pay_001", &gateway.PaymentDetails{
		PaymentID: "pay_001", Amount: 10000, Currency: "INR", Method: "card",
	})
	_, err = f.verifier.Verify(ctx, rec.OrderID, "pay_001", gateway.Sign(testSecret, rec.OrderID, "pay_001"))
	require.NoError(t, err)

	_, err = f.paySvc.InitiateRefund(ctx, rec.ID, 10000, "withdrawal")
	require.NoError(t, err)

	// Refunds are compensation, not rollback.
	stored, err := f.apps.Get(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSubmitted, stored.Status)
	assert.True(t, stored.Progress.Payment)
}

func TestPaymentHistory(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	app, err := f.createApplication(ctx)
	require.NoError(t, err)

	_, err = f.paySvc.CreateOrder(ctx, "user-1", app.ID)
	require.NoError(t, err)

	recs, err := f.paySvc.History(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)

	recs, err = f.paySvc.History(ctx, "user-2")
	require.NoError(t, err)
	assert.Empty(t, recs)
}
