package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/gateway"
	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/models"
	"github.com/the-y0gi/Go-Apply-sub000/utils"
)

type PaymentService struct {
	payments PaymentRepo
	apps     ApplicationRepo
	gw       gateway.Client
	notifier Notifier
}

func NewPaymentService(payments PaymentRepo, apps ApplicationRepo, gw gateway.Client, notifier Notifier) *PaymentService {
	return &PaymentService{payments: payments, apps: apps, gw: gw, notifier: notifier}
}

// CreateOrder mints a gateway order for the application fee and persists the
// matching record before returning, so a callback racing the HTTP response
// can still be matched. The amount always comes from the fee snapshotted on
// the application, never from the caller.
//
// If a created order is already outstanding for this application it is
// reused instead of minting another one; the verifier's first-paid-wins rule
// covers the remaining window.
func (s *PaymentService) CreateOrder(ctx context.Context, userID, applicationID string) (*models.PaymentRecord, error) {
	app, err := s.apps.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.UserID != userID {
		return nil, common.New(common.CodeNotFound, "application not found")
	}

	paid, err := s.payments.HasPaid(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if paid || app.Progress.Payment {
		return nil, common.New(common.CodeInvalidState, "application fee is already paid")
	}

	if outstanding, err := s.payments.FindOutstanding(ctx, applicationID); err != nil {
		return nil, err
	} else if outstanding != nil {
		return outstanding, nil
	}

	receipt, err := utils.NextReceiptID()
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "generate receipt id", err)
	}

	order, err := s.gw.CreateOrder(ctx, app.ApplicationFee, app.FeeCurrency, receipt)
	if err != nil {
		return nil, err
	}

	rec := &models.PaymentRecord{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		UserID:        userID,
		OrderID:       order.OrderID,
		Receipt:       receipt,
		Amount:        app.ApplicationFee,
		Currency:      app.FeeCurrency,
		Status:        models.PaymentCreated,
	}
	if err := s.payments.Insert(ctx, rec); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("application_id", applicationID).
		Str("order_id", order.OrderID).
		Int64("amount", app.ApplicationFee).
		Msg("payment order created")
	return rec, nil
}

// InitiateRefund moves a paid record to refunded. By design this does not
// revert the application's payment gate or its submitted status; refunds are
// compensation, not rollback.
func (s *PaymentService) InitiateRefund(ctx context.Context, recordID string, amount int64, reason string) (*models.PaymentRecord, error) {
	rec, err := s.payments.GetByID(ctx, recordID)
	if err != nil {
		return nil, err
	}
	if rec.Status != models.PaymentPaid {
		return nil, common.New(common.CodeInvalidState,
			fmt.Sprintf("only paid records can be refunded, record is %s", rec.Status))
	}
	if amount <= 0 || amount > rec.Amount {
		return nil, common.New(common.CodeValidation, "refund amount must be positive and at most the paid amount")
	}

	now := time.Now()
	ok, err := s.payments.MarkRefunded(ctx, recordID, amount, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.New(common.CodeInvalidState, "payment record left paid state before refund committed")
	}

	logger.Log.Info().
		Str("payment_record_id", recordID).
		Int64("refund_amount", amount).
		Msg("payment refunded")
	s.notifier.Notify(rec.UserID, "payment", "Payment refunded",
		fmt.Sprintf("A refund of %d %s has been initiated.", amount, rec.Currency), rec.ApplicationID)

	rec.Status = models.PaymentRefunded
	rec.RefundAmount = &amount
	rec.RefundReason = reason
	rec.RefundedAt = &now
	return rec, nil
}

func (s *PaymentService) History(ctx context.Context, userID string) ([]models.PaymentRecord, error) {
	return s.payments.ListByUser(ctx, userID)
}
