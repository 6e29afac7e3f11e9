package services

import (
	"context"
	"fmt"
	"time"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/gateway"
	"github.com/the-y0gi/Go-Apply-sub000/logger"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

type VerificationResult struct {
	OrderID string `json:"order_id"`
	Paid    bool   `json:"paid"`
	// Duplicate reports that this delivery confirmed an already-paid record
	// and no side effects were re-run.
	Duplicate bool `json:"duplicate"`
}

// PaymentVerifier validates gateway callbacks and drives the
// created -> paid transition exactly once per record.
type PaymentVerifier struct {
	payments  PaymentRepo
	apps      *ApplicationService
	evaluator *SubmissionEvaluator
	gw        gateway.Client
	notifier  Notifier
}

func NewPaymentVerifier(payments PaymentRepo, apps *ApplicationService, evaluator *SubmissionEvaluator, gw gateway.Client, notifier Notifier) *PaymentVerifier {
	return &PaymentVerifier{payments: payments, apps: apps, evaluator: evaluator, gw: gw, notifier: notifier}
}

// Verify checks the callback signature, fetches the authoritative payment
// details from the gateway, and flips the record to paid. Progress update,
// submission evaluation and the notification run only on the delivery that
// actually performed the transition; duplicate deliveries return success
// without side effects (method metadata may still refresh).
//
// Callbacks for unknown order ids are rejected, never created speculatively.
func (v *PaymentVerifier) Verify(ctx context.Context, orderID, paymentID, signature string) (*VerificationResult, error) {
	rec, err := v.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if !v.gw.VerifySignature(orderID, paymentID, signature) {
		logger.Log.Warn().
			Str("order_id", orderID).
			Str("gateway_payment_id", paymentID).
			Msg("payment callback signature mismatch, possible tampering")
		if rec.Status == models.PaymentCreated || rec.Status == models.PaymentAttempted {
			if err := v.payments.MarkFailed(ctx, orderID); err != nil {
				return nil, err
			}
			if err := v.apps.apps.SetPaymentStatus(ctx, rec.ApplicationID, "failed"); err != nil {
				return nil, err
			}
		}
		return nil, common.New(common.CodeSignature, "payment signature mismatch")
	}

	switch rec.Status {
	case models.PaymentPaid:
		return v.duplicateDelivery(ctx, rec, paymentID)
	case models.PaymentFailed, models.PaymentRefunded:
		return nil, common.New(common.CodeInvalidState,
			fmt.Sprintf("payment record is already %s", rec.Status))
	}

	// The record survives in attempted if the detail fetch below fails, so
	// a later retry can still complete the verification.
	if err := v.payments.MarkAttempted(ctx, orderID); err != nil {
		return nil, err
	}

	details, err := v.gw.FetchPaymentDetails(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	// The callback body is never trusted for money fields; only the
	// gateway's own record counts.
	if details.Amount != rec.Amount || details.Currency != rec.Currency {
		logger.Log.Warn().
			Str("order_id", orderID).
			Int64("expected_amount", rec.Amount).
			Int64("gateway_amount", details.Amount).
			Msg("gateway payment does not match order")
		if err := v.payments.MarkFailed(ctx, orderID); err != nil {
			return nil, err
		}
		if err := v.apps.apps.SetPaymentStatus(ctx, rec.ApplicationID, "failed"); err != nil {
			return nil, err
		}
		return nil, common.New(common.CodeValidation, "gateway payment does not match order")
	}

	ok, err := v.payments.MarkPaid(ctx, orderID, paymentID, time.Now(), details.Method, details.MethodDetails)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Lost the race against a concurrent delivery of the same callback.
		fresh, err := v.payments.GetByOrderID(ctx, orderID)
		if err != nil {
			return nil, err
		}
		if fresh.Status == models.PaymentPaid {
			return &VerificationResult{OrderID: orderID, Paid: true, Duplicate: true}, nil
		}
		return nil, common.New(common.CodeInvalidState,
			fmt.Sprintf("payment record moved to %s during verification", fresh.Status))
	}

	// First transition wins: only this path runs the side effects.
	if err := v.apps.apps.SetPaymentStatus(ctx, rec.ApplicationID, "paid"); err != nil {
		return nil, err
	}
	if _, err := v.apps.MergeProgress(ctx, rec.ApplicationID, models.Progress{Payment: true}); err != nil {
		return nil, err
	}
	if _, err := v.evaluator.Evaluate(ctx, rec.ApplicationID); err != nil {
		return nil, err
	}

	logger.Log.Info().
		Str("order_id", orderID).
		Str("application_id", rec.ApplicationID).
		Msg("payment verified")
	v.notifier.Notify(rec.UserID, "payment", "Payment received",
		fmt.Sprintf("Your application fee payment of %d %s has been received.", rec.Amount, rec.Currency),
		rec.ApplicationID)

	return &VerificationResult{OrderID: orderID, Paid: true}, nil
}

// duplicateDelivery refreshes stored method metadata from the gateway when
// reachable (the gateway may correct it after the fact) but suppresses all
// side effects.
func (v *PaymentVerifier) duplicateDelivery(ctx context.Context, rec *models.PaymentRecord, paymentID string) (*VerificationResult, error) {
	if details, err := v.gw.FetchPaymentDetails(ctx, paymentID); err == nil {
		if details.Method != rec.Method || details.MethodDetails != rec.MethodDetails {
			if err := v.payments.UpdateMethodMetadata(ctx, rec.OrderID, details.Method, details.MethodDetails); err != nil {
				logger.Log.Warn().Err(err).Str("order_id", rec.OrderID).Msg("metadata refresh failed")
			}
		}
	}
	return &VerificationResult{OrderID: rec.OrderID, Paid: true, Duplicate: true}, nil
}
