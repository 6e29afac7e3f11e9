package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

// GormStores bundles the postgres-backed implementations of the store
// contracts.
type GormStores struct {
	Applications ApplicationRepo
	Payments     PaymentRepo
	Profiles     ProfileSource
	Catalog      CatalogSource
	Documents    DocumentSource
}

func NewGormStores(db *gorm.DB) *GormStores {
	return &GormStores{
		Applications: &gormApplicationRepo{db: db},
		Payments:     &gormPaymentRepo{db: db},
		Profiles:     &gormProfileSource{db: db},
		Catalog:      &gormCatalogSource{db: db},
		Documents:    &gormDocumentSource{db: db},
	}
}

type gormApplicationRepo struct{ db *gorm.DB }

func (r *gormApplicationRepo) Insert(ctx context.Context, app *models.Application) error {
	err := r.db.WithContext(ctx).Create(app).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.New(common.CodeConflict, "application already exists for this intake")
	}
	if err != nil {
		return common.Wrap(common.CodeInternal, "insert application", err)
	}
	return nil
}

func (r *gormApplicationRepo) Get(ctx context.Context, id string) (*models.Application, error) {
	var app models.Application
	err := r.db.WithContext(ctx).Preload("Intakes").First(&app, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.New(common.CodeNotFound, "application not found")
	}
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "fetch application", err)
	}
	return &app, nil
}

func (r *gormApplicationRepo) ListByUser(ctx context.Context, userID string) ([]models.Application, error) {
	var apps []models.Application
	err := r.db.WithContext(ctx).Preload("Intakes").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&apps).Error
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "list applications", err)
	}
	return apps, nil
}

func (r *gormApplicationRepo) HasIntake(ctx context.Context, userID, universityID, programID string, season models.IntakeSeason, year int) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ApplicationIntake{}).
		Where("user_id = ? AND university_id = ? AND program_id = ? AND season = ? AND year = ?",
			userID, universityID, programID, season, year).
		Count(&count).Error
	if err != nil {
		return false, common.Wrap(common.CodeInternal, "check intake", err)
	}
	return count > 0, nil
}

func (r *gormApplicationRepo) UpdateProgress(ctx context.Context, id string, version int64, p models.Progress) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND version = ?", id, version).
		Updates(map[string]interface{}{
			"progress_personal_info": p.PersonalInfo,
			"progress_academic_info": p.AcademicInfo,
			"progress_documents":     p.Documents,
			"progress_payment":       p.Payment,
			"version":                version + 1,
		})
	if res.Error != nil {
		return false, common.Wrap(common.CodeInternal, "update progress", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormApplicationRepo) TransitionStatus(ctx context.Context, id string, from, to models.ApplicationStatus, submittedAt *time.Time) (bool, error) {
	updates := map[string]interface{}{"status": to}
	if submittedAt != nil {
		updates["submitted_at"] = submittedAt
	}
	res := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, common.Wrap(common.CodeInternal, "transition status", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormApplicationRepo) SetPaymentStatus(ctx context.Context, id, status string) error {
	err := r.db.WithContext(ctx).Model(&models.Application{}).
		Where("id = ?", id).
		Update("payment_status", status).Error
	if err != nil {
		return common.Wrap(common.CodeInternal, "set payment status", err)
	}
	return nil
}

func (r *gormApplicationRepo) DeleteDraft(ctx context.Context, id string) (bool, error) {
	var deleted bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND status = ?", id, models.StatusDraft).Delete(&models.Application{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		deleted = true
		// Free the intake slots so the student can re-apply later.
		return tx.Where("application_id = ?", id).Delete(&models.ApplicationIntake{}).Error
	})
	if err != nil {
		return false, common.Wrap(common.CodeInternal, "delete application", err)
	}
	return deleted, nil
}

type gormPaymentRepo struct{ db *gorm.DB }

func (r *gormPaymentRepo) Insert(ctx context.Context, rec *models.PaymentRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return common.Wrap(common.CodeInternal, "insert payment record", err)
	}
	return nil
}

func (r *gormPaymentRepo) GetByID(ctx context.Context, id string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.New(common.CodeNotFound, "payment record not found")
	}
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "fetch payment record", err)
	}
	return &rec, nil
}

func (r *gormPaymentRepo) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := r.db.WithContext(ctx).First(&rec, "order_id = ?", orderID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.New(common.CodeNotFound, "unknown order id")
	}
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "fetch payment record", err)
	}
	return &rec, nil
}

func (r *gormPaymentRepo) FindOutstanding(ctx context.Context, applicationID string) (*models.PaymentRecord, error) {
	var rec models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("application_id = ? AND status = ?", applicationID, models.PaymentCreated).
		Order("created_at DESC").
		First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "find outstanding payment", err)
	}
	return &rec, nil
}

func (r *gormPaymentRepo) HasPaid(ctx context.Context, applicationID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("application_id = ? AND status = ?", applicationID, models.PaymentPaid).
		Count(&count).Error
	if err != nil {
		return false, common.Wrap(common.CodeInternal, "check paid records", err)
	}
	return count > 0, nil
}

func (r *gormPaymentRepo) ListByUser(ctx context.Context, userID string) ([]models.PaymentRecord, error) {
	var recs []models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&recs).Error
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "list payment records", err)
	}
	return recs, nil
}

func (r *gormPaymentRepo) MarkAttempted(ctx context.Context, orderID string) error {
	err := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status = ?", orderID, models.PaymentCreated).
		Update("status", models.PaymentAttempted).Error
	if err != nil {
		return common.Wrap(common.CodeInternal, "mark attempted", err)
	}
	return nil
}

// MarkPaid is the compare-and-swap that closes the double-callback race:
// only a record still in created/attempted can move to paid, in a single
// conditional UPDATE.
func (r *gormPaymentRepo) MarkPaid(ctx context.Context, orderID, gatewayPaymentID string, paidAt time.Time, method, details string) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status IN ?", orderID, []models.PaymentStatus{models.PaymentCreated, models.PaymentAttempted}).
		Updates(map[string]interface{}{
			"status":             models.PaymentPaid,
			"gateway_payment_id": gatewayPaymentID,
			"paid_at":            paidAt,
			"method":             method,
			"method_details":     details,
		})
	if res.Error != nil {
		return false, common.Wrap(common.CodeInternal, "mark paid", res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *gormPaymentRepo) MarkFailed(ctx context.Context, orderID string) error {
	err := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("order_id = ? AND status IN ?", orderID, []models.PaymentStatus{models.PaymentCreated, models.PaymentAttempted}).
		Update("status", models.PaymentFailed).Error
	if err != nil {
		return common.Wrap(common.CodeInternal, "mark failed", err)
	}
	return nil
}

func (r *gormPaymentRepo) UpdateMethodMetadata(ctx context.Context, orderID, method, details string) error {
	err := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("order_id = ?", orderID).
		Updates(map[string]interface{}{"method": method, "method_details": details}).Error
	if err != nil {
		return common.Wrap(common.CodeInternal, "update method metadata", err)
	}
	return nil
}

func (r *gormPaymentRepo) MarkRefunded(ctx context.Context, id string, amount int64, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("id = ? AND status = ?", id, models.PaymentPaid).
		Updates(map[string]interface{}{
			"status":        models.PaymentRefunded,
			"refund_amount": amount,
			"refund_reason": reason,
			"refunded_at":   at,
		})
	if res.Error != nil {
		return false, common.Wrap(common.CodeInternal, "mark refunded", res.Error)
	}
	return res.RowsAffected > 0, nil
}

type gormProfileSource struct{ db *gorm.DB }

func (r *gormProfileSource) GetByUserID(ctx context.Context, userID string) (*models.StudentProfile, error) {
	var profile models.StudentProfile
	err := r.db.WithContext(ctx).First(&profile, "user_id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.New(common.CodeNotFound, "student profile not found")
	}
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "fetch profile", err)
	}
	return &profile, nil
}

type gormCatalogSource struct{ db *gorm.DB }

func (r *gormCatalogSource) GetProgram(ctx context.Context, programID string) (*models.Program, error) {
	var program models.Program
	err := r.db.WithContext(ctx).First(&program, "id = ?", programID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, common.New(common.CodeNotFound, "program not found")
	}
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "fetch program", err)
	}
	return &program, nil
}

type gormDocumentSource struct{ db *gorm.DB }

func (r *gormDocumentSource) ListTypes(ctx context.Context, userID, applicationID string) ([]string, error) {
	var types []string
	err := r.db.WithContext(ctx).Model(&models.StudentDocument{}).
		Where("user_id = ? AND (application_id = ? OR application_id = '')", userID, applicationID).
		Distinct().
		Pluck("type", &types).Error
	if err != nil {
		return nil, common.Wrap(common.CodeInternal, "list document types", err)
	}
	return types, nil
}
