package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/the-y0gi/Go-Apply-sub000/common"
	"github.com/the-y0gi/Go-Apply-sub000/gateway"
	"github.com/the-y0gi/Go-Apply-sub000/models"
)

// In-memory store fakes with the same guarded-update semantics as the
// postgres implementations, so the concurrency behavior under test matches
// production.

type fakeApplicationRepo struct {
	mu   sync.Mutex
	apps map[string]*models.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[string]*models.Application)}
}

func (r *fakeApplicationRepo) Insert(_ context.Context, app *models.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.apps {
		for _, ei := range existing.Intakes {
			for _, ni := range app.Intakes {
				if ei.UserID == ni.UserID && ei.UniversityID == ni.UniversityID &&
					ei.ProgramID == ni.ProgramID && ei.Season == ni.Season && ei.Year == ni.Year {
					return common.New(common.CodeConflict, "application already exists for this intake")
				}
			}
		}
	}
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) Get(_ context.Context, id string) (*models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok {
		return nil, common.New(common.CodeNotFound, "application not found")
	}
	cp := *app
	return &cp, nil
}

func (r *fakeApplicationRepo) ListByUser(_ context.Context, userID string) ([]models.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Application
	for _, app := range r.apps {
		if app.UserID == userID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) HasIntake(_ context.Context, userID, universityID, programID string, season models.IntakeSeason, year int) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, app := range r.apps {
		for _, in := range app.Intakes {
			if in.UserID == userID && in.UniversityID == universityID &&
				in.ProgramID == programID && in.Season == season && in.Year == year {
				return true, nil
			}
		}
	}
	return false, nil
}

func (r *fakeApplicationRepo) UpdateProgress(_ context.Context, id string, version int64, p models.Progress) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Version != version {
		return false, nil
	}
	app.Progress = p
	app.Version++
	return true, nil
}

func (r *fakeApplicationRepo) TransitionStatus(_ context.Context, id string, from, to models.ApplicationStatus, submittedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Status != from {
		return false, nil
	}
	app.Status = to
	if submittedAt != nil {
		app.SubmittedAt = submittedAt
	}
	return true, nil
}

func (r *fakeApplicationRepo) SetPaymentStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if app, ok := r.apps[id]; ok {
		app.PaymentStatus = status
	}
	return nil
}

func (r *fakeApplicationRepo) DeleteDraft(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.apps[id]
	if !ok || app.Status != models.StatusDraft {
		return false, nil
	}
	delete(r.apps, id)
	return true, nil
}

type fakePaymentRepo struct {
	mu   sync.Mutex
	recs map[string]*models.PaymentRecord // keyed by record id
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{recs: make(map[string]*models.PaymentRecord)}
}

func (r *fakePaymentRepo) Insert(_ context.Context, rec *models.PaymentRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	cp.CreatedAt = time.Now()
	r.recs[rec.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) GetByID(_ context.Context, id string) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok {
		return nil, common.New(common.CodeNotFound, "payment record not found")
	}
	cp := *rec
	return &cp, nil
}

func (r *fakePaymentRepo) GetByOrderID(_ context.Context, orderID string) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.byOrderLocked(orderID); rec != nil {
		cp := *rec
		return &cp, nil
	}
	return nil, common.New(common.CodeNotFound, "unknown order id")
}

func (r *fakePaymentRepo) byOrderLocked(orderID string) *models.PaymentRecord {
	for _, rec := range r.recs {
		if rec.OrderID == orderID {
			return rec
		}
	}
	return nil
}

func (r *fakePaymentRepo) FindOutstanding(_ context.Context, applicationID string) (*models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.ApplicationID == applicationID && rec.Status == models.PaymentCreated {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakePaymentRepo) HasPaid(_ context.Context, applicationID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.recs {
		if rec.ApplicationID == applicationID && rec.Status == models.PaymentPaid {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePaymentRepo) ListByUser(_ context.Context, userID string) ([]models.PaymentRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PaymentRecord
	for _, rec := range r.recs {
		if rec.UserID == userID {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *fakePaymentRepo) MarkAttempted(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.byOrderLocked(orderID); rec != nil && rec.Status == models.PaymentCreated {
		rec.Status = models.PaymentAttempted
	}
	return nil
}

func (r *fakePaymentRepo) MarkPaid(_ context.Context, orderID, gatewayPaymentID string, paidAt time.Time, method, details string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec := r.byOrderLocked(orderID)
	if rec == nil || (rec.Status != models.PaymentCreated && rec.Status != models.PaymentAttempted) {
		return false, nil
	}
	rec.Status = models.PaymentPaid
	rec.GatewayPaymentID = gatewayPaymentID
	rec.PaidAt = &paidAt
	rec.Method = method
	rec.MethodDetails = details
	return true, nil
}

func (r *fakePaymentRepo) MarkFailed(_ context.Context, orderID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.byOrderLocked(orderID); rec != nil &&
		(rec.Status == models.PaymentCreated || rec.Status == models.PaymentAttempted) {
		rec.Status = models.PaymentFailed
	}
	return nil
}

func (r *fakePaymentRepo) UpdateMethodMetadata(_ context.Context, orderID, method, details string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec := r.byOrderLocked(orderID); rec != nil {
		rec.Method = method
		rec.MethodDetails = details
	}
	return nil
}

func (r *fakePaymentRepo) MarkRefunded(_ context.Context, id string, amount int64, reason string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[id]
	if !ok || rec.Status != models.PaymentPaid {
		return false, nil
	}
	rec.Status = models.PaymentRefunded
	rec.RefundAmount = &amount
	rec.RefundReason = reason
	rec.RefundedAt = &at
	return true, nil
}

type fakeProfileSource struct {
	profiles map[string]*models.StudentProfile
}

func (f *fakeProfileSource) GetByUserID(_ context.Context, userID string) (*models.StudentProfile, error) {
	if p, ok := f.profiles[userID]; ok {
		return p, nil
	}
	return nil, common.New(common.CodeNotFound, "student profile not found")
}

type fakeCatalogSource struct {
	programs map[string]*models.Program
}

func (f *fakeCatalogSource) GetProgram(_ context.Context, programID string) (*models.Program, error) {
	if p, ok := f.programs[programID]; ok {
		return p, nil
	}
	return nil, common.New(common.CodeNotFound, "program not found")
}

type fakeDocumentSource struct {
	mu    sync.Mutex
	types map[string][]string // applicationID -> uploaded types
}

func (f *fakeDocumentSource) ListTypes(_ context.Context, _, applicationID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.types[applicationID]...), nil
}

type sentNotification struct {
	UserID   string
	Category string
	Title    string
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(userID, category, title, _, _ string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{UserID: userID, Category: category, Title: title})
}

func (f *fakeNotifier) countByTitle(title string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, s := range f.sent {
		if s.Title == title {
			n++
		}
	}
	return n
}

const testSecret = "test-secret"

type fakeGateway struct {
	mu       sync.Mutex
	orderSeq int
	details  map[string]*gateway.PaymentDetails
	fetchErr error
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{details: make(map[string]*gateway.PaymentDetails)}
}

func (g *fakeGateway) CreateOrder(_ context.Context, amount int64, currency, _ string) (*gateway.Order, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.orderSeq++
	return &gateway.Order{OrderID: fmt.Sprintf("order_%03d", g.orderSeq)}, nil
}

func (g *fakeGateway) FetchPaymentDetails(_ context.Context, paymentID string) (*gateway.PaymentDetails, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fetchErr != nil {
		return nil, g.fetchErr
	}
	d, ok := g.details[paymentID]
	if !ok {
		return nil, common.New(common.CodeNotFound, "payment not found at gateway")
	}
	cp := *d
	return &cp, nil
}

func (g *fakeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return gateway.VerifySignature(testSecret, orderID, paymentID, signature)
}

func (g *fakeGateway) setDetails(paymentID string, d *gateway.PaymentDetails) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.details[paymentID] = d
}

func (g *fakeGateway) setFetchErr(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.fetchErr = err
}

type fixture struct {
	apps     *fakeApplicationRepo
	payments *fakePaymentRepo
	profiles *fakeProfileSource
	catalog  *fakeCatalogSource
	docs     *fakeDocumentSource
	notifier *fakeNotifier
	gw       *fakeGateway

	appSvc    *ApplicationService
	evaluator *SubmissionEvaluator
	docSvc    *DocumentService
	paySvc    *PaymentService
	verifier  *PaymentVerifier
}

func newFixture() *fixture {
	dob := time.Date(2002, 6, 15, 0, 0, 0, 0, time.UTC)
	deadline := time.Now().AddDate(0, 6, 0)

	f := &fixture{
		apps:     newFakeApplicationRepo(),
		payments: newFakePaymentRepo(),
		profiles: &fakeProfileSource{profiles: map[string]*models.StudentProfile{
			"user-1": {
				ID: "profile-1", UserID: "user-1",
				FullName: "Asha Verma", Nationality: "Indian",
				DateOfBirth:      &dob,
				Languages:        []string{"english", "hindi"},
				EducationHistory: []string{"BSc Computer Science"},
			},
		}},
		catalog: &fakeCatalogSource{programs: map[string]*models.Program{
			"prog-1": {
				ID: "prog-1", UniversityID: "uni-1", Name: "MSc Data Science",
				ApplicationFee: 10000, FeeCurrency: "INR",
				ApplicationDeadline: &deadline,
				DocumentsRequired:   []string{"transcript", "sop"},
			},
		}},
		docs:     &fakeDocumentSource{types: make(map[string][]string)},
		notifier: &fakeNotifier{},
		gw:       newFakeGateway(),
	}

	f.appSvc = NewApplicationService(f.apps, f.profiles, f.catalog, f.notifier)
	f.evaluator = NewSubmissionEvaluator(f.apps, f.notifier)
	f.docSvc = NewDocumentService(f.appSvc, f.docs, f.evaluator)
	f.paySvc = NewPaymentService(f.payments, f.apps, f.gw, f.notifier)
	f.verifier = NewPaymentVerifier(f.payments, f.appSvc, f.evaluator, f.gw, f.notifier)
	return f
}

func (f *fixture) createApplication(ctx context.Context) (*models.Application, error) {
	return f.appSvc.Create(ctx, "user-1", "uni-1", "prog-1", []Intake{{Season: models.SeasonFall, Year: time.Now().Year() + 1}})
}
