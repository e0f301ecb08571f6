package patient

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository/mocks"
	bookingService "github.com/jwalitptl/clinic-directory/internal/service/booking"
	clinicService "github.com/jwalitptl/clinic-directory/internal/service/clinic"
	patientService "github.com/jwalitptl/clinic-directory/internal/service/patient"
	"github.com/jwalitptl/clinic-directory/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
)

type fixture struct {
	clinics  *mocks.ClinicRepository
	bookings *mocks.BookingRepository
	reviews  *mocks.ReviewRepository
	reports  *mocks.ReportRepository
	events   *mocks.Emitter
	router   *gin.Engine
}

func newFixture(principal *model.Principal) *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		clinics:  &mocks.ClinicRepository{},
		bookings: &mocks.BookingRepository{},
		reviews:  &mocks.ReviewRepository{},
		reports:  &mocks.ReportRepository{},
		events:   &mocks.Emitter{},
	}
	clinicSvc := clinicService.NewService(f.clinics, &mocks.AccreditationRepository{}, f.reviews, nil)
	bookingSvc := bookingService.NewService(f.bookings, f.clinics, f.events)
	svc := patientService.NewService(bookingSvc, f.clinics, f.reviews, f.reports, clinicSvc)

	f.router = gin.New()
	group := f.router.Group("/api", func(c *gin.Context) {
		if principal != nil {
			auth.SetPrincipal(c, principal)
		}
		c.Next()
	})
	NewHandler(svc).RegisterRoutes(group)
	return f
}

func patient() *model.Principal {
	return &model.Principal{UserID: uuid.New(), Role: model.RolePatient, Email: "ayse@example.com"}
}

func (f *fixture) publicClinic() *model.Clinic {
	c := &model.Clinic{
		Base:             model.Base{ID: uuid.New()},
		Name:             "Bright Smile",
		Slug:             "bright-smile",
		IsPublished:      true,
		ModerationStatus: model.ModerationApproved,
	}
	f.clinics.On("Get", mock.Anything, c.ID).Return(c, nil)
	return c
}

func (f *fixture) postJSON(path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRoutesRequirePrincipal(t *testing.T) {
	f := newFixture(nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patient/requests", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRoutesRejectOtherRoles(t *testing.T) {
	clinicID := uuid.New()
	f := newFixture(&model.Principal{UserID: uuid.New(), Role: model.RoleCustomer, ClinicID: &clinicID})
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/patient/requests", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
	f.bookings.AssertNotCalled(t, "ListByPatient", mock.Anything, mock.Anything)
}

func TestCreateRequestLinksPatient(t *testing.T) {
	p := patient()
	f := newFixture(p)
	c := f.publicClinic()
	f.bookings.On("Create", mock.Anything, mock.MatchedBy(func(b *model.Booking) bool {
		return b.ClinicID == c.ID && b.PatientID != nil && *b.PatientID == p.UserID && b.Status == model.BookingNew
	})).Return(nil)
	f.events.On("Emit", mock.Anything, model.EventBookingCreated, mock.Anything).Return(nil)

	w := f.postJSON("/api/patient/requests", `{"clinic_id":"`+c.ID.String()+`","full_name":"Ayse Demir","email":"Ayse@Example.com"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.bookings.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestCreateRequestUnpublishedClinic(t *testing.T) {
	f := newFixture(patient())
	id := uuid.New()
	f.clinics.On("Get", mock.Anything, id).Return(&model.Clinic{Base: model.Base{ID: id}, ModerationStatus: model.ModerationPending}, nil)

	w := f.postJSON("/api/patient/requests", `{"clinic_id":"`+id.String()+`","full_name":"Ayse Demir","email":"ayse@example.com"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview(t *testing.T) {
	p := patient()
	f := newFixture(p)
	c := f.publicClinic()
	f.reviews.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Review) bool {
		return r.ClinicID == c.ID && r.PatientID == p.UserID && r.Rating == 5 && r.Comment != nil && *r.Comment == "Great care"
	})).Return(nil)

	w := f.postJSON("/api/patient/reviews", `{"clinic_id":"`+c.ID.String()+`","rating":5,"comment":"  Great care "}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.reviews.AssertExpectations(t)
}

func TestCreateReviewTwiceConflicts(t *testing.T) {
	f := newFixture(patient())
	c := f.publicClinic()
	f.reviews.On("Create", mock.Anything, mock.Anything).Return(apperrors.Conflict("duplicate", nil))

	w := f.postJSON("/api/patient/reviews", `{"clinic_id":"`+c.ID.String()+`","rating":4}`)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "clinic already reviewed")
}

func TestCreateReviewRatingOutOfRange(t *testing.T) {
	f := newFixture(patient())
	w := f.postJSON("/api/patient/reviews", `{"clinic_id":"`+uuid.NewString()+`","rating":9}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.reviews.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReport(t *testing.T) {
	f := newFixture(patient())
	c := f.publicClinic()
	f.reports.On("Create", mock.Anything, mock.MatchedBy(func(r *model.Report) bool {
		return r.ClinicID == c.ID && r.Reason == "Wrong address" && r.Status == "open"
	})).Return(nil)

	w := f.postJSON("/api/patient/reports", `{"clinic_id":"`+c.ID.String()+`","reason":"Wrong address"}`)

	assert.Equal(t, http.StatusCreated, w.Code)
	f.reports.AssertExpectations(t)
}
