package admin

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository/mocks"
	clinicService "github.com/jwalitptl/clinic-directory/internal/service/clinic"
	draftService "github.com/jwalitptl/clinic-directory/internal/service/draft"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

type fixture struct {
	clinics *mocks.ClinicRepository
	drafts  *mocks.DraftRepository
	router  *gin.Engine
}

func newFixture() *fixture {
	gin.SetMode(gin.TestMode)
	f := &fixture{
		clinics: &mocks.ClinicRepository{},
		drafts:  &mocks.DraftRepository{},
	}
	clinicSvc := clinicService.NewService(f.clinics, &mocks.AccreditationRepository{}, &mocks.ReviewRepository{}, nil)
	draftSvc := draftService.NewService(f.clinics, f.drafts, &mocks.Emitter{})

	f.router = gin.New()
	NewHandler(clinicSvc, draftSvc).RegisterRoutes(f.router.Group("/api"))
	return f
}

func (f *fixture) do(method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func columnModes(cols []patch.Column) map[string]patch.Mode {
	out := map[string]patch.Mode{}
	for _, c := range cols {
		out[c.Name] = c.Mode
	}
	return out
}

func TestUpdateClinicTouchesOnlySubmittedFields(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	current := &model.Clinic{Base: model.Base{ID: id}, Name: "Bright Smile", Slug: "bright-smile"}
	f.clinics.On("Get", mock.Anything, id).Return(current, nil)
	f.clinics.On("Update", mock.Anything, id, mock.MatchedBy(func(cols []patch.Column) bool {
		modes := columnModes(cols)
		return len(modes) == 2 && modes["city"] == patch.Set && modes["specialty"] == patch.Clear
	})).Return(nil)

	form := url.Values{"city": {"Istanbul"}, "specialty": {""}}
	w := f.do(http.MethodPatch, "/api/admin/clinics/"+id.String(), "application/x-www-form-urlencoded", form.Encode())

	assert.Equal(t, http.StatusOK, w.Code)
	f.clinics.AssertExpectations(t)
}

func TestUpdateClinicRejectsModerationColumns(t *testing.T) {
	f := newFixture()
	id := uuid.New()

	w := f.do(http.MethodPatch, "/api/admin/clinics/"+id.String(), "application/json", `{"is_published":true}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.clinics.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateClinicBadID(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodPatch, "/api/admin/clinics/not-a-uuid", "application/json", `{"city":"Izmir"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewRendersDraftServices(t *testing.T) {
	f := newFixture()
	id := uuid.New()
	f.clinics.On("Get", mock.Anything, id).Return(&model.Clinic{Base: model.Base{ID: id}, Name: "Bright Smile", Slug: "bright-smile"}, nil)
	f.drafts.On("Ensure", mock.Anything, id).Return(&model.ClinicProfileDraft{
		ClinicID: id,
		Services: types.JSONText(`[{"name":"Cleaning","price":"100","currency":"USD"}]`),
		Status:   model.DraftPending,
	}, nil)

	w := f.do(http.MethodGet, "/api/admin/clinics/"+id.String()+"/preview", "", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"service_lines":["Cleaning — 100 USD"]`)
}

func TestCreateClinicValidation(t *testing.T) {
	f := newFixture()
	w := f.do(http.MethodPost, "/api/admin/clinics", "application/json", `{"name":"B"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	f.clinics.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
