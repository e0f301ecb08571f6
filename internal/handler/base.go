package handler

import (
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/pkg/auth"
	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
	"github.com/jwalitptl/clinic-directory/pkg/validator"
)

const maxPatchBody = 1 << 20

// Bind decodes a JSON or form body into req, responding 400 on failure.
func Bind(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBind(req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(validator.Describe(err)))
		return false
	}
	return true
}

// ParamUUID parses a path parameter, responding 400 when it is not a UUID.
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// BindPatch decodes a partial update. Form bodies may use dotted keys for
// nested documents; JSON bodies follow the same absent/empty/value convention.
func BindPatch(c *gin.Context, schema patch.Schema) (patch.Patch, bool) {
	var (
		p   patch.Patch
		err error
	)

	if strings.HasPrefix(c.ContentType(), "application/json") {
		body, readErr := io.ReadAll(io.LimitReader(c.Request.Body, maxPatchBody))
		if readErr != nil {
			RespondError(c, apperrors.BadRequest("unreadable body", readErr))
			return nil, false
		}
		p, err = patch.FromJSON(body, schema)
	} else {
		if parseErr := c.Request.ParseMultipartForm(maxPatchBody); parseErr != nil && parseErr != http.ErrNotMultipart {
			RespondError(c, apperrors.BadRequest("unreadable form", parseErr))
			return nil, false
		}
		p, err = patch.FromForm(c.Request.PostForm, schema)
	}
	if err != nil {
		RespondError(c, apperrors.BadRequest(err.Error(), err))
		return nil, false
	}
	return p, true
}

// Principal returns the authenticated caller or responds 401.
func Principal(c *gin.Context) (*model.Principal, bool) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		RespondError(c, apperrors.Unauthorized(nil))
		return nil, false
	}
	return p, true
}

// ClinicScope returns the clinic a customer token is bound to.
func ClinicScope(c *gin.Context) (uuid.UUID, bool) {
	p, ok := Principal(c)
	if !ok {
		return uuid.Nil, false
	}
	if p.Role != model.RoleCustomer || p.ClinicID == nil {
		RespondError(c, apperrors.Forbidden("clinic staff only"))
		return uuid.Nil, false
	}
	return *p.ClinicID, true
}

// Chain returns middleware followed by h in a fresh slice.
func Chain(middleware []gin.HandlerFunc, h gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(middleware)+1)
	out = append(out, middleware...)
	return append(out, h)
}
