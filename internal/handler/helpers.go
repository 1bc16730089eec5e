package handler

import (
	"net/http"
	"reflect"

	"minimarket/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// validator panics on decimal.Decimal fields carrying numeric tags
	// ("Bad field type decimal.Decimal"), so expose them as float64.
	// Precision loss is irrelevant here: the tags only gate sign and
	// presence, never exact amounts.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate decodes the JSON body into req and checks its validator
// tags. On failure it writes the 400/422 response and returns false, and
// the caller must not write anything else.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewPlain("JSON inválido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError translates a service error into its HTTP response.
// Unclassified errors surface as an opaque 500.
func respondError(c *gin.Context, err error) {
	e := apierror.AsError(err)
	if e.Kind == apierror.KindServer {
		// Preserve the original for the error-handler middleware log.
		_ = c.Error(err)
	}
	c.JSON(apierror.HTTPStatus(e.Kind), e)
}

// parseID parses a UUID path parameter, writing the 400 response on failure.
func parseID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.NewPlain("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
