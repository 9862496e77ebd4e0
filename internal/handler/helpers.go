package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"tillpoint/internal/apierror"
	"tillpoint/internal/repository"
	"tillpoint/internal/service"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("invalid JSON: "+err.Error()))
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

// writeServiceError translates the service error taxonomy into HTTP statuses.
func writeServiceError(c *gin.Context, err error) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		c.JSON(http.StatusUnprocessableEntity, apierror.New(verr.Error()))
		return
	}

	switch {
	case errors.Is(err, service.ErrNoOpenRegister),
		errors.Is(err, service.ErrRegisterAlreadyOpen),
		errors.Is(err, service.ErrMissingRegisterID):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
		return
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New("register not found"))
		return
	case service.IsPermissionDenied(err):
		c.JSON(http.StatusForbidden, apierror.New("permission denied by the data store"))
		return
	}

	var perr *service.PersistenceError
	if errors.As(err, &perr) {
		c.JSON(http.StatusBadGateway, apierror.New("data store unavailable, try again"))
		return
	}

	c.JSON(http.StatusInternalServerError, apierror.New("internal server error"))
}
