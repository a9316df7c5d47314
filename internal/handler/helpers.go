package handler

import (
	"errors"
	"net/http"
	"reflect"

	"siloshare/internal/apierror"
	"siloshare/internal/domain"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
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
		c.JSON(http.StatusBadRequest, apierror.New("JSON inválido: "+err.Error()))
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

// respondError translates domain errors into HTTP statuses:
//
//	ErrNaoEncontrado                           → 404
//	ErrAcessoNegado                            → 403
//	ErrTransicaoInvalida, ErrCapacidadeInsuficiente → 409
//	other domain errors                        → 400
//	anything else                              → 500 (detail never leaked)
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNaoEncontrado):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.Is(err, domain.ErrAcessoNegado):
		c.JSON(http.StatusForbidden, apierror.New(err.Error()))
	case errors.Is(err, domain.ErrTransicaoInvalida),
		errors.Is(err, domain.ErrCapacidadeInsuficiente):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))
	case errors.Is(err, domain.ErrQuantidadeInvalida),
		errors.Is(err, domain.ErrPeriodoInvalido),
		errors.Is(err, domain.ErrSiloIndisponivel),
		errors.Is(err, domain.ErrInvariante):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("erro interno")
		c.JSON(http.StatusInternalServerError, apierror.New("Erro interno"))
	}
}
