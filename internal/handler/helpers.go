package handler

import (
	"errors"
	"math"
	"net/http"
	"reflect"
	"strings"

	"github.com/silvioaquino/Gestao-PDV/internal/apierror"
	"github.com/silvioaquino/Gestao-PDV/internal/dto"
	"github.com/silvioaquino/Gestao-PDV/internal/pedido"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	// Amounts that do not fit the money columns become NaN, which fails every
	// numeric tag.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			if !pedido.DentroDoLimite(v) {
				return math.NaN()
			}
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON (or query) name
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, apierror.Validacao("JSON inválido: "+err.Error()))
		return false
	}
	return validar(c, req)
}

// bindQuery is bindAndValidate for query-string filters.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		respondError(c, apierror.Validacao("Parâmetros inválidos: "+err.Error()))
		return false
	}
	return validar(c, req)
}

func validar(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		respondError(c, apierror.Validacao(err.Error()))
		return false
	}
	fields := make(map[string]string, len(ves))
	for _, fe := range ves {
		fields[fe.Field()] = fe.Tag()
	}
	respondError(c, apierror.ValidacaoCampos(fields))
	return false
}

// respondError writes the error envelope. 5xx are logged; their cause is
// only shown outside release mode.
func respondError(c *gin.Context, err error) {
	e := apierror.From(err)
	if e.Status() >= http.StatusInternalServerError {
		log.Error().
			Str("request_id", c.GetString("request_id")).
			Str("path", c.FullPath()).
			Err(e).
			Msg("request failed")
	}
	c.AbortWithStatusJSON(e.Status(), e.Body(gin.Mode() != gin.ReleaseMode))
}

func responder(c *gin.Context, status int, data any, msg string) {
	c.JSON(status, dto.Resposta{Success: true, Data: data, Message: msg})
}

// paramID parses the :id path parameter, writing a 400 when malformed.
func paramID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apierror.Validacao("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
