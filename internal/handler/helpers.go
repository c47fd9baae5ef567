package handler

import (
	"errors"
	"net/http"
	"reflect"

	"restopos/internal/apierror"
	"restopos/internal/dto"
	"restopos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
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

// respondServiceError translates typed domain errors into the right status
// and envelope. Guard violations are 409 with a machine-readable code so the
// terminal can react (show the pending list, suggest the missing amount).
func respondServiceError(c *gin.Context, err error) {
	var (
		pending      *service.PendingOrdersError
		alreadyPaid  *service.AlreadyPaidError
		insufficient *service.InsufficientPaymentError
		shiftOpen    *service.ShiftAlreadyOpenError
		shiftClosed  *service.ShiftAlreadyClosedError
		unavailable  *service.StoreUnavailableError
	)

	switch {
	case errors.As(err, &pending):
		c.JSON(http.StatusConflict, apierror.NewGuard("pending_orders", err.Error(), pending.Orders))
	case errors.As(err, &alreadyPaid):
		c.JSON(http.StatusConflict, apierror.NewGuard("already_paid", err.Error(), gin.H{
			"order_id": alreadyPaid.OrderID.String(),
		}))
	case errors.As(err, &insufficient):
		c.JSON(http.StatusConflict, apierror.NewGuard("insufficient_payment", err.Error(), dto.InsufficientPaymentDetail{
			AmountDue: insufficient.AmountDue,
			Offered:   insufficient.Offered,
			Missing:   insufficient.Missing(),
		}))
	case errors.As(err, &shiftOpen):
		c.JSON(http.StatusConflict, apierror.NewGuard("shift_already_open", err.Error(), gin.H{
			"shift_id": shiftOpen.ShiftID.String(),
		}))
	case errors.As(err, &shiftClosed):
		c.JSON(http.StatusConflict, apierror.NewGuard("shift_already_closed", err.Error(), gin.H{
			"shift_id": shiftClosed.ShiftID.String(),
		}))
	case errors.Is(err, service.ErrNoOpenShift):
		c.JSON(http.StatusConflict, apierror.NewGuard("no_open_shift", err.Error(), nil))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))
	case errors.As(err, &unavailable):
		c.JSON(http.StatusServiceUnavailable, apierror.New("Almacén de datos no disponible, intente de nuevo"))
	default:
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
	}
}

// pathID parses the :id path parameter, writing the 400 on failure.
func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID inválido"))
		return uuid.Nil, false
	}
	return id, true
}
