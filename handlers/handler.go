package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"deliverus-api/apperrors"
	"deliverus-api/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// Handler serves the HTTP API on top of the services.
type Handler struct {
	auth        *services.AuthService
	restaurants *services.RestaurantService
	orders      *services.OrderService
	log         *logrus.Logger
}

func New(auth *services.AuthService, restaurants *services.RestaurantService, orders *services.OrderService, logger *logrus.Logger) *Handler {
	return &Handler{auth: auth, restaurants: restaurants, orders: orders, log: logger}
}

// statusFor maps a rejection class to its HTTP status.
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindForbidden:
		return http.StatusForbidden
	case apperrors.KindInvalidInput,
		apperrors.KindImmutableField,
		apperrors.KindProductUnavailable,
		apperrors.KindCrossRestaurantOrder:
		return http.StatusUnprocessableEntity
	case apperrors.KindInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) respondError(c *gin.Context, err error) {
	if rej, ok := apperrors.As(err); ok && rej.Kind() != apperrors.KindInternal {
		body := gin.H{"error": rej.Detail, "code": rej.Code}
		if rej.ProductID != 0 {
			body["product_id"] = rej.ProductID
		}
		c.JSON(statusFor(rej.Kind()), body)
		return
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrInvalidRole):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, services.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	h.log.WithError(err).WithField("path", c.FullPath()).Error("Handler error: internal failure")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": apperrors.CodeInternal})
}

// respondBindError reports a body that failed to decode. Type errors inside the
// product lines are line rejections; anything else is a malformed request.
func (h *Handler) respondBindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && (typeErr.Field == "products" || strings.HasPrefix(typeErr.Field, "products.")) {
		h.respondError(c, apperrors.New(apperrors.CodeInvalidProductLine,
			"%s: %s is not a valid %s", typeErr.Field, typeErr.Value, typeErr.Type))
		return
	}
	badRequest(c, err)
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": apperrors.CodeInvalidInput})
}

// pathID parses a positive numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name, "code": apperrors.CodeInvalidInput})
		return 0, false
	}
	return uint(id), true
}
