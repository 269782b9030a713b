package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/storefront/internal/domain/errors"
	"github.com/polkiloo/storefront/internal/server/http/dto"
)

// SessionHeader carries the cart session token in both directions.
const SessionHeader = "X-Cart-Session"

// SessionID extracts the cart session token from the header or the
// session_id query parameter.
func SessionID(c *gin.Context) string {
	if id := c.GetHeader(SessionHeader); id != "" {
		return id
	}
	return c.Query("session_id")
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	return page, limit
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: message})
}

// writeError maps domain and gateway failures onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var (
		verr  *domainErrors.ValidationError
		gwErr *domainErrors.GatewayError
	)
	switch {
	case errors.As(err, &verr):
		fields := make([]dto.FieldError, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, dto.FieldError{Field: f.Field, Message: f.Message})
		}
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Errors: fields})
	case errors.Is(err, domainErrors.ErrInvalidSession):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Cart session not found"})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "Not found"})
	case errors.Is(err, domainErrors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, dto.ErrorResponse{Error: "Already exists"})
	case errors.As(err, &gwErr):
		c.JSON(gatewayStatus(gwErr), dto.ErrorResponse{Error: gwErr.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "Internal server error"})
	}
}

func gatewayStatus(err *domainErrors.GatewayError) int {
	switch {
	case err.Timeout:
		return http.StatusGatewayTimeout
	case err.StatusCode == http.StatusUnauthorized, err.StatusCode == http.StatusForbidden:
		return http.StatusBadGateway
	case err.StatusCode >= 400 && err.StatusCode < 500:
		return err.StatusCode
	default:
		return http.StatusBadGateway
	}
}
