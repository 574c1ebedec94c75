package handler

import (
	"errors"
	"net/http"

	"github.com/mioriaty/lms-with-better-auth/internal/services"
	"github.com/mioriaty/lms-with-better-auth/internal/transport/httpdto"
	lms_errors "github.com/mioriaty/lms-with-better-auth/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// adminID pulls the authenticated user id injected by the auth middleware.
func adminID(c *gin.Context) (uuid.UUID, bool) {
	id, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, httpdto.NewError("unauthorized"))
	}
	return id, ok
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewError("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

// writeDomainError maps sentinel errors onto HTTP statuses with the shared
// {error, details?} body.
func writeDomainError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, lms_errors.ErrInvalidInput), errors.Is(err, lms_errors.ErrSparsePositions):
		c.JSON(http.StatusBadRequest, httpdto.NewError("Invalid request"))
	case errors.Is(err, lms_errors.ErrNotFound):
		c.JSON(http.StatusNotFound, httpdto.NewError("Not found"))
	case errors.Is(err, lms_errors.ErrForbidden):
		c.JSON(http.StatusForbidden, httpdto.NewError("Forbidden"))
	case errors.Is(err, lms_errors.ErrAlreadyExists):
		c.JSON(http.StatusConflict, httpdto.NewError("Already exists"))
	default:
		c.JSON(http.StatusInternalServerError, httpdto.NewErrorWithDetails(fallback, err))
	}
}
