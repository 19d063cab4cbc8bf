package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pocketbook/alert"
	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/ledger"
	"pocketbook/user"
)

func abortWithClientError(c *gin.Context, status int, err error) {
	logger := c.MustGet(loggerKey).(*zap.Logger)
	logger.WithOptions(zap.AddCallerSkip(1))
	if status/100 == 5 {
		logger.Error("Aborting with server error", zap.Error(err))
	} else {
		logger.Info("Aborting with client error", zap.String("error", err.Error()))
	}
	c.AbortWithStatusJSON(status, map[string]string{
		"Error": err.Error(),
	})
}

// abortWithStoreError maps store sentinel errors onto HTTP statuses.
func abortWithStoreError(c *gin.Context, err error) {
	abortWithClientError(c, clientStatus(err), err)
}

func clientStatus(err error) int {
	switch {
	case stderrors.Is(err, category.ErrNotFound),
		stderrors.Is(err, alert.ErrNotFound):
		return http.StatusNotFound
	case stderrors.Is(err, user.ErrInvalidLogin):
		return http.StatusUnauthorized
	case stderrors.Is(err, user.ErrDuplicateUser):
		return http.StatusConflict
	case stderrors.Is(err, category.ErrUnknownKind),
		stderrors.Is(err, ledger.ErrInvalidAmount),
		stderrors.Is(err, ledger.ErrInvalidDate),
		stderrors.Is(err, ledger.ErrKindMismatch),
		stderrors.Is(err, budget.ErrInvalidMonth),
		stderrors.Is(err, budget.ErrInvalidAmount):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// abortWithValidationError is for endpoints whose store calls fail on bad
// input: anything without a more specific status reports as a bad request.
func abortWithValidationError(c *gin.Context, err error) {
	status := clientStatus(err)
	if status == http.StatusInternalServerError {
		status = http.StatusBadRequest
	}
	abortWithClientError(c, status, err)
}

func ownerID(c *gin.Context) string {
	return c.MustGet(ownerKey).(string)
}
