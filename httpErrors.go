package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"bitbucket.org/mmdatafocus/inventory_backend/purchasing"
	"bitbucket.org/mmdatafocus/inventory_backend/utils"
)

func errorStatus(err error) int {
	switch {
	case errors.Is(err, utils.ErrorLockNotObtained),
		errors.Is(err, purchasing.ErrSubmitInProgress),
		errors.Is(err, errPurchaseLocked):
		return http.StatusConflict
	case errors.Is(err, utils.ErrorBusinessMissing):
		return http.StatusUnauthorized
	case purchasing.IsIndexError(err):
		return http.StatusBadRequest
	case purchasing.IsValidationError(err):
		return http.StatusUnprocessableEntity
	case purchasing.IsDependencyError(err):
		if errors.Is(err, purchasing.ErrProductNotFound) || errors.Is(err, utils.ErrorRecordNotFound) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// writeError aborts the request with the status for err. Server-side failures
// are also attached to the gin context so customErrorLogger reports them.
func writeError(c *gin.Context, err error) {
	status := errorStatus(err)
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	body := gin.H{"error": err.Error()}
	var ie *purchasing.IndexError
	if errors.As(err, &ie) {
		body["index"] = ie.Index
		body["length"] = ie.Length
	}
	c.AbortWithStatusJSON(status, body)
}
