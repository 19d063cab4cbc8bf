package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"pocketbook/alert"
)

func getAlerts(alerts *alert.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := alerts.ListForOwner(ownerID(c))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, map[string]interface{}{
			"Alerts": list,
		})
	}
}

func markAlertRead(alerts *alert.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		list, err := alerts.ListForOwner(ownerID(c))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		owned := false
		for _, a := range list {
			if a.ID == id {
				owned = true
				break
			}
		}
		if !owned {
			abortWithClientError(c, http.StatusNotFound, errors.Wrapf(alert.ErrNotFound, "id %q", id))
			return
		}
		if err := alerts.MarkRead(id); err != nil {
			if stderrors.Is(err, alert.ErrNotFound) {
				abortWithClientError(c, http.StatusNotFound, err)
				return
			}
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
