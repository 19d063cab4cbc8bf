package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"pocketbook/budget"
	"pocketbook/category"
	"pocketbook/ledger"
)

func getBudgets(txns *ledger.Store, budgets *budget.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := ownerID(c)
		list, err := txns.ListForOwner(owner)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		rows, err := budgets.Reconcile(owner, list)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, map[string]interface{}{
			"Budgets": rows,
		})
	}
}

func setBudget(categories *category.Store, budgets *budget.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			Category string
			Kind     category.Kind
			Month    time.Month
			Year     int
			Amount   decimal.Decimal
		}
		if err := c.BindJSON(&params); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		if err := params.Kind.Validate(); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		categoryID, err := categories.ResolveOrCreate(params.Category, params.Kind)
		if err != nil {
			abortWithValidationError(c, err)
			return
		}
		b, err := budgets.Set(ownerID(c), categoryID, params.Month, params.Year, params.Amount)
		if err != nil {
			abortWithValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, b)
	}
}
