package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"pocketbook/category"
	"pocketbook/ledger"
	"pocketbook/report"
)

// MaxResults is the maximum number of results from a paginated request
const MaxResults = 50

func getTransactions(txns *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var page, results int = 1, 10
		if pageQuery, ok := c.GetQuery("page"); ok {
			if parsedPage, err := strconv.ParseInt(pageQuery, 10, 64); err != nil {
				c.Error(errors.Errorf("Invalid integer: %s", pageQuery))
			} else if parsedPage < 1 {
				c.Error(errors.New("Page must be a positive integer"))
			} else {
				page = int(parsedPage)
			}
		}
		if resultsQuery, ok := c.GetQuery("results"); ok {
			if parsedResults, err := strconv.ParseInt(resultsQuery, 10, 64); err != nil {
				c.Error(errors.Errorf("Invalid integer: %s", resultsQuery))
			} else if parsedResults < 1 || parsedResults > MaxResults {
				c.Error(errors.Errorf("Results must be a positive integer no more than %d", MaxResults))
			} else {
				results = int(parsedResults)
			}
		}
		if len(c.Errors) > 0 {
			errMsg := ""
			for _, e := range c.Errors {
				errMsg += e.Error() + "\n"
			}
			abortWithClientError(c, http.StatusBadRequest, errors.New(errMsg))
			return
		}

		result, err := txns.Query(ownerID(c), page, results)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func addTransaction(categories *category.Store, txns *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			Amount      decimal.Decimal
			Kind        category.Kind
			Category    string
			Description string
			Date        time.Time
		}
		if err := c.BindJSON(&params); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}

		txn := ledger.Transaction{
			Owner:       ownerID(c),
			Amount:      params.Amount,
			Kind:        params.Kind,
			Description: params.Description,
			Date:        params.Date,
		}
		if params.Category != "" {
			if err := params.Kind.Validate(); err != nil {
				abortWithClientError(c, http.StatusBadRequest, err)
				return
			}
			categoryID, err := categories.ResolveOrCreate(params.Category, params.Kind)
			if err != nil {
				abortWithValidationError(c, err)
				return
			}
			txn.CategoryID = categoryID
		}

		txn, err := txns.Append(txn)
		if err != nil {
			abortWithValidationError(c, err)
			return
		}
		c.JSON(http.StatusCreated, txn)
	}
}

func removeTransaction(txns *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		txn, found, err := txns.Find(c.Param("id"))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if found && txn.Owner != ownerID(c) {
			// don't reveal other owners' transaction IDs
			abortWithClientError(c, http.StatusNotFound, errors.New("Transaction not found"))
			return
		}
		if err := txns.Remove(c.Param("id")); err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func getTotals(txns *ledger.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := txns.ListForOwner(ownerID(c))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, report.Totals(list))
	}
}
