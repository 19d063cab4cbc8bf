package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pocketbook/category"
)

func getCategories(categories *category.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var list []category.Category
		var err error
		if kindQuery, ok := c.GetQuery("kind"); ok {
			kind := category.Kind(kindQuery)
			if validateErr := kind.Validate(); validateErr != nil {
				abortWithClientError(c, http.StatusBadRequest, validateErr)
				return
			}
			list, err = categories.ListByKind(kind)
		} else {
			list, err = categories.All()
		}
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, map[string]interface{}{
			"Categories": list,
		})
	}
}

func addCategory(categories *category.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			Name string
			Kind category.Kind
		}
		if err := c.BindJSON(&params); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		id, err := categories.ResolveOrCreate(params.Name, params.Kind)
		if err != nil {
			abortWithValidationError(c, err)
			return
		}
		cat, _, err := categories.Find(id)
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		c.JSON(http.StatusOK, cat)
	}
}
