package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"pocketbook/pipe"
	"pocketbook/redactor"
	"pocketbook/user"
)

func registerUser(stores Stores, auth *authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			Name     string
			Email    string
			Password redactor.String
		}
		if err := c.BindJSON(&params); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		u, err := stores.Users.Register(params.Name, params.Email, params.Password)
		if err != nil {
			abortWithValidationError(c, err)
			return
		}
		token, _, tokenExpires, _ := auth.newSession(u.ID)
		auth.SetCookies(c.Writer, token, tokenExpires)
		c.JSON(http.StatusCreated, u)
	}
}

func getProfile(users *user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, found, err := users.Find(ownerID(c))
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		if !found {
			abortWithClientError(c, http.StatusNotFound, errors.New("User no longer exists"))
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

func updateProfile(users *user.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params struct {
			Name  string
			Email string
		}
		if err := c.BindJSON(&params); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		u, err := users.UpdateProfile(ownerID(c), params.Name, params.Email)
		if err != nil {
			abortWithValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, u)
	}
}

// deleteAccount removes the signed-in user and everything they own.
func deleteAccount(stores Stores, auth *authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner := ownerID(c)
		err := pipe.OpFuncs{
			func() error { return stores.Ledger.RemoveForOwner(owner) },
			func() error { return stores.Budgets.RemoveForOwner(owner) },
			func() error { return stores.Alerts.RemoveForOwner(owner) },
			func() error { return stores.Users.Remove(owner) },
		}.Do()
		if err != nil {
			abortWithClientError(c, http.StatusInternalServerError, err)
			return
		}
		auth.SignOutOwner(owner)
		c.Status(http.StatusNoContent)
	}
}
