package server

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"pocketbook/redactor"
	"pocketbook/user"
)

const (
	tokenLength          = 64
	tokenDuration        = 5 * time.Minute
	refreshTokenLength   = 128
	refreshTokenDuration = 8 * time.Hour

	authHeaderName      = "Authorization"
	setCookieHeaderName = "Set-Cookie"
	tokenCookieName     = "token"

	signInBurst = 5
)

var errUnauthorized = errors.New("Unauthorized")

// authenticator issues short-lived session tokens mapped to user IDs,
// with longer-lived refresh tokens to renew them.
type authenticator struct {
	users                 *user.Store
	tokens, refreshTokens *cache.Cache
	signInLimiter         *rate.Limiter
}

func newAuthenticator(users *user.Store) *authenticator {
	return &authenticator{
		users:         users,
		tokens:        cache.New(tokenDuration, tokenDuration/5+1),
		refreshTokens: cache.New(refreshTokenDuration, refreshTokenDuration/5+1),
		signInLimiter: rate.NewLimiter(rate.Every(time.Second), signInBurst),
	}
}

func (a *authenticator) SignIn(name string, password redactor.String) (ownerID, token, refreshToken string, tokenExpire, refreshExpire time.Time, err error) {
	u, err := a.users.Authenticate(name, password)
	if err != nil {
		return "", "", "", time.Time{}, time.Time{}, err
	}
	token, refreshToken, tokenExpire, refreshExpire = a.newSession(u.ID)
	return u.ID, token, refreshToken, tokenExpire, refreshExpire, nil
}

func (a *authenticator) newSession(ownerID string) (token, refreshToken string, tokenExpire, refreshExpire time.Time) {
	now := time.Now()
	token = randomToken(tokenLength)
	a.tokens.SetDefault(token, ownerID)
	refreshToken = randomToken(refreshTokenLength)
	a.refreshTokens.SetDefault(refreshToken, ownerID)
	return token, refreshToken, now.Add(tokenDuration), now.Add(refreshTokenDuration)
}

// Authenticate resolves the request's session to an owner ID, renewing from
// a refresh token when the header carries one.
func (a *authenticator) Authenticate(resp http.ResponseWriter, req *http.Request) (string, error) {
	authTokenHeader := req.Header.Get(authHeaderName)
	if authTokenHeader != "" {
		if owner, found := a.tokens.Get(authTokenHeader); found {
			return owner.(string), nil
		}
		owner, token, expires, err := a.NewToken(authTokenHeader)
		if err != nil {
			// auth header was not a valid refresh token
			return "", err
		}
		a.SetCookies(resp, token, expires)
		return owner, nil
	}
	tokenCookie, err := req.Cookie(tokenCookieName)
	if err != nil {
		return "", errUnauthorized
	}
	owner, found := a.tokens.Get(tokenCookie.Value)
	if !found {
		return "", errUnauthorized
	}
	return owner.(string), nil
}

func (a *authenticator) NewToken(refreshToken string) (ownerID, token string, expiration time.Time, err error) {
	owner, found := a.refreshTokens.Get(refreshToken)
	if !found || refreshToken == "" {
		// !found == expired or doesn't exist
		return "", "", time.Time{}, errUnauthorized
	}
	token = randomToken(tokenLength)
	a.tokens.SetDefault(token, owner)
	return owner.(string), token, time.Now().Add(tokenDuration), nil
}

// SignOutOwner drops every session belonging to the owner.
func (a *authenticator) SignOutOwner(ownerID string) {
	for token, item := range a.tokens.Items() {
		if item.Object == ownerID {
			a.tokens.Delete(token)
		}
	}
	for token, item := range a.refreshTokens.Items() {
		if item.Object == ownerID {
			a.refreshTokens.Delete(token)
		}
	}
}

func (a *authenticator) SetCookies(resp http.ResponseWriter, token string, expireTime time.Time) {
	resp.Header().Add(setCookieHeaderName, (&http.Cookie{
		Name:    tokenCookieName,
		Value:   token,
		Expires: expireTime.Add(-10 * time.Second), // expire a little earlier on client to account for latency
	}).String())
}

func requireAuth(auth *authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		owner, err := auth.Authenticate(c.Writer, c.Request)
		if err == nil {
			c.Set(ownerKey, owner)
			return
		}

		if err == errUnauthorized {
			abortWithClientError(c, http.StatusUnauthorized, err)
			return
		}
		abortWithClientError(c, http.StatusInternalServerError, err)
	}
}

func signIn(auth *authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.signInLimiter.Allow() {
			abortWithClientError(c, http.StatusTooManyRequests, errors.New("Too many sign-in attempts"))
			return
		}
		var creds struct {
			Name     string
			Password redactor.String
		}
		if err := c.BindJSON(&creds); err != nil {
			abortWithClientError(c, http.StatusBadRequest, err)
			return
		}
		_, token, refreshToken, tokenExpires, refreshTokenExpires, err := auth.SignIn(creds.Name, creds.Password)
		if err != nil {
			abortWithClientError(c, http.StatusUnauthorized, err)
			return
		}
		auth.SetCookies(c.Writer, token, tokenExpires)
		c.JSON(http.StatusOK, map[string]interface{}{
			"Token":               token,
			"TokenExpires":        tokenExpires,
			"RefreshToken":        refreshToken,
			"RefreshTokenExpires": refreshTokenExpires,
		})
	}
}

func signOut(auth *authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.SignOutOwner(ownerID(c))
		c.Status(http.StatusNoContent)
	}
}

func randomToken(length uint) string {
	buf := make([]byte, length)
	_, err := rand.Read(buf)
	if err != nil {
		panic("Error generating random string")
	}
	return base64.StdEncoding.EncodeToString(buf)
}
