package handlers

import (
	"bad-news/pkg/config"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

const (
	elevatedKey   = "elevated"
	loginKey      = "login"
	oauthStateKey = "oauth_state"
)

var githubUserURL = "https://api.github.com/user"

// Elevation marks requests from an elevated session. Elevated callers also see
// unpublished articles.
func Elevation(c *gin.Context) {
	session := sessions.Default(c)
	c.Set(elevatedKey, session.Get(elevatedKey) == true)
	c.Next()
}

func IsElevated(c *gin.Context) bool {
	return c.GetBool(elevatedKey)
}

func ElevationRequired(c *gin.Context) {
	if !IsElevated(c) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return
	}
	c.Next()
}

func GithubLogin(c *gin.Context) {
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(oauthStateKey, state)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Failed to save session")
		return
	}

	url := config.OauthConf.AuthCodeURL(state, oauth2.AccessTypeOnline)
	c.Redirect(http.StatusTemporaryRedirect, url)
}

func AuthCallback(c *gin.Context) {
	session := sessions.Default(c)
	expected, _ := session.Get(oauthStateKey).(string)
	if expected == "" || c.Query("state") != expected {
		c.String(http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	session.Delete(oauthStateKey)

	ctx := c.Request.Context()
	token, err := config.OauthConf.Exchange(ctx, c.Query("code"))
	if err != nil {
		c.String(http.StatusInternalServerError, "OAuth Exchange Failed")
		return
	}

	login, err := fetchGithubLogin(ctx, config.OauthConf.Client(ctx, token))
	if err != nil {
		c.String(http.StatusBadGateway, "Failed to fetch GitHub user")
		return
	}
	if !loginAllowed(login, config.ElevatedLogins) {
		if err := session.Save(); err != nil {
			c.String(http.StatusInternalServerError, "Failed to save session")
			return
		}
		c.String(http.StatusForbidden, "Elevation is not allowed for %s", login)
		return
	}

	session.Set(elevatedKey, true)
	session.Set(loginKey, login)
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, "/news")
}

func Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	if err := session.Save(); err != nil {
		c.String(http.StatusInternalServerError, "Failed to save session")
		return
	}
	c.Redirect(http.StatusFound, "/news")
}

func fetchGithubLogin(ctx context.Context, client *http.Client) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, githubUserURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("github user request failed with status: %d", resp.StatusCode)
	}

	var user struct {
		Login string `json:"login"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return "", err
	}
	if user.Login == "" {
		return "", fmt.Errorf("github user has no login")
	}
	return user.Login, nil
}

// loginAllowed accepts any login when no allow list is configured.
func loginAllowed(login string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if strings.EqualFold(a, login) {
			return true
		}
	}
	return false
}
