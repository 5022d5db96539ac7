package routes

import (
	"net/http"
	"net/url"
	"regexp"

	"github.com/mbolis/quick-forms/app"
	"github.com/mbolis/quick-forms/httpx"
	"github.com/mbolis/quick-forms/log"
)

var reRefresh = regexp.MustCompile(`(?i)^refresh\s+(\S+)`)

// Login exchanges basic auth credentials for a bearer token pair.
func Login(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "login.basic_auth")
			return
		}

		resp := httpx.TokenRequest(app.BearerServer, r, url.Values{
			"grant_type": {"password"},
			"username":   {user},
			"password":   {pass},
		})
		if resp.Status() != http.StatusOK {
			log.WithFields(log.Fields{"user": user, "status": resp.Status()}).Debug("login.rejected")
		}
		if err := resp.Flush(w); err != nil {
			log.Debugf("login.write: %s", err)
		}
	}
}

// Refresh expects an "Authorization: Refresh <token>" header.
func Refresh(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		match := reRefresh.FindStringSubmatch(r.Header.Get("authorization"))
		if len(match) == 0 {
			httpx.LogStatus(w, http.StatusUnauthorized, log.DebugLevel, "refresh.token")
			return
		}

		resp := httpx.TokenRequest(app.BearerServer, r, url.Values{
			"grant_type":    {"refresh_token"},
			"refresh_token": {match[1]},
		})
		if err := resp.Flush(w); err != nil {
			log.Debugf("refresh.write: %s", err)
		}
	}
}
