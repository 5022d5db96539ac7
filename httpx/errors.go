package httpx

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-forms/database"
	"github.com/mbolis/quick-forms/log"
	"github.com/mbolis/quick-forms/validation"
)

// Will log an error, and send an HTTP response with status 500 and default text
func LogInternalError(w http.ResponseWriter, code string, err error) {
	log.Errorf("%s: %s", code, err)
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

// Will log a debug message, and send an HTTP response with status 404 and default text
func LogNotFound(w http.ResponseWriter, code string, id any) {
	log.Debugf("%s: not found (%v)", code, id)
	http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
}

// Will log an error code at the given level, and send
// an HTTP response with status and default text
func LogStatus(w http.ResponseWriter, status int, level log.Level, code string) {
	log.Log(level, code)
	http.Error(w, http.StatusText(status), status)
}

// Will log an error code and message at the given level,
// and send an HTTP response with the given status and formatted message
func LogStatusMsg(w http.ResponseWriter, status int, level log.Level, code string, msg string, args ...any) {
	errMsg := fmt.Sprintf(msg, args...)
	log.Log(level, code+":", errMsg)
	http.Error(w, errMsg, status)
}

// Will log validation failures at debug level, and send
// a 400 JSON response listing them by field
func LogValidation(w http.ResponseWriter, r *http.Request, code string, errs validation.FieldErrors) {
	log.Debugf("%s: %s", code, errs)
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, map[string]any{
		"error":  "validation failed",
		"fields": errs,
	})
}

// Will map storage errors to 404 and 409, anything else to 500
func LogDBError(w http.ResponseWriter, code string, id any, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		LogNotFound(w, code, id)
	case errors.Is(err, database.ErrConflict):
		LogStatus(w, http.StatusConflict, log.DebugLevel, code+".conflict")
	default:
		LogInternalError(w, "db."+code, err)
	}
}
