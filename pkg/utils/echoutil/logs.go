package echoutil

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
)

// LogHandlerFunc logs each request and its response, with the request id.
func LogHandlerFunc(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		meth := c.Request().Method
		path := c.Request().URL
		rid := c.Response().Header().Get(echo.HeaderXRequestID)
		BEGIN := time.Now()
		c.Logger().Infof(
			"< request [%s] @[%s] %s %s", rid, BEGIN, meth, path,
		)

		var err error

		defer func() {
			END := time.Now()
			status := c.Response().Status
			if herr, ok := err.(*echo.HTTPError); ok {
				status = herr.Code
			}
			c.Logger().Infof(
				"> response [%s] @[%s] status = %d (for request @[%s] %s %s) in %v / error = %+v",
				rid, END, status, BEGIN, meth, path, END.Sub(BEGIN), err,
			)
		}()

		err = next(c)
		return err
	}
}

// SetLevel sets the level of echo's logger. Unknown levels fall back to warn.
func SetLevel(e *echo.Echo, loglevel string) {
	if lv, ok := ParseLevel(loglevel); ok {
		e.Logger.SetLevel(lv)
		return
	}
	e.Logger.SetLevel(log.WARN)
	e.Logger.Warnf("unknown loglevel: %s . fall-backed to warn", loglevel)
}

// ParseLevel reads one of debug|info|warn|error|off. Empty means warn.
func ParseLevel(loglevel string) (log.Lvl, bool) {
	switch strings.ToLower(loglevel) {
	case "debug":
		return log.DEBUG, true
	case "info":
		return log.INFO, true
	case "warn", "":
		return log.WARN, true
	case "error":
		return log.ERROR, true
	case "off":
		return log.OFF, true
	default:
		return log.WARN, false
	}
}
