package api

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// RequestLogging logs every request through zerolog
func RequestLogging() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			log.Debug().
				Str("component", "http").
				Str("method", req.Method).
				Str("uri", req.RequestURI).
				Int("status", c.Response().Status).
				Dur("latency", time.Since(start)).
				Msg("Request served")

			return nil
		}
	}
}

// Recover turns handler panics into 500 responses
func Recover() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			defer func() {
				if r := recover(); r != nil {
					log.Error().
						Str("component", "http").
						Str("panic", fmt.Sprint(r)).
						Bytes("stack", debug.Stack()).
						Msg("Handler panicked")
					err = ErrorResponse(c, http.StatusInternalServerError, fmt.Errorf("internal error"))
				}
			}()
			return next(c)
		}
	}
}
