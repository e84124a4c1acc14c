package middleware

import (
	"github.com/labstack/echo/v4"
)

// errorBody is the JSON shape every middleware-generated failure uses, the
// same shape the prediction proxy returns.
type errorBody struct {
	Error string `json:"error"`
}

func writeError(c echo.Context, status int, msg string) error {
	if c.Response().Committed {
		return nil
	}
	return c.JSON(status, errorBody{Error: msg})
}
