package handlers

import "github.com/labstack/echo/v4"

// Every failure body carries a stable machine-readable code next to the
// human message, so clients can branch without parsing text.
func fail(c echo.Context, status int, code, message string) error {
	return c.JSON(status, echo.Map{"error": code, "message": message})
}
