package helpers

import (
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// Keys under which the JWT middleware stashes the authenticated
// account in the echo context.
type ctxKey string

const (
	keyUserID    ctxKey = "user_id"
	keyUserEmail ctxKey = "user_email"
)

func SetUserID(c echo.Context, id uuid.UUID) { c.Set(string(keyUserID), id) }
func GetUserIDRaw(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(string(keyUserID))
	id, ok := v.(uuid.UUID)
	return id, ok
}

func SetUserEmail(c echo.Context, email string) { c.Set(string(keyUserEmail), email) }
func GetUserEmailRaw(c echo.Context) (string, bool) {
	v := c.Get(string(keyUserEmail))
	s, ok := v.(string)
	return s, ok
}
