package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// UserIDKey is the echo context key JWTAuth stores the caller's id under.
const UserIDKey = "user_id"

// UserID returns the authenticated user's id, or false when the request
// did not pass through JWTAuth.
func UserID(c echo.Context) (uint64, bool) {
	switch v := c.Get(UserIDKey).(type) {
	case uint64:
		return v, v != 0
	case int64:
		return uint64(v), v > 0
	case int:
		return uint64(v), v > 0
	case float64:
		return uint64(v), v > 0
	case string:
		id, err := strconv.ParseUint(v, 10, 64)
		return id, err == nil && id != 0
	default:
		return 0, false
	}
}

// identity is the caller label used in rate limit keys.
func identity(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
