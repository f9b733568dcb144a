package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"hirepath/api-gateway/internal/authclient"
	"hirepath/api-gateway/utils"
)

// SessionTokenName is the cookie the auth server issues sessions under.
const SessionTokenName = "session_id"

const sessionLocalsKey = "session"

// SessionResolver is the slice of the auth client the middleware needs.
type SessionResolver interface {
	Session(ctx context.Context, token string) authclient.SessionResult
}

// Authenticate resolves the session cookie against the auth server once per
// request and stores the result in locals for downstream handlers. An
// unauthenticated result stops the request with 401.
func Authenticate(resolver SessionResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(SessionTokenName)

		session := resolver.Session(c.Context(), token)
		if !session.Authenticated() {
			message := session.Err
			if message == "" {
				message = "You must be logged in to access this resource."
			}
			return utils.RespondWithError(c, fiber.StatusUnauthorized, message)
		}

		c.Locals(sessionLocalsKey, session)
		return c.Next()
	}
}

// RequireRecruiter rejects authenticated users without a recruiter profile.
// 401 when no session is in locals (route was mounted without Authenticate),
// 403 when authenticated but not a recruiter.
func RequireRecruiter() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session, ok := SessionFromCtx(c)
		if !ok {
			return utils.RespondWithError(c, fiber.StatusUnauthorized,
				"You must be logged in to access this resource.")
		}
		if session.User.Recruiter == nil {
			return utils.RespondWithError(c, fiber.StatusForbidden,
				"You do not have permission to access this resource.")
		}
		return c.Next()
	}
}

// SessionFromCtx returns the session placed in locals by Authenticate.
func SessionFromCtx(c *fiber.Ctx) (authclient.SessionResult, bool) {
	session, ok := c.Locals(sessionLocalsKey).(authclient.SessionResult)
	if !ok || !session.Authenticated() {
		return authclient.SessionResult{}, false
	}
	return session, true
}
