package httpHandler

import (
	"github.com/gin-gonic/gin"

	"rental-server/auth"
	"rental-server/entities"
	"rental-server/usecases"
)

const (
	ctxUserID = "userId"
	ctxEmail  = "email"
	ctxUser   = "user"
)

type AuthMiddleware struct {
	useCase *usecases.AuthUseCase
}

func NewAuthMiddleware(useCase *usecases.AuthUseCase) *AuthMiddleware {
	return &AuthMiddleware{useCase: useCase}
}

// RequireAuth rejects requests without a valid bearer token.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, _ := auth.FromHeader(c.GetHeader("Authorization"))
		claims, err := m.useCase.VerifyToken(tok)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Next()
	}
}

// RequireAdmin additionally checks the stored user's role.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, _ := auth.FromHeader(c.GetHeader("Authorization"))
		user, err := m.useCase.VerifyAdmin(c.Request.Context(), tok)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Set(ctxUserID, user.ID)
		c.Set(ctxEmail, user.Email)
		c.Set(ctxUser, user)
		c.Next()
	}
}

func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

func currentUser(c *gin.Context) *entities.User {
	v, ok := c.Get(ctxUser)
	if !ok {
		return nil
	}
	u, _ := v.(*entities.User)
	return u
}
