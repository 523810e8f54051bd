package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habitgrid/internal/core/services"
)

const (
	authorizationHeader = "Authorization"
	authorizationType   = "Bearer"
	boardHeader         = "X-Habit-Board"
	ContextBoardKey     = "board"
)

// AuthMiddleware resolves which board a request works on. With a token
// service the board comes from the bearer token; without one the optional
// X-Habit-Board header is trusted.
func AuthMiddleware(tokenService *services.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenService == nil {
			board := c.GetHeader(boardHeader)
			if board == "" {
				board = services.DefaultBoard
			}
			if !services.ValidBoardName(board) {
				c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrInvalidBoardName.Error()})
				c.Abort()
				return
			}
			c.Set(ContextBoardKey, board)
			c.Next()
			return
		}

		authHeader := c.GetHeader(authorizationHeader)
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		fields := strings.Fields(authHeader)
		if len(fields) < 2 || fields[0] != authorizationType {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		board, err := tokenService.ValidateToken(fields[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set(ContextBoardKey, board)
		c.Next()
	}
}

func GetBoard(c *gin.Context) (string, bool) {
	board, exists := c.Get(ContextBoardKey)
	if !exists {
		return "", false
	}
	name, ok := board.(string)
	return name, ok
}
