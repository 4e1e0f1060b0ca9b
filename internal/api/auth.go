package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const restaurantKey = "restaurant_id"

var errMissingRestaurant = errors.New("token has no restaurant_id claim")

// AuthMiddleware validates the HS256 bearer token and stores its
// restaurant_id claim on the context. With allowQueryToken the token may also
// come as ?token=, for websocket clients that cannot set headers.
func (s *Server) AuthMiddleware(allowQueryToken bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" && allowQueryToken {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		restaurantID, err := s.restaurantFromToken(tokenString)
		if err != nil {
			s.log.Debug("rejected token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		c.Set(restaurantKey, restaurantID)
		c.Next()
	}
}

func (s *Server) restaurantFromToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errMissingRestaurant
	}
	id, _ := claims[restaurantKey].(string)
	if id == "" {
		return "", errMissingRestaurant
	}
	return id, nil
}

func restaurantID(c *gin.Context) string {
	return c.GetString(restaurantKey)
}
