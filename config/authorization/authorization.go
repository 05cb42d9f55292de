package authorization

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Aman-ydav/CareSync-sub000/role"
	"github.com/Aman-ydav/CareSync-sub000/util"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog/log"
)

const (
	userIDKey = "userID"
	roleKey   = "role"
)

// Claims carried by the bearer tokens the identity service issues.
type Claims struct {
	UserID string    `json:"userId"`
	Role   role.Role `json:"role"`
	jwt.RegisteredClaims
}

func ParseToken(tokenString, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	if claims.UserID == "" || !claims.Role.IsValid() {
		return nil, errors.New("token is missing identity claims")
	}
	return claims, nil
}

// SignToken mints an HS256 token for userID; used by the dev CLI and tests.
func SignToken(secret, userID string, r role.Role, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Role:   r,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

/*
* Read the Bearer token from the Authorization header
* Verify signature and expiry
* Put the requester's id and role on the context
 */
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, util.Unauthorized(util.AUTHORIZATION_HEADER_REQUIRED))
			return
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abort(c, util.Unauthorized(util.INVALID_AUTHORIZATION_HEADER))
			return
		}
		claims, err := ParseToken(strings.TrimSpace(parts[1]), secret)
		if err != nil {
			log.Debug().Err(err).Msg("Rejected bearer token")
			abort(c, util.Unauthorized(util.INVALID_TOKEN))
			return
		}
		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// Authorize lets the request through only when the requester holds one of roles.
func Authorize(roles ...role.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		requester, ok := RequesterFromContext(c)
		if !ok {
			abort(c, util.Unauthorized(util.INVALID_TOKEN))
			return
		}
		if !requester.Is(roles...) {
			abort(c, util.Forbidden(util.ACCESS_DENIED))
			return
		}
		c.Next()
	}
}

func RequesterFromContext(c *gin.Context) (role.Requester, bool) {
	id := c.GetString(userIDKey)
	value, exists := c.Get(roleKey)
	if !exists || id == "" {
		return role.Requester{}, false
	}
	r, ok := value.(role.Role)
	if !ok {
		return role.Requester{}, false
	}
	return role.Requester{ID: id, Role: r}, true
}

// SetRequester is used by tests to skip token parsing.
func SetRequester(c *gin.Context, requester role.Requester) {
	c.Set(userIDKey, requester.ID)
	c.Set(roleKey, requester.Role)
}

func abort(c *gin.Context, err *util.AppError) {
	c.AbortWithStatusJSON(util.StatusCode(err), util.FailedResponse(err))
}
