package middleware

import (
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

// IdentityHeader carries the resolved caller identity to handlers. Guests
// never get it set here; they supply a nickname in the request payload and
// the engine treats both the same way.
const IdentityHeader = "X-Identity"

// JWTAuth rejects requests without a valid bearer token.
func JWTAuth(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			identity := resolveIdentity(ctx, secret, logger)
			if identity == "" {
				ctx.SetStatusCode(fasthttp.StatusUnauthorized)
				return
			}
			ctx.Request.Header.Set(IdentityHeader, identity)
			next(ctx)
		}
	}
}

// OptionalJWT resolves the caller identity when a valid bearer token is
// present and lets the request through either way. Mutation endpoints use
// this: authenticated users act under their stable id, guests under the
// nickname they send.
func OptionalJWT(secret string, logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			ctx.Request.Header.Del(IdentityHeader)
			if identity := resolveIdentity(ctx, secret, logger); identity != "" {
				ctx.Request.Header.Set(IdentityHeader, identity)
			}
			next(ctx)
		}
	}
}

func resolveIdentity(ctx *fasthttp.RequestCtx, secret string, logger *zap.Logger) string {
	tokenString := extractToken(ctx)
	if tokenString == "" {
		return ""
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		logger.Warn("invalid jwt token", zap.Error(err))
		return ""
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if userID, ok := claims["user_id"].(string); ok {
			return userID
		}
	}
	return ""
}

func extractToken(ctx *fasthttp.RequestCtx) string {
	header := string(ctx.Request.Header.Peek("Authorization"))
	if header == "" {
		return ""
	}
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}
