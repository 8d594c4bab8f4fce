package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"github.com/kendall-kelly/ppe-pickup-api/config"
	"github.com/kendall-kelly/ppe-pickup-api/services"
)

// AccessTokenCookie is the cookie a browser session carries its token in
const AccessTokenCookie = "access_token"

const (
	userIDKey      = "user_id"
	claimsKey      = "validated_claims"
	accessTokenKey = "access_token"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate does nothing, but we need it to satisfy validator.CustomClaims.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// TokenExtractor reads the bearer token from the Authorization header, then
// from the access token cookie.
var TokenExtractor = jwtmiddleware.MultiTokenExtractor(
	jwtmiddleware.AuthHeaderTokenExtractor,
	jwtmiddleware.CookieTokenExtractor(AccessTokenCookie),
)

// Authenticate validates Auth0 tokens. With required false, requests without a
// token pass through as guests; a token that is present must still be valid.
// When Auth0 is not configured every caller is a guest and required routes
// answer 401.
func Authenticate(cfg *config.Config, required bool) (gin.HandlerFunc, error) {
	if !cfg.AuthConfigured() {
		return func(c *gin.Context) {
			if required {
				abortUnauthorized(c, "AUTH_NOT_CONFIGURED", "Sign-in is not available.")
				return
			}
			c.Next()
		}, nil
	}

	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		return nil, fmt.Errorf("failed to parse the issuer url: %w", err)
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to set up the jwt validator: %w", err)
	}

	return newJWTHandler(jwtValidator.ValidateToken, required), nil
}

func newJWTHandler(validate jwtmiddleware.ValidateToken, required bool) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		slog.Info("Encountered error while validating JWT", "error", err, "path", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			slog.Warn("Failed to write error response", "error", writeErr)
		}
	}

	middleware := jwtmiddleware.New(
		validate,
		jwtmiddleware.WithErrorHandler(errorHandler),
		jwtmiddleware.WithCredentialsOptional(!required),
		jwtmiddleware.WithTokenExtractor(TokenExtractor),
	)

	return func(c *gin.Context) {
		passed := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r

			if claims, ok := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims); ok {
				c.Set(userIDKey, claims.RegisteredClaims.Subject)
				c.Set(claimsKey, claims)
				if token, err := TokenExtractor(r); err == nil {
					c.Set(accessTokenKey, token)
				}
			}

			c.Next()
		}

		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func abortUnauthorized(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(userIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(claimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// CurrentIdentity returns the caller's identity, or false for guests
func CurrentIdentity(c *gin.Context) (services.Identity, bool) {
	userID, err := GetUserID(c)
	if err != nil || userID == "" {
		return services.Identity{}, false
	}

	id := services.Identity{Subject: userID}
	if claims, err := GetClaims(c); err == nil {
		if custom, ok := claims.CustomClaims.(*CustomClaims); ok && custom != nil {
			id.Email = custom.Email
			id.Name = custom.Name
		}
	}
	id.AccessToken = c.GetString(accessTokenKey)

	return id, true
}

// SetIdentity stores claims for subject the way Authenticate does
func SetIdentity(c *gin.Context, subject string, claims *CustomClaims) {
	c.Set(userIDKey, subject)
	c.Set(claimsKey, &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		CustomClaims:     claims,
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
