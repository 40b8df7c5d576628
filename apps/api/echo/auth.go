package echoapi

import (
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/stemquest/core"
	"github.com/trezcool/stemquest/core/player"
)

const (
	contextTokenKey = "playerToken"
	tokenAudience   = "STEM Quest"
)

func newJWTConfig(conf *core.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    []byte(conf.SecretKey),
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
	}
}

// Claims represents the authorization claims transmitted via a JWT.
// Tokens are issued by the portal; the subject is the player ID.
type Claims struct {
	jwt.StandardClaims
	Username string   `json:"username,omitempty"`
	Roles    []string `json:"roles,omitempty"`
}

// Valid also rejects subjects that cannot be a player id.
func (c Claims) Valid() error {
	if err := c.StandardClaims.Valid(); err != nil {
		return err
	}
	if c.Subject == "" || len(c.Subject) > player.MaxIDLength {
		return jwt.NewValidationError("invalid subject", jwt.ValidationErrorClaimsInvalid)
	}
	return nil
}

func (c Claims) Player() player.Player {
	return player.Player{ID: c.Subject, Username: c.Username, Roles: c.Roles}
}

func GetPlayerClaims(conf *core.Config, p player.Player) *Claims {
	now := time.Now()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			Subject:   p.ID,
			Audience:  tokenAudience,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		Username: p.Username,
		Roles:    p.Roles,
	}
}

// GenerateToken generates a signed JWT token string representing the player Claims.
func GenerateToken(conf *core.Config, claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.GetSigningMethod(middleware.AlgorithmHS256), claims)

	ss, err := token.SignedString([]byte(conf.SecretKey))
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextPlayer(ctx echo.Context) (player.Player, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return player.Player{}, err
	}
	return claims.Player(), nil
}

// reviewerMiddleware only lets teachers and admins through.
func reviewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		p, err := getContextPlayer(ctx)
		if err != nil {
			return errors.Wrap(err, "getting context player")
		}
		if p.CanReview() {
			return next(ctx)
		}
		return errHttpForbidden
	}
}
