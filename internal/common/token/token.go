package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common/constants"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
)

func Issue(secretKey string, subject uuid.UUID, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		Audience:  jwt.ClaimStrings{constants.AUDIENCE_USER},
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		Issuer:    constants.ISSUER_STOREFRONT,
		NotBefore: jwt.NewNumericDate(now),
		Subject:   subject.String(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secretKey))
	if err != nil {
		return "", fmt.Errorf("failed signing token with error=%w", err)
	}
	return signed, nil
}

func Verify(c context.Context, secretKey string, token string) (*jwt.Token, error) {
	c, span := otel.Tracer.Start(c, "token Verify")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "token Verify").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "parsing claims").Logger()
	logger.Trace().Msg("parsing claims")
	jwtToken, err := jwt.ParseWithClaims(token,
		&jwt.RegisteredClaims{},
		func(t *jwt.Token) (interface{}, error) {
			return []byte(secretKey), nil
		},
		jwt.WithAudience(constants.AUDIENCE_USER),
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithIssuer(constants.ISSUER_STOREFRONT),
	)
	if err != nil {
		err = fmt.Errorf("failed parsing claims with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, fmt.Errorf("%w: %w", commonErrors.ErrTokenInvalid, err)
	}
	logger.Trace().Msg("parsed claims")

	logger = logger.With().Str(log.KeyProcess, "validating token").Logger()
	logger.Trace().Msg("validating token")
	if !jwtToken.Valid {
		err = fmt.Errorf("failed validating token with error=%w", commonErrors.ErrTokenInvalid)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, commonErrors.ErrTokenInvalid
	}
	logger.Trace().Msg("validated token")

	return jwtToken, nil
}

type jwtTokenKey struct{}

type rawTokenKey struct{}

func AttachJwtToken(c context.Context, raw string, jwt *jwt.Token) context.Context {
	c = context.WithValue(c, rawTokenKey{}, raw)
	return context.WithValue(c, jwtTokenKey{}, jwt)
}

func JwtTokenFromContext(c context.Context) (*jwt.Token, bool) {
	t, ok := c.Value(jwtTokenKey{}).(*jwt.Token)
	return t, ok && t != nil
}

// RawTokenFromContext returns the bearer token exactly as the client sent it.
func RawTokenFromContext(c context.Context) string {
	raw, _ := c.Value(rawTokenKey{}).(string)
	return raw
}

func UserIdFromJwtToken(c context.Context) (uuid.UUID, error) {
	c, span := otel.Tracer.Start(c, "UserIdFromJwtToken")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "UserIdFromJwtToken").Logger()

	logger = logger.With().Str(log.KeyProcess, "getting userId from jwtToken").Logger()
	logger.Trace().Msg("getting jwtToken from context")
	jwtToken, ok := JwtTokenFromContext(c)
	if !ok {
		err := fmt.Errorf("failed getting jwtToken from context with error=%w", commonErrors.ErrEmptyAuth)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	subject, err := jwtToken.Claims.GetSubject()
	if err != nil || subject == "" {
		err = fmt.Errorf("failed getting subject from jwt with error=%w", commonErrors.ErrEmptySubject)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Msg("got subject from jwtToken")

	userId, err := uuid.Parse(subject)
	if err != nil {
		err = fmt.Errorf("failed parsing subject=%s with error=%w", subject, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return uuid.Nil, err
	}
	logger.Trace().Str(log.KeyUserID, userId.String()).Msg("parsed subject as userId")

	return userId, nil
}
