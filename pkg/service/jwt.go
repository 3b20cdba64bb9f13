package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	apperrors "solicitud-system/pkg/errors"
)

type Claims struct {
	ActorID uuid.UUID `json:"actor_id"`
	jwt.RegisteredClaims
}

type JWTService interface {
	GenerateToken(actorID uuid.UUID) (string, error)
	ValidateToken(tokenString string) (*Claims, error)
}

type jwtService struct {
	secretKey []byte
	tokenTTL  time.Duration
	logger    *zap.Logger
}

func NewJWTService(secretKey string, tokenTTL time.Duration, logger *zap.Logger) JWTService {
	return &jwtService{
		secretKey: []byte(secretKey),
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *jwtService) GenerateToken(actorID uuid.UUID) (string, error) {
	now := time.Now()
	claims := &Claims{
		ActorID: actorID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

func (s *jwtService) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, apperrors.ErrUnauthenticated
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		s.logger.Warn("token inválido", zap.Error(err))
		return nil, apperrors.ErrUnauthenticated
	}
	return claims, nil
}
