package jwt

import (
	"strconv"
	"time"

	"hackathon-platform/config"
	"hackathon-platform/internal/model"

	"github.com/golang-jwt/jwt"
)

type Claims struct {
	UserID uint       `json:"user_id"`
	Name   string     `json:"name,omitempty"`
	Role   model.Role `json:"role"`
	jwt.StandardClaims
}

func CreateToken(userID uint, name string, role model.Role) (string, error) {
	cfg := config.Get().JWT
	now := time.Now()
	claims := Claims{
		UserID: userID,
		Name:   name,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(time.Duration(cfg.AccessExpire) * time.Second).Unix(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(cfg.AccessSecret))
}

// ParseToken 校验签名与过期时间，角色未知的令牌视为无效
func ParseToken(token string) (*Claims, bool) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.Get().JWT.AccessSecret), nil
	})
	if err != nil || !parsed.Valid || claims.UserID == 0 || !claims.Role.Valid() {
		return nil, false
	}
	return claims, true
}
