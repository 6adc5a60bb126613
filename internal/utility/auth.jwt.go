package utility

import (
	"time"

	"github.com/dgrijalva/jwt-go"
)

// TokenLifetime thời gian sống của JWT token
const TokenLifetime = 72 * time.Hour

// JwtClaims chứa data được mã hóa trong JWT token
type JwtClaims struct {
	UserID       string `json:"userId"`
	Time         string `json:"time"`
	RandomNumber string `json:"randomNumber"`
	jwt.StandardClaims
}

// CreateToken tạo JWT token cho user.
//
// Parameters:
//   - secret: Bí mật ký token (JwtSecret từ config)
//   - userID: ID của user (hex string)
//   - timeStr: Thời điểm tạo token (để phân biệt các token cùng user)
//   - randomNumber: Số ngẫu nhiên chống trùng token khi tạo cùng thời điểm
//
// Returns:
//   - map với key "token" chứa token đã ký
//   - error nếu ký token thất bại
func CreateToken(secret string, userID string, timeStr string, randomNumber string) (map[string]string, error) {
	now := time.Now()
	claims := JwtClaims{
		UserID:       userID,
		Time:         timeStr,
		RandomNumber: randomNumber,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(TokenLifetime).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return nil, err
	}

	return map[string]string{"token": signed}, nil
}
