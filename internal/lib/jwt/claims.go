// Package jwt реализует генерацию и разбор JWT токенов сессии
// с пользовательскими claim-полями: идентификатором пользователя
// и типом учётной записи.
package jwt

import "github.com/golang-jwt/jwt/v5"

// CustomClaims — claim-поля токена сессии.
type CustomClaims struct {
	UserUID     string `json:"user_uid"`
	AccountType string `json:"account_type"`
	jwt.RegisteredClaims
}
