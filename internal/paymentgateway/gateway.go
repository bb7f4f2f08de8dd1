// Package paymentgateway описывает возможности платёжного шлюза,
// которые оркестратор получает извне: инициализацию и показ платёжного
// листа. Оркестратор зависит только от интерфейса Gateway, конкретный
// адаптер подставляется при сборке приложения.
package paymentgateway

import "context"

// CodeCanceled — код ошибки шлюза при отказе пользователя от оплаты.
// Регистр фиксирован шлюзом.
const CodeCanceled = "Canceled"

// Error — структурированная ошибка шлюза.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return e.Message
}

// Canceled сообщает, является ли ошибка отказом пользователя.
func (e *Error) Canceled() bool {
	return e.Code == CodeCanceled
}

// InitConfig — параметры инициализации платёжного листа.
type InitConfig struct {
	PaymentIntent  string `json:"paymentIntent"`
	EphemeralKey   string `json:"ephemeralKey"`
	Customer       string `json:"customer"`
	PublishableKey string `json:"publishableKey"`
	MerchantName   string `json:"merchantName"`
}

// Gateway — возможности платёжного шлюза. nil означает успех.
type Gateway interface {
	InitPaymentSheet(ctx context.Context, cfg InitConfig) *Error
	PresentPaymentSheet(ctx context.Context) *Error
}
