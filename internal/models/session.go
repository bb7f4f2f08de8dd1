package models

// Session представляет действующую сессию пользователя, полученную
// от внешнего сервиса аутентификации.
type Session struct {
	UserUID     string
	AccessToken string
}
