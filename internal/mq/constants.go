package mq

// Exchange names and message definitions

// fanout exchange announcing that a user's owned movies changed
// every server instance binds its own exclusive queue, so each one can push
// the event to the websockets it holds
const (
	CatalogChangedExchange = "catalog.changed"
)

type CatalogChangedMessage struct {
	UserID string `json:"user_id"`
}
