package dtos

type ServerStatusResponse struct {
	ActiveGames int `json:"activeGames"`
	QueueSize   int `json:"queueSize"`
	Connections int `json:"connections"`
}

const (
	MessageGameState           MessageType = "GAME_STATE"
	MessageQueued              MessageType = "QUEUED"
	MessageQueueLeft           MessageType = "QUEUE_LEFT"
	MessageQueueStatus         MessageType = "QUEUE_STATUS"
	MessageInvitationCreated   MessageType = "INVITATION_CREATED"
	MessageInvitationCancelled MessageType = "INVITATION_CANCELLED"
	MessageReviewQueued        MessageType = "REVIEW_QUEUED"
)

// Reply answers a single client request.
type Reply struct {
	Type   MessageType `json:"type"`
	GameId string      `json:"gameId,omitempty"`
	Data   any         `json:"data,omitempty"`
}

type QueueStatusResponse struct {
	Queued      bool  `json:"queued"`
	Position    int   `json:"position,omitempty"`
	WaitSeconds int64 `json:"waitSeconds,omitempty"`
	QueueSize   int   `json:"queueSize"`
}
