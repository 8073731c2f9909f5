package message

// Константы для типов сообщений WebSocket
const (
	// inbound
	MsgTypePairMe              = "pair_me"
	MsgTypePlayerLeave         = "player_leave"
	MsgTypePlayerReady         = "player_ready"
	MsgTypeEndGameNotification = "end_game_notification"

	// outbound
	MsgTypeNewPlayer         = "new_player"
	MsgTypeLeave             = "leave"
	MsgTypeGameStart         = "game_start"
	MsgTypeReadyAnnouncement = "player_ready_announcement"
	MsgTypeGameEnded         = "game_ended"
	MsgTypeError             = "error"
)
