package constants

import "time"

const (
	APP_NAME        = "Folio"
	MAX_POST_LENGTH = 200_000

	// admin session
	SESSION_COOKIE_NAME = "session_id"
	SESSION_DURATION    = 7 * 24 * time.Hour
	SESSION_TOKEN_BYTES = 32

	// blog
	WORDS_PER_MINUTE = 200

	// terminal
	TERMINAL_WRAP_WIDTH = 58

	// chat
	CHAT_COOKIE_NAME    = "chat_id"
	CHAT_HISTORY_LIMIT  = 20
	CHAT_MAX_MESSAGE    = 4000
	CHAT_MAX_OUTPUT     = 2048
	CHAT_IMAGE_PREFIX   = "/image "
	CHAT_NOT_CONFIGURED = "⚠️  AI is not configured. Please add your Gemini API key to the environment.\n\nGet a free API key at: https://aistudio.google.com/apikey"
)
