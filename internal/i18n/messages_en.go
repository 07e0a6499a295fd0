package i18n

// englishMessages contains all English translations.
var englishMessages = map[string]string{
	// Greetings and commands
	"cmd.start": "Hi, %s! I'm a bot for downloading music from the catalog.\n" +
		"Send me a song name or a track link.",
	"cmd.help": "I can help you download music from the catalog.\n\n" +
		"Available commands:\n" +
		"/start - Start working with the bot\n" +
		"/help - Show this message\n" +
		"/myid - Show your Telegram ID\n\n" +
		"Just send me a song name or a catalog track link.",
	"cmd.myid": "Your Telegram ID: %d\n\nUse this ID to identify yourself to the operator.",

	// Search flow
	"search.progress":   "🔍 Searching for: %s",
	"search.no_matches": "😔 I couldn't find any tracks for your query. Try rephrasing it.",
	"search.failed":     "❌ The catalog search failed. Please try again later.",
	"search.choose":     "🎵 Pick a track to download:",

	// Acquisition flow
	"acquire.preparing": "🎵 Preparing the track for download...",
	"caption.track":     "🎵 %s\n👤 %s",

	// Errors
	"error.not_found":        "❌ Couldn't find that track in the catalog",
	"error.unavailable":      "❌ This track is not available for download",
	"error.no_variant":       "❌ No suitable version of this track was found",
	"error.download":         "❌ Something went wrong while downloading the track",
	"error.delivery":         "❌ Something went wrong while sending the track",
	"error.unsupported_link": "❌ Unsupported link format",
	"error.generic":          "❌ Something went wrong while processing the track",

	// Access and flood
	"demo.notice":   "🤖 The bot is running in demo mode: tracks are 30-second previews.",
	"flood.limited": "🚫 Too many requests, please slow down.",

	// Operator notifications
	"operator.startup": "🚀 Bot started successfully!",
	"operator.new_user": "👤 A new user started the bot:\n" +
		"ID: %d\nName: %s\nUsername: @%s",
	"operator.no_username": "none",
}
