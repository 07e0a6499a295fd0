package i18n

// russianMessages contains all Russian translations.
var russianMessages = map[string]string{
	// Greetings and commands
	"cmd.start": "Привет, %s! Я бот для скачивания музыки из каталога.\n" +
		"Отправь мне название песни или ссылку на трек.",
	"cmd.help": "Я могу помочь вам скачать музыку из каталога.\n\n" +
		"Доступные команды:\n" +
		"/start - Начать работу с ботом\n" +
		"/help - Показать это сообщение\n" +
		"/myid - Показать ваш Telegram ID\n\n" +
		"Просто отправьте мне название песни или ссылку на трек.",
	"cmd.myid": "Ваш Telegram ID: %d\n\nЭтот ID можно использовать для идентификации.",

	// Search flow
	"search.progress":   "🔍 Ищу трек: %s",
	"search.no_matches": "😔 К сожалению, я не смог найти треки по вашему запросу. Попробуйте изменить поисковый запрос.",
	"search.failed":     "❌ Поиск по каталогу не удался. Попробуйте позже.",
	"search.choose":     "🎵 Выберите трек для скачивания:",

	// Acquisition flow
	"acquire.preparing": "🎵 Подготовка трека к скачиванию...",
	"caption.track":     "🎵 %s\n👤 %s",

	// Errors
	"error.not_found":        "❌ Не удалось найти трек в каталоге",
	"error.unavailable":      "❌ Трек недоступен для скачивания",
	"error.no_variant":       "❌ Не найдена подходящая версия трека",
	"error.download":         "❌ Произошла ошибка при скачивании трека",
	"error.delivery":         "❌ Произошла ошибка при отправке трека",
	"error.unsupported_link": "❌ Неподдерживаемый формат ссылки",
	"error.generic":          "❌ Произошла ошибка при обработке трека",

	// Access and flood
	"demo.notice":   "🤖 Бот работает в демо режиме, треки в ознакомительном 30сек виде.",
	"flood.limited": "🚫 Слишком много запросов, помедленнее, пожалуйста.",

	// Operator notifications
	"operator.startup": "🚀 Бот успешно запущен!",
	"operator.new_user": "👤 Новый пользователь запустил бота:\n" +
		"ID: %d\nИмя: %s\nUsername: @%s",
	"operator.no_username": "Нет",
}
