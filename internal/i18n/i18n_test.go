package i18n

import (
	"sort"
	"strings"
	"testing"
)

// TestI18nCompleteness verifies that all language profiles contain all message keys
func TestI18nCompleteness(t *testing.T) {
	languages := GetSupportedLanguages()
	if len(languages) == 0 {
		t.Fatal("No supported languages found")
	}

	referenceMessages := getMessages(DefaultLanguage)
	if len(referenceMessages) == 0 {
		t.Fatal("No reference messages found in default language")
	}

	var referenceKeys []string
	for key := range referenceMessages {
		referenceKeys = append(referenceKeys, key)
	}
	sort.Strings(referenceKeys)

	for _, lang := range languages {
		t.Run("Language_"+lang, func(t *testing.T) {
			messages := getMessages(lang)

			var missingKeys []string
			for _, refKey := range referenceKeys {
				if _, exists := messages[refKey]; !exists {
					missingKeys = append(missingKeys, refKey)
				}
			}

			var extraKeys []string
			for langKey := range messages {
				if _, exists := referenceMessages[langKey]; !exists {
					extraKeys = append(extraKeys, langKey)
				}
			}

			if len(missingKeys) > 0 {
				t.Errorf("Language %s is missing %d keys: %v", lang, len(missingKeys), missingKeys)
			}
			if len(extraKeys) > 0 {
				t.Errorf("Language %s has %d extra keys: %v", lang, len(extraKeys), extraKeys)
			}
		})
	}
}

func TestLocalizer_T(t *testing.T) {
	l := NewLocalizer(DefaultLanguage)

	if got := l.T("operator.startup"); got != "🚀 Bot started successfully!" {
		t.Errorf("T(operator.startup) = %q", got)
	}

	got := l.T("search.progress", "query text")
	if !strings.Contains(got, "query text") {
		t.Errorf("T(search.progress) = %q, should embed the query", got)
	}
}

func TestLocalizer_T_Russian(t *testing.T) {
	l := NewLocalizer(RussianMessages)

	if got := l.T("operator.startup"); got != "🚀 Бот успешно запущен!" {
		t.Errorf("T(operator.startup) = %q", got)
	}

	got := l.T("operator.new_user", int64(42), "Name", "username")
	for _, part := range []string{"42", "Name", "@username"} {
		if !strings.Contains(got, part) {
			t.Errorf("T(operator.new_user) = %q, should contain %q", got, part)
		}
	}
}

func TestLocalizer_T_UnknownKeyFallsBackToKey(t *testing.T) {
	l := NewLocalizer(RussianMessages)

	if got := l.T("does.not.exist"); got != "does.not.exist" {
		t.Errorf("T(unknown) = %q, want the key itself", got)
	}
}

func TestLocalizer_T_UnknownLanguageUsesEnglish(t *testing.T) {
	l := NewLocalizer("xx")

	if got := l.T("operator.startup"); got != "🚀 Bot started successfully!" {
		t.Errorf("T with unknown language = %q, want the English text", got)
	}
}
