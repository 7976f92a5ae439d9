// Package i18n translates the labels printed by the command line tool and the weekly report.
package i18n

import (
	"fmt"
	"strings"
)

// Language represents a supported language.
type Language string

const (
	// English is the English language.
	English Language = "en"
	// Portuguese is Brazilian Portuguese.
	Portuguese Language = "pt"
)

// DefaultLanguage is the fallback language.
const DefaultLanguage = English

// translations maps language codes to translation keys and their values. Values may be format strings.
//
//nolint:gochecknoglobals,lll // static catalogue.
var translations = map[Language]map[string]string{
	English: {
		"weekday.0":                "Mon",
		"weekday.1":                "Tue",
		"weekday.2":                "Wed",
		"weekday.3":                "Thu",
		"weekday.4":                "Fri",
		"weekday.5":                "Sat",
		"weekday.6":                "Sun",
		"report.title":             "Weekly report %s",
		"report.greeting":          "Hi, %s!",
		"report.week.missing":      "No plan for this week yet.",
		"report.workouts":          "Workouts",
		"report.diet":              "Diet",
		"report.completed":         "%d of %d days completed (%d%%)",
		"report.points":            "Points this week: %d",
		"report.level":             "Level %d",
		"report.level.next":        "%d points to level %d (%d%%)",
		"report.weight":            "Weight",
		"report.weight.difference": "Difference since the first entry: %s",
		"report.weight.recent":     "Recent entries",
		"trend.up":                 "Weight trending up",
		"trend.down":               "Weight trending down",
		"trend.stable":             "Weight stable",
		"trend.unknown":            "Record two weights to see the difference.",
		"cli.backend.missing":      "Backend not configured. Set FITWEEK_SQLITE_URL to store your data.",
		"cli.onboarding.pending":   "Finish onboarding first: fitweek onboard --user %s",
		"cli.registered":           "Registered user %s",
		"cli.week.header":          "Week %s, %d points",
		"cli.day.rest":             "rest",
		"cli.day.completed":        "completed",
		"cli.diet.header":          "Diet",
		"cli.level":                "Level %d: %d/%d points, %d to go",
		"cli.level.total":          "Total points: %d, this week: %d",
		"cli.saved":                "Saved.",
		"cli.uploaded":             "Uploaded %s",
		"cli.exported":             "Exported to %s",
		"cli.progress.empty":       "No measurements yet.",
		"cli.meal.empty":           "nothing planned",
	},
	Portuguese: {
		"weekday.0":                "Seg",
		"weekday.1":                "Ter",
		"weekday.2":                "Qua",
		"weekday.3":                "Qui",
		"weekday.4":                "Sex",
		"weekday.5":                "Sáb",
		"weekday.6":                "Dom",
		"report.title":             "Relatório semanal %s",
		"report.greeting":          "Olá, %s!",
		"report.week.missing":      "Ainda não há plano para esta semana.",
		"report.workouts":          "Treinos",
		"report.diet":              "Dieta",
		"report.completed":         "%d de %d dias concluídos (%d%%)",
		"report.points":            "Pontos na semana: %d",
		"report.level":             "Nível %d",
		"report.level.next":        "%d pontos para o nível %d (%d%%)",
		"report.weight":            "Peso",
		"report.weight.difference": "Diferença desde o primeiro registro: %s",
		"report.weight.recent":     "Registros recentes",
		"trend.up":                 "Peso em tendência de alta",
		"trend.down":               "Peso em tendência de queda",
		"trend.stable":             "Peso estável",
		"trend.unknown":            "Registre dois pesos para ver a diferença.",
		"cli.backend.missing":      "Backend não configurado. Defina FITWEEK_SQLITE_URL para salvar seus dados.",
		"cli.onboarding.pending":   "Conclua o onboarding primeiro: fitweek onboard --user %s",
		"cli.registered":           "Usuário registrado %s",
		"cli.week.header":          "Semana %s, %d pontos",
		"cli.day.rest":             "descanso",
		"cli.day.completed":        "concluído",
		"cli.diet.header":          "Dieta",
		"cli.level":                "Nível %d: %d/%d pontos, faltam %d",
		"cli.level.total":          "Pontos totais: %d, nesta semana: %d",
		"cli.saved":                "Salvo.",
		"cli.uploaded":             "Enviado %s",
		"cli.exported":             "Exportado para %s",
		"cli.progress.empty":       "Nenhuma medida ainda.",
		"cli.meal.empty":           "nada planejado",
	},
}

// SupportedLanguages returns a list of all supported languages.
func SupportedLanguages() []Language {
	return []Language{English, Portuguese}
}

// IsSupported checks if a language is supported.
func IsSupported(lang Language) bool {
	_, ok := translations[lang]
	return ok
}

// Parse maps tags such as "pt-BR" or "en_US" to a supported language, falling back to [DefaultLanguage].
func Parse(tag string) Language {
	base, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(tag)), "-")
	base, _, _ = strings.Cut(base, "_")
	if lang := Language(base); IsSupported(lang) {
		return lang
	}
	return DefaultLanguage
}

// Translate returns the translation for the given key in the specified language.
// If the key is not found, it falls back to the default language.
// If still not found, it returns the key itself.
func Translate(lang Language, key string) string {
	// Try the requested language.
	if langTranslations, ok := translations[lang]; ok {
		if translation, ok := langTranslations[key]; ok {
			return translation
		}
	}

	// Fallback to default language.
	if lang != DefaultLanguage {
		if translation, ok := translations[DefaultLanguage][key]; ok {
			return translation
		}
	}

	return key
}

// Translatef formats the translation of key with args.
func Translatef(lang Language, key string, args ...any) string {
	return fmt.Sprintf(Translate(lang, key), args...)
}
