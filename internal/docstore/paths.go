package docstore

import (
	"log/slog"
	"strings"

	"github.com/myrjola/fitweek/internal/errors"
)

// ValidUID reports whether uid can be used as a single path segment.
func ValidUID(uid string) bool {
	return uid != "" && uid != "." && uid != ".." && !strings.Contains(uid, "/")
}

// UserPath is the profile document of uid.
func UserPath(uid string) string {
	return "users/" + uid
}

// WeekPath is the week plan document of uid for the ISO week weekID.
func WeekPath(uid, weekID string) string {
	return "userWeeks/" + uid + "_" + weekID
}

// MeasurementsCollection holds one measurement document per day keyed by YYYY-MM-DD.
func MeasurementsCollection(uid string) string {
	return UserPath(uid) + "/measurements"
}

// MeasurementPath is the measurement document of uid for date (YYYY-MM-DD).
func MeasurementPath(uid, date string) string {
	return MeasurementsCollection(uid) + "/" + date
}

// LegacyProgressCollection holds progress entries written before measurements were keyed by date.
func LegacyProgressCollection(uid string) string {
	return UserPath(uid) + "/progress"
}

// DietPlanPath is the structured meal plan of uid.
func DietPlanPath(uid string) string {
	return UserPath(uid) + "/dietPlan/current"
}

func validatePath(path string) error {
	if path == "" || strings.HasPrefix(path, "/") || strings.HasSuffix(path, "/") || strings.Contains(path, "//") {
		return errors.Wrap(ErrInvalidPath, "validate path", slog.String("path", path))
	}
	return nil
}

// parentOf returns the collection a document lives in.
func parentOf(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[:i]
	}
	return ""
}

// idOf returns the last path segment.
func idOf(path string) string {
	return path[strings.LastIndexByte(path, '/')+1:]
}
