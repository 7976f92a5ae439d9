package workout

import (
	"net/url"
	"regexp"
	"strings"
)

//nolint:gochecknoglobals // compiled once.
var youTubeIDPattern = regexp.MustCompile(`(?:youtu\.be/|v=)([^&/?#]+)`)

// MediaFromLink derives the media of a custom exercise from a link typed by the user. YouTube links become embed
// URLs, everything else is shown as an image loop. An empty link has no media.
func MediaFromLink(link string) *Media {
	link = strings.TrimSpace(link)
	if link == "" {
		return nil
	}
	if id := youTubeID(link); id != "" {
		return &Media{Type: MediaVideoEmbed, URL: "https://www.youtube.com/embed/" + id}
	}
	if strings.Contains(link, "youtube.com/embed") {
		return &Media{Type: MediaVideoEmbed, URL: link}
	}
	return &Media{Type: MediaImageLoop, URL: link}
}

func youTubeID(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host == "" {
		if m := youTubeIDPattern.FindStringSubmatch(link); m != nil {
			return m[1]
		}
		return ""
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case host == "youtu.be" || strings.HasSuffix(host, ".youtu.be"):
		return strings.Trim(u.Path, "/")
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if v := u.Query().Get("v"); v != "" {
			return v
		}
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		return parts[len(parts)-1]
	default:
		return ""
	}
}
