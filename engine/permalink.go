package engine

import (
	"net/url"
	"strings"
)

// Shortens a platform permalink to its redd.it form: comment links become "redd.it/comments/<post>/<comment>", post links "redd.it/<post>", and any other path is kept under redd.it. Unparsable input is returned unchanged.
func FormatPermalink(permalink string) string {
	if permalink == "" {
		return ""
	}
	raw := permalink
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://www.reddit.com" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return permalink
	}
	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	var segments []string
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segments = append(segments, s)
		}
	}
	// r/<sub>/comments/<post>/<slug>/<comment>
	if len(segments) >= 5 && segments[0] == "r" && segments[2] == "comments" {
		if len(segments) > 5 {
			return "redd.it/comments/" + segments[3] + "/" + segments[5]
		}
		return "redd.it/" + segments[3]
	}
	return "redd.it" + path
}
