package source

import (
	"errors"
	"fmt"
	"regexp"
)

// ErrInvalidSourceURL is returned when a URL matches none of the supported
// source-platform shapes. Callers must not start any pipeline work for it.
var ErrInvalidSourceURL = errors.New("invalid source url")

// VideoID is the canonical identifier derived from a source URL. It is the
// cache and idempotency key for the whole pipeline, so resolution has to be
// deterministic: the same video reached through watch, short-link, embed or
// shorts URLs always yields the same VideoID.
type VideoID string

func (id VideoID) String() string { return string(id) }

// urlPatterns covers the supported YouTube URL shapes. Each pattern captures
// the video identifier in group 1; query-string noise (playlist, timestamp,
// share tracking) deliberately stays outside the capture.
var urlPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^https?://(?:www\.|m\.)?youtube\.com/watch\?(?:[^#]*&)?v=([\w-]{11})`),
	regexp.MustCompile(`^https?://youtu\.be/([\w-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/v/([\w-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/embed/([\w-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/shorts/([\w-]{11})`),
	regexp.MustCompile(`^https?://(?:www\.)?youtube\.com/live/([\w-]{11})`),
}

// Resolve validates url and derives its VideoID. Pure function, no I/O; it is
// called on every inbound request before any expensive work starts.
func Resolve(url string) (VideoID, error) {
	for _, pattern := range urlPatterns {
		if m := pattern.FindStringSubmatch(url); m != nil {
			return VideoID(m[1]), nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSourceURL, url)
}
