package domain

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/mssola/useragent"
)

// Platform is the client platform a link set is generated for.
type Platform string

const (
	PlatformIOS     Platform = "ios"
	PlatformAndroid Platform = "android"
	PlatformDesktop Platform = "desktop"
)

var iosDevice = regexp.MustCompile(`(?i)iPhone|iPad|iPod`)

// ParsePlatform validates an explicit platform value. An empty string is
// returned as the zero Platform, meaning "detect".
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(strings.ToLower(strings.TrimSpace(s))); p {
	case "", PlatformIOS, PlatformAndroid, PlatformDesktop:
		return p, nil
	default:
		return "", fmt.Errorf("unknown platform %q", s)
	}
}

// ResolvePlatform uses explicit verbatim when set. Otherwise the user agent is
// parsed and an iPhone, iPad or iPod platform or OS means ios; everything else,
// including an absent user agent, is android. Desktop is only ever explicit.
// User agents the parser cannot place (app clients, custom strings) fall back
// to matching the device names in the raw string.
func ResolvePlatform(explicit Platform, userAgent string) Platform {
	if explicit != "" {
		return explicit
	}
	if userAgent == "" {
		return PlatformAndroid
	}

	ua := useragent.New(userAgent)
	if ua.Platform() == "" && ua.OS() == "" {
		if iosDevice.MatchString(userAgent) {
			return PlatformIOS
		}
		return PlatformAndroid
	}
	if iosDevice.MatchString(ua.Platform()) || iosDevice.MatchString(ua.OS()) {
		return PlatformIOS
	}
	return PlatformAndroid
}

func (p Platform) String() string {
	return string(p)
}
