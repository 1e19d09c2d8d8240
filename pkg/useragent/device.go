package useragent

import (
	"net"
	"net/http"
	"strings"
)

// ClientInfo describes who is calling, for audit logging of login attempts.
type ClientInfo struct {
	IP     string
	Device string
}

func FromRequest(r *http.Request) ClientInfo {
	return ClientInfo{IP: ExtractIPAddress(r), Device: ExtractDeviceInfo(r)}
}

var browsers = []struct {
	name   string
	marker string
	not    string
}{
	{"Edge", "Edg/", ""},
	{"Chrome", "Chrome/", "Edg"},
	{"Firefox", "Firefox/", ""},
	{"Safari", "Safari/", "Chrome"},
}

var systems = []struct {
	name   string
	marker string
}{
	{"Windows", "Windows"},
	{"Android", "Android"},
	{"iOS", "iPhone"},
	{"iOS", "iPad"},
	{"macOS", "Mac OS X"},
	{"Linux", "Linux"},
}

// ExtractDeviceInfo reduces a User-Agent header to "<browser> <major> on <os>"
func ExtractDeviceInfo(r *http.Request) string {
	ua := r.Header.Get("User-Agent")
	if ua == "" {
		return "Unknown Device"
	}

	browser, version := "Unknown Browser", ""
	for _, b := range browsers {
		idx := strings.Index(ua, b.marker)
		if idx == -1 || (b.not != "" && strings.Contains(ua, b.not)) {
			continue
		}
		browser = b.name
		version = majorVersion(ua[idx+len(b.marker):])
		break
	}

	os := "Unknown OS"
	for _, s := range systems {
		if strings.Contains(ua, s.marker) {
			os = s.name
			break
		}
	}

	if version != "" {
		return browser + " " + version + " on " + os
	}
	return browser + " on " + os
}

func majorVersion(s string) string {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}

// ExtractIPAddress gets the real IP address from the request
// Handles proxies and load balancers by checking X-Forwarded-For and X-Real-IP headers
func ExtractIPAddress(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
