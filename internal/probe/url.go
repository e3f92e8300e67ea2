package probe

import "strings"

// Join concatenates base and path with exactly one slash between them.
// An empty path returns base unchanged.
func Join(base, path string) string {
	if path == "" {
		return base
	}
	baseSlash := strings.HasSuffix(base, "/")
	pathSlash := strings.HasPrefix(path, "/")
	switch {
	case baseSlash && pathSlash:
		return base[:len(base)-1] + path
	case !baseSlash && !pathSlash:
		return base + "/" + path
	default:
		return base + path
	}
}

// MediaType strips parameters from a Content-Type value and lower-cases it.
func MediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}

// WebSocketURL maps an http(s) base to its ws(s) equivalent and appends
// endpoint unless the base already ends with it.
func WebSocketURL(base, endpoint string) string {
	ws := base
	switch {
	case strings.HasPrefix(ws, "https://"):
		ws = "wss://" + strings.TrimPrefix(ws, "https://")
	case strings.HasPrefix(ws, "http://"):
		ws = "ws://" + strings.TrimPrefix(ws, "http://")
	}
	ws = strings.TrimRight(ws, "/")
	if endpoint == "" {
		return ws
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	if strings.HasSuffix(ws, endpoint) {
		return ws
	}
	return ws + endpoint
}
