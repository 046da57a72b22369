package llm

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Flavor selects the request and response shape spoken by the backend.
type Flavor int

const (
	// FlavorAuto defers the choice to InferFlavor.
	FlavorAuto Flavor = iota
	// FlavorLocalChat is an Ollama style /api/chat endpoint.
	FlavorLocalChat
	// FlavorOpenAICompatible is a /chat/completions endpoint.
	FlavorOpenAICompatible
)

func (f Flavor) String() string {
	switch f {
	case FlavorLocalChat:
		return "local"
	case FlavorOpenAICompatible:
		return "openai"
	default:
		return "auto"
	}
}

// ParseFlavor reads a flavor name from configuration.
func ParseFlavor(s string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FlavorAuto, nil
	case "local", "local-chat", "ollama":
		return FlavorLocalChat, nil
	case "openai", "openai-compatible":
		return FlavorOpenAICompatible, nil
	default:
		return FlavorAuto, fmt.Errorf("unknown llm flavor %q", s)
	}
}

// Resolve returns f, or the flavor inferred from rawURL when f is FlavorAuto.
func (f Flavor) Resolve(rawURL string) Flavor {
	if f != FlavorAuto {
		return f
	}
	return InferFlavor(rawURL)
}

// InferFlavor treats loopback hosts and /api/chat endpoints as local chat
// backends and everything else as OpenAI compatible.
func InferFlavor(rawURL string) Flavor {
	rawURL = NormalizeURL(rawURL)
	if IsLoopback(rawURL) || strings.HasSuffix(strings.TrimRight(rawURL, "/"), "/api/chat") {
		return FlavorLocalChat
	}
	return FlavorOpenAICompatible
}

// NormalizeURL pins localhost to IPv4 so ::1 resolution quirks do not bite.
func NormalizeURL(rawURL string) string {
	rawURL = strings.TrimSpace(rawURL)
	rawURL = strings.Replace(rawURL, "//localhost", "//127.0.0.1", 1)
	return strings.Replace(rawURL, "//[::1]", "//127.0.0.1", 1)
}

// IsLoopback reports whether rawURL points at this machine.
func IsLoopback(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}

	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return true
	}

	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
