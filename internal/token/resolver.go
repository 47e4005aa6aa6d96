package token

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"sync"
)

// Resolver decides which base address goes into the QR scan URL.
// Precedence: tunnel URL override > manual base URL override > detected
// LAN address > localhost fallback. Callers must never hardcode a host.
type Resolver struct {
	mu        sync.RWMutex
	tunnelURL string
	baseURL   string
	port      int
	localIP   func() string
}

func NewResolver(tunnelURL, baseURL string, port int) *Resolver {
	return &Resolver{
		tunnelURL: strings.TrimRight(tunnelURL, "/"),
		baseURL:   strings.TrimRight(baseURL, "/"),
		port:      port,
		localIP:   LocalIP,
	}
}

// SetBaseURL updates the manual override at runtime (admin config page).
// An empty value resets resolution back to automatic.
func (r *Resolver) SetBaseURL(base string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.baseURL = strings.TrimRight(base, "/")
}

// BaseURLOverride returns the current manual override, empty if automatic.
func (r *Resolver) BaseURLOverride() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.baseURL
}

// Base resolves the base address for scan URLs.
func (r *Resolver) Base() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.tunnelURL != "" {
		return r.tunnelURL
	}
	if r.baseURL != "" {
		return r.baseURL
	}
	if ip := r.localIP(); ip != "127.0.0.1" {
		return fmt.Sprintf("http://%s:%d", ip, r.port)
	}
	return fmt.Sprintf("http://localhost:%d", r.port)
}

// ScanURL builds the full URL encoded into the QR code.
func (r *Resolver) ScanURL(userID uint, tok, date string) string {
	q := url.Values{}
	q.Set("user_id", fmt.Sprintf("%d", userID))
	q.Set("token", tok)
	q.Set("date", date)
	return r.Base() + "/qr_scan?" + q.Encode()
}

// LocalIP detects the outbound LAN address by dialing a public resolver.
// No packet is sent; the kernel just picks the route. Falls back to
// loopback when the host has no usable interface.
func LocalIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	addr, ok := conn.LocalAddr().(*net.UDPAddr)
	if !ok {
		return "127.0.0.1"
	}
	return addr.IP.String()
}
