package api

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/salaryrace/salaryrace-go/internal/domain"
)

const maxBodyBytes = 16 << 10

// flexString accepts a JSON string or any other scalar, keeping its text.
// Salaries arrive as numbers from API clients and as strings from forms.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

type createRequest struct {
	NameA    flexString `json:"nameA"`
	NameB    flexString `json:"nameB"`
	AnnualA  flexString `json:"annualA"`
	AnnualB  flexString `json:"annualB"`
	Currency flexString `json:"currency"`
}

func (c createRequest) input() domain.CreateInput {
	return domain.CreateInput{
		NameA:    string(c.NameA),
		NameB:    string(c.NameB),
		AnnualA:  string(c.AnnualA),
		AnnualB:  string(c.AnnualB),
		Currency: string(c.Currency),
	}
}

type createResponse struct {
	Slug string `json:"slug"`
	URL  string `json:"url"`
}

// clientIP returns the client address, honouring X-Forwarded-For only
// behind a trusted proxy.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if ip := strings.TrimSpace(first); ip != "" {
				return ip
			}
		}
		if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// baseURL is the absolute origin for links in shared pages.
func (s *Server) baseURL(r *http.Request) string {
	if s.opts.BaseURL != "" {
		return strings.TrimRight(s.opts.BaseURL, "/")
	}
	proto := "http"
	if r.TLS != nil {
		proto = "https"
	}
	if fwd := r.Header.Get("X-Forwarded-Proto"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		proto = strings.TrimSpace(first)
	}
	host := r.Host
	if s.opts.TrustProxy {
		if fwd := r.Header.Get("X-Forwarded-Host"); fwd != "" {
			host = fwd
		}
	}
	return proto + "://" + host
}
