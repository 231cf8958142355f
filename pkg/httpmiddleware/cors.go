package httpmiddleware

import (
	"net/http"
	"strconv"
	"strings"
)

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOrigins lists origins permitted to make cross-origin requests.
	// Empty, or containing "*", allows every origin.
	AllowOrigins []string

	// AllowHeaders lists request headers clients may send. When empty the
	// preflight echoes back whatever the client asked for.
	AllowHeaders []string

	// AllowCredentials permits cookies and auth headers. Incompatible with
	// the wildcard origin; the specific origin is echoed instead.
	AllowCredentials bool

	// MaxAge is the preflight cache lifetime in seconds. Zero omits the
	// header.
	MaxAge int
}

const corsAllowMethods = "GET, POST, PUT, DELETE, OPTIONS"

// CORS handles cross-origin request headers, including preflights.
func CORS(cfg CORSConfig) Middleware {
	allowAll := len(cfg.AllowOrigins) == 0
	allowed := make(map[string]string, len(cfg.AllowOrigins))
	for _, o := range cfg.AllowOrigins {
		if o == "*" {
			allowAll = true
			continue
		}
		allowed[strings.ToLower(o)] = o
	}
	if cfg.AllowCredentials {
		// Wildcard plus credentials is forbidden; echo the exact origin.
		allowAll = false
	}

	allowHeaders := strings.Join(cfg.AllowHeaders, ", ")
	maxAge := ""
	if cfg.MaxAge > 0 {
		maxAge = strconv.Itoa(cfg.MaxAge)
	}

	resolve := func(origin string) string {
		if allowAll {
			return "*"
		}
		return allowed[strings.ToLower(origin)]
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				if !allowAll {
					w.Header().Add("Vary", "Origin")
				}
				next.ServeHTTP(w, r)
				return
			}

			allowOrigin := resolve(origin)

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Add("Vary", "Origin")
				w.Header().Add("Vary", "Access-Control-Request-Method")
				w.Header().Add("Vary", "Access-Control-Request-Headers")

				if allowOrigin != "" {
					w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
					w.Header().Set("Access-Control-Allow-Methods", corsAllowMethods)
					switch {
					case allowHeaders != "":
						w.Header().Set("Access-Control-Allow-Headers", allowHeaders)
					default:
						if rh := r.Header.Get("Access-Control-Request-Headers"); rh != "" {
							w.Header().Set("Access-Control-Allow-Headers", rh)
						}
					}
					if cfg.AllowCredentials {
						w.Header().Set("Access-Control-Allow-Credentials", "true")
					}
					if maxAge != "" {
						w.Header().Set("Access-Control-Max-Age", maxAge)
					}
				}
				w.WriteHeader(http.StatusNoContent)
				return
			}

			if !allowAll {
				w.Header().Add("Vary", "Origin")
			}
			if allowOrigin != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
				if cfg.AllowCredentials {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
