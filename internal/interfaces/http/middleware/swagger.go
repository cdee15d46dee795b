package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/iwaqasmaqbool/gms-sub002/internal/interfaces/http/dto"
)

// SwaggerConfig holds configuration for the API documentation endpoint
type SwaggerConfig struct {
	Enabled     bool
	RequireAuth bool     // run the session middleware before serving the docs
	AllowedIPs  []string // single IPs or CIDR ranges, empty allows all
}

// SwaggerProtection guards /swagger. Disabled docs answer 404, clients
// outside the whitelist get 403 and, when RequireAuth is set, session runs
// before the docs are served.
func SwaggerProtection(cfg SwaggerConfig, session gin.HandlerFunc) gin.HandlerFunc {
	var allowedIPs []net.IP
	var allowedNets []*net.IPNet
	for _, entry := range cfg.AllowedIPs {
		entry = strings.TrimSpace(entry)
		if strings.Contains(entry, "/") {
			if _, network, err := net.ParseCIDR(entry); err == nil {
				allowedNets = append(allowedNets, network)
			}
			continue
		}
		if ip := net.ParseIP(entry); ip != nil {
			allowedIPs = append(allowedIPs, ip)
		}
	}

	return func(c *gin.Context) {
		if !cfg.Enabled {
			abort(c, dto.ErrCodeNotFound, "API documentation is not available")
			return
		}
		if len(cfg.AllowedIPs) > 0 && !isIPAllowed(net.ParseIP(c.ClientIP()), allowedIPs, allowedNets) {
			abort(c, dto.ErrCodeForbidden, "Access to API documentation is restricted")
			return
		}
		if cfg.RequireAuth && session != nil {
			session(c)
			if c.IsAborted() {
				return
			}
		}
		c.Next()
	}
}

func isIPAllowed(ip net.IP, allowedIPs []net.IP, allowedNets []*net.IPNet) bool {
	if ip == nil {
		return false
	}
	for _, allowed := range allowedIPs {
		if allowed.Equal(ip) {
			return true
		}
	}
	for _, network := range allowedNets {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
