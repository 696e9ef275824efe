package preview

import (
	"net/netip"
	"net/url"
	"strings"
)

// Validator gates every URL the preview proxy dereferences. The allow-list
// is fixed at construction.
type Validator struct {
	allowed map[string]struct{}
}

func NewValidator(hostnames []string) *Validator {
	allowed := make(map[string]struct{}, len(hostnames))
	for _, h := range hostnames {
		allowed[strings.ToLower(h)] = struct{}{}
	}
	return &Validator{allowed: allowed}
}

var loopbackHosts = map[string]struct{}{
	"localhost": {},
	"127.0.0.1": {},
	"0.0.0.0":   {},
	"::1":       {},
}

var privateV4 = []netip.Prefix{
	netip.MustParsePrefix("10.0.0.0/8"),
	netip.MustParsePrefix("172.16.0.0/12"),
	netip.MustParsePrefix("192.168.0.0/16"),
	netip.MustParsePrefix("169.254.0.0/16"),
	netip.MustParsePrefix("0.0.0.0/8"),
}

// multicastFloor is 224.0.0.0; it and everything above is multicast or reserved.
var multicastFloor = netip.AddrFrom4([4]byte{224, 0, 0, 0})

// Validate applies the checks in order and returns the first failure.
func (v *Validator) Validate(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" || u.Opaque != "" {
		return nil, ErrInvalidFormat
	}
	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrProtocolNotAllowed
	}

	u.Host = strings.ToLower(u.Host)
	host := u.Hostname()
	if _, ok := v.allowed[host]; !ok {
		return nil, ErrDomainNotAllowed
	}
	if _, ok := loopbackHosts[host]; ok {
		return nil, ErrLocalhostBlocked
	}

	if strings.Contains(host, ":") {
		if strings.HasPrefix(host, "fe80:") || strings.HasPrefix(host, "fc") || strings.HasPrefix(host, "fd") {
			return nil, ErrPrivateIPv6Blocked
		}
		if addr, err := netip.ParseAddr(host); err == nil && addr.Is4In6() && blockedV4(addr.Unmap()) {
			return nil, ErrPrivateIPBlocked
		}
		return u, nil
	}
	if addr, err := netip.ParseAddr(host); err == nil && addr.Is4() && blockedV4(addr) {
		return nil, ErrPrivateIPBlocked
	}
	return u, nil
}

func blockedV4(addr netip.Addr) bool {
	if addr.Compare(multicastFloor) >= 0 {
		return true
	}
	for _, p := range privateV4 {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// CheckHop validates a redirect target for clients that follow redirects
// themselves, such as the route prober.
func (v *Validator) CheckHop(u *url.URL) error {
	_, err := v.Validate(u.String())
	return err
}
