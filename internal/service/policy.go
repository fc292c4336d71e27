package service

import (
	"strings"

	"phone-verify/internal/domain"
)

// PhonePolicy decides which numbers may request a code.
type PhonePolicy struct {
	blocked         map[domain.PhoneNumber]struct{}
	allowedPrefixes []string
}

// NewPhonePolicy builds a policy from a blocklist and an optional list of
// accepted prefixes. An empty prefix list accepts every number.
func NewPhonePolicy(blocked, allowedPrefixes []string) *PhonePolicy {
	p := &PhonePolicy{blocked: make(map[domain.PhoneNumber]struct{}, len(blocked))}
	for _, b := range blocked {
		p.blocked[domain.PhoneNumber(strings.TrimSpace(b))] = struct{}{}
	}
	for _, prefix := range allowedPrefixes {
		prefix = strings.TrimSpace(prefix)
		if prefix == "" {
			continue
		}
		if !strings.HasPrefix(prefix, "+") {
			prefix = "+" + prefix
		}
		p.allowedPrefixes = append(p.allowedPrefixes, prefix)
	}
	return p
}

// Check returns domain.ErrPhoneBlocked or domain.ErrPhoneNotAllowed when the
// number is refused.
func (p *PhonePolicy) Check(phone domain.PhoneNumber) error {
	if p == nil {
		return nil
	}
	if _, ok := p.blocked[phone]; ok {
		return domain.ErrPhoneBlocked
	}
	if len(p.allowedPrefixes) == 0 {
		return nil
	}
	for _, prefix := range p.allowedPrefixes {
		if strings.HasPrefix(phone.String(), prefix) {
			return nil
		}
	}
	return domain.ErrPhoneNotAllowed
}
