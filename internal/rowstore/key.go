package rowstore

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrKeyExpired is returned by InspectKey for a key whose exp claim has passed.
var ErrKeyExpired = errors.New("rowstore: access key expired")

// KeyInfo is what the hosted service encodes in its static access keys.
type KeyInfo struct {
	Issuer    string
	Role      string    // "anon" or "service_role"
	Ref       string    // project reference, the first label of the project host
	ExpiresAt time.Time // zero when the key carries no exp claim
}

// InspectKey decodes the claims of an access key without checking its
// signature; the remote verifies that on every request.
func InspectKey(key string, now time.Time) (KeyInfo, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(key, claims); err != nil {
		return KeyInfo{}, fmt.Errorf("rowstore: decode access key: %w", err)
	}
	var info KeyInfo
	info.Issuer, _ = claims.GetIssuer()
	info.Role, _ = claims["role"].(string)
	info.Ref, _ = claims["ref"].(string)
	exp, err := claims.GetExpirationTime()
	if err != nil {
		return KeyInfo{}, fmt.Errorf("rowstore: access key exp claim: %w", err)
	}
	if exp != nil {
		info.ExpiresAt = exp.Time
		if !now.Before(exp.Time) {
			return info, ErrKeyExpired
		}
	}
	return info, nil
}

// MatchesURL reports whether the key was issued for the project at baseURL.
// Keys without a ref claim match anything.
func (k KeyInfo) MatchesURL(baseURL string) bool {
	if k.Ref == "" {
		return true
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	return host == k.Ref || strings.HasPrefix(host, k.Ref+".")
}
