package app

import (
	"fmt"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// TokenService issues and verifies signed match invite tokens. Hosts request
// one and hand it to their opponent (or a roster import job does, in bulk);
// presenting a valid token authorizes joining the named match.
type TokenService struct {
	secret string
	issuer string
	ttl    time.Duration
}

// InviteClaims is the verified content of an invite token.
type InviteClaims struct {
	MatchID string
	Issuer  string
	Subject string
	Role    string
}

const (
	// InviteRoleGuest seats the bearer as the second player.
	InviteRoleGuest = "guest"
	// InviteRoleSpectator is reserved; the arena currently rejects it at join.
	InviteRoleSpectator = "spectator"
)

// NewTokenService constructs a TokenService. ttl may be zero to use one hour.
func NewTokenService(secret, issuer string, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &TokenService{secret: secret, issuer: issuer, ttl: ttl}
}

// GenerateInvite signs an invite token for userID into matchID with the
// given role.
func (s *TokenService) GenerateInvite(userID, matchID, role string) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" {
		return "", fmt.Errorf("token service config is incomplete")
	}
	if userID == "" {
		return "", fmt.Errorf("user is required")
	}
	if matchID == "" {
		return "", fmt.Errorf("match id is required")
	}
	if role != InviteRoleGuest && role != InviteRoleSpectator {
		return "", fmt.Errorf("unsupported invite role: %s", role)
	}

	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": userID,
		"exp": time.Now().Add(s.ttl).Unix(),
		"mid": matchID,
		"rol": role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.secret))
}

// VerifyInvite parses and validates a token, returning its claims.
func (s *TokenService) VerifyInvite(tokenString string) (InviteClaims, error) {
	if s == nil || s.secret == "" {
		return InviteClaims{}, fmt.Errorf("token service config is incomplete")
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.secret), nil
	})
	if err != nil {
		return InviteClaims{}, fmt.Errorf("invalid invite token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return InviteClaims{}, fmt.Errorf("invalid invite token claims")
	}

	out := InviteClaims{}
	out.Issuer, _ = claims["iss"].(string)
	out.Subject, _ = claims["sub"].(string)
	out.MatchID, _ = claims["mid"].(string)
	out.Role, _ = claims["rol"].(string)
	if out.Issuer != s.issuer {
		return InviteClaims{}, fmt.Errorf("invite token issuer mismatch")
	}
	if out.MatchID == "" {
		return InviteClaims{}, fmt.Errorf("invite token missing match id")
	}
	return out, nil
}
