// file: internals/features/attendance/tokens/service/token_issuer.go
package service

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	sessModel "kampusku_backend/internals/features/attendance/sessions/model"
	"kampusku_backend/internals/helpers/errs"
)

// CaptureClaims: isi token QR. Verifikasi signature cukup offline;
// status sesi tetap dicek live oleh caller sebelum write.
type CaptureClaims struct {
	SessionID string `json:"sid"`
	Nonce     string `json:"nonce"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	secret   []byte
	ttl      time.Duration
	denylist TokenDenylist
	now      func() time.Time
}

func NewTokenIssuer(secret []byte, ttl time.Duration, denylist TokenDenylist) *TokenIssuer {
	return &TokenIssuer{
		secret:   secret,
		ttl:      ttl,
		denylist: denylist,
		now:      time.Now,
	}
}

// WithClock: override jam, dipakai test kadaluarsa.
func (i *TokenIssuer) WithClock(now func() time.Time) *TokenIssuer {
	i.now = now
	return i
}

// Issue: hanya untuk sesi Open. Hasilnya opaque signed string (HMAC).
func (i *TokenIssuer) Issue(ctx context.Context, sess *sessModel.AttendanceSessionModel) (string, time.Time, error) {
	if !sess.IsOpen() {
		return "", time.Time{}, errs.State("token hanya bisa diterbitkan untuk sesi yang open")
	}

	now := i.now()
	expiry := now.Add(i.ttl)
	claims := CaptureClaims{
		SessionID: sess.AttendanceSessionID.String(),
		Nonce:     uuid.NewString(),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiry),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiry, nil
}

// Validate: return session_id, atau error:
// - expired        → errs.Validation ("token kadaluarsa")
// - signature salah → errs.Validation ("signature token tidak valid")
// - revoked (jti/sesi di-denylist) → errs.State
// SessionNotOpen TIDAK dicek di sini; itu tanggung jawab caller (live status check).
func (i *TokenIssuer) Validate(ctx context.Context, tokenStr string) (uuid.UUID, error) {
	var claims CaptureClaims
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	_, err := parser.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (any, error) {
		return i.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, errs.Wrap(errs.KindValidation, "token kadaluarsa", err)
		}
		return uuid.Nil, errs.Wrap(errs.KindValidation, "signature token tidak valid", err)
	}

	sessionID, err := uuid.Parse(claims.SessionID)
	if err != nil {
		return uuid.Nil, errs.Validation("session_id di token tidak valid")
	}

	if i.denylist != nil {
		for _, key := range []string{"jti:" + claims.ID, "session:" + claims.SessionID} {
			revoked, derr := i.denylist.IsRevoked(ctx, key)
			if derr != nil {
				return uuid.Nil, derr
			}
			if revoked {
				return uuid.Nil, errs.State("token sudah direvoke")
			}
		}
	}

	return sessionID, nil
}

// RevokeSession: denylist semua token sesi (dipanggil saat Cancel / rotasi dini).
// TTL = umur token supaya entry otomatis kadaluarsa bersama token terakhirnya.
func (i *TokenIssuer) RevokeSession(ctx context.Context, sessionID uuid.UUID) error {
	if i.denylist == nil {
		return nil
	}
	return i.denylist.Revoke(ctx, "session:"+sessionID.String(), i.ttl)
}
