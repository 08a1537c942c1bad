package session

import (
	"errors"
	"strings"
	"time"

	"github.com/highway905/awi-gateway/internal/domain/model"
)

var (
	ErrAbsent         = errors.New("no session record")
	ErrMalformedToken = errors.New("malformed session token")
	ErrExpired        = errors.New("session expired")
)

// Validate decides whether a session record is live. The check is a
// liveness/shape check only: the token must carry exactly three
// dot-separated segments and the expiry date, when present, must be
// strictly in the future. No signature verification happens here;
// authorization is the upstream's job on every API call. A record with
// a well-formed token and no expiry is treated as valid.
//
// The same predicate runs in the client guards and in the edge
// middleware, which read different physical stores; keeping it in one
// place keeps the two decisions from drifting.
func Validate(rec *model.SessionRecord, now time.Time) error {
	if rec == nil || rec.Token == "" {
		return ErrAbsent
	}
	if len(strings.Split(rec.Token, ".")) != 3 {
		return ErrMalformedToken
	}
	if rec.ExpiryDate != nil && !rec.ExpiryDate.After(now) {
		return ErrExpired
	}
	return nil
}

func IsValid(rec *model.SessionRecord, now time.Time) bool {
	return Validate(rec, now) == nil
}
