package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrCredentialExpired   = errors.New("credential expired")
	ErrCredentialMalformed = errors.New("credential malformed")
)

// CheckCredential はサーバーに送る前にアクセストークンの有効期限だけを確認します。
// 署名の検証はサーバー側の責務なので、ここでは検証せずにクレームを読みます。
func CheckCredential(token string, now time.Time) error {
	if token == "" {
		return nil
	}
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialMalformed, err)
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrCredentialMalformed, err)
	}
	if exp != nil && !now.Before(exp.Time) {
		return fmt.Errorf("%w at %s", ErrCredentialExpired, exp.Time.Format(time.RFC3339))
	}
	return nil
}
