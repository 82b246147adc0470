// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package security

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gopkg.in/square/go-jose.v2"
	"gopkg.in/square/go-jose.v2/jwt"
)

const SessionCookieName = "autonet-session"
const sessionTokenIssuer = "autonet"

// SessionTokens signs and verifies the session cookie value. The token carries nothing but the session id.
// A session is sliding: a token past half of its lifetime is due for renewal with the same session id.
type SessionTokens interface {
	Issue(sessionId string) (string, error)
	Parse(raw string) (*SessionClaims, error)
	NewSession() (string, string, error)
	RenewDue(expiry time.Time) bool
}

type SessionClaims struct {
	SessionId string
	Expiry    time.Time
}

func NewSessionTokens(secret []byte, ttl time.Duration) (SessionTokens, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret is too short, at least 32 bytes are required")
	}
	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: jose.HS256, Key: secret}, (&jose.SignerOptions{}).WithType("JWT"))
	if err != nil {
		return nil, fmt.Errorf("failed to create session token signer: %w", err)
	}
	return &sessionTokensImpl{signer: signer, secret: secret, ttl: ttl, now: time.Now}, nil
}

type sessionTokensImpl struct {
	signer jose.Signer
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func (s sessionTokensImpl) Issue(sessionId string) (string, error) {
	issuedAt := s.now()
	claims := jwt.Claims{
		Issuer:   sessionTokenIssuer,
		Subject:  sessionId,
		IssuedAt: jwt.NewNumericDate(issuedAt),
		Expiry:   jwt.NewNumericDate(issuedAt.Add(s.ttl)),
	}
	return jwt.Signed(s.signer).Claims(claims).CompactSerialize()
}

func (s sessionTokensImpl) Parse(raw string) (*SessionClaims, error) {
	tok, err := jwt.ParseSigned(raw)
	if err != nil {
		return nil, fmt.Errorf("token parse error: %w", err)
	}
	claims := jwt.Claims{}
	if err := tok.Claims(s.secret, &claims); err != nil {
		return nil, fmt.Errorf("token signature error: %w", err)
	}
	if claims.Expiry == nil {
		return nil, fmt.Errorf("token has no expiry")
	}
	err = claims.ValidateWithLeeway(jwt.Expected{Issuer: sessionTokenIssuer, Time: s.now()}, 0)
	if err != nil {
		return nil, fmt.Errorf("token is not valid: %w", err)
	}
	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("token subject is not a session id: %w", err)
	}
	return &SessionClaims{SessionId: claims.Subject, Expiry: claims.Expiry.Time()}, nil
}

func (s sessionTokensImpl) RenewDue(expiry time.Time) bool {
	return expiry.Sub(s.now()) < s.ttl/2
}

// NewSession returns a fresh session id and its signed token.
func (s sessionTokensImpl) NewSession() (string, string, error) {
	sessionId := uuid.New().String()
	token, err := s.Issue(sessionId)
	if err != nil {
		return "", "", err
	}
	return sessionId, token, nil
}
