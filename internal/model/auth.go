package model

import "github.com/golang-jwt/jwt/v5"

// SessionClaims are JWT claims binding a browser to one applicant session
type SessionClaims struct {
	SessionID string `json:"sessionId"`
	jwt.RegisteredClaims
}

// StartSessionResponse is returned when a new application session is started
type StartSessionResponse struct {
	Token string    `json:"token"`
	State *FlowView `json:"state"`
}
