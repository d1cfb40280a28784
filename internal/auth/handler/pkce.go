package handler

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"

	"github.com/gin-gonic/gin"
)

const pkceCookieName = "__oauth_pkce"

func generatePKCE(c *gin.Context) (verifier string, challenge string) {
	b := make([]byte, 32)
	_, _ = rand.Read(b)

	verifier = base64.RawURLEncoding.EncodeToString(b)

	hash := sha256.Sum256([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(hash[:])

	setFlowCookie(c, pkceCookieName, verifier)
	return verifier, challenge
}
