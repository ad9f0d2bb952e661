package testutil

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	platformemail "github.com/drapcode/exchange-engine/internal/platform/email"
	"github.com/drapcode/exchange-engine/internal/platform/sms"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateECDSAKeyPairPEM(t *testing.T) {
	priv, pub := GenerateECDSAKeyPairPEM(t)

	_, err := jwt.ParseECPrivateKeyFromPEM([]byte(priv))
	require.NoError(t, err)
	_, err = jwt.ParseECPublicKeyFromPEM([]byte(pub))
	require.NoError(t, err)
}

func TestFakeSenders(t *testing.T) {
	mail := NewFakeEmailSender()
	assert.Nil(t, mail.LastSent())
	require.NoError(t, mail.Send(context.Background(), platformemail.Message{Subject: "s"}))
	assert.Equal(t, "s", mail.LastSent().Subject)

	text := NewFakeSMSSender()
	assert.Nil(t, text.LastSent())
	require.NoError(t, text.Send(context.Background(), sms.Message{Body: "b"}))
	assert.Equal(t, "b", text.LastSent().Body)
}
