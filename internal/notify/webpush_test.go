package notify

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db/models"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// newPushFixture builds a sender with a fresh VAPID pair and a subscription
// whose keys are a real P-256 point so payload encryption succeeds.
func newPushFixture(t *testing.T, endpoint string) (PushSender, models.PushSubscription) {
	t.Helper()

	priv, pub, err := webpush.GenerateVAPIDKeys()
	require.NoError(t, err)

	sender, err := NewWebPushSender(config.WebPushConfig{
		VAPIDPublicKey:  pub,
		VAPIDPrivateKey: priv,
		AdminEmail:      "mailto:ops@feastline.dev",
	})
	require.NoError(t, err)

	clientKey, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)
	auth := make([]byte, 16)
	_, err = rand.Read(auth)
	require.NoError(t, err)

	sub := models.PushSubscription{
		Endpoint: endpoint,
		P256dh:   base64.RawURLEncoding.EncodeToString(clientKey.PublicKey().Bytes()),
		Auth:     base64.RawURLEncoding.EncodeToString(auth),
	}
	return sender, sub
}

func TestWebPushSenderRequiresKeys(t *testing.T) {
	_, err := NewWebPushSender(config.WebPushConfig{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestWebPushSenderDelivers(t *testing.T) {
	var received *http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received = r.Clone(context.Background())
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	sender, sub := newPushFixture(t, srv.URL)
	require.NoError(t, sender.Send(context.Background(), sub, []byte(`{"type":"test"}`)))

	require.NotNil(t, received)
	assert.Contains(t, received.Header.Get("Authorization"), "vapid")
	assert.Equal(t, "aes128gcm", received.Header.Get("Content-Encoding"))
}

func TestWebPushSenderGoneEndpoint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusGone)
	}))
	defer srv.Close()

	sender, sub := newPushFixture(t, srv.URL)
	err := sender.Send(context.Background(), sub, []byte(`{}`))
	assert.ErrorIs(t, err, ErrSubscriptionGone)
}

func TestWebPushSenderRejectedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer srv.Close()

	sender, sub := newPushFixture(t, srv.URL)
	err := sender.Send(context.Background(), sub, []byte(`{}`))
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
