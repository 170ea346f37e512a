package notify

import (
	"context"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"

	"github.com/feastline/feastline-backend/pkg/config"
	"github.com/feastline/feastline-backend/pkg/db/models"
	pkgerrors "github.com/feastline/feastline-backend/pkg/errors"
)

// ErrSubscriptionGone marks endpoints the push service reports as
// permanently dead; the caller deletes the subscription.
var ErrSubscriptionGone = pkgerrors.New(pkgerrors.CodeNotFound, "push subscription gone")

// PushSender delivers one payload to one subscription endpoint.
type PushSender interface {
	Send(ctx context.Context, sub models.PushSubscription, payload []byte) error
}

type webPushSender struct {
	cfg config.WebPushConfig
}

// NewWebPushSender builds a VAPID-signed web-push sender.
func NewWebPushSender(cfg config.WebPushConfig) (PushSender, error) {
	if cfg.VAPIDPublicKey == "" || cfg.VAPIDPrivateKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vapid key pair is required")
	}
	return &webPushSender{cfg: cfg}, nil
}

func (s *webPushSender) Send(ctx context.Context, sub models.PushSubscription, payload []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, payload, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.cfg.AdminEmail,
		VAPIDPublicKey:  s.cfg.VAPIDPublicKey,
		VAPIDPrivateKey: s.cfg.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "send web push")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return pkgerrors.New(pkgerrors.CodeDependency,
			fmt.Sprintf("push service returned %d: %s", resp.StatusCode, body))
	}
	return nil
}
