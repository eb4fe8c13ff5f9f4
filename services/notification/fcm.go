package notification

import (
	"context"
	"fmt"

	"chefbook/models"

	"firebase.google.com/go/v4/messaging"
)

// FCMSender delivers notifications as FCM pushes to the operator's device.
type FCMSender struct {
	Client        *messaging.Client
	OperatorToken string
}

func NewFCMSender(client *messaging.Client, operatorToken string) (*FCMSender, error) {
	if client == nil {
		return nil, fmt.Errorf("fcm sender initialization error: messaging client is nil")
	}
	if operatorToken == "" {
		return nil, fmt.Errorf("fcm sender initialization error: operator token is empty")
	}
	return &FCMSender{Client: client, OperatorToken: operatorToken}, nil
}

func (s *FCMSender) Send(ctx context.Context, n models.Notification) error {
	msg := &messaging.Message{
		Token: s.OperatorToken,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: n.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		},
	}

	if _, err := s.Client.Send(ctx, msg); err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	return nil
}
