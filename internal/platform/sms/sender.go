package sms

import (
	"context"
	"errors"
	"fmt"

	"github.com/plivo/plivo-go"
)

// Message is one text message.
type Message struct {
	To   string
	Body string
}

// Sender abstracts SMS delivery for DI and testing.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type messageCreator interface {
	Create(params plivo.MessageCreateParams) (*plivo.MessageCreateResponseBody, error)
}

// PlivoSender delivers messages through the Plivo API.
type PlivoSender struct {
	messages messageCreator
	source   string
}

// NewPlivoSender creates a sender. All three settings are required.
func NewPlivoSender(authID, authToken, sourceNumber string) (*PlivoSender, error) {
	if authID == "" || authToken == "" || sourceNumber == "" {
		return nil, errors.New("plivo auth id, auth token and source number are required")
	}
	client, err := plivo.NewClient(authID, authToken, &plivo.ClientOptions{})
	if err != nil {
		return nil, fmt.Errorf("plivo client: %w", err)
	}
	return &PlivoSender{messages: client.Messages, source: sourceNumber}, nil
}

func (s *PlivoSender) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return errors.New("sms has no recipient")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.messages.Create(plivo.MessageCreateParams{
		Src:  s.source,
		Dst:  msg.To,
		Text: msg.Body,
	})
	if err != nil {
		return fmt.Errorf("plivo send: %w", err)
	}
	return nil
}
