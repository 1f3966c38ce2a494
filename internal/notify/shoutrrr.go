package notify

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"slices"
	"strings"
	"time"

	shoutrrr "github.com/nicholas-fedor/shoutrrr"
	router "github.com/nicholas-fedor/shoutrrr/pkg/router"
	stypes "github.com/nicholas-fedor/shoutrrr/pkg/types"
)

const (
	backendShoutrrr = "shoutrrr"

	// RecipientPlaceholder is replaced by the recipient's digits in Shoutrrr
	// service URLs, e.g. "generic://gw.example.com/send/{recipient}".
	RecipientPlaceholder = "{recipient}"

	// validationDigits stands in for the recipient when URLs are checked at
	// construction time.
	validationDigits = "10000000000"
)

// ShoutrrrNotifier implements Notifier through any Shoutrrr service URL.
// URLs without a recipient placeholder share one sender built up front;
// templated URLs get a sender per message.
type ShoutrrrNotifier struct {
	urls      []string
	templated bool
	timeout   time.Duration
	sender    *router.ServiceRouter
}

// ShoutrrrOption configures a ShoutrrrNotifier.
type ShoutrrrOption func(*ShoutrrrNotifier)

// WithShoutrrrTimeout bounds each delivery.
func WithShoutrrrTimeout(d time.Duration) ShoutrrrOption {
	return func(s *ShoutrrrNotifier) {
		s.timeout = d
	}
}

// NewShoutrrrNotifier validates urls and returns a notifier for them.
func NewShoutrrrNotifier(urls []string, opts ...ShoutrrrOption) (*ShoutrrrNotifier, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one shoutrrr URL is required")
	}

	s := &ShoutrrrNotifier{
		urls: slices.Clone(urls),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.templated = slices.ContainsFunc(s.urls, func(u string) bool {
		return strings.Contains(u, RecipientPlaceholder)
	})

	sender, err := s.newSender(validationDigits)
	if err != nil {
		return nil, err
	}
	if !s.templated {
		s.sender = sender
	}
	return s, nil
}

func (s *ShoutrrrNotifier) newSender(digits string) (*router.ServiceRouter, error) {
	urls := s.urls
	if s.templated {
		urls = make([]string, len(s.urls))
		for i, u := range s.urls {
			urls[i] = strings.ReplaceAll(u, RecipientPlaceholder, digits)
		}
	}

	sender, err := shoutrrr.CreateSender(urls...)
	if err != nil {
		return nil, fmt.Errorf("creating shoutrrr sender: %w", err)
	}
	if s.timeout > 0 {
		sender.Timeout = s.timeout
	}
	sender.SetLogger(log.New(io.Discard, "", 0))
	return sender, nil
}

// Send delivers text to every configured service. The first service error
// is returned.
func (s *ShoutrrrNotifier) Send(ctx context.Context, recipient, text string) error {
	defer observe(backendShoutrrr, time.Now())

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sending shoutrrr message: %w", err)
	}

	sender := s.sender
	if s.templated {
		var err error
		sender, err = s.newSender(RecipientDigits(recipient))
		if err != nil {
			return err
		}
	}

	params := stypes.Params{}
	for _, err := range sender.Send(text, &params) {
		if err != nil {
			return fmt.Errorf("sending shoutrrr message: %w", err)
		}
	}
	return nil
}
