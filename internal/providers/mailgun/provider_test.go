package mailgun_test

import (
	"context"
	"errors"
	"testing"

	mg "github.com/mailgun/mailgun-go/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattiq/email/internal/core"
	"github.com/lattiq/email/internal/providers/mailgun"
)

type fakeClient struct {
	calls int
	err   error
}

func (f *fakeClient) Send(_ context.Context, _ *mg.Message) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return "Queued. Thank you.", "<20240101.1@example.com>", nil
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	opts, err := mailgun.ParseOptions(core.Settings{"api_key": "key", "domain": "mg.example.com", "base_url": "https://api.eu.mailgun.net"})
	require.NoError(t, err)
	assert.Equal(t, mailgun.Options{APIKey: "key", Domain: "mg.example.com", BaseURL: "https://api.eu.mailgun.net"}, opts)

	var verr *core.ValidationError
	_, err = mailgun.ParseOptions(core.Settings{"domain": "mg.example.com"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "api_key", verr.Field)

	_, err = mailgun.ParseOptions(core.Settings{"api_key": "key"})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "domain", verr.Field)
}

func TestNew(t *testing.T) {
	t.Parallel()

	p, err := mailgun.New(mailgun.Options{APIKey: "key", Domain: "mg.example.com", BaseURL: "https://api.eu.mailgun.net"})
	require.NoError(t, err)
	assert.Equal(t, "mailgun", p.Name())

	_, err = mailgun.New(mailgun.Options{})
	assert.Error(t, err)
}

func TestProvider_Send(t *testing.T) {
	t.Parallel()

	msg := core.NewMessage("Hi", "<p>body</p>", core.ContentTypeHTML, core.CharsetUTF8).
		SetFrom(core.Address{Email: "a@x.com"}).
		SetTo(core.Recipients{{Email: "b@x.com", Name: "Bob"}}).
		SetCc(core.Recipients{{Email: "c@x.com"}})

	client := &fakeClient{}
	require.NoError(t, mailgun.NewWithClient(client).Send(context.Background(), msg))
	assert.Equal(t, 1, client.calls)

	cause := errors.New("401 unauthorized")
	err := mailgun.NewWithClient(&fakeClient{err: cause}).Send(context.Background(), msg)
	var terr *core.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "send", terr.Op)
	assert.ErrorIs(t, err, cause)
}
