package postmark_test

import (
	"context"
	"testing"

	pm "github.com/mrz1836/postmark"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattiq/email/internal/core"
	"github.com/lattiq/email/internal/providers/postmark"
)

type fakeClient struct {
	sent pm.Email
	resp pm.EmailResponse
}

func (f *fakeClient) SendEmail(_ context.Context, email pm.Email) (pm.EmailResponse, error) {
	f.sent = email
	return f.resp, nil
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	opts, err := postmark.ParseOptions(core.Settings{"server_token": "srv", "account_token": "acc"})
	require.NoError(t, err)
	assert.Equal(t, postmark.Options{ServerToken: "srv", AccountToken: "acc"}, opts)

	_, err = postmark.ParseOptions(core.Settings{"account_token": "acc"})
	assert.Error(t, err)
}

func TestProvider_Send(t *testing.T) {
	t.Parallel()

	client := &fakeClient{}
	p := postmark.NewWithClient(client)
	assert.Equal(t, "postmark", p.Name())

	msg := core.NewMessage("Hi", "body", core.ContentTypePlain, core.CharsetUTF8).
		SetFrom(core.Address{Email: "a@x.com"}).
		SetTo(core.Recipients{{Email: "b@x.com", Name: "Bob"}, {Email: "c@x.com"}}).
		SetCc(core.Recipients{{Email: "jane@x.com", Name: "Doe, Jane"}}).
		SetBcc(core.Recipients{{Email: "d@x.com"}})

	require.NoError(t, p.Send(context.Background(), msg))

	assert.Equal(t, "a@x.com", client.sent.From)
	assert.Equal(t, `"Bob" <b@x.com>, c@x.com`, client.sent.To)
	assert.Equal(t, `"Doe, Jane" <jane@x.com>`, client.sent.Cc)
	assert.Equal(t, "d@x.com", client.sent.Bcc)
	assert.Equal(t, "Hi", client.sent.Subject)
	assert.Equal(t, "body", client.sent.TextBody)
	assert.Empty(t, client.sent.HTMLBody)
}

func TestProvider_SendRejected(t *testing.T) {
	t.Parallel()

	client := &fakeClient{resp: pm.EmailResponse{ErrorCode: 300, Message: "Invalid email request"}}
	p := postmark.NewWithClient(client)

	msg := core.NewMessage("Hi", "<p>body</p>", core.ContentTypeHTML, core.CharsetUTF8).
		SetTo(core.Recipients{{Email: "b@x.com"}})

	err := p.Send(context.Background(), msg)
	var terr *core.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Contains(t, err.Error(), "Invalid email request")
	assert.Equal(t, "<p>body</p>", client.sent.HTMLBody)
}
