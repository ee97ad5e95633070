package sendgrid_test

import (
	"context"
	"testing"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lattiq/email/internal/core"
	"github.com/lattiq/email/internal/providers/sendgrid"
)

type fakeClient struct {
	sent     *mail.SGMailV3
	response *rest.Response
}

func (f *fakeClient) Send(email *mail.SGMailV3) (*rest.Response, error) {
	f.sent = email
	return f.response, nil
}

func TestParseOptions(t *testing.T) {
	t.Parallel()

	opts, err := sendgrid.ParseOptions(core.Settings{"api_key": "SG.key"})
	require.NoError(t, err)
	assert.Equal(t, "SG.key", opts.APIKey)

	_, err = sendgrid.ParseOptions(core.Settings{})
	assert.Error(t, err)
}

func TestProvider_Send(t *testing.T) {
	t.Parallel()

	client := &fakeClient{response: &rest.Response{StatusCode: 202}}
	p := sendgrid.NewWithClient(client)

	msg := core.NewMessage("Hi", "<p>body</p>", core.ContentTypeHTML, core.CharsetUTF8).
		SetFrom(core.Address{Email: "a@x.com", Name: "Alice"}).
		SetTo(core.Recipients{{Email: "b@x.com", Name: "Bob"}, {Email: "c@x.com"}}).
		SetBcc(core.Recipients{{Email: "d@x.com"}})

	require.NoError(t, p.Send(context.Background(), msg))

	sent := client.sent
	require.NotNil(t, sent)
	assert.Equal(t, "a@x.com", sent.From.Address)
	assert.Equal(t, "Alice", sent.From.Name)
	assert.Equal(t, "Hi", sent.Subject)

	require.Len(t, sent.Personalizations, 1)
	pers := sent.Personalizations[0]
	require.Len(t, pers.To, 2)
	assert.Equal(t, "Bob", pers.To[0].Name)
	assert.Equal(t, "c@x.com", pers.To[1].Address)
	assert.Empty(t, pers.CC)
	require.Len(t, pers.BCC, 1)
	assert.Equal(t, "d@x.com", pers.BCC[0].Address)

	require.Len(t, sent.Content, 1)
	assert.Equal(t, "text/html", sent.Content[0].Type)
	assert.Equal(t, "<p>body</p>", sent.Content[0].Value)
}

func TestProvider_SendAPIError(t *testing.T) {
	t.Parallel()

	msg := core.NewMessage("Hi", "body", core.ContentTypePlain, core.CharsetUTF8).
		SetTo(core.Recipients{{Email: "b@x.com"}})

	p := sendgrid.NewWithClient(&fakeClient{response: &rest.Response{StatusCode: 400, Body: `{"errors":[]}`}})
	err := p.Send(context.Background(), msg)
	var terr *core.TransportError
	require.ErrorAs(t, err, &terr)
	assert.False(t, terr.Temporary())

	p = sendgrid.NewWithClient(&fakeClient{response: &rest.Response{StatusCode: 503}})
	assert.True(t, core.IsTemporary(p.Send(context.Background(), msg)))
}
