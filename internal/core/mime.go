package core

import (
	"bytes"
	"io"

	"gopkg.in/gomail.v2"
)

// Compose renders the message as a gomail message. Empty recipient
// classes are omitted rather than written as empty headers.
func (m *Message) Compose() *gomail.Message {
	charset := m.Charset
	if charset == "" {
		charset = CharsetUTF8
	}

	gm := gomail.NewMessage(gomail.SetCharset(charset))
	gm.SetHeader("Subject", m.Subject)
	if !m.From.IsZero() {
		gm.SetAddressHeader("From", m.From.Email, m.From.Name)
	}

	setAddressList(gm, "To", m.To)
	setAddressList(gm, "Cc", m.Cc)
	setAddressList(gm, "Bcc", m.Bcc)

	contentType := m.ContentType
	if contentType == "" {
		contentType = ContentTypePlain
	}
	gm.SetBody(contentType, m.Body)

	return gm
}

// WriteTo writes the MIME encoded message to w. Bcc recipients are part of
// the envelope only and are not written.
func (m *Message) WriteTo(w io.Writer) (int64, error) {
	return m.Compose().WriteTo(w)
}

// Bytes returns the MIME encoded message.
func (m *Message) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	if _, err := m.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func setAddressList(gm *gomail.Message, field string, list Recipients) {
	if len(list) == 0 {
		return
	}
	values := make([]string, len(list))
	for i, a := range list {
		values[i] = gm.FormatAddress(a.Email, a.Name)
	}
	gm.SetHeader(field, values...)
}
