package core

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
)

// CharsetUTF8 is the charset every composed message is encoded with.
const CharsetUTF8 = "UTF-8"

// Content types selected by the html flag of a message.
const (
	ContentTypePlain = "text/plain"
	ContentTypeHTML  = "text/html"
)

// ErrDependency indicates that something a transport needs to operate
// (a local binary, an SDK configuration) could not be loaded.
var ErrDependency = errors.New("mail dependency unavailable")

// Transport delivers a composed message over a protocol or provider API.
// A transport is owned by exactly one mailer.
type Transport interface {
	// Send delivers msg. It blocks until the underlying client completes.
	Send(ctx context.Context, msg *Message) error

	// Name returns the driver name for identification and tracing.
	Name() string
}

// Settings holds the free-form options of a configured driver, as read
// from a configuration file. Values follow "empty" semantics: a missing
// key, nil, "", 0 and false are all treated as unset.
type Settings map[string]any

// String retrieves a value rendered as a string, or "" if unset.
func (s Settings) String(key string) string {
	v, ok := s[key]
	if !ok || v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str)
	}
	return fmt.Sprint(v)
}

// Set sets a configuration value.
func (s Settings) Set(key string, value any) {
	s[key] = value
}

// Empty reports whether the value under key is unset.
func (s Settings) Empty(key string) bool {
	switch s.String(key) {
	case "", "0", "false":
		return true
	default:
		return false
	}
}

// Int returns the integer under key, or def if the value is empty.
func (s Settings) Int(key string, def int) (int, error) {
	if s.Empty(key) {
		return def, nil
	}
	v, err := strconv.Atoi(s.String(key))
	if err != nil {
		return 0, NewValidationErrorWithValue(key, "must be an integer", s[key])
	}
	return v, nil
}

// Strings returns a list value. A scalar string is split on whitespace.
func (s Settings) Strings(key string) []string {
	switch v := s[key].(type) {
	case nil:
		return nil
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, fmt.Sprint(item))
		}
		return out
	default:
		return strings.Fields(s.String(key))
	}
}

// Address represents an email address with optional display name.
type Address struct {
	Email string `json:"email" yaml:"email"` // Email address (required)
	Name  string `json:"name" yaml:"name"`   // Display name (optional)
}

// String returns the address formatted for a header: "email@domain.com"
// without a display name, otherwise the RFC 5322 form with the name quoted
// or encoded as needed.
func (a Address) String() string {
	if a.Name == "" {
		return a.Email
	}
	return (&mail.Address{Name: a.Name, Address: a.Email}).String()
}

// IsZero reports whether no address has been set.
func (a Address) IsZero() bool {
	return a.Email == ""
}

// Valid checks if the address has a valid email format.
func (a Address) Valid() bool {
	if a.Email == "" {
		return false
	}
	_, err := mail.ParseAddress(a.String())
	return err == nil
}

// Recipients is an ordered list of recipient addresses.
//
// Entries without a display name are appended as they come. Entries with a
// display name are keyed by email: adding the same email with a new name
// replaces the name and keeps the original position. A bare entry and a
// named entry for the same email are distinct slots.
type Recipients []Address

// Add records a recipient following the rules above.
func (r *Recipients) Add(email, name string) {
	if name != "" {
		for i := range *r {
			if (*r)[i].Name != "" && (*r)[i].Email == email {
				(*r)[i].Name = name
				return
			}
		}
	}
	*r = append(*r, Address{Email: email, Name: name})
}

// Len returns the number of slots.
func (r Recipients) Len() int {
	return len(r)
}

// Emails returns the addresses in order, without display names.
func (r Recipients) Emails() []string {
	out := make([]string, len(r))
	for i, a := range r {
		out[i] = a.Email
	}
	return out
}

// Clone returns an independent copy of the list.
func (r Recipients) Clone() Recipients {
	if r == nil {
		return nil
	}
	out := make(Recipients, len(r))
	copy(out, r)
	return out
}

// Message is a fully composed email handed to a Transport.
// It is built fresh for every send.
type Message struct {
	Subject     string
	Body        string
	ContentType string
	Charset     string
	From        Address
	To          Recipients
	Cc          Recipients
	Bcc         Recipients
}

// NewMessage creates a message with the given subject, body, content type
// and charset and no sender or recipients.
func NewMessage(subject, body, contentType, charset string) *Message {
	return &Message{
		Subject:     subject,
		Body:        body,
		ContentType: contentType,
		Charset:     charset,
	}
}

// SetFrom sets the sender.
func (m *Message) SetFrom(from Address) *Message {
	m.From = from
	return m
}

// SetTo sets the primary recipients. The list is copied.
func (m *Message) SetTo(to Recipients) *Message {
	m.To = to.Clone()
	return m
}

// SetCc sets the carbon copy recipients. The list is copied.
func (m *Message) SetCc(cc Recipients) *Message {
	m.Cc = cc.Clone()
	return m
}

// SetBcc sets the blind carbon copy recipients. The list is copied.
func (m *Message) SetBcc(bcc Recipients) *Message {
	m.Bcc = bcc.Clone()
	return m
}

// IsHTML reports whether the body is HTML.
func (m *Message) IsHTML() bool {
	return m.ContentType == ContentTypeHTML
}

// TotalRecipients returns the total number of recipient slots (To + Cc + Bcc).
func (m *Message) TotalRecipients() int {
	return len(m.To) + len(m.Cc) + len(m.Bcc)
}

// Envelope returns the SMTP envelope: the sender address and every
// distinct recipient address across To, Cc and Bcc, in order.
func (m *Message) Envelope() (string, []string) {
	seen := make(map[string]struct{}, m.TotalRecipients())
	rcpts := make([]string, 0, m.TotalRecipients())
	for _, list := range []Recipients{m.To, m.Cc, m.Bcc} {
		for _, a := range list {
			key := strings.ToLower(a.Email)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			rcpts = append(rcpts, a.Email)
		}
	}
	return m.From.Email, rcpts
}

// Validate checks the sender, when set, and every recipient address.
func (m *Message) Validate() error {
	if !m.From.IsZero() && !m.From.Valid() {
		return NewValidationErrorWithValue("from", "invalid email address", m.From.Email)
	}
	for _, class := range []struct {
		field string
		list  Recipients
	}{{"to", m.To}, {"cc", m.Cc}, {"bcc", m.Bcc}} {
		for _, a := range class.list {
			if !a.Valid() {
				return NewValidationErrorWithValue(class.field, "invalid email address", a.Email)
			}
		}
	}
	return nil
}
