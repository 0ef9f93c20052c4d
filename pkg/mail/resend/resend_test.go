package resend_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BenRutlandWeb/atomic-framework/pkg/mail"
	"github.com/BenRutlandWeb/atomic-framework/pkg/mail/resend"
)

func TestRequest(t *testing.T) {
	t.Parallel()

	msg := &mail.Message{
		To:          []string{"ann@example.com"},
		Cc:          []string{"bob@example.com"},
		Subject:     "Hello",
		HTML:        "<p>Hi</p>",
		Text:        "Hi",
		Tags:        mail.Tags{"welcome": ""},
		Attachments: []mail.Attachment{{Filename: "a.txt", Content: []byte("a")}},
	}

	req := resend.Request(msg, "Team <team@example.com>")
	assert.Equal(t, "Team <team@example.com>", req.From)
	assert.Equal(t, msg.To, req.To)
	assert.Equal(t, msg.Cc, req.Cc)
	assert.Equal(t, "<p>Hi</p>", req.Html)
	require.Len(t, req.Tags, 1)
	assert.Equal(t, "true", req.Tags[0].Value)
	require.Len(t, req.Attachments, 1)
	assert.Equal(t, "a.txt", req.Attachments[0].Filename)

	msg.From = "ann@example.com"
	assert.Equal(t, "ann@example.com", resend.Request(msg, "team@example.com").From)
}
