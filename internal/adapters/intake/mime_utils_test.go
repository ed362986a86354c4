package intake

import (
	"net/mail"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMessage(t *testing.T, raw string) *mail.Message {
	t.Helper()
	msg, err := mail.ReadMessage(strings.NewReader(raw))
	require.NoError(t, err)
	return msg
}

func TestExtractTextFromMessage_PlainBody(t *testing.T) {
	msg := parseMessage(t, "From: a@example.com\r\nSubject: hi\r\n\r\nplain body text\r\n")

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "plain body text")
}

func TestExtractTextFromMessage_MultipartPicksTextPlain(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/alternative; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/plain; charset=utf-8\r\n" +
		"\r\n" +
		"the plain part\r\n" +
		"--BOUND\r\n" +
		"Content-Type: text/html; charset=utf-8\r\n" +
		"\r\n" +
		"<p>the html part</p>\r\n" +
		"--BOUND--\r\n"
	msg := parseMessage(t, raw)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Contains(t, text, "the plain part")
	assert.NotContains(t, text, "html part")
}

func TestExtractTextFromMessage_MultipartWithoutText(t *testing.T) {
	raw := "From: a@example.com\r\n" +
		"Content-Type: multipart/mixed; boundary=BOUND\r\n" +
		"\r\n" +
		"--BOUND\r\n" +
		"Content-Type: application/pdf\r\n" +
		"\r\n" +
		"%PDF-1.4\r\n" +
		"--BOUND--\r\n"
	msg := parseMessage(t, raw)

	text, err := extractTextFromMessage(msg)
	require.NoError(t, err)
	assert.Equal(t, "[No text content found in multipart message]", text)
}
