package mailer

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fastygo/sijagad/internal/config"
)

func TestCompose_WritesHTMLMessage(t *testing.T) {
	m := New(config.SMTPConfig{Username: "robot@pln.co.id"}, nil)

	msg, err := m.Compose("admin.pln@gmail.com", "Peringatan", "<ul><li>x</li></ul>")
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = msg.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "admin.pln@gmail.com")
	assert.Contains(t, out, "Subject: Peringatan")
	assert.Contains(t, out, "text/html")
}

func TestSendHTML_RequiresCredentials(t *testing.T) {
	m := New(config.SMTPConfig{Host: "localhost", Port: 25}, nil)
	assert.Error(t, m.SendHTML(context.Background(), "a@b.c", "s", "b"))
}
