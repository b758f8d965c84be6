package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlainText_Extract(t *testing.T) {
	e := NewPlainText()

	text, err := e.Extract(context.Background(), []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestPlainText_DropsInvalidUTF8(t *testing.T) {
	e := NewPlainText()

	text, err := e.Extract(context.Background(), []byte{'o', 'k', 0xFF, '!'})
	require.NoError(t, err)
	assert.Equal(t, "ok!", text)
}

func TestPlainText_StripsBOM(t *testing.T) {
	e := NewPlainText()

	text, err := e.Extract(context.Background(), []byte("\ufeffhello"))
	require.NoError(t, err)
	assert.Equal(t, "hello", text)
}

func TestPDF_RejectsGarbage(t *testing.T) {
	e := NewPDF()

	_, err := e.Extract(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}

func TestSupportedMIMETypes(t *testing.T) {
	assert.Contains(t, NewPlainText().SupportedMIMETypes(), "text/plain")
	assert.Equal(t, []string{"application/pdf"}, NewPDF().SupportedMIMETypes())
}
