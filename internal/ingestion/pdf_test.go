package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText_RejectsNonPDF(t *testing.T) {
	tests := []string{
		"text/plain",
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"",
	}
	for _, ct := range tests {
		t.Run(ct, func(t *testing.T) {
			_, err := ExtractText([]byte("hello"), ct)
			assert.ErrorIs(t, err, ErrUnsupportedType)
		})
	}
}

func TestExtractText_EmptyData(t *testing.T) {
	_, err := ExtractText(nil, ContentTypePDF)
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

func TestExtractText_MalformedPDF(t *testing.T) {
	_, err := ExtractText([]byte("definitely not a pdf"), "application/pdf; charset=binary")
	require.Error(t, err)

	var extractErr *ExtractError
	require.ErrorAs(t, err, &extractErr)
	assert.Equal(t, "failed to read pdf", extractErr.Message)
	assert.NotNil(t, extractErr.Cause)
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "application/pdf", mediaType("application/pdf"))
	assert.Equal(t, "application/pdf", mediaType("Application/PDF; name=cv.pdf"))
	assert.Equal(t, "", mediaType(""))
}
