package pdf_test

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/fwojciec/harvest"
	"github.com/fwojciec/harvest/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// onePagePDF builds a minimal single-page PDF showing text in Helvetica.
func onePagePDF(text string) []byte {
	content := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", text)
	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Contents 4 0 R /Resources << /Font << /F1 5 0 R >> >> >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func TestExtractor_ExtractText(t *testing.T) {
	t.Parallel()

	t.Run("extracts text from a simple document", func(t *testing.T) {
		t.Parallel()

		result, err := pdf.NewExtractor().ExtractText(onePagePDF("Quarterly report"))

		require.NoError(t, err)
		assert.Contains(t, result.Text, "Quarterly report")
		assert.Equal(t, 1, result.Pages)
	})

	t.Run("rejects data that is not a PDF", func(t *testing.T) {
		t.Parallel()

		_, err := pdf.NewExtractor().ExtractText([]byte("<html><body>not a pdf</body></html>"))

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects truncated documents", func(t *testing.T) {
		t.Parallel()

		data := onePagePDF("Quarterly report")

		_, err := pdf.NewExtractor().ExtractText(data[:len(data)/2])

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := pdf.NewExtractor().ExtractText(nil)

		require.Error(t, err)
		assert.Equal(t, harvest.EINVALID, harvest.ErrorCode(err))
	})
}
