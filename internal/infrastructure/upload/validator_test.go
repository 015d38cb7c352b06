package upload

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/kirillkom/summarizer/internal/core/domain"
)

func wavBytes() []byte {
	var buf bytes.Buffer
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+8))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16000))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(32000))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(8))
	buf.Write(make([]byte, 8))
	return buf.Bytes()
}

func docxBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body><w:p><w:r><w:t>hi</w:t></w:r></w:p></w:body></w:document>`)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func blob(name string, content []byte) *domain.UploadedBlob {
	return &domain.UploadedBlob{
		Filename: name,
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	}
}

func TestValidateAcceptsMatchingSignatures(t *testing.T) {
	v := NewValidator(domain.MaxUploadBytes)
	cases := map[string][]byte{
		"notes.txt":   []byte("plain words for a summary"),
		"report.PDF":  []byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n<<>>\nendobj\n"),
		"letter.docx": docxBytes(t),
		"voice.wav":   wavBytes(),
	}
	for name, content := range cases {
		ext, err := v.Validate(blob(name, content))
		if err != nil {
			t.Fatalf("%s: Validate() error = %v", name, err)
		}
		if ext != Extension(name) {
			t.Fatalf("%s: unexpected extension %q", name, ext)
		}
	}
}

func TestValidateRejectsSpoofedSignatures(t *testing.T) {
	v := NewValidator(domain.MaxUploadBytes)
	cases := map[string][]byte{
		"fake.txt":  []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"),
		"fake.pdf":  []byte("just some text pretending to be a pdf"),
		"fake.docx": []byte("%PDF-1.4\n1 0 obj\n<<>>\nendobj\n"),
		"fake.wav":  []byte("not audio at all"),
	}
	for name, content := range cases {
		_, err := v.Validate(blob(name, content))
		if !domain.IsKind(err, domain.ErrMimeMismatch) {
			t.Fatalf("%s: expected mime mismatch, got %v", name, err)
		}
		if !strings.Contains(err.Error(), AllowedMIMETypes[Extension(name)]) {
			t.Fatalf("%s: expected message naming expected type, got %q", name, err.Error())
		}
	}
}

func TestValidateSizeBoundary(t *testing.T) {
	v := NewValidator(domain.MaxUploadBytes)
	content := []byte("hello")

	over := blob("a.txt", content)
	over.Size = domain.MaxUploadBytes + 1
	_, err := v.Validate(over)
	if !domain.IsKind(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected file too large, got %v", err)
	}
	if !strings.Contains(err.Error(), "50MB") {
		t.Fatalf("expected ceiling in message, got %q", err.Error())
	}

	for _, size := range []int64{domain.MaxUploadBytes - 1, domain.MaxUploadBytes} {
		under := blob("a.txt", content)
		under.Size = size
		if _, err := v.Validate(under); err != nil {
			t.Fatalf("size %d: expected acceptance, got %v", size, err)
		}
	}
}

func TestValidateSizeCheckedBeforeExtension(t *testing.T) {
	v := NewValidator(10)
	_, err := v.Validate(blob("program.exe", bytes.Repeat([]byte("a"), 11)))
	if !domain.IsKind(err, domain.ErrFileTooLarge) {
		t.Fatalf("expected size failure first, got %v", err)
	}
}

func TestValidateRejectsUnsupportedExtension(t *testing.T) {
	v := NewValidator(domain.MaxUploadBytes)
	for _, name := range []string{"program.exe", "README", "archive.tar.gz", "notes.txt.md"} {
		_, err := v.Validate(blob(name, []byte("text")))
		if !domain.IsKind(err, domain.ErrUnsupportedExtension) {
			t.Fatalf("%s: expected unsupported extension, got %v", name, err)
		}
	}
}

func TestValidateLeavesContentRewound(t *testing.T) {
	v := NewValidator(domain.MaxUploadBytes)
	content := strings.Repeat("abcdefgh", 1000)
	b := blob("long.txt", []byte(content))

	if _, err := v.Validate(b); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	raw, err := io.ReadAll(b.Content)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}
	if string(raw) != content {
		t.Fatalf("content was consumed by sniffing: got %d bytes", len(raw))
	}
}

func TestWithRewindRestoresPositionOnPanic(t *testing.T) {
	r := bytes.NewReader([]byte("0123456789"))
	if _, err := r.Seek(2, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}

	func() {
		defer func() { _ = recover() }()
		_ = withRewind(r, func() error {
			_, _ = io.ReadFull(r, make([]byte, 5))
			panic("detector failure")
		})
	}()

	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	if pos != 2 {
		t.Fatalf("expected position 2 after panic, got %d", pos)
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"a.TXT":        "txt",
		"b.tar.gz":     "gz",
		"noext":        "",
		"trailingdot.": "",
	}
	for in, want := range cases {
		if got := Extension(in); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", in, got, want)
		}
	}
}
