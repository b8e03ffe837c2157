package handlers

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/editaja/editaja-api/internal/http/mw"
)

// Minimal valid PNG header so content sniffing recognises the upload.
var pngBytes = []byte("\x89PNG\r\n\x1a\n" + strings.Repeat("\x00", 64))

type multipartRequest struct {
	fields map[string]string
	file   string // form field name, empty for no file
	data   []byte
	ctype  string
}

func buildMultipart(t *testing.T, spec multipartRequest) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range spec.fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write field %s: %v", k, err)
		}
	}
	if spec.file != "" {
		hdr := textproto.MIMEHeader{}
		hdr.Set("Content-Disposition", `form-data; name="`+spec.file+`"; filename="photo.png"`)
		if spec.ctype != "" {
			hdr.Set("Content-Type", spec.ctype)
		}
		part, err := w.CreatePart(hdr)
		if err != nil {
			t.Fatalf("failed to create file part: %v", err)
		}
		if _, err := part.Write(spec.data); err != nil {
			t.Fatalf("failed to write file data: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("failed to close multipart writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func withClaims(req *http.Request, claims *mw.UserClaims) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), mw.UserClaimsKey, claims))
}

func withAnonymousID(req *http.Request, id string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), mw.AnonymousIDKey, id))
}

// The validation path never touches the services, so a bare handler is enough.
func validationGenerationHandler() *GenerationHandler {
	return NewGenerationHandler(nil, nil, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestGenerate_NoCallerIdentity(t *testing.T) {
	h := validationGenerationHandler()
	req := buildMultipart(t, multipartRequest{
		fields: map[string]string{"style_id": "style-1"},
		file:   "image", data: pngBytes, ctype: "image/png",
	})
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGenerate_MissingStyleID(t *testing.T) {
	h := validationGenerationHandler()
	req := withAnonymousID(buildMultipart(t, multipartRequest{
		file: "image", data: pngBytes, ctype: "image/png",
	}), "device-1")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate_MissingImage(t *testing.T) {
	h := validationGenerationHandler()
	req := withAnonymousID(buildMultipart(t, multipartRequest{
		fields: map[string]string{"style_id": "style-1"},
	}), "device-1")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate_UnsupportedImageType(t *testing.T) {
	h := validationGenerationHandler()
	req := withAnonymousID(buildMultipart(t, multipartRequest{
		fields: map[string]string{"style_id": "style-1"},
		file:   "image", data: []byte("%PDF-1.4 not an image"), ctype: "application/pdf",
	}), "device-1")
	rec := httptest.NewRecorder()
	h.Generate(rec, req)
	if rec.Code != http.StatusUnsupportedMediaType {
		t.Errorf("status = %d, want 415: %s", rec.Code, rec.Body.String())
	}
}

func TestGenerate_SniffsContentType(t *testing.T) {
	// A PNG declared as octet-stream should still pass via sniffing.
	h := validationGenerationHandler()
	req := withClaims(buildMultipart(t, multipartRequest{
		fields: map[string]string{"style_id": "style-1"},
		file:   "image", data: pngBytes, ctype: "application/octet-stream",
	}), &mw.UserClaims{UserID: "user_1"})
	rec := httptest.NewRecorder()
	// Validation passes and the handler reaches the nil service, so the
	// interesting assertion is that it did NOT fail with 400 or 415.
	func() {
		defer func() { _ = recover() }()
		h.Generate(rec, req)
	}()
	if rec.Code == http.StatusBadRequest || rec.Code == http.StatusUnsupportedMediaType {
		t.Errorf("png rejected by validation: status = %d", rec.Code)
	}
}

func TestUpload_RequiresAuth(t *testing.T) {
	h := validationGenerationHandler()
	req := buildMultipart(t, multipartRequest{
		file: "file", data: pngBytes, ctype: "image/png",
	})
	rec := httptest.NewRecorder()
	h.Upload(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}
