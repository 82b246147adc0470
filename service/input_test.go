package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/Netcracker/qubership-autonet-service/exception"
	"github.com/Netcracker/qubership-autonet-service/repository"
	"github.com/Netcracker/qubership-autonet-service/view"
)

var pngData = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01")
var pdfData = []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
var jpegData = []byte("\xFF\xD8\xFF\xE0\x00\x10JFIF\x00")

func TestSubmitWithoutInputIsNotAllowed(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		prepare func(s InputService) error
	}{
		{"file mode without file", func(s InputService) error { return nil }},
		{"text mode with empty text", func(s InputService) error {
			return s.SetMode(ctx, testSessionId, view.InputModeText)
		}},
		{"text mode with blank text", func(s InputService) error {
			if err := s.SetMode(ctx, testSessionId, view.InputModeText); err != nil {
				return err
			}
			return s.SetText(ctx, testSessionId, "   ")
		}},
		{"file mode with text only", func(s InputService) error {
			return s.SetText(ctx, testSessionId, "Two switches connected via Gi0/1")
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewInputService(repository.NewLocalSessionStore(time.Hour))
			if err := tt.prepare(s); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			called := false
			err := s.Submit(ctx, testSessionId, func(input view.TopologyInput) error {
				called = true
				return nil
			})
			assertCustomError(t, err, http.StatusBadRequest, exception.SubmissionNotAllowed)
			if called {
				t.Fatal("analysis must not be requested")
			}
		})
	}
}

func TestSubmitText(t *testing.T) {
	ctx := context.Background()
	s := NewInputService(repository.NewLocalSessionStore(time.Hour))
	if err := s.SetMode(ctx, testSessionId, view.InputModeText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetText(ctx, testSessionId, "Two switches connected via Gi0/1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := s.GetDraft(ctx, testSessionId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !s.MakeFormView(*draft, "").SubmitEnabled {
		t.Fatal("submit must be enabled")
	}

	var submitted view.TopologyInput
	err = s.Submit(ctx, testSessionId, func(input view.TopologyInput) error {
		submitted = input
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if submitted.Kind() != view.InputKindText {
		t.Fatalf("expected text input, got %s", submitted.Kind())
	}
}

func TestSubmitFileKeepsLastSelection(t *testing.T) {
	ctx := context.Background()
	s := NewInputService(repository.NewLocalSessionStore(time.Hour))
	if err := s.SetFile(ctx, testSessionId, "first.png", pngData); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetFile(ctx, testSessionId, "topology.pdf", pdfData); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var submitted view.TopologyInput
	err := s.Submit(ctx, testSessionId, func(input view.TopologyInput) error {
		submitted = input
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	file, ok := submitted.File()
	if !ok {
		t.Fatal("expected file input")
	}
	if file.Name != "topology.pdf" || file.MimeType != "application/pdf" {
		t.Fatalf("unexpected file %s (%s)", file.Name, file.MimeType)
	}
}

func TestSwitchingModeKeepsBothInputs(t *testing.T) {
	ctx := context.Background()
	s := NewInputService(repository.NewLocalSessionStore(time.Hour))
	if err := s.SetFile(ctx, testSessionId, "lab.jpg", jpegData); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetMode(ctx, testSessionId, view.InputModeText); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetText(ctx, testSessionId, "R1 Gi0/0 - R2 Gi0/0"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.SetMode(ctx, testSessionId, view.InputModeFile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	draft, err := s.GetDraft(ctx, testSessionId)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	form := s.MakeFormView(*draft, "")
	if form.Mode != view.InputModeFile || form.FileName != "lab.jpg" || form.Text != "R1 Gi0/0 - R2 Gi0/0" {
		t.Fatalf("unexpected form: %+v", form)
	}
	if form.SizeHint != view.AdvisorySizeHint || len(form.AcceptedTypes) != 4 {
		t.Fatalf("unexpected form hints: %+v", form)
	}
}

func TestSetFileRejectsUnsupportedFiles(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		fileName string
		data     []byte
		code     string
	}{
		{"empty file", "lab.png", nil, exception.EmptyFile},
		{"unsupported extension", "lab.vsdx", pngData, exception.UnsupportedFileType},
		{"content does not match extension", "lab.png", []byte("hostname R1\ninterface Gi0/0"), exception.UnsupportedFileType},
		{"pdf named as image", "lab.jpg", pdfData, exception.UnsupportedFileType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewInputService(repository.NewLocalSessionStore(time.Hour))
			err := s.SetFile(ctx, testSessionId, tt.fileName, tt.data)
			assertCustomError(t, err, http.StatusBadRequest, tt.code)

			draft, err := s.GetDraft(ctx, testSessionId)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if draft.File != nil {
				t.Fatal("rejected file must not be selected")
			}
		})
	}
}

func TestSetModeRejectsUnknownMode(t *testing.T) {
	s := NewInputService(repository.NewLocalSessionStore(time.Hour))
	err := s.SetMode(context.Background(), testSessionId, "voice")
	assertCustomError(t, err, http.StatusBadRequest, exception.InvalidInputMode)
}
