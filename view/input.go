package view

import "strings"

// InputDraft is the input collector state of a session. It outlives
// analysis failures and resets so the user can resubmit as is.
type InputDraft struct {
	Mode InputMode  `json:"mode"`
	File *FileDraft `json:"file,omitempty"`
	Text string     `json:"text"`
}

type FileDraft struct {
	Name     string `json:"name"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func NewInputDraft() InputDraft {
	return InputDraft{Mode: InputModeFile}
}

func (d InputDraft) CanSubmit() bool {
	switch d.Mode {
	case InputModeFile:
		return d.File != nil && len(d.File.Data) > 0
	case InputModeText:
		return strings.TrimSpace(d.Text) != ""
	}
	return false
}
