// Copyright 2024-2025 NetCracker Technology Corporation
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package view

import (
	"fmt"
	"path/filepath"
	"strings"
)

type InputMode string

const (
	InputModeFile InputMode = "file"
	InputModeText InputMode = "text"
)

func (m InputMode) Valid() bool {
	return m == InputModeFile || m == InputModeText
}

type InputKind string

const (
	InputKindFile InputKind = "file"
	InputKindText InputKind = "text"
)

// AdvisorySizeHint is shown next to the file picker. It is not enforced.
const AdvisorySizeHint = "PDF, PNG, JPG up to 10MB"

// AcceptedFileTypes maps allowed file extensions to their content type.
var AcceptedFileTypes = map[string]string{
	".pdf":  "application/pdf",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// AcceptedMimeType returns the content type registered for the extension of name.
func AcceptedMimeType(name string) (string, bool) {
	mimeType, ok := AcceptedFileTypes[strings.ToLower(filepath.Ext(name))]
	return mimeType, ok
}

// TopologyInput is either a file or a text description, never both.
// The zero value is not a valid input; use NewFileInput or NewTextInput.
type TopologyInput struct {
	file *FileInput
	text *TextInput
}

type FileInput struct {
	Data     []byte
	Name     string
	MimeType string
}

type TextInput struct {
	Text string
}

func NewFileInput(data []byte, name string, mimeType string) (TopologyInput, error) {
	if len(data) == 0 {
		return TopologyInput{}, fmt.Errorf("file input %q is empty", name)
	}
	return TopologyInput{file: &FileInput{Data: data, Name: name, MimeType: mimeType}}, nil
}

func NewTextInput(text string) (TopologyInput, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return TopologyInput{}, fmt.Errorf("text input is blank")
	}
	return TopologyInput{text: &TextInput{Text: text}}, nil
}

func (t TopologyInput) Kind() InputKind {
	if t.file != nil {
		return InputKindFile
	}
	if t.text != nil {
		return InputKindText
	}
	return ""
}

func (t TopologyInput) File() (FileInput, bool) {
	if t.file == nil {
		return FileInput{}, false
	}
	return *t.file, true
}

func (t TopologyInput) Text() (TextInput, bool) {
	if t.text == nil {
		return TextInput{}, false
	}
	return *t.text, true
}

// Name is the file name for file inputs and empty for text.
func (t TopologyInput) Name() string {
	if t.file != nil {
		return t.file.Name
	}
	return ""
}

// Bytes returns the raw payload, used for checksums.
func (t TopologyInput) Bytes() []byte {
	switch {
	case t.file != nil:
		return t.file.Data
	case t.text != nil:
		return []byte(t.text.Text)
	}
	return nil
}
