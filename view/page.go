package view

import (
	"fmt"
	"time"
)

type SessionPage struct {
	Stage        Stage        `json:"stage"`
	Acknowledged bool         `json:"acknowledged"`
	Form         *FormView    `json:"form,omitempty"`
	Loading      *LoadingView `json:"loading,omitempty"`
	Results      *ResultsPage `json:"results,omitempty"`
}

type FormView struct {
	Mode          InputMode `json:"mode"`
	FileName      string    `json:"fileName,omitempty"`
	Text          string    `json:"text"`
	SubmitEnabled bool      `json:"submitEnabled"`
	Error         string    `json:"error,omitempty"`
	AcceptedTypes []string  `json:"acceptedTypes"`
	SizeHint      string    `json:"sizeHint"`
}

type LoadingView struct {
	Message   string    `json:"message"`
	Hint      string    `json:"hint"`
	InputKind InputKind `json:"inputKind"`
	InputName string    `json:"inputName,omitempty"`
	StartedAt time.Time `json:"startedAt"`
}

const AnalyzingMessage = "AutoNet is analyzing your topology..."
const AnalyzingHint = "This may take a moment."

type SectionName string

const (
	SectionSketch          SectionName = "sketch"
	SectionDeviceConfigs   SectionName = "deviceConfigs"
	SectionPlaybook        SectionName = "playbook"
	SectionAssessment      SectionName = "assessment"
	SectionRecommendations SectionName = "recommendations"
)

var SectionNames = []SectionName{SectionSketch, SectionDeviceConfigs, SectionPlaybook, SectionAssessment, SectionRecommendations}

func (s SectionName) Valid() bool {
	for _, n := range SectionNames {
		if n == s {
			return true
		}
	}
	return false
}

type ArtifactKind string

const (
	ArtifactDeviceConfig ArtifactKind = "config"
	ArtifactPlaybook     ArtifactKind = "playbook"
	ArtifactSketch       ArtifactKind = "sketch"
)

// ArtifactRef points to a copyable or downloadable piece of a result.
// Index is only meaningful for device configs.
type ArtifactRef struct {
	Kind  ArtifactKind
	Index int
}

func (a ArtifactRef) Key() string {
	if a.Kind == ArtifactDeviceConfig {
		return fmt.Sprintf("%s-%d", a.Kind, a.Index)
	}
	return string(a.Kind)
}

// ResultsUIState holds the local toggles of the results view.
type ResultsUIState struct {
	Open        map[SectionName]bool `json:"open"`
	ZoomPercent int                  `json:"zoomPercent"`
	CopiedAt    map[string]time.Time `json:"copiedAt"`
}

const AcknowledgePrompt = `Please check "I understand" in the disclaimer box above to view this content.`
const DisclaimerTitle = "Important: Configuration Review Required"
const DisclaimerText = "You must thoroughly review, test, and validate all configurations before deployment to production environments. AI-generated validation checks are for guidance only."
const NoIssuesMessage = "No validation issues found. Config adheres to best practices."
const NoDeviceConfigsMessage = "No device configurations were generated."

type ResultsPage struct {
	Disclaimer Disclaimer    `json:"disclaimer"`
	Sections   []ResultsPart `json:"sections"`
}

type Disclaimer struct {
	Title        string `json:"title"`
	Text         string `json:"text"`
	Acknowledged bool   `json:"acknowledged"`
}

// ResultsPart is one collapsible section. Only the payload matching Name is set.
type ResultsPart struct {
	Name       SectionName `json:"name"`
	Title      string      `json:"title"`
	Open       bool        `json:"open"`
	ErrorBadge int         `json:"errorBadge,omitempty"`

	Sketch          *SketchView  `json:"sketch,omitempty"`
	Devices         []DeviceView `json:"devices,omitempty"`
	EmptyMessage    string       `json:"emptyMessage,omitempty"`
	Playbook        *CodeBlock   `json:"playbook,omitempty"`
	Assessment      *string      `json:"assessment,omitempty"`
	Recommendations []string     `json:"recommendations,omitempty"`
	Prompt          string       `json:"prompt,omitempty"`
}

type SketchView struct {
	Obscured         bool    `json:"obscured"`
	Markup           string  `json:"markup,omitempty"`
	Zoom             float64 `json:"zoom"`
	ZoomLabel        string  `json:"zoomLabel"`
	DownloadDisabled bool    `json:"downloadDisabled"`
	Filename         string  `json:"filename"`
}

type DeviceView struct {
	DeviceName    string              `json:"deviceName"`
	FindingsCount int                 `json:"findingsCount"`
	Findings      []ValidationFinding `json:"findings,omitempty"`
	NoIssues      string              `json:"noIssues,omitempty"`
	Config        CodeBlock           `json:"config"`
}

type CodeBlock struct {
	Language         string `json:"language"`
	Filename         string `json:"filename"`
	Content          string `json:"content,omitempty"`
	Obscured         bool   `json:"obscured"`
	CopyDisabled     bool   `json:"copyDisabled"`
	DownloadDisabled bool   `json:"downloadDisabled"`
	Copied           bool   `json:"copied"`
	DownloadHint     string `json:"downloadHint"`
}

type CopyResponse struct {
	Content string `json:"content"`
	Copied  bool   `json:"copied"`
}

type Download struct {
	Content  []byte
	Filename string
	MimeType string
}

type UpdateModeReq struct {
	Mode InputMode `json:"mode"`
}

type UpdateTextReq struct {
	Text string `json:"text"`
}

type AcknowledgeReq struct {
	Acknowledged bool `json:"acknowledged"`
}

type AnalysisStatus string

const (
	AnalysisStatusSuccess AnalysisStatus = "success"
	AnalysisStatusError   AnalysisStatus = "error"
)

type AnalysisHistoryItem struct {
	Id          string         `json:"id"`
	InputKind   InputKind      `json:"inputKind"`
	InputName   string         `json:"inputName,omitempty"`
	Status      AnalysisStatus `json:"status"`
	Details     string         `json:"details,omitempty"`
	DeviceCount int            `json:"deviceCount"`
	ErrorCount  int            `json:"errorCount"`
	StartedAt   time.Time      `json:"startedAt"`
	DurationMs  int64          `json:"durationMs"`
}

type AnalysisHistory struct {
	Analyses []AnalysisHistoryItem `json:"analyses"`
}
