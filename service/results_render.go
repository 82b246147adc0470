package service

import (
	"fmt"
	"time"

	"github.com/Netcracker/qubership-autonet-service/utils"
	"github.com/Netcracker/qubership-autonet-service/view"
)

const (
	ZoomDefaultPercent = 100
	ZoomMinPercent     = 40
	ZoomMaxPercent     = 300
	ZoomStepPercent    = 20
)

// CopyConfirmationWindow is how long a copied code block reports "copied".
const CopyConfirmationWindow = 2 * time.Second

const (
	configLanguage   = "cisco_ios"
	playbookLanguage = "yaml"
	configMimeType   = "text/plain"
	playbookFileName = "playbook.yml"
	sketchFileName   = "topology.svg"
	sketchMimeType   = "image/svg+xml"
)

const acknowledgeDownloadHint = "Please acknowledge the disclaimer above"

var sectionTitles = map[view.SectionName]string{
	view.SectionSketch:          "Visual Topology Sketch",
	view.SectionDeviceConfigs:   "Device Configurations",
	view.SectionPlaybook:        "Ansible Playbook",
	view.SectionAssessment:      "Network Assessment",
	view.SectionRecommendations: "Recommendations",
}

func ZoomIn(percent int) int {
	return min(percent+ZoomStepPercent, ZoomMaxPercent)
}

func ZoomOut(percent int) int {
	return max(percent-ZoomStepPercent, ZoomMinPercent)
}

// DefaultResultsUIState opens the sketch when there is one and the device configs otherwise.
func DefaultResultsUIState(result view.AnalysisResult) view.ResultsUIState {
	ui := view.ResultsUIState{
		Open:        make(map[view.SectionName]bool),
		ZoomPercent: ZoomDefaultPercent,
		CopiedAt:    make(map[string]time.Time),
	}
	if result.HasSketch() {
		ui.Open[view.SectionSketch] = true
	} else {
		ui.Open[view.SectionDeviceConfigs] = true
	}
	return ui
}

// RenderResults builds the results page. Nothing covered by the disclaimer gets into the page
// unless acknowledged is true.
func RenderResults(result view.AnalysisResult, acknowledged bool, ui view.ResultsUIState, now time.Time) view.ResultsPage {
	page := view.ResultsPage{
		Disclaimer: view.Disclaimer{
			Title:        view.DisclaimerTitle,
			Text:         view.DisclaimerText,
			Acknowledged: acknowledged,
		},
		Sections: make([]view.ResultsPart, 0, len(view.SectionNames)),
	}
	copied := func(ref view.ArtifactRef) bool {
		at, ok := ui.CopiedAt[ref.Key()]
		return ok && !now.Before(at) && now.Sub(at) < CopyConfirmationWindow
	}

	if result.HasSketch() {
		part := newPart(view.SectionSketch, ui)
		zoom := ui.ZoomPercent
		if zoom == 0 {
			zoom = ZoomDefaultPercent
		}
		sketch := &view.SketchView{
			Obscured:         !acknowledged,
			Zoom:             float64(zoom) / 100,
			ZoomLabel:        fmt.Sprintf("%d%%", zoom),
			DownloadDisabled: !acknowledged,
			Filename:         sketchFileName,
		}
		if acknowledged {
			sketch.Markup = result.TopologySketch
		}
		part.Sketch = sketch
		page.Sections = append(page.Sections, part)
	}

	devices := newPart(view.SectionDeviceConfigs, ui)
	devices.ErrorBadge = result.ErrorCount()
	if len(result.DeviceConfigs) == 0 {
		devices.EmptyMessage = view.NoDeviceConfigsMessage
	}
	for i, dc := range result.DeviceConfigs {
		ref := view.ArtifactRef{Kind: view.ArtifactDeviceConfig, Index: i}
		dv := view.DeviceView{
			DeviceName:    dc.DeviceName,
			FindingsCount: len(dc.ValidationFindings),
			Config:        renderCodeBlock(dc.Config, configLanguage, utils.ConfigFileName(dc.DeviceName), acknowledged, copied(ref)),
		}
		if acknowledged {
			if len(dc.ValidationFindings) == 0 {
				dv.NoIssues = view.NoIssuesMessage
			} else {
				dv.Findings = dc.ValidationFindings
			}
		}
		devices.Devices = append(devices.Devices, dv)
	}
	page.Sections = append(page.Sections, devices)

	playbook := newPart(view.SectionPlaybook, ui)
	block := renderCodeBlock(result.AnsiblePlaybook, playbookLanguage, playbookFileName, acknowledged,
		copied(view.ArtifactRef{Kind: view.ArtifactPlaybook}))
	playbook.Playbook = &block
	page.Sections = append(page.Sections, playbook)

	assessment := newPart(view.SectionAssessment, ui)
	recommendations := newPart(view.SectionRecommendations, ui)
	if acknowledged {
		text := result.Assessment
		assessment.Assessment = &text
		recommendations.Recommendations = result.Recommendations
		if recommendations.Recommendations == nil {
			recommendations.Recommendations = []string{}
		}
	} else {
		assessment.Prompt = view.AcknowledgePrompt
		recommendations.Prompt = view.AcknowledgePrompt
	}
	page.Sections = append(page.Sections, assessment, recommendations)

	return page
}

func newPart(name view.SectionName, ui view.ResultsUIState) view.ResultsPart {
	return view.ResultsPart{
		Name:  name,
		Title: sectionTitles[name],
		Open:  ui.Open[name],
	}
}

func renderCodeBlock(content string, language string, filename string, acknowledged bool, copied bool) view.CodeBlock {
	block := view.CodeBlock{
		Language:         language,
		Filename:         filename,
		Obscured:         !acknowledged,
		CopyDisabled:     !acknowledged,
		DownloadDisabled: !acknowledged,
	}
	if !acknowledged {
		block.DownloadHint = acknowledgeDownloadHint
		return block
	}
	block.Content = content
	block.Copied = copied
	block.DownloadHint = "Download " + filename
	return block
}
