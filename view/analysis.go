package view

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func (s Severity) Valid() bool {
	return s == SeverityError || s == SeverityWarning || s == SeverityInfo
}

type ValidationFinding struct {
	Severity Severity `json:"severity" jsonschema:"enum=error,enum=warning,enum=info"`
	Message  string   `json:"message"`
}

type DeviceConfig struct {
	DeviceName         string              `json:"deviceName" jsonschema:"description=Hostname of the device"`
	Config             string              `json:"config" jsonschema:"description=Complete CLI configuration of the device"`
	ValidationFindings []ValidationFinding `json:"validationFindings"`
}

type AnalysisResult struct {
	DeviceConfigs   []DeviceConfig `json:"deviceConfigs"`
	AnsiblePlaybook string         `json:"ansiblePlaybook" jsonschema:"description=Ansible playbook applying the configurations"`
	Assessment      string         `json:"assessment" jsonschema:"description=Written assessment of the topology"`
	Recommendations []string       `json:"recommendations"`
	TopologySketch  string         `json:"topologySketch" jsonschema:"description=Optional SVG sketch of the topology"`
}

// Validate reports a malformed analyzer response.
func (r *AnalysisResult) Validate() error {
	if r == nil {
		return fmt.Errorf("analysis result is empty")
	}
	for i, dc := range r.DeviceConfigs {
		if strings.TrimSpace(dc.DeviceName) == "" {
			return fmt.Errorf("device config #%d has no device name", i)
		}
		for _, f := range dc.ValidationFindings {
			if !f.Severity.Valid() {
				return fmt.Errorf("device %s has finding with unknown severity '%s'", dc.DeviceName, f.Severity)
			}
		}
	}
	return nil
}

// Normalize replaces nil slices with empty ones so the page model never carries nulls.
func (r *AnalysisResult) Normalize() {
	if r.DeviceConfigs == nil {
		r.DeviceConfigs = []DeviceConfig{}
	}
	for i := range r.DeviceConfigs {
		if r.DeviceConfigs[i].ValidationFindings == nil {
			r.DeviceConfigs[i].ValidationFindings = []ValidationFinding{}
		}
	}
	if r.Recommendations == nil {
		r.Recommendations = []string{}
	}
}

func (r AnalysisResult) ErrorCount() int {
	count := 0
	for _, dc := range r.DeviceConfigs {
		for _, f := range dc.ValidationFindings {
			if f.Severity == SeverityError {
				count++
			}
		}
	}
	return count
}

func (r AnalysisResult) HasSketch() bool {
	return strings.HasPrefix(strings.TrimSpace(r.TopologySketch), "<svg")
}
