package utils

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ConfigFileName builds the download name of a device configuration.
func ConfigFileName(deviceName string) string {
	return whitespaceRun.ReplaceAllString(deviceName, "_") + "_config.txt"
}

// SplitList splits a comma separated env value, dropping blanks.
func SplitList(value string) []string {
	result := make([]string, 0)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			result = append(result, item)
		}
	}
	return result
}
