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

package exception

import (
	"errors"
	"fmt"
	"strings"
)

type CustomError struct {
	Status  int                    `json:"status"`
	Code    string                 `json:"code,omitempty"`
	Message string                 `json:"message,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Debug   string                 `json:"debug,omitempty"`
}

func (c CustomError) Error() string {
	msg := c.Message
	for k, v := range c.Params {
		//todo make smart replace (e.g. now it replaces $param if we have $par in params)
		msg = strings.ReplaceAll(msg, "$"+k, fmt.Sprintf("%v", v))
	}
	return msg
}

// AsCustomError unwraps err into a *CustomError if there is one in the chain.
func AsCustomError(err error) (*CustomError, bool) {
	var customError *CustomError
	if errors.As(err, &customError) {
		return customError, true
	}
	return nil, false
}

const InvalidURLEscape = "6"
const InvalidURLEscapeMsg = "Failed to unescape parameter $param"

const InvalidParameterValue = "9"
const InvalidParameterValueMsg = "Value '$value' is not allowed for parameter $param"

const BadRequestBody = "10"
const BadRequestBodyMsg = "Failed to decode body"

const IncorrectMultipartFile = "1000"
const IncorrectMultipartFileMsg = "Unable to read Multipart file"

const UnsupportedFileType = "1001"
const UnsupportedFileTypeMsg = "File '$name' has unsupported type '$type'. Accepted types: PDF, PNG, JPG"

const EmptyFile = "1002"
const EmptyFileMsg = "File '$name' is empty"

const InvalidInputMode = "1010"
const InvalidInputModeMsg = "Input mode '$mode' is not supported"

const SubmissionNotAllowed = "1020"
const SubmissionNotAllowedMsg = "Nothing to analyze: $reason"

const Unauthorized = "1900"
const UnauthorizedMsg = "API key is missing or invalid"

const DisclaimerNotAcknowledged = "1910"
const DisclaimerNotAcknowledgedMsg = "Please acknowledge the disclaimer to access generated content"

const AnalysisInProgress = "3000"
const AnalysisInProgressMsg = "Analysis is already in progress for this session"

const InvalidStateTransition = "3001"
const InvalidStateTransitionMsg = "Action '$action' is not allowed in state '$state'"

const NoResults = "3002"
const NoResultsMsg = "No analysis results are available in state '$state'"

const ArtifactNotFound = "3010"
const ArtifactNotFoundMsg = "Artifact '$artifact' is not found"

const ArtifactNotCopyable = "3011"
const ArtifactNotCopyableMsg = "Artifact '$artifact' can not be copied"

const UnknownSection = "3020"
const UnknownSectionMsg = "Section '$section' is not known"
