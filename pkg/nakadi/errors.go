/*
Copyright 2021 Arun Muralidharan

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.

*/

package nakadi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"nakadigo/pkg/model"
	"nakadigo/pkg/optional"

	"github.com/go-resty/resty/v2"
)

// APIError is returned for every non-2xx answer except 404 on reads.
// Problem is set when the body was an RFC 7807 document.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Problem    optional.Option[model.Problem]
	Body       string
}

func (e *APIError) Error() string {
	if p, ok := e.Problem.Take(); ok {
		return fmt.Sprintf("nakadi: %s %s: %s", e.Method, e.Path, p)
	}
	if e.Body == "" {
		return fmt.Sprintf("nakadi: %s %s: status %d", e.Method, e.Path, e.StatusCode)
	}
	return fmt.Sprintf("nakadi: %s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
}

func newAPIError(method, path string, resp *resty.Response) *APIError {
	apiErr := &APIError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode(),
	}

	body := bytes.TrimSpace(resp.Body())
	var problem model.Problem
	if len(body) > 0 && json.Unmarshal(body, &problem) == nil && problem.Title != "" {
		if problem.Status == 0 {
			problem.Status = resp.StatusCode()
		}
		apiErr.Problem = optional.Some(problem)
		return apiErr
	}
	apiErr.Body = string(body)
	return apiErr
}
