package fetch

import (
	"encoding/json"
	"strconv"
)

// NetworkErrorDetail is the detail of the Problem produced when the server
// could not be reached.
const NetworkErrorDetail = "Network error. Please check your internet connection and try again."

// Problem is a normalized request failure. Status is 0 for transport
// failures.
type Problem struct {
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Title    string `json:"title,omitempty"`
	Type     string `json:"type,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error implements error.
func (p *Problem) Error() string {
	if p.Status == 0 {
		return p.Detail
	}
	return strconv.Itoa(p.Status) + ": " + p.Detail
}

// GenericDetail returns the detail used when a failure body carries none.
func GenericDetail(status int) string {
	return "An error occurred: " + strconv.Itoa(status)
}

// NetworkProblem returns the Problem for an unreachable server.
func NetworkProblem() *Problem {
	return &Problem{Status: 0, Detail: NetworkErrorDetail}
}

// ParseProblem builds a Problem from a failure response. Fields missing
// from body are synthesized: status from the HTTP status, detail from the
// message field and then GenericDetail. A body that is not a JSON object
// yields the HTTP status and the generic detail.
func ParseProblem(httpStatus int, body []byte) *Problem {
	p := &Problem{Status: httpStatus}

	var wire map[string]any
	if err := json.Unmarshal(body, &wire); err != nil || wire == nil {
		p.Detail = GenericDetail(httpStatus)
		return p
	}

	if s, ok := wire["status"].(float64); ok && s != 0 {
		p.Status = int(s)
	}
	p.Detail = firstString(wire, "detail", "message")
	if p.Detail == "" {
		p.Detail = GenericDetail(httpStatus)
	}
	p.Title, _ = wire["title"].(string)
	p.Type, _ = wire["type"].(string)
	p.Instance, _ = wire["instance"].(string)
	return p
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}
