package extract

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"github.com/xxxsen/solpipe/internal/model"
)

var (
	errNoJSON         = errors.New("no json object in model output")
	errNoSections     = errors.New("sections is missing")
	errSectionsNotArr = errors.New("sections is not an array")
)

type rawResult struct {
	Sections json.RawMessage `json:"sections"`
}

type rawSection struct {
	Title        json.RawMessage `json:"title"`
	Description  json.RawMessage `json:"description"`
	LocationHint json.RawMessage `json:"locationHint"`
	Questions    json.RawMessage `json:"questions"`
}

type rawCandidate struct {
	QuestionText       json.RawMessage `json:"questionText"`
	Type               json.RawMessage `json:"type"`
	IsExplicitQuestion json.RawMessage `json:"isExplicitQuestion"`
	IsRequired         json.RawMessage `json:"isRequired"`
	Deliverable        json.RawMessage `json:"deliverable"`
	ResponseFormat     json.RawMessage `json:"responseFormat"`
	Constraints        json.RawMessage `json:"constraints"`
}

// ParseResult pulls the sections object out of free-form model text.
func ParseResult(text string) (*model.ExtractionResult, error) {
	obj, ok := FindJSONObject(text)
	if !ok {
		return nil, errNoJSON
	}
	var top rawResult
	if err := json.Unmarshal(obj, &top); err != nil {
		return nil, err
	}
	sectionsJSON := strings.TrimSpace(string(top.Sections))
	if sectionsJSON == "" || sectionsJSON == "null" {
		return nil, errNoSections
	}
	if !strings.HasPrefix(sectionsJSON, "[") {
		return nil, errSectionsNotArr
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(top.Sections, &raws); err != nil {
		return nil, err
	}
	out := &model.ExtractionResult{Sections: make([]model.ExtractedSection, 0, len(raws))}
	for _, raw := range raws {
		sec, ok := parseSection(raw)
		if !ok {
			continue
		}
		out.Sections = append(out.Sections, sec)
	}
	return out, nil
}

// parseSection skips elements that are not objects. Questions that are not
// objects are dropped without failing their siblings.
func parseSection(raw json.RawMessage) (model.ExtractedSection, bool) {
	var rs rawSection
	if isNull(raw) {
		return model.ExtractedSection{}, false
	}
	if err := json.Unmarshal(raw, &rs); err != nil {
		return model.ExtractedSection{}, false
	}
	var items []json.RawMessage
	_ = json.Unmarshal(rs.Questions, &items)
	sec := model.ExtractedSection{
		Title:        parseString(rs.Title),
		Description:  parseString(rs.Description),
		LocationHint: parseString(rs.LocationHint),
		Questions:    make([]model.ExtractedQuestionCandidate, 0, len(items)),
	}
	for _, item := range items {
		var rq rawCandidate
		if isNull(item) {
			continue
		}
		if err := json.Unmarshal(item, &rq); err != nil {
			continue
		}
		sec.Questions = append(sec.Questions, model.ExtractedQuestionCandidate{
			QuestionText:       parseString(rq.QuestionText),
			Type:               parseString(rq.Type),
			IsExplicitQuestion: parseBool(rq.IsExplicitQuestion),
			IsRequired:         parseRequirement(rq.IsRequired),
			Deliverable:        parseString(rq.Deliverable),
			ResponseFormat:     parseString(rq.ResponseFormat),
			Constraints:        parseConstraints(rq.Constraints),
		})
	}
	return sec, true
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}

// parseString keeps strings, turns numbers and bools into their literal
// text and maps anything else to "".
func parseString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

func parseRequirement(raw json.RawMessage) model.Requirement {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return model.RequirementUnknown
	}
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(model.RequirementRequired):
		return model.RequirementRequired
	case string(model.RequirementOptional):
		return model.RequirementOptional
	}
	return model.RequirementUnknown
}

func parseBool(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}
	return false
}

func parseConstraints(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single = strings.TrimSpace(single); single != "" {
			return []string{single}
		}
		return nil
	}
	var items []interface{}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
