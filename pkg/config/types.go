package config

import (
	"maps"
	"time"
)

// Status values with special meaning. Any other status names a live
// environment whose URL must be present in a profile's URL map.
const (
	StatusMock    = "mock"
	StatusMockErr = "mockerr"
)

// Supported HTTP methods.
const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// Supported response data types.
const (
	DataTypeJSON  = "json"
	DataTypeText  = "text"
	DataTypeJSONP = "jsonp"
)

// EncodingRaw disables charset decoding and parsing of response bodies.
const EncodingRaw = "raw"

// Defaults applied to profiles and documents.
const (
	DefaultEngine    = "template"
	DefaultEncoding  = "utf8"
	DefaultTimeoutMS = 10000
	DefaultRulebase  = "interfaceRules"
	RuleFileSuffix   = ".rule.json"
)

// Profile describes one backend interface.
type Profile struct {
	ID             string            `json:"id"`
	Name           string            `json:"name,omitempty"`
	Desc           string            `json:"desc,omitempty"`
	Version        string            `json:"version,omitempty"`
	URLs           map[string]string `json:"urls,omitempty"`
	Status         string            `json:"status,omitempty"`
	Method         string            `json:"method,omitempty"`
	DataType       string            `json:"dataType,omitempty"`
	Timeout        int               `json:"timeout,omitempty"` // milliseconds
	Encoding       string            `json:"encoding,omitempty"`
	IsCookieNeeded bool              `json:"isCookieNeeded,omitempty"`
	Signed         bool              `json:"signed,omitempty"`
	IsRuleStatic   bool              `json:"isRuleStatic,omitempty"`
	RuleFile       string            `json:"ruleFile,omitempty"`
}

// IsMock reports whether the profile is served by a mock engine.
func (p *Profile) IsMock() bool {
	return p.Status == StatusMock || p.Status == StatusMockErr
}

// TimeoutDuration returns the profile timeout as a duration.
func (p *Profile) TimeoutDuration() time.Duration {
	return time.Duration(p.Timeout) * time.Millisecond
}

func (p *Profile) clone() Profile {
	c := *p
	c.URLs = maps.Clone(p.URLs)
	return c
}

// Rule holds the mock fixtures of one interface.
type Rule struct {
	Response      any `json:"response"`
	ResponseError any `json:"responseError"`

	// Spec is the whole rule document, handed to engines that consume
	// the rule as a single specification.
	Spec map[string]any `json:"-"`
}

// Fixture returns the fixture matching status: ResponseError for mockerr,
// Response otherwise.
func (r *Rule) Fixture(status string) any {
	if status == StatusMockErr {
		return r.ResponseError
	}
	return r.Response
}

// Document is the on-disk shape of an interface configuration file.
type Document struct {
	Title      string     `json:"title,omitempty"`
	Version    string     `json:"version,omitempty"`
	Rulebase   string     `json:"rulebase,omitempty"`
	Engine     string     `json:"engine,omitempty"`
	Status     string     `json:"status,omitempty"`
	Include    []string   `json:"include,omitempty"`
	Interfaces []*Profile `json:"interfaces,omitempty"`
}
