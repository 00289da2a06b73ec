package openrouter

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string    `json:"model"`
	Messages []message `json:"messages"`
}

// chatResponse uses pointers so a missing field can be told apart from an
// empty one.
type chatResponse struct {
	Model   string `json:"model"`
	Choices *[]struct {
		Message *struct {
			Role    string  `json:"role"`
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

// Usage is the token accounting block returned with a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Result is the outcome of one Ask call that produced an HTTP response.
type Result struct {
	// StatusCode is the HTTP status returned by the API.
	StatusCode int
	// Answer holds the assistant text, or a parse-error description, when
	// StatusCode is 200.
	Answer string
	// ErrorBody holds the raw response body when StatusCode is not 200.
	ErrorBody string
	// Usage is set when a successful response reported token counts.
	Usage *Usage
}

// OK reports whether the API accepted the request.
func (r Result) OK() bool {
	return r.StatusCode == 200
}

// Text is what the user sees for this result and what gets logged: the answer
// on success, "Error {code}: {body}" otherwise.
func (r Result) Text() string {
	if r.OK() {
		return r.Answer
	}
	return fmt.Sprintf("Error %d: %s", r.StatusCode, r.ErrorBody)
}

// RemoteModel is one entry of the provider's model catalogue.
type RemoteModel struct {
	ID            string  `json:"id" yaml:"id"`
	Name          string  `json:"name" yaml:"name"`
	ContextLength int     `json:"context_length" yaml:"context_length"`
	Pricing       Pricing `json:"pricing" yaml:"pricing"`
}

// Pricing holds per-token prices. The API sends them as strings.
type Pricing struct {
	Prompt     Price `json:"prompt" yaml:"prompt"`
	Completion Price `json:"completion" yaml:"completion"`
}

// Price accepts a JSON string or number.
type Price float64

func (p *Price) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = 0
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		if s == "" {
			*p = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("price %q: %w", s, err)
		}
		*p = Price(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("price %s: %w", string(b), err)
	}
	*p = Price(f)
	return nil
}

// Free reports whether both prompt and completion are priced at zero.
func (m RemoteModel) Free() bool {
	return m.Pricing.Prompt == 0 && m.Pricing.Completion == 0
}

type modelsResponse struct {
	Data []RemoteModel `json:"data"`
}
