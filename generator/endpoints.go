package generator

import "regexp"

// DefaultEndpoint is the canonical chat-completion endpoint generated apps call.
const DefaultEndpoint = "https://llmfoundry.straive.com/openai/v1/chat/completions"

// DefaultEndpointPlaceholders are endpoint URLs models tend to hard-code.
var DefaultEndpointPlaceholders = []string{
	"https://api.openai.com/v1/chat/completions",
	"https://api.openai.com/v1/completions",
	"https://api.openai.com/v1/engines/davinci-codex/completions",
	"http://localhost:8010/openai/v1/chat/completions",
}

// DefaultCredentialPlaceholders are API-key tokens models tend to embed.
var DefaultCredentialPlaceholders = []string{
	"YOUR_OPENAI_API_KEY",
	"YOUR_API_KEY_HERE",
	"YOUR_API_KEY",
	"<your-api-key>",
	"sk-your-api-key",
}

// EndpointMap maps placeholder endpoints and credential tokens onto the
// runtime values. Credential is usually empty: generated apps authenticate
// with the browser session, not an embedded key.
type EndpointMap struct {
	Endpoint               string
	Credential             string
	EndpointPlaceholders   []string
	CredentialPlaceholders []string
}

// DefaultEndpointMap targets DefaultEndpoint with no embedded credential.
func DefaultEndpointMap() EndpointMap {
	return EndpointMap{
		Endpoint:               DefaultEndpoint,
		EndpointPlaceholders:   append([]string(nil), DefaultEndpointPlaceholders...),
		CredentialPlaceholders: append([]string(nil), DefaultCredentialPlaceholders...),
	}
}

type substitution struct {
	re    *regexp.Regexp
	value string
}

// EndpointRewriter replaces placeholder literals in generated code. Patterns
// are compiled once from quoted literals and applied in list order,
// endpoints first.
type EndpointRewriter struct {
	subs []substitution
}

// NewEndpointRewriter compiles m. Empty placeholders are skipped.
func NewEndpointRewriter(m EndpointMap) *EndpointRewriter {
	r := &EndpointRewriter{}
	add := func(placeholders []string, value string) {
		for _, p := range placeholders {
			if p == "" || p == value {
				continue
			}
			r.subs = append(r.subs, substitution{
				re:    regexp.MustCompile(regexp.QuoteMeta(p)),
				value: value,
			})
		}
	}
	add(m.EndpointPlaceholders, m.Endpoint)
	add(m.CredentialPlaceholders, m.Credential)
	return r
}

// Rewrite substitutes every occurrence of every placeholder.
func (r *EndpointRewriter) Rewrite(code string) string {
	if r == nil {
		return code
	}
	for _, s := range r.subs {
		code = s.re.ReplaceAllLiteralString(code, s.value)
	}
	return code
}
