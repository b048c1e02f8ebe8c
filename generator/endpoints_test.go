package generator

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEndpointRewriterReplacesEveryPlaceholder(t *testing.T) {
	m := DefaultEndpointMap()
	r := NewEndpointRewriter(m)

	for _, p := range append(append([]string{}, m.EndpointPlaceholders...), m.CredentialPlaceholders...) {
		in := "a " + p + " b " + p + " c"
		out := r.Rewrite(in)
		assert.NotContains(t, out, p)
	}

	for _, p := range m.EndpointPlaceholders {
		out := r.Rewrite(`fetch("` + p + `")`)
		assert.Equal(t, `fetch("`+DefaultEndpoint+`")`, out)
	}
}

func TestEndpointRewriterCredential(t *testing.T) {
	r := NewEndpointRewriter(DefaultEndpointMap())
	in := `headers: { Authorization: "Bearer YOUR_API_KEY" }`
	assert.Equal(t, `headers: { Authorization: "Bearer " }`, r.Rewrite(in))
}

func TestEndpointRewriterQuotesMetacharacters(t *testing.T) {
	r := NewEndpointRewriter(EndpointMap{
		Endpoint:             "https://gw.example/v1/chat/completions",
		EndpointPlaceholders: []string{"https://a.b/v1/x?y=(1)"},
	})
	// the dot and parens must not act as pattern syntax
	assert.Equal(t, "https://aXb/v1/x?y=(1)", r.Rewrite("https://aXb/v1/x?y=(1)"))
	assert.Equal(t, "https://gw.example/v1/chat/completions", r.Rewrite("https://a.b/v1/x?y=(1)"))
}

func TestEndpointRewriterNoop(t *testing.T) {
	r := NewEndpointRewriter(DefaultEndpointMap())
	in := "<html><body>nothing to see</body></html>"
	assert.Equal(t, in, r.Rewrite(in))

	var nilRewriter *EndpointRewriter
	assert.Equal(t, in, nilRewriter.Rewrite(in))
}

func TestEndpointRewriterDollarInValue(t *testing.T) {
	r := NewEndpointRewriter(EndpointMap{
		Endpoint:             "https://gw.example/$1",
		EndpointPlaceholders: []string{"https://api.openai.com/v1/completions"},
	})
	out := r.Rewrite("https://api.openai.com/v1/completions")
	assert.True(t, strings.HasSuffix(out, "/$1"))
}
