package ai

import "net/http"

const defaultOpenRouterModel = "openrouter/auto"

// NewOpenRouterProvider reuses the OpenAI client against OpenRouter's
// OpenAI-compatible API, adding the attribution headers OpenRouter reads.
func NewOpenRouterProvider(baseURL, apiKey, model, siteURL, appName string) (*OpenAIProvider, error) {
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if model == "" {
		model = defaultOpenRouterModel
	}
	rt := &headerTransport{
		base:    http.DefaultTransport,
		headers: map[string]string{},
	}
	if siteURL != "" {
		rt.headers["HTTP-Referer"] = siteURL
	}
	if appName != "" {
		rt.headers["X-Title"] = appName
	}
	return newOpenAICompatible("openrouter", apiKey, baseURL, model, rt)
}

type headerTransport struct {
	base    http.RoundTripper
	headers map[string]string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if len(t.headers) == 0 {
		return t.base.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	for k, v := range t.headers {
		r.Header.Set(k, v)
	}
	return t.base.RoundTrip(r)
}
