package config

// SiteConfig holds request settings for one dictionary host.
type SiteConfig struct {
	// Cookie is sent as the Cookie header, e.g. "name=value; other=value".
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are added to every request to the host.
	Headers map[string]string `yaml:"headers,omitempty"`
}

// Endpoints overrides the Wikidata endpoints.
type Endpoints struct {
	SPARQL     string `yaml:"sparql,omitempty"`
	EntityData string `yaml:"entityData,omitempty"`
	ActionAPI  string `yaml:"actionApi,omitempty"`
	Wikidata   string `yaml:"wikidata,omitempty"`
	Creator    string `yaml:"creator,omitempty"`
}

// File is the layout of the .suruext configuration file.
type File struct {
	Endpoints   Endpoints `yaml:"endpoints,omitempty"`
	UserAgent   string    `yaml:"userAgent,omitempty"`
	Concurrency int       `yaml:"concurrency,omitempty"`
	Proxy       string    `yaml:"proxy,omitempty"`

	// Sites maps a host name (without scheme or port) to its settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	// Defaults apply to every host unless a site overrides them.
	Defaults SiteConfig `yaml:"defaults,omitempty"`
}

// GetSiteConfig merges the defaults with the settings for host.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := SiteConfig{Cookie: cf.Defaults.Cookie}
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = make(map[string]string, len(cf.Defaults.Headers))
		for k, v := range cf.Defaults.Headers {
			result.Headers[k] = v
		}
	}

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if site.Cookie != "" {
		result.Cookie = site.Cookie
	}
	if len(site.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(site.Headers))
		}
		for k, v := range site.Headers {
			result.Headers[k] = v
		}
	}
	return result
}
