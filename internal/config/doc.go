// Package config holds the settings shared by every suruext command: the
// Wikidata endpoints, HTTP client limits, output format, the optional
// .suruext YAML file with per-site request settings, and the bot
// credentials that are read from the environment only.
package config
