// Package config provides configuration for verbcrawl: built-in defaults,
// validation, and the YAML configuration file listing the verbs to crawl.
package config
