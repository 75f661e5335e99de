// Package config provides configuration structures and utilities for
// ragcrawl. It defines the main configuration options for crawling,
// chunking, and report generation, plus the .ragcrawl YAML file with
// per-site overrides.
package config
