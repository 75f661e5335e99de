// Package fetcher implements the HTTP fetch collaborator used by the
// crawl engine. It owns everything network-shaped: timeouts, the fixed
// politeness delay between requests, response size limits, and custom
// headers. The crawler only ever sees a parsed document or an error.
package fetcher
