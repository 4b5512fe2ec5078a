// Package notion provides a client and fetcher for the Notion API.
//
// It handles:
//   - API client with request pacing and both API versions (legacy databases
//     and data sources)
//   - Discovery of pages, databases, data sources and their items
//   - Conversion of API objects into workspace entities
//   - Progress reporting for CLI and log consumers
package notion
