// Package config loads the server configuration.
//
// Values are layered, later layers winning:
//
//  1. Defaults
//  2. An optional YAML file (serve --config)
//  3. Environment variables (TODOIST_API_TOKEN, TODOIST_TIMEOUT, METRICS_ADDR, ...)
//  4. Command line flags, applied by the serve command
//
// Example file:
//
//	todoist:
//	  api_token: "0123abcd"
//	  timeout: 20s
//	  rate_limit: 0.5
//	server:
//	  transport: streamable-http
//	  http_addr: ":8080"
//	  read_only: true
//	metrics:
//	  addr: ":9091"
package config
