// Package config loads and validates the daemon's YAML configuration.
//
// Configuration is a single config.yaml file with one section per concern:
//
//	controller:
//	  base_url: "http://tado-bridge.local:8080"
//	  token: "..."          # or set TADOSYNC_TOKEN
//	  naming: "zones"       # zones | thermostats
//	  poll_interval: 300
//	api:
//	  enabled: true
//	  port: 8099
//	mqtt:
//	  enabled: false
//	influxdb:
//	  enabled: false
//	logging:
//	  level: "info"
//
// Load applies defaults before validating, so a minimal file with only the
// controller base URL and token is a complete configuration. The bearer token
// can be kept out of the file entirely via the TADOSYNC_TOKEN environment
// variable.
package config
