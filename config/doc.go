// Package config loads sonicloop's YAML configuration (gopkg.in/yaml.v3).
//
// A file only needs the keys it changes; everything else keeps the value
// from Default:
//
//	capture:
//	  backend: device        # device | rtp | simulated
//	  device_name: BlackHole
//	scheduler:
//	  period: 2s
//	  backoff_period: 5s
//	control:
//	  osc_port: 57120
//	logging:
//	  level: debug
//
// Validation reuses the bounds in package limits and wraps every failure in
// ErrInvalidConfig.
package config
