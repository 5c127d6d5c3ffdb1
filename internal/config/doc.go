// Package config provides the YAML configuration for the bridge.
//
// The configuration file lives at the platform's conventional location
// ($XDG_CONFIG_HOME/hdhradio/config.yaml on Linux) and is entirely
// optional: every field has a working default, so the bridge runs with no
// file at all.
//
// # Example
//
//	log_level: info
//	listen_addr: 127.0.0.1:8090
//	host:
//	  base_url: http://127.0.0.1:8085
//	  ingest_url: ws://127.0.0.1:8085/api/ingest
//	discovery:
//	  mdns_timeout_seconds: 10
//	  interval_seconds: 300
//	  refresh_seconds: 3600
//	decoder:
//	  ffmpeg_path: /usr/bin/ffmpeg
package config
