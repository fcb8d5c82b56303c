package main

import _ "embed"

// embeddedConfig holds the YAML configuration embedded at build time.
// Build scripts may overwrite embed_config.yaml with site defaults, such
// as the collector URL, before compiling.
//
//go:embed embed_config.yaml
var embeddedConfig []byte
