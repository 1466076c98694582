// Package config loads container configurations from files and the
// environment, and converts feature options to and from typed values.
//
// FileLoader layers, lowest precedence first:
//
//	<configPath>/<configName>.default.{yaml,yml,toml}
//	<configPath>/<configName>.<env>.{yaml,yml,toml}
//	GENX_* environment variables ("__" separates nested keys)
//
// Top-level keys keep the order in which they first appear in YAML layers.
package config
