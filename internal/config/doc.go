// Package config loads the settings file that holds the notification endpoint
// and the ignore lists.
//
// The file may be any format viper understands (yaml, json, toml, env, ini).
// GOTIFY_SERVER and GOTIFY_TOKEN may also come from environment variables of
// the same name, which win over the file. GOTIFY_TOKEN may name a file holding
// the token.
package config
