// Package config loads twintree configuration.
//
// Configuration comes from a TOML or YAML file, chosen by extension, laid
// over Default and then overridden by TWINTREE_* environment variables:
//
//	[log]
//	level = "debug"
//	format = "json"
//
//	[conversion]
//	strict = true
//	normalize_text = true
//
//	[[elements]]
//	model = "paragraph"
//	view = "p"
//
//	[[attributes]]
//	key = "bold"
//	view = "strong"
//
//	[[markers]]
//	name = "comment"
//	mode = "highlight"
//	classes = ["comment"]
//
// Rules are registered onto conversion helpers with Config.Register, which
// wires both conversion directions where the rule allows it. Watcher
// reports edits to the config and scenario files.
package config
