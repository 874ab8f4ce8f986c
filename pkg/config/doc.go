// Package config loads interface profiles and mock rules for modelproxy.
//
// An interface document (JSON or YAML) declares the active status, the mock
// engine, the rulebase directory and a list of interface profiles:
//
//	{
//	  "title": "shop interfaces",
//	  "version": "1.0.0",
//	  "engine": "template",
//	  "status": "prod",
//	  "rulebase": "./interfaceRules",
//	  "include": ["interfaces/**/*.json"],
//	  "interfaces": [{
//	    "id": "Search.getItems",
//	    "urls": {"prod": "http://s.example.com/items", "daily": "http://daily/items"},
//	    "method": "GET",
//	    "dataType": "json",
//	    "isCookieNeeded": false,
//	    "isRuleStatic": false
//	  }]
//	}
//
// ${VAR} and ${VAR:-default} references are expanded from the environment
// before parsing. The Registry built from a document is immutable: profiles are
// looked up by id, by id prefix, and their mock rules are read lazily from
// <rulebase>/<id>.rule.json unless a profile names its own ruleFile.
//
// Runtime settings (status override, engine, log level, signing key) come from
// MODELPROXY_* environment variables, see Settings.
package config
