// Package config provides the gateway configuration model, loading and
// validation.
//
// A configuration document lists the authorization endpoint and an
// ordered set of services. The first service whose path pattern matches
// a request path handles it.
//
//	authorization_api_url: "http://127.0.0.1:8081/auth"
//	services:
//	  - path: "/users"
//	    target_service: "http://127.0.0.1"
//	    target_port: "9000"
//	  - path: "/public"
//	    target_service: "http://127.0.0.1"
//	    target_port: "9001"
//	    authentication_required: false
//
// YAML and TOML are both accepted; the format follows the file extension.
// Unknown keys are rejected. ${VAR} and ${VAR:-default} are replaced with
// environment values before parsing, and $$ yields a literal dollar sign.
//
// Load and validate:
//
//	cfg, err := config.LoadConfig("gateway.yaml")
//	if err != nil {
//	    return err
//	}
//	if err := config.ValidateConfig(cfg); err != nil {
//	    return err
//	}
//
// Watcher reports valid changes to the file. The route table is never
// swapped in place, so callers typically restart on change.
package config
