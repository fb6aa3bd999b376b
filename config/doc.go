// Package config holds the user settings of the launcher.
//
// Settings are built from defaults with functional options, or loaded from
// a YAML file layered over the defaults:
//
//	settings, err := config.Load("/home/me/.config/launchit/settings.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Program sources use a compact edit syntax: a leading "!" scans only the
// top directory, a leading "*" also lists directories as entries.
package config
