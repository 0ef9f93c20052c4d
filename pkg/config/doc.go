// Package config holds the application configuration.
//
// Configuration lives in a directory of YAML, JSON or TOML files, one file
// per top-level key; nested directories add dotted prefixes. Values are read
// by dotted key and can be overridden from the environment with the ATOMIC_
// prefix (mail.from.address → ATOMIC_MAIL_FROM_ADDRESS).
//
//	cfg := config.New()
//	if err := cfg.LoadDir(os.DirFS("config")); err != nil {
//	    return err
//	}
//	name := cfg.String("app.name", "Atomic")
package config
