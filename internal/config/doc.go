// Package config loads textdesk settings from a TOML file.
//
// Settings are resolved in layers, later layers overriding earlier ones:
//
//	┌──────────────────────────┐
//	│  3. Environment (TEXTDESK_*)│  ← Highest priority
//	├──────────────────────────┤
//	│  2. config.toml          │
//	├──────────────────────────┤
//	│  1. Built-in Defaults    │  ← Lowest priority
//	└──────────────────────────┘
//
// A missing file is not an error; defaults apply. Parse failures are
// reported as *ParseError with the file path and position.
//
// # Live Reload
//
// Watcher observes the file with fsnotify and hands every successfully
// parsed revision to a reload handler:
//
//	w, err := config.NewWatcher(path, func(cfg *config.Config) {
//	    logger.SetLevel(app.ParseLogLevel(cfg.Log.Level))
//	})
//	defer w.Close()
package config
