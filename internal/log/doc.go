// Package log builds the slog loggers used by verbcrawl.
//
// Loggers are wrapped in a RedactingHandler so that credentials never reach
// log output: proxy URLs keep their host but lose the user:password part,
// and attributes with sensitive names (cookie, password, token, ...) are
// masked entirely.
//
//	logger := log.NewLogger(os.Stderr, verbose, false)
//	logger.Info("using proxy", "proxy", "socks5://user:pw@127.0.0.1:1080")
//	// proxy=socks5://***REDACTED***@127.0.0.1:1080
package log
