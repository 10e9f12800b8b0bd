package encstore

// Fields carries structured context for a log line. Values are keys, ops and
// counts; the facade never logs plaintext or ciphertext.
type Fields map[string]any

// Logger receives the facade's diagnostics. Adapters for zap, logrus and
// log/slog live under log/. A nil Options.Logger means NopLogger.
type Logger interface {
	Debug(msg string, f Fields)
	Info(msg string, f Fields)
	Warn(msg string, f Fields)
	Error(msg string, f Fields)
}

// NopLogger drops everything.
type NopLogger struct{}

func (NopLogger) Debug(string, Fields) {}
func (NopLogger) Info(string, Fields)  {}
func (NopLogger) Warn(string, Fields)  {}
func (NopLogger) Error(string, Fields) {}

func (s *storage) unbound(kind BackendKind) {
	s.log.Warn("no backend bound; storage calls are no-ops", Fields{"kind": kind.String()})
}

func (s *storage) skipped(op, key string) {
	s.log.Debug("no backend bound; call skipped", Fields{"op": op, "key": key})
}

func (s *storage) undecodable(key string, err error) {
	s.log.Debug("value not decodable; returning raw string", Fields{"key": key, "err": err})
}
