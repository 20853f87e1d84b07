// Package report forwards algorithm progress events to a zap logger.
package report

import (
	"go.uber.org/zap"

	"github.com/example/faultchar/characterization/domain"
)

// ZapReporter implements domain.Reporter on a *zap.Logger.
type ZapReporter struct {
	logger *zap.Logger
}

var _ domain.Reporter = (*ZapReporter)(nil)

// NewZapReporter creates a reporter. A nil logger discards everything.
func NewZapReporter(logger *zap.Logger) *ZapReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapReporter{logger: logger.Named("characterization")}
}

// PhaseChanged logs a phase transition at debug level.
func (r *ZapReporter) PhaseChanged(algorithm, from, to string) {
	r.logger.Debug("phase changed",
		zap.String("algorithm", algorithm),
		zap.String("from", from),
		zap.String("to", to))
}

// ProbesProposed logs requested test inputs at debug level.
func (r *ZapReporter) ProbesProposed(algorithm string, probes []domain.Combination) {
	if ce := r.logger.Check(zap.DebugLevel, "probes proposed"); ce != nil {
		ce.Write(
			zap.String("algorithm", algorithm),
			zap.Int("count", len(probes)),
			zap.Stringers("probes", probes))
	}
}

// CombinationFound logs a failure-inducing combination at info level.
func (r *ZapReporter) CombinationFound(algorithm string, c domain.Combination) {
	r.logger.Info("failure-inducing combination found",
		zap.String("algorithm", algorithm),
		zap.Stringer("combination", c),
		zap.Int("size", c.AssignedCount()))
}
