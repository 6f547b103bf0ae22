package agent

import (
	"context"

	"go.uber.org/zap"
)

// Assistant is the ward-wide conversational agent. It resolves intent and
// entities from free text and answers from the record store.
type Assistant struct {
	composer *Composer
	logger   *zap.Logger
}

func NewAssistant(store Store, logger *zap.Logger) *Assistant {
	return &Assistant{
		composer: NewComposer(store),
		logger:   logger,
	}
}

func (a *Assistant) ProcessMessage(ctx context.Context, message string) (string, error) {
	intent := ExtractIntent(message)
	entities := ExtractEntities(message)

	a.logger.Debug("Resolved chat intent",
		zap.String("intent", string(intent)),
		zap.Bool("has_patient_id", entities.PatientID != nil),
		zap.Bool("has_floor", entities.Floor != nil),
	)

	return a.composer.Compose(ctx, intent, entities, message)
}
