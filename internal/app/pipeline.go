package app

import (
	"fmt"
	"time"

	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/normalize"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/prompts"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/validate"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
)

const shutdownFlushTimeout = 5 * time.Second

// NewPipeline assembles normalizer and validator around one model client.
// Shared by the server and the importctl CLI.
func NewPipeline(log *logger.Logger, client openai.Client) (*importing.Pipeline, error) {
	cat, err := prompts.Default()
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}
	log.Info("Import pipeline ready", "model", client.Model())
	return importing.New(log, normalize.New(log, client, cat), validate.New(log, client, cat)), nil
}
