package core

import (
	"context"

	"github.com/tolutally/matchbox-web/internal/models"
)

// LeadForwarder delivers an accepted lead to the external form backend.
type LeadForwarder interface {
	Forward(ctx context.Context, lead *models.Lead) error
	Configured() bool
}
