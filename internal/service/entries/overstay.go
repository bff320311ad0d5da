package entries

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/parkos/parklot/internal/domain/models"
)

// SweepOverstays promotes vehicles parked past the overstay threshold to
// Overstay status and returns the newly flagged entries.
func (s *Service) SweepOverstays(ctx context.Context) ([]models.ParkingEntry, error) {
	cutoff := s.now().Add(-time.Duration(s.overstayHours * float64(time.Hour)))

	flagged, err := s.store.MarkOverstayed(ctx, cutoff)
	if err != nil {
		return nil, fmt.Errorf("sweep overstays: %w", err)
	}

	if len(flagged) > 0 {
		s.logger.Info("overstayed vehicles flagged", zap.Int("count", len(flagged)))
	}
	return flagged, nil
}
