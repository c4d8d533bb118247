package analysis

import (
	"fmt"

	"github.com/adpulse/adpulse/internal/modules"
	"github.com/adpulse/adpulse/internal/store"
)

// RegisterAll adds every packaged module to reg, bound to st.
func RegisterAll(reg *modules.Registry, st *store.Store) error {
	all := []modules.Module{
		NewBleedingDetector(st),
		NewROITrend(st),
		NewAnomalyDetector(st),
		NewBudgetAllocator(st),
		NewOfferCluster(st),
	}
	for _, m := range all {
		if err := reg.Register(m); err != nil {
			return fmt.Errorf("register %s: %w", m.Metadata().ID, err)
		}
	}
	return nil
}
