package payment

import (
	"time"

	"go.uber.org/zap"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/clock"
	apdomain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/payment"
	"github.com/BruksfildServices01/salon-booking/internal/events"
	"github.com/BruksfildServices01/salon-booking/internal/infra/archive"
	"github.com/BruksfildServices01/salon-booking/internal/infra/cache"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
)

type Deps struct {
	Payments     domain.Repository
	Appointments apdomain.Repository
	Gateway      domain.Gateway
	Authz        catalog.Authorizer
	Dedup        cache.TTLStore
	Archive      archive.Archiver
	Clock        clock.Clock
	Audit        audit.Auditor
	Events       events.Publisher
	Metrics      *metrics.Metrics
	Log          *zap.Logger

	// DedupTTL is how long a processed webhook key stays in the fast path.
	DedupTTL time.Duration
}
