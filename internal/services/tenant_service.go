package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oakline/callbridge/internal/cache"
	"github.com/oakline/callbridge/internal/models"
	"github.com/oakline/callbridge/internal/pipeline/pseudo"
	pgrepo "github.com/oakline/callbridge/internal/repositories/postgres"
	"github.com/oakline/callbridge/internal/utils"
)

const tenantCacheTTL = 10 * time.Minute

// TenantResolver maps an inbound event to a business record by the dialed
// number or the platform workflow ID. A miss is not an error: (nil, nil)
// means the event proceeds with no tenant attached.
type TenantResolver interface {
	Resolve(ctx context.Context, calledNumber, workflowID string) (*models.Business, error)
}

type tenantService struct {
	businesses pgrepo.BusinessRepository
	cache      cache.Cache
	log        *logrus.Logger
}

func NewTenantService(businesses pgrepo.BusinessRepository, c cache.Cache, log *logrus.Logger) TenantResolver {
	return &tenantService{businesses: businesses, cache: c, log: log}
}

func (s *tenantService) Resolve(ctx context.Context, calledNumber, workflowID string) (*models.Business, error) {
	const op = "TenantService.Resolve"

	digits := pseudo.NormalizePhone(calledNumber)
	key := ""
	switch {
	case digits != "":
		key = "tenant:phone:" + digits
	case workflowID != "":
		key = "tenant:wf:" + workflowID
	default:
		return nil, nil
	}

	if s.cache != nil {
		var b models.Business
		if hit, err := s.cache.GetJSON(ctx, key, &b); err == nil && hit {
			return &b, nil
		}
	}

	b, err := s.lookup(ctx, calledNumber, digits, workflowID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "business lookup failed", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, b, tenantCacheTTL); err != nil {
			s.log.WithError(err).Warn("tenant cache write failed")
		}
	}
	return b, nil
}

func (s *tenantService) lookup(ctx context.Context, raw, digits, workflowID string) (*models.Business, error) {
	if digits != "" {
		variants := []string{digits, "+1" + digits, "1" + digits}
		if raw != "" && raw != digits {
			variants = append(variants, raw)
		}
		b, err := s.businesses.GetByPhone(ctx, variants...)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, utils.ErrNotFound) {
			return nil, err
		}
	}
	if workflowID != "" {
		return s.businesses.GetByWorkflowID(ctx, workflowID)
	}
	return nil, utils.ErrNotFound
}
