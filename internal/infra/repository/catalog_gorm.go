package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/domain/catalog"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// CatalogGormRepository reads the salon and user tables maintained by the
// catalog and account services.
type CatalogGormRepository struct {
	db      *gorm.DB
	timeout time.Duration
}

func NewCatalogGormRepository(db *gorm.DB, timeout time.Duration) *CatalogGormRepository {
	return &CatalogGormRepository{db: db, timeout: timeout}
}

func (r *CatalogGormRepository) GetUser(
	ctx context.Context,
	id string,
) (*catalog.User, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var u models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrUserNotFound
		}
		return nil, err
	}

	return &catalog.User{
		ID:       u.ID,
		IsActive: u.IsActive,
		Role:     u.Role,
	}, nil
}

func (r *CatalogGormRepository) GetSalon(
	ctx context.Context,
	id string,
) (*catalog.Salon, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	var s models.Salon
	if err := r.db.WithContext(ctx).
		Preload("Services").
		Where("id = ?", id).
		First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, catalog.ErrSalonNotFound
		}
		return nil, err
	}

	out := &catalog.Salon{
		ID:       s.ID,
		IsActive: s.IsActive,
		OwnerID:  s.OwnerID,
		Services: make([]catalog.Service, 0, len(s.Services)),
	}
	for _, svc := range s.Services {
		out.Services = append(out.Services, catalog.Service{
			ID:          svc.ID,
			Price:       svc.Price,
			DurationMin: svc.DurationMin,
			IsActive:    svc.IsActive,
		})
	}
	return out, nil
}

var _ catalog.UserDirectory = (*CatalogGormRepository)(nil)
var _ catalog.SalonCatalog = (*CatalogGormRepository)(nil)
