package database

import (
	"github.com/wekeepgrowing/closerlink/internal/adapter/repository"
	domainRepo "github.com/wekeepgrowing/closerlink/internal/domain/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repositories holds all repository instances
type Repositories struct {
	WebhookEvent domainRepo.WebhookEventRepository
	Payment      domainRepo.PaymentRepository
	Plan         domainRepo.PlanRepository
	Closer       domainRepo.CloserRepository
	Settings     domainRepo.SettingsRepository
}

// NewRepositories creates new repository instances with database connection
func NewRepositories(db *gorm.DB, logger *zap.Logger) *Repositories {
	return &Repositories{
		WebhookEvent: repository.NewWebhookEventRepository(db, logger),
		Payment:      repository.NewPaymentRepository(db, logger),
		Plan:         repository.NewPlanRepository(db, logger),
		Closer:       repository.NewCloserRepository(db, logger),
		Settings:     repository.NewSettingsRepository(db, logger),
	}
}
