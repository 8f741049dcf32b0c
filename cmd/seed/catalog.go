package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/wekeepgrowing/closerlink/internal/domain/model"
	"github.com/wekeepgrowing/closerlink/internal/usecase"
	"gopkg.in/yaml.v3"
)

type catalogFile struct {
	Closers []closerEntry `yaml:"closers" validate:"dive"`
	Plans   []planEntry   `yaml:"plans" validate:"dive"`
}

type closerEntry struct {
	Name            string `yaml:"name" validate:"required"`
	Email           string `yaml:"email" validate:"required,email"`
	Phone           string `yaml:"phone"`
	CommissionType  string `yaml:"commission_type" validate:"required,oneof=percentage flat"`
	CommissionValue string `yaml:"commission_value" validate:"required,numeric"`
	IsActive        *bool  `yaml:"is_active"`
}

type planEntry struct {
	CloserEmail            string `yaml:"closer_email" validate:"required,email"`
	ExternalPlanID         string `yaml:"external_plan_id" validate:"required"`
	ExternalProductID      string `yaml:"external_product_id"`
	ProductName            string `yaml:"product_name"`
	PurchaseURL            string `yaml:"purchase_url" validate:"omitempty,url"`
	Title                  string `yaml:"title"`
	ClientName             string `yaml:"client_name"`
	PlanKind               string `yaml:"plan_kind" validate:"required,oneof=one_time renewal split_pay custom_split down_payment"`
	TotalAmount            string `yaml:"total_amount" validate:"omitempty,numeric"`
	InitialPrice           string `yaml:"initial_price" validate:"omitempty,numeric"`
	RenewalPrice           string `yaml:"renewal_price" validate:"omitempty,numeric"`
	BillingPeriodDays      *int   `yaml:"billing_period_days" validate:"omitempty,gt=0"`
	InstallmentCount       *int   `yaml:"installment_count" validate:"omitempty,gt=0"`
	CustomSplitDescription string `yaml:"custom_split_description"`
	Status                 string `yaml:"status" validate:"omitempty,oneof=active expired completed"`
}

// loadCatalog reads a YAML file of closers and the plans they own.
func loadCatalog(path string) ([]*model.Closer, []usecase.PlanSeed, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog file: %w", err)
	}
	return parseCatalog(data)
}

func parseCatalog(data []byte) ([]*model.Closer, []usecase.PlanSeed, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil, nil
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, nil, fmt.Errorf("unmarshal catalog yaml: %w", err)
	}

	if err := validator.New().Struct(&file); err != nil {
		return nil, nil, fmt.Errorf("invalid catalog: %w", err)
	}

	closers := make([]*model.Closer, 0, len(file.Closers))
	for _, entry := range file.Closers {
		isActive := true
		if entry.IsActive != nil {
			isActive = *entry.IsActive
		}

		closers = append(closers, &model.Closer{
			Name:            strings.TrimSpace(entry.Name),
			Email:           strings.ToLower(strings.TrimSpace(entry.Email)),
			Phone:           optional(entry.Phone),
			CommissionType:  model.CommissionType(entry.CommissionType),
			CommissionValue: decimal.RequireFromString(entry.CommissionValue),
			IsActive:        isActive,
		})
	}

	plans := make([]usecase.PlanSeed, 0, len(file.Plans))
	for _, entry := range file.Plans {
		plans = append(plans, usecase.PlanSeed{
			CloserEmail: strings.ToLower(strings.TrimSpace(entry.CloserEmail)),
			Plan: &model.PaymentPlan{
				ExternalPlanID:         entry.ExternalPlanID,
				ExternalProductID:      entry.ExternalProductID,
				ProductName:            entry.ProductName,
				PurchaseURL:            entry.PurchaseURL,
				Title:                  optional(entry.Title),
				ClientName:             optional(entry.ClientName),
				Kind:                   model.PlanKind(entry.PlanKind),
				TotalAmount:            nullDecimal(entry.TotalAmount),
				InitialPrice:           nullDecimal(entry.InitialPrice),
				RenewalPrice:           nullDecimal(entry.RenewalPrice),
				BillingPeriodDays:      entry.BillingPeriodDays,
				InstallmentCount:       entry.InstallmentCount,
				CustomSplitDescription: optional(entry.CustomSplitDescription),
				Status:                 model.PlanStatus(entry.Status),
			},
		})
	}

	return closers, plans, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// nullDecimal expects a value already checked as numeric.
func nullDecimal(s string) decimal.NullDecimal {
	if s == "" {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}
