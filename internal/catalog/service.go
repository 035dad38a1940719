package catalog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/modernsales/pawnshop/pkg/db"
	"github.com/modernsales/pawnshop/pkg/db/models"
	pkgerrors "github.com/modernsales/pawnshop/pkg/errors"
	"github.com/modernsales/pawnshop/pkg/logger"
	"github.com/modernsales/pawnshop/pkg/metrics"
	"github.com/modernsales/pawnshop/pkg/types"
	"github.com/modernsales/pawnshop/pkg/validators"
)

const (
	opList   = "catalog_list"
	opCreate = "catalog_create"
	opUpdate = "catalog_update"
	opDelete = "catalog_delete"
)

const (
	MsgNameRequired  = "Vui lòng nhập tên món hàng."
	MsgWeightInvalid = "Trọng lượng không hợp lệ."
)

var itemMessages = validators.Messages{
	"ItemName":         MsgNameRequired,
	"DefaultWeightChi": MsgWeightInvalid,
}

// ItemInput is the editable part of a catalog template.
type ItemInput struct {
	ItemName         string  `validate:"notblank"`
	DefaultWeightChi float64 `validate:"gte=0"`
	Note             string
}

// Item is a stored catalog template.
type Item struct {
	ID               int64
	ItemName         string
	DefaultWeightChi float64
	Note             string
	CreatedAt        time.Time
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	Repo    *Repository
	Logger  *logger.Logger
	Metrics *metrics.OperationMetrics
}

// Service manages the reusable item templates.
type Service interface {
	GetAll(ctx context.Context) ([]Item, error)
	Create(ctx context.Context, input ItemInput) (int64, error)
	Update(ctx context.Context, id int64, input ItemInput) error
	Delete(ctx context.Context, id int64) error
}

type service struct {
	repo    *Repository
	logg    *logger.Logger
	metrics *metrics.OperationMetrics
	now     func() time.Time
}

// NewService builds a catalog service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:    params.Repo,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

func (s *service) GetAll(ctx context.Context) (items []Item, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opList, started, err) }()

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list catalog: %w", err)
	}
	items = make([]Item, 0, len(rows))
	for _, row := range rows {
		items = append(items, Item{
			ID:               row.ID,
			ItemName:         row.ItemName,
			DefaultWeightChi: row.DefaultWeightChi,
			Note:             row.Note,
			CreatedAt:        row.CreatedAt.Time(),
		})
	}
	return items, nil
}

func (s *service) Create(ctx context.Context, input ItemInput) (id int64, err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opCreate, started, err) }()

	if err := validators.Struct(input, itemMessages); err != nil {
		return 0, err
	}
	row := &models.PawnCatalogItem{
		ItemName:         strings.TrimSpace(input.ItemName),
		DefaultWeightChi: input.DefaultWeightChi,
		Note:             input.Note,
		CreatedAt:        types.NewTimestamp(s.now()),
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return 0, fmt.Errorf("insert catalog item: %w", err)
	}
	s.logg.Info(s.logg.WithField(ctx, "catalog_id", row.ID), "catalog item created")
	return row.ID, nil
}

func (s *service) Update(ctx context.Context, id int64, input ItemInput) (err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opUpdate, started, err) }()

	if err := validators.Struct(input, itemMessages); err != nil {
		return err
	}
	affected, err := s.repo.Update(ctx, id, strings.TrimSpace(input.ItemName), input.DefaultWeightChi, input.Note)
	if err != nil {
		return fmt.Errorf("update catalog item: %w", err)
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Không tìm thấy món hàng ID %d.", id))
	}
	return nil
}

func (s *service) Delete(ctx context.Context, id int64) (err error) {
	started := time.Now()
	defer func() { err = s.finish(ctx, opDelete, started, err) }()

	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete catalog item: %w", err)
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Không tìm thấy món hàng ID %d.", id))
	}
	return nil
}

func (s *service) finish(ctx context.Context, operation string, started time.Time, err error) error {
	if err == nil {
		s.metrics.Observe(operation, started, nil, "")
		return nil
	}
	typed := db.Classify(err)
	s.metrics.Observe(operation, started, typed, string(typed.Code()))
	if typed.Code() != pkgerrors.CodeValidation {
		s.logg.Error(s.logg.WithField(ctx, "operation", operation), operation+" failed", err)
	}
	return typed
}
